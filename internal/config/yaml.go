// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	applog "tuner/internal/log"
	"tuner/pkg/bitint"
)

// DefaultPath is searched when LoadConfig is given no explicit path.
const DefaultPath = "config.yaml"

// LoadConfig loads configuration from the YAML file at path. If path is empty,
// it uses DefaultPath when present and built-in defaults otherwise. Environment
// overrides are applied last, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks every section and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not a known level", c.LogLevel))
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, a.InputDevice))
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be between %d and %d Hz, got %g", MinSampleRate, MaxSampleRate, a.SampleRate))
	}
	if a.WindowSize < MinWindowSize || a.WindowSize > MaxWindowSize {
		errs = append(errs, fmt.Errorf("audio.window_size must be between %d and %d, got %d", MinWindowSize, MaxWindowSize, a.WindowSize))
	}
	if !bitint.IsPowerOfTwo(a.FramesPerBuffer) {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer must be a power of two, got %d", a.FramesPerBuffer))
	} else if a.FramesPerBuffer > a.WindowSize {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer (%d) must not exceed audio.window_size (%d)", a.FramesPerBuffer, a.WindowSize))
	}
	if a.InputChannels < 1 {
		errs = append(errs, fmt.Errorf("audio.input_channels must be at least 1, got %d", a.InputChannels))
	}

	t := c.Tuner
	if t.NoiseFloor <= 0 || t.NoiseFloor >= 1 {
		errs = append(errs, fmt.Errorf("tuner.noise_floor must be in (0, 1), got %g", t.NoiseFloor))
	}
	if t.FrequencyHistory < 1 {
		errs = append(errs, fmt.Errorf("tuner.frequency_history must be at least 1, got %d", t.FrequencyHistory))
	}
	if t.NoteHistory < 1 {
		errs = append(errs, fmt.Errorf("tuner.note_history must be at least 1, got %d", t.NoteHistory))
	}

	tr := c.Transport
	if tr.WebSocketEnabled {
		if _, _, err := net.SplitHostPort(tr.WebSocketAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.websocket_address %q is invalid: %w", tr.WebSocketAddress, err))
		}
	}
	if tr.UDPEnabled {
		if _, _, err := net.SplitHostPort(tr.UDPTargetAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.udp_target_address %q is invalid: %w", tr.UDPTargetAddress, err))
		}
		if tr.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies TUNER_* environment variables on top of the
// loaded configuration. Malformed values are reported rather than ignored.
func (c *Config) applyEnvOverrides() error {
	// TUNER_LOG_LEVEL
	if val, ok := os.LookupEnv("TUNER_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("Config: Overriding log_level from env: %s", val)
	}

	// TUNER_DEVICE
	if val, ok := os.LookupEnv("TUNER_DEVICE"); ok {
		id, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid TUNER_DEVICE %q: %w", val, err)
		}
		c.Audio.InputDevice = id
		applog.Debugf("Config: Overriding audio.input_device from env: %d", id)
	}

	// TUNER_WS_{...}
	// These are specific to the websocket transport.

	if val, ok := os.LookupEnv("TUNER_WS_ENABLED"); ok {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid TUNER_WS_ENABLED %q: %w", val, err)
		}
		c.Transport.WebSocketEnabled = enabled
		applog.Debugf("Config: Overriding transport.websocket_enabled from env: %v", enabled)
	}
	if val, ok := os.LookupEnv("TUNER_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Debugf("Config: Overriding transport.websocket_address from env: %s", val)
	}

	// TUNER_UDP_{...}
	// These are specific to the UDP transport.

	if val, ok := os.LookupEnv("TUNER_UDP_ENABLED"); ok {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid TUNER_UDP_ENABLED %q: %w", val, err)
		}
		c.Transport.UDPEnabled = enabled
		applog.Debugf("Config: Overriding transport.udp_enabled from env: %v", enabled)
	}
	if val, ok := os.LookupEnv("TUNER_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Debugf("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	if val, ok := os.LookupEnv("TUNER_UDP_SEND_INTERVAL"); ok {
		dur, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid TUNER_UDP_SEND_INTERVAL %q: %w", val, err)
		}
		c.Transport.UDPSendInterval = dur
		applog.Debugf("Config: Overriding transport.udp_send_interval from env: %s", dur)
	}

	return nil
}
