// SPDX-License-Identifier: MIT
package config

import "time"

// Configuration boundaries and defaults for the tuner.
const (
	DefaultLogLevel        = "info"
	DefaultDeviceID        = MinDeviceID // System default input.
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Hop between analysis blocks.
	DefaultWindowSize      = 2048        // Samples per analysis block.
	DefaultChannels        = 1           // Mono audio
	DefaultLowLatency      = false

	DefaultNoiseFloor       = 0.01
	DefaultFrequencyHistory = 10
	DefaultNoteHistory      = 5

	DefaultWebSocketAddress = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MinWindowSize = 64
	MaxWindowSize = 16384
)

// Config represents the application configuration, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // "debug", "info", "warn" or "error".
	Audio     AudioConfig     `yaml:"audio"`
	Tuner     TunerConfig     `yaml:"tuner"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per PortAudio callback; one analysis block per callback.
	WindowSize      int     `yaml:"window_size"`       // Length of each analysis block in samples.
	InputChannels   int     `yaml:"input_channels"`    // Channels captured; channel 0 is analysed.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
}

// TunerConfig holds pitch detection and smoothing settings.
type TunerConfig struct {
	NoiseFloor       float64 `yaml:"noise_floor"`       // RMS below which a block is silence.
	FrequencyHistory int     `yaml:"frequency_history"` // Estimates averaged for display.
	NoteHistory      int     `yaml:"note_history"`      // Note names voted on for display.
}

// TransportConfig holds settings for publishing readings to renderers.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the /tuner endpoint.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending readings over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			WindowSize:      DefaultWindowSize,
			InputChannels:   DefaultChannels,
			LowLatency:      DefaultLowLatency,
		},
		Tuner: TunerConfig{
			NoiseFloor:       DefaultNoiseFloor,
			FrequencyHistory: DefaultFrequencyHistory,
			NoteHistory:      DefaultNoteHistory,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddress: DefaultWebSocketAddress,
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
