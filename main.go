// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tuner/cmd"
	"tuner/internal/audio"
	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tui"
	"tuner/internal/tuner"
	"tuner/pkg/build"
)

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//   - Initialize PortAudio and the enabled transports
//
// 2. Concurrent Phase (Hot Path):
//   - Start capture; the engine consumes one block per cycle
//   - Publish every Reading to the transports
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop capture and publish the neutral reading
//   - Close transports and terminate PortAudio
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Warnf("Build: %v", err)
	}

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts.Command == "" {
		// Help or version output only.
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.Command {
	case cmd.CommandAnalyze:
		err = analyze(ctx, cfg, opts.File)
	case cmd.CommandList:
		err = withPortAudio(func() error {
			return audio.ListDevices(os.Stdout)
		})
	case cmd.CommandPick:
		err = withPortAudio(func() error {
			sel, err := tui.Pick(cfg.Audio.InputChannels)
			if err != nil {
				return err
			}
			cfg.Audio.InputDevice = sel.DeviceID
			cfg.Audio.SampleRate = sel.SampleRate
			applog.Infof("Picked [%d] %s at %.0f Hz", sel.DeviceID, sel.DeviceName, sel.SampleRate)
			return listen(ctx, cfg)
		})
	default:
		err = withPortAudio(func() error {
			return listen(ctx, cfg)
		})
	}

	if errors.Is(err, tui.ErrCancelled) {
		return
	}
	if err != nil {
		applog.Fatalf("%v", err)
	}
}

// loadConfig reads the configuration file, applies command line overrides
// and sets the log level.
func loadConfig(opts *cmd.Options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	opts.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command line: %w", err)
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	applog.SetLevel(level)
	applog.Debugf("Config: %+v", *cfg)
	return cfg, nil
}

// withPortAudio brackets fn with PortAudio initialization and termination.
func withPortAudio(fn func() error) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := audio.Terminate(); err != nil {
			applog.Errorf("%v", err)
		}
	}()
	return fn()
}

// newTransports builds the fan-out of every transport enabled in cfg.
func newTransports(cfg *config.Config) (*transport.Fanout, error) {
	outputs := []transport.Transport{transport.NewLoggingTransport()}

	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err := ws.ListenAndServe(); err != nil {
			ws.Close()
			return nil, fmt.Errorf("failed to start WebSocket server: %w", err)
		}
		outputs = append(outputs, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			transport.NewFanout(outputs...).Close()
			return nil, err
		}
		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender)
		if err != nil {
			sender.Close()
			transport.NewFanout(outputs...).Close()
			return nil, err
		}
		publisher.Start()
		outputs = append(outputs, publisher)
	}

	return transport.NewFanout(outputs...), nil
}

func engineParams(cfg *config.Config) tuner.Params {
	return tuner.Params{
		NoiseFloor:       cfg.Tuner.NoiseFloor,
		FrequencyHistory: cfg.Tuner.FrequencyHistory,
		NoteHistory:      cfg.Tuner.NoteHistory,
	}
}

// listen runs the engine over live capture until ctx is cancelled.
func listen(ctx context.Context, cfg *config.Config) error {
	outputs, err := newTransports(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := outputs.Close(); err != nil {
			applog.Errorf("Transport: %v", err)
		}
	}()

	engine := tuner.NewEngine(audio.NewStream(cfg.Audio), engineParams(cfg))
	if err := engine.Start(); err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	fmt.Printf("Listening. Press Ctrl+C to stop ('%s --help' for usage).\n", build.GetBuildFlags().Name)
	runErr := engine.Run(ctx, func(r tuner.Reading) {
		outputs.Publish(r)
	})

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	neutral, stopErr := engine.Stop()
	outputs.Publish(neutral)

	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return errors.Join(runErr, stopErr)
}

// analyze runs the engine over a WAV file, printing every display change.
func analyze(ctx context.Context, cfg *config.Config, path string) error {
	source := audio.NewFileSource(path, cfg.Audio.WindowSize, cfg.Audio.FramesPerBuffer)
	engine := tuner.NewEngine(source, engineParams(cfg))
	if err := engine.Start(); err != nil {
		return err
	}

	var hop time.Duration
	if rate := source.Info().SampleRate; rate > 0 {
		hop = time.Duration(float64(cfg.Audio.FramesPerBuffer) / float64(rate) * float64(time.Second))
	}
	console := transport.NewConsoleTransport(os.Stdout, hop)

	runErr := engine.Run(ctx, func(r tuner.Reading) {
		if err := console.Send(r); err != nil {
			applog.Errorf("Console: %v", err)
		}
	})
	_, stopErr := engine.Stop()

	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return errors.Join(runErr, stopErr)
}
