// SPDX-License-Identifier: MIT
package cmd

import (
	"testing"

	"tuner/internal/config"
)

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantCommand string
		wantFile    string
		wantErr     bool
	}{
		{"root runs live", nil, CommandRun, "", false},
		{"list", []string{"list"}, CommandList, "", false},
		{"pick", []string{"pick"}, CommandPick, "", false},
		{"analyze", []string{"analyze", "take.wav"}, CommandAnalyze, "take.wav", false},
		{"analyze without file", []string{"analyze"}, "", "", true},
		{"root rejects args", []string{"extra"}, "", "", true},
		{"unknown flag", []string{"--bogus"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseArgs(%v) succeeded, want error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs(%v) error: %v", tt.args, err)
			}
			if opts.Command != tt.wantCommand {
				t.Errorf("Command = %q, want %q", opts.Command, tt.wantCommand)
			}
			if opts.File != tt.wantFile {
				t.Errorf("File = %q, want %q", opts.File, tt.wantFile)
			}
		})
	}
}

func TestApplyOnlyChangedFlags(t *testing.T) {
	opts, err := ParseArgs([]string{"-s", "48000", "--window", "4096"})
	if err != nil {
		t.Fatalf("ParseArgs error: %v", err)
	}

	cfg := config.Default()
	cfg.Audio.InputDevice = 3
	cfg.Audio.FramesPerBuffer = 256
	opts.Apply(&cfg)

	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.WindowSize != 4096 {
		t.Errorf("WindowSize = %d, want 4096", cfg.Audio.WindowSize)
	}
	if cfg.Audio.InputDevice != 3 {
		t.Errorf("InputDevice = %d, want file value 3 kept", cfg.Audio.InputDevice)
	}
	if cfg.Audio.FramesPerBuffer != 256 {
		t.Errorf("FramesPerBuffer = %d, want file value 256 kept", cfg.Audio.FramesPerBuffer)
	}
	if cfg.LogLevel != config.DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, config.DefaultLogLevel)
	}
}

func TestFramesPerBufferRounded(t *testing.T) {
	opts, err := ParseArgs([]string{"analyze", "take.wav", "-b", "300", "-d", "2", "-v"})
	if err != nil {
		t.Fatalf("ParseArgs error: %v", err)
	}
	if opts.FramesPerBuffer != 512 {
		t.Errorf("FramesPerBuffer = %d, want 512", opts.FramesPerBuffer)
	}

	cfg := config.Default()
	opts.Apply(&cfg)
	if cfg.Audio.FramesPerBuffer != 512 || cfg.Audio.InputDevice != 2 {
		t.Errorf("Apply() audio = %+v", cfg.Audio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after -v: %v", err)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
}

func TestParseArgsVersion(t *testing.T) {
	opts, err := ParseArgs([]string{"--version"})
	if err != nil {
		t.Fatalf("ParseArgs error: %v", err)
	}
	if opts.Command != "" {
		t.Errorf("Command = %q, want none for --version", opts.Command)
	}
}
