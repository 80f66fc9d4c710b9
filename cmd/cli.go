// SPDX-License-Identifier: MIT
package cmd

import (
	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/pkg/bitint"
	"tuner/pkg/build"

	"github.com/spf13/cobra"
)

// Commands selected on the command line.
const (
	CommandRun     = "run"
	CommandList    = "list"
	CommandPick    = "pick"
	CommandAnalyze = "analyze"
)

// Options holds the parsed command line. Command is empty when cobra
// handled the invocation itself (help or version).
type Options struct {
	Command    string
	ConfigPath string
	File       string // WAV file for CommandAnalyze.

	DeviceID        int
	SampleRate      float64
	FramesPerBuffer int
	WindowSize      int
	Verbose         bool

	changed map[string]bool
}

// Apply overrides cfg with every flag that was set explicitly.
func (o *Options) Apply(cfg *config.Config) {
	if o.changed["device"] {
		cfg.Audio.InputDevice = o.DeviceID
	}
	if o.changed["sample-rate"] {
		cfg.Audio.SampleRate = o.SampleRate
	}
	if o.changed["frames-per-buffer"] {
		cfg.Audio.FramesPerBuffer = o.FramesPerBuffer
	}
	if o.changed["window"] {
		cfg.Audio.WindowSize = o.WindowSize
	}
	if o.Verbose {
		cfg.LogLevel = applog.LevelDebug.String()
	}
}

// ParseArgs parses args (without the program name) into Options.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{changed: make(map[string]bool)}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			for _, name := range []string{"device", "sample-rate", "frames-per-buffer", "window"} {
				options.changed[name] = cmd.Flags().Changed(name)
			}
			if options.changed["frames-per-buffer"] && !bitint.IsPowerOfTwo(options.FramesPerBuffer) {
				rounded := bitint.NextPowerOfTwo(options.FramesPerBuffer)
				applog.Warnf("CLI: Frames per buffer %d is not a power of two, using %d",
					options.FramesPerBuffer, rounded)
				options.FramesPerBuffer = rounded
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandRun
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandList
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "pick",
		Short: "Choose an input device and sample rate interactively, then start tuning",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandPick
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "analyze FILE.wav",
		Short: "Run the tuner over a PCM WAV file and print every display change",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = CommandAnalyze
			options.File = args[0]
		},
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.ConfigPath, "config", "",
		"Path to a YAML configuration file (default ./"+config.DefaultPath+" if present)")

	// Audio Device Configuration
	flags.IntVarP(&options.DeviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.Float64VarP(&options.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVarP(&options.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Frames between analysis blocks (rounded up to a power of two)")
	flags.IntVarP(&options.WindowSize, "window", "w", config.DefaultWindowSize,
		"Samples per analysis block")

	// Debug Configuration
	flags.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")

	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}
