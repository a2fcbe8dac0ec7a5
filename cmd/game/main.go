package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/peckplay/internal/config"
	"github.com/tomz197/peckplay/internal/logging"
	"github.com/tomz197/peckplay/internal/loop"
	"github.com/tomz197/peckplay/internal/sensor/mic"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// defaultLogFile is used for local play, where the terminal belongs to the game.
const defaultLogFile = "peckplay.log"

type flags struct {
	configPath         string
	detection          string
	game               string
	debug              bool
	soundThreshold     float64
	vibrationThreshold float64
	logFile            string
	logLevel           string
	mic                bool
	motion             bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "peckplay: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:           "peckplay",
		Short:         "Peck-driven stimulus games for corvids, in the terminal",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the playground in this terminal (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mic.ListDevices(cmd.OutOrStdout())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "peckplay", version)
		},
	}

	rootCmd.AddCommand(runCmd, devicesCmd, versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "",
		"Settings file (default: "+config.DefaultSettingsFile+" when present)")
	pf.StringVarP(&f.detection, "mode", "m", "",
		"Detection mode: TOUCH, SOUND, VIBRATION or MIXED")
	pf.StringVarP(&f.game, "game", "g", "",
		"Game mode: target, falling or ambient")
	pf.BoolVar(&f.debug, "debug", false,
		"Debug mode: taps always count and sensor readings are shown")
	pf.Float64Var(&f.soundThreshold, "sound-threshold", 0,
		"Normalized sound level that counts as a peck, (0,1]")
	pf.Float64Var(&f.vibrationThreshold, "vibration-threshold", 0,
		"|z| acceleration in m/s² that counts as a peck")
	pf.StringVar(&f.logFile, "log-file", "",
		"Log file (default: "+defaultLogFile+")")
	pf.StringVar(&f.logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	pf.BoolVar(&f.mic, "mic", false,
		"Enable the microphone at startup")
	pf.BoolVar(&f.motion, "motion", false,
		"Start the motion receiver at startup")

	return rootCmd
}

// applyFlags overrides the loaded settings with every flag that was set.
func applyFlags(cmd *cobra.Command, f flags, s *config.Settings) error {
	fs := cmd.Flags()
	if fs.Changed("mode") {
		s.Detection.Mode = f.detection
	}
	if fs.Changed("game") {
		s.Game.Mode = f.game
	}
	if fs.Changed("debug") {
		s.Detection.Debug = f.debug
	}
	if fs.Changed("sound-threshold") {
		s.Detection.SoundThreshold = f.soundThreshold
	}
	if fs.Changed("vibration-threshold") {
		s.Detection.VibrationThreshold = f.vibrationThreshold
	}
	if fs.Changed("log-file") {
		s.Log.File = f.logFile
	}
	if fs.Changed("log-level") {
		s.Log.Level = f.logLevel
	}
	if s.Log.File == "" {
		s.Log.File = defaultLogFile
	}
	return s.Validate()
}

func run(cmd *cobra.Command, f flags) error {
	settings, err := config.LoadSettings(f.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, f, settings); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Level: settings.Log.Level,
		File:  settings.Log.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	if len(settings.Overrides) > 0 {
		logger.Info("environment overrides applied", "vars", settings.Overrides)
	}

	host := loop.NewHost(settings, logger)
	defer func() {
		if err := host.Close(); err != nil {
			logger.Warn("closing sensors", "err", err)
		}
	}()
	if err := host.Enable(f.mic, f.motion); err != nil {
		logger.Warn("sensor unavailable at startup", "err", err)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	reader := bufio.NewReader(os.Stdin)
	if err := loop.Run(ctx, reader, os.Stdout, host); err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	return nil
}
