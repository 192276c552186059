package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"video-converter/internal/converter"
	"video-converter/internal/logging"
	"video-converter/internal/planner"
	"video-converter/internal/startup"
	"video-converter/internal/transcoder"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	ffmpeg   string
	workDir  string
	envFile  string
	logLevel string
}

// pipeline is the conversion stack built from the environment and flags.
type pipeline struct {
	config  *startup.Config
	trans   *transcoder.Transcoder
	service *converter.Service
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "vidconv",
		Short:         "Convert video files between container formats",
		Long:          "vidconv runs the video converter's remux-or-reencode pipeline against local files.",
		Version:       startup.GetBuildInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := startup.LoadEnvFile(opts.envFile); err != nil {
				return err
			}
			logging.Configure(logging.Config{
				Level:  opts.logLevel,
				Format: logging.FormatConsole,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ffmpeg, "ffmpeg", "", "encoder binary (default $FFMPEG_PATH or ffmpeg)")
	flags.StringVar(&opts.workDir, "work-dir", "", "directory for temporary workspaces (default $WORK_DIR)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "environment file to load if present")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newConvertCmd(opts),
		newPlanCmd(opts),
		newFormatsCmd(opts),
		newCheckCmd(opts),
	)
	return root
}

// build reads the environment, applies flag overrides and wires the
// conversion service the same way the server does.
func (o *options) build() (*pipeline, error) {
	cfg, err := startup.FromEnv()
	if err != nil {
		return nil, err
	}
	if o.ffmpeg != "" {
		cfg.FFmpegPath = o.ffmpeg
	}
	if o.workDir != "" {
		abs, err := filepath.Abs(o.workDir)
		if err != nil {
			return nil, err
		}
		cfg.WorkDir = abs
	}

	trans := transcoder.New(cfg.TranscoderConfig())
	plan := planner.New(cfg.Catalog, cfg.PlannerOptions())
	svc := converter.New(cfg.Catalog, plan, trans, cfg.ConverterConfig())

	return &pipeline{config: cfg, trans: trans, service: svc}, nil
}
