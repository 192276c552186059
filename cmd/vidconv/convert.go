package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"video-converter/internal/converter"
	"video-converter/internal/outcome"
)

func newConvertCmd(opts *options) *cobra.Command {
	var (
		target string
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "convert INPUT",
		Short: "Convert a local file to another format",
		Example: `  vidconv convert clip.mov --to mp4
  vidconv convert clip.mkv --to webm -o out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.build()
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			req := converter.Request{
				Filename:     filepath.Base(args[0]),
				Body:         in,
				TargetFormat: target,
			}

			var written string
			deliver := func(_ context.Context, art converter.Artifact) error {
				dst, err := destination(output, art.Name)
				if err != nil {
					return err
				}
				if !force {
					if _, err := os.Stat(dst); err == nil {
						return fmt.Errorf("%s already exists (use --force to replace it)", dst)
					}
				}
				if err := copyAtomic(art.Path, dst); err != nil {
					return err
				}
				written = dst
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %s)\n", args[0], dst, art.Strategy, formatSize(art.Size))
				return nil
			}

			if err := p.service.Convert(cmd.Context(), req, deliver); err != nil {
				return describe(err)
			}
			if written == "" {
				return errors.New("conversion produced no output")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "target format ID (see `vidconv formats`)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: current directory)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing output file")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// destination resolves the -o flag: empty means the working directory, an
// existing directory or a trailing separator receives the suggested name.
func destination(output, name string) (string, error) {
	if output == "" {
		return name, nil
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name), nil
	}
	if os.IsPathSeparator(output[len(output)-1]) {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return "", err
		}
		return filepath.Join(output, name), nil
	}
	return output, nil
}

// copyAtomic copies src to dst so that dst either keeps its old content or
// holds the complete new file.
func copyAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	pf, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer pf.Cleanup() //nolint:errcheck // no-op after CloseAtomicallyReplace

	if _, err := io.Copy(pf, in); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return pf.CloseAtomicallyReplace()
}

// describe renders conversion failures with the encoder diagnostic, which
// the HTTP surface only returns as details.
func describe(err error) error {
	var oe *outcome.Error
	if !errors.As(err, &oe) {
		return err
	}
	if oe.Diagnostic != "" {
		return fmt.Errorf("%s (%s): %s", oe.Message, oe.Kind, oe.Diagnostic)
	}
	return fmt.Errorf("%s (%s)", oe.Message, oe.Kind)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
