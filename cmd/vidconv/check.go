package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"video-converter/internal/workspace"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the encoder and work directory a server would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.build()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var failed bool

			if err := p.trans.Available(); err != nil {
				fmt.Fprintf(out, "[FAIL] encoder: %v\n", err)
				failed = true
			} else {
				fmt.Fprintf(out, "[OK]   encoder: %s\n", p.trans.Binary())
			}

			ws, err := workspace.New(p.config.WorkDir)
			if err != nil {
				fmt.Fprintf(out, "[FAIL] work dir: %v\n", err)
				failed = true
			} else {
				_ = ws.Release()
				fmt.Fprintf(out, "[OK]   work dir: %s\n", p.config.WorkDir)
			}

			fmt.Fprintf(out, "[OK]   formats: %d supported\n", len(p.config.Catalog.IDs()))

			if failed {
				return errors.New("check failed")
			}
			return nil
		},
	}
}
