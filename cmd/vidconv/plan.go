package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCmd(opts *options) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "plan FILENAME",
		Short: "Show the encoder command a conversion would run",
		Long: "plan prints the strategy and encoder command for converting a file with the given name.\n" +
			"Nothing is read or executed; the file does not need to exist.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.build()
			if err != nil {
				return err
			}

			plan, err := p.service.Plan(args[0], target)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "strategy: %s\n", plan.Strategy)
			if plan.VideoCodec != "" {
				fmt.Fprintf(out, "codecs:   %s / %s\n", plan.VideoCodec, plan.AudioCodec)
			}
			fmt.Fprintf(out, "output:   %s\n", plan.OutputName)
			fmt.Fprintf(out, "command:  %s\n", shellJoin(append([]string{p.trans.Binary()}, plan.Args()...)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "target format ID")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// shellJoin quotes arguments that a POSIX shell would split or expand.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$`*?[]{}()<>|&;#~") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
