package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/raffle/pkg/raffle/weights"
)

func newWeightsCmd(opts *globalOptions) *cobra.Command {
	var (
		adjust   string
		preserve bool
		report   bool
	)

	cmd := &cobra.Command{
		Use:   "weights [tags]",
		Short: "Adjust tag weights by category",
		Long: `Rewrites the weight of every tag whose category has an adjustment.
Tags are read from the argument, or from stdin when none is given.`,
		Example: `  raffle weights "1girl, (smile:1.1), standing" --adjust "(poses:1.3),(expressions_and_mental_state:0.8)"`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adj, err := weights.ParseAdjustments(adjust)
			if err != nil {
				return err
			}

			input := ""
			if len(args) == 1 {
				input = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read tags: %w", err)
				}
				input = strings.TrimSpace(string(data))
			}

			_, comp, err := opts.loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			adjuster := &weights.Adjuster{Table: comp.Table}
			tagsOut, debug := adjuster.Adjust(input, adj, preserve)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tagsOut)
			if report {
				fmt.Fprintf(out, "\n%s\n", debug)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&adjust, "adjust", "a", "", "Comma-separated (category:strength) adjustments")
	cmd.Flags().BoolVar(&preserve, "preserve", true, "Keep weights already present on tags")
	cmd.Flags().BoolVar(&report, "report", false, "Print the per-tag adjustment report")

	return cmd
}
