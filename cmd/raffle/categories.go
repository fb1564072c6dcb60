package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/raffle/pkg/raffle/category"
)

func newCategoriesCmd(opts *globalOptions) *cobra.Command {
	var counts bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the tag categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !counts {
				for _, name := range category.All() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			_, comp, err := opts.loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			perCategory := make(map[string]int)
			for _, tag := range comp.Table.Tags() {
				if cat, ok := comp.Table.Lookup(tag); ok {
					perCategory[cat]++
				}
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, name := range category.All() {
				fmt.Fprintf(tw, "%s\t%d\n", name, perCategory[name])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&counts, "counts", false, "Show how many loaded tags fall in each category")

	return cmd
}
