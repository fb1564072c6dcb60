package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newPickCmd(opts *globalOptions) *cobra.Command {
	var (
		seed              uint64
		useGeneral        bool
		useQuestionable   bool
		useSensitive      bool
		useExplicit       bool
		mustInclude       string
		negative          string
		filterOut         string
		excludeTaglists   string
		excludeCategories string
		showDebug         bool
		asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Draw one taglist and print the filtered tags",
		Example: `  # Draw with the configured defaults
  raffle pick --seed 42

  # Only general taglists that contain 1girl, keep every category
  raffle pick --seed 7 --general --sensitive=false --explicit=false \
    --must-include 1girl --exclude-categories ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, comp, err := opts.loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			req := cfg.Defaults.Request(seed)
			flags := cmd.Flags()
			if flags.Changed("general") {
				req.UseGeneral = useGeneral
			}
			if flags.Changed("questionable") {
				req.UseQuestionable = useQuestionable
			}
			if flags.Changed("sensitive") {
				req.UseSensitive = useSensitive
			}
			if flags.Changed("explicit") {
				req.UseExplicit = useExplicit
			}
			if flags.Changed("must-include") {
				req.MustInclude = mustInclude
			}
			if flags.Changed("filter-out") {
				req.FilterOut = filterOut
			}
			if flags.Changed("exclude-taglists") {
				req.ExcludeTaglists = excludeTaglists
			}
			if flags.Changed("exclude-categories") {
				req.ExcludeCategories = excludeCategories
			}
			req.NegativePrompt = negative

			res, err := comp.Raffle(slog.Default()).Process(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"seed":       seed,
					"filtered":   res.Filtered,
					"unfiltered": res.Unfiltered,
					"source":     res.Selected.Source,
					"pool_size":  res.PoolSize,
				})
			}

			fmt.Fprintln(out, res.Filtered)
			if showDebug {
				fmt.Fprintf(out, "\nUnfiltered tags:\n%s\n\n%s\n", res.Unfiltered, res.Debug)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint64VarP(&seed, "seed", "s", 0, "Seed used to select the taglist")
	f.BoolVar(&useGeneral, "general", false, "Draw from general taglists")
	f.BoolVar(&useQuestionable, "questionable", false, "Draw from questionable taglists")
	f.BoolVar(&useSensitive, "sensitive", false, "Draw from sensitive taglists")
	f.BoolVar(&useExplicit, "explicit", false, "Draw from explicit taglists")
	f.StringVar(&mustInclude, "must-include", "", "Only taglists containing all of these tags")
	f.StringVar(&negative, "negative", "", "Tags removed from the output (negative prompt)")
	f.StringVar(&filterOut, "filter-out", "", "Additional tags removed from the output")
	f.StringVar(&excludeTaglists, "exclude-taglists", "", "Skip taglists containing any of these tags")
	f.StringVar(&excludeCategories, "exclude-categories", "", "Categories removed from the output")
	f.BoolVar(&showDebug, "debug", false, "Print the unfiltered taglist and debug info")
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
