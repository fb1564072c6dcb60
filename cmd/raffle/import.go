package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/raffle/internal/fileutil"
	"github.com/cognicore/raffle/pkg/raffle"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/pool"
	"github.com/cognicore/raffle/pkg/raffle/store"
	"github.com/cognicore/raffle/pkg/raffle/store/sqlite"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the lists directory into a SQLite database",
		Long: `Reads the categorized tags and every configured taglist file (text or
parquet) from the lists directory and stores them in a SQLite database.
Re-importing a source replaces its rows. Missing taglist files are skipped.`,
		Example: `  raffle import --database raffle.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if database == "" {
				database = cfg.Database
			}
			if database == "" {
				return fmt.Errorf("%w: no database given", internalerr.ErrInvalidConfig)
			}

			catPath := cfg.ListPath(cfg.CategorizedTags)
			f, err := os.Open(catPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("%w: categorized tags not found: %s", internalerr.ErrMissingResource, catPath)
				}
				return err
			}
			defer f.Close()

			st, err := sqlite.OpenSQLite(ctx, database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			n, err := store.ImportCategoriesFrom(ctx, st, f)
			if err != nil {
				return err
			}
			slog.Info("Imported categorized tags", "path", catPath, "entries", n)

			for _, rating := range raffle.Ratings {
				name := cfg.Sources.File(rating)
				if name == "" {
					continue
				}
				path := cfg.ListPath(name)
				if !fileutil.Exists(path) {
					slog.Warn("Taglist file not found, skipping", "rating", rating, "path", path)
					continue
				}

				var lines []string
				err := pool.Open(string(rating), path).Scan(ctx, func(line string) error {
					lines = append(lines, line)
					return nil
				})
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}

				n, err := st.ImportTaglists(ctx, string(rating), lines)
				if err != nil {
					return err
				}
				slog.Info("Imported taglists", "rating", rating, "path", path, "lines", n)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", rating, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&database, "database", "d", "", "SQLite database path (defaults to the configured database)")

	return cmd
}
