package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/raffle/pkg/raffle/history"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		imagePath string
		size      int
		exportDir string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Record an image in the history folder and trim old entries",
		Example: `  # Save a new image and keep the newest 9
  raffle history --image out.png

  # Export the current history as preview_00.png, preview_01.png, ...
  raffle history --export ./previews`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				size = cfg.History.Size
			}

			var data []byte
			if imagePath != "" {
				data, err = os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
			}

			mgr := history.New(cfg.History.Dir, history.WithLogger(slog.Default()))
			res, err := mgr.Record(cmd.Context(), data, size)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Saved != "" {
				fmt.Fprintf(out, "saved %s\n", res.Saved)
			}
			for _, p := range res.Removed {
				fmt.Fprintf(out, "removed %s\n", p)
			}
			for _, p := range res.Kept {
				fmt.Fprintln(out, p)
			}

			if exportDir != "" {
				if err := os.MkdirAll(exportDir, 0755); err != nil {
					return fmt.Errorf("create export dir: %w", err)
				}
				written, err := mgr.Export(cmd.Context(), exportDir)
				if err != nil {
					return err
				}
				slog.Info("History exported", "dir", exportDir, "files", len(written))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Image file to add to the history")
	cmd.Flags().IntVarP(&size, "size", "n", 9, "Number of images to keep")
	cmd.Flags().StringVar(&exportDir, "export", "", "Copy the kept images into this directory")

	return cmd
}
