package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
)

// ParquetRow is the row layout ParquetSource expects: one taglist per row.
type ParquetRow struct {
	Taglist string `parquet:"taglist"`
}

// ParquetSource reads taglists from the "taglist" column of a parquet file.
type ParquetSource struct {
	name string
	path string
}

// NewParquetSource creates a parquet-backed source.
func NewParquetSource(name, path string) *ParquetSource {
	return &ParquetSource{name: name, path: path}
}

// Name returns the source identifier.
func (s *ParquetSource) Name() string { return s.name }

// Scan calls fn for every row in file order.
func (s *ParquetSource) Scan(ctx context.Context, fn func(line string) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: taglist file not found at %s", internalerr.ErrMissingResource, s.path)
		}
		return fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet taglist source opened", "path", s.path, "num_rows", pf.NumRows())

	reader := parquet.NewGenericReader[ParquetRow](pf)
	defer reader.Close()

	rows := make([]ParquetRow, 128)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := reader.Read(rows)
		for i := 0; i < n; i++ {
			if err := fn(rows[i].Taglist); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read parquet %s: %w", s.path, readErr)
		}
	}
}
