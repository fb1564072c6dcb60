package pool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
)

// maxLineSize bounds a single taglist line.
const maxLineSize = 10 * 1024 * 1024

// checkEvery is how many lines are read between context checks.
const checkEvery = 4096

// Source streams raw taglist lines in file order.
type Source interface {
	Name() string
	Scan(ctx context.Context, fn func(line string) error) error
}

// Open returns a Source for path, picking the reader by extension.
// ".parquet" files are read with ParquetSource, anything else as text.
func Open(name, path string) Source {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return &ParquetSource{name: name, path: path}
	}
	return &FileSource{name: name, path: path}
}

// FileSource reads one taglist per line from a text file.
type FileSource struct {
	name string
	path string
}

// NewFileSource creates a text source.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

// Name returns the source identifier.
func (s *FileSource) Name() string { return s.name }

// Scan calls fn for every line of the file, untrimmed.
func (s *FileSource) Scan(ctx context.Context, fn func(line string) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: taglist file not found at %s", internalerr.ErrMissingResource, s.path)
		}
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	return nil
}

// Lines is an in-memory Source, mostly useful in tests.
type Lines struct {
	ID      string
	Entries []string
}

// Name returns the source identifier.
func (l *Lines) Name() string { return l.ID }

// Scan calls fn for every entry.
func (l *Lines) Scan(ctx context.Context, fn func(line string) error) error {
	for _, line := range l.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}
