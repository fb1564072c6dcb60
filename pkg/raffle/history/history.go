package history

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/raffle/internal/fileutil"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
)

// DefaultExtension is the file type kept in the history directory.
const DefaultExtension = ".png"

// dirLocks holds one mutex per absolute directory path.
var dirLocks sync.Map

func lockFor(dir string) *sync.Mutex {
	key := dir
	if abs, err := filepath.Abs(dir); err == nil {
		key = abs
	}
	mu, _ := dirLocks.LoadOrStore(filepath.Clean(key), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Manager keeps a bounded set of recent images in a directory.
// Managers for the same directory share one lock, so concurrent Record
// calls never interleave a listing with another call's deletes.
type Manager struct {
	dir     string
	ext     string
	mu      *sync.Mutex
	now     func() time.Time
	entropy io.Reader
	logger  *slog.Logger
	remove  func(path string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithExtension changes the retained file extension (default ".png").
func WithExtension(ext string) Option {
	return func(m *Manager) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.ext = strings.ToLower(ext)
	}
}

// WithClock overrides the clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a manager for dir. The directory is created on first use.
func New(dir string, opts ...Option) *Manager {
	m := &Manager{
		dir:     dir,
		ext:     DefaultExtension,
		mu:      lockFor(dir),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
		logger:  slog.Default(),
		remove:  os.Remove,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the managed directory.
func (m *Manager) Dir() string { return m.dir }

// Result describes one Record call.
type Result struct {
	Saved   string   // path of the new file, empty if none was written
	Kept    []string // retained files, newest first
	Removed []string // files deleted by this call
	Failed  int      // deletes that failed
}

// Record optionally stores data as a new file, then trims the directory to the newest
// size files. Failing to create the directory returns an error and an
// empty result; failing to save or delete individual files is only logged.
func (m *Manager) Record(ctx context.Context, data []byte, size int) (Result, error) {
	var res Result
	if size < 1 {
		return res, fmt.Errorf("%w: history size must be at least 1, got %d", internalerr.ErrInvalidInput, size)
	}
	if err := m.ensureDir(); err != nil {
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if len(data) > 0 {
		path, err := m.save(data)
		if err != nil {
			m.logger.Warn("Error saving new history image", "dir", m.dir, "err", err)
		} else {
			res.Saved = path
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := m.scan()
	if err != nil {
		return res, fmt.Errorf("list history directory %s: %w", m.dir, err)
	}

	keep := files
	if len(files) > size {
		keep = files[:size]
		for _, f := range files[size:] {
			if err := m.remove(f.path); err != nil {
				m.logger.Warn("Error removing old history file", "path", f.path, "err", err)
				res.Failed++
				continue
			}
			res.Removed = append(res.Removed, f.path)
		}
		m.logger.Debug("History trimmed", "dir", m.dir, "found", len(files), "kept", size, "removed", len(res.Removed))
	}

	res.Kept = paths(keep)
	return res, nil
}

// RecordImage encodes img as PNG with the fastest compression and records it.
func (m *Manager) RecordImage(ctx context.Context, img image.Image, size int) (Result, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return Result{}, err
	}
	return m.Record(ctx, data, size)
}

// EncodePNG encodes img using png.BestSpeed.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// List returns the retained files, newest first, without trimming.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fileutil.IsDir(m.dir) {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := m.scan()
	if err != nil {
		return nil, fmt.Errorf("list history directory %s: %w", m.dir, err)
	}
	return paths(files), nil
}

// Export copies the retained files, newest first, into dest as
// preview_00.png, preview_01.png and so on. It returns the written paths.
func (m *Manager) Export(ctx context.Context, dest string) ([]string, error) {
	files, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(files))
	for i, src := range files {
		dst := filepath.Join(dest, fmt.Sprintf("preview_%02d%s", i, m.ext))
		ok, err := fileutil.CopyFile(src, dst)
		if err != nil {
			m.logger.Warn("Error exporting history file", "path", src, "err", err)
			continue
		}
		if ok {
			out = append(out, dst)
		}
	}
	return out, nil
}

func (m *Manager) ensureDir() error {
	if fileutil.IsDir(m.dir) {
		return nil
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		m.logger.Error("Cannot create history directory", "dir", m.dir, "err", err)
		return fmt.Errorf("create history directory %s: %w", m.dir, err)
	}
	m.logger.Info("Created history directory", "dir", m.dir)
	return nil
}

func (m *Manager) save(data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	id, err := ulid.New(ulid.Timestamp(now), m.entropy)
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}

	name := fmt.Sprintf("history_%s_%s%s", now.Format("02-01-2006_15-04-05.000000"), id, m.ext)
	path := filepath.Join(m.dir, name)
	if err := fileutil.WriteFileAtomicSameDir(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type entry struct {
	path    string
	modTime time.Time
}

// scan lists retained files newest first. Callers hold m.mu.
func (m *Manager) scan() ([]entry, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	files := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if strings.ToLower(filepath.Ext(de.Name())) != m.ext {
			continue
		}
		full := filepath.Join(m.dir, de.Name())
		info, err := de.Info()
		if err != nil {
			m.logger.Warn("Could not access history file during scan", "path", full, "err", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, entry{path: full, modTime: info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].path > files[j].path
	})
	return files, nil
}

func paths(files []entry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out
}
