package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/models"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// rootLocks serializes writers that target the same project root so the
// last writer still wins file by file.
var rootLocks sync.Map // map[string]*sync.Mutex

// WriteError identifies the path on which a filesystem operation failed.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer persists placed artifacts under one project root.
type Writer struct {
	root   string
	dryRun bool
	logger *zap.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithDryRun makes the writer report intended actions without touching disk.
func WithDryRun(dryRun bool) Option {
	return func(w *Writer) { w.dryRun = dryRun }
}

// WithLogger sets the logger used for per-file messages.
func WithLogger(l *zap.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter creates a writer for root. The root itself is created lazily on
// the first write.
func NewWriter(root string, opts ...Option) *Writer {
	w := &Writer{root: filepath.Clean(root), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Root returns the project root the writer is bound to.
func (w *Writer) Root() string { return w.root }

// DryRun reports whether the writer only simulates writes.
func (w *Writer) DryRun() bool { return w.dryRun }

// Write persists artifacts sequentially in input order, creating missing
// parent directories and overwriting existing files. The first failure stops
// the batch; files written before it stay on disk.
func (w *Writer) Write(arts []models.PlacedArtifact) ([]models.WrittenFile, error) {
	mu := w.lock()
	mu.Lock()
	defer mu.Unlock()

	written := make([]models.WrittenFile, 0, len(arts))
	for _, a := range arts {
		dir := filepath.Dir(a.Path)
		if w.dryRun {
			w.logger.Info("(dry-run) would ensure folder", zap.String("dir", dir))
			w.logger.Info("(dry-run) would save file", zap.String("path", a.Path), zap.Int("bytes", len(a.Content)))
			written = append(written, models.WrittenFile{AbsolutePath: a.Path, DryRun: true})
			continue
		}
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return written, &WriteError{Op: "mkdir", Path: dir, Err: err}
		}
		if err := os.WriteFile(a.Path, []byte(a.Content), filePerm); err != nil {
			return written, &WriteError{Op: "write", Path: a.Path, Err: err}
		}
		w.logger.Debug("saved file", zap.String("path", a.Path), zap.Int("bytes", len(a.Content)))
		written = append(written, models.WrittenFile{AbsolutePath: a.Path})
	}
	return written, nil
}

func (w *Writer) lock() *sync.Mutex {
	mu, _ := rootLocks.LoadOrStore(w.root, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
