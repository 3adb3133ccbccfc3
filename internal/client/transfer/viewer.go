package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

// ErrViewerClosed is returned by Show after Close.
var ErrViewerClosed = errors.New("transfer: viewer closed")

// Preview describes the preview currently held by a Viewer.
type Preview struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// Viewer holds at most one preview on disk. Each preview is a temp file
// that lives until the next Show, Release or Close.
type Viewer struct {
	mu      sync.Mutex
	dir     string
	current *Preview
	closed  bool
	logger  logging.Logger
}

// NewViewer returns a Viewer placing previews in dir (os.TempDir when empty).
func NewViewer(dir string, logger logging.Logger) *Viewer {
	return &Viewer{dir: dir, logger: logger.With("component", "viewer")}
}

// Show releases the previous preview and holds p as the new one. The
// payload body is always closed.
func (v *Viewer) Show(ctx context.Context, p *models.Payload) (Preview, error) {
	defer p.Close()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return Preview{}, ErrViewerClosed
	}
	v.releaseLocked(ctx)

	path, err := writeTemp(v.dir, "mycloud-preview-*"+filepath.Ext(p.Name), p)
	if err != nil {
		return Preview{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		_ = os.Remove(path)
		return Preview{}, err
	}

	v.current = &Preview{Path: path, Name: p.Name, ContentType: p.ContentType, Size: info.Size()}
	v.logger.Debug(ctx, "preview held", "path", path)
	return *v.current, nil
}

// Current returns the held preview, if any.
func (v *Viewer) Current() (Preview, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return Preview{}, false
	}
	return *v.current, true
}

// Release drops the held preview. Releasing with nothing held is a no-op.
func (v *Viewer) Release(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.releaseLocked(ctx)
}

// Close releases the held preview and refuses further Show calls. Only the
// first call has an effect.
func (v *Viewer) Close(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.releaseLocked(ctx)
}

func (v *Viewer) releaseLocked(ctx context.Context) {
	if v.current == nil {
		return
	}
	if err := os.Remove(v.current.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		v.logger.Warn(ctx, "failed to remove preview", "path", v.current.Path, "error", err)
	}
	v.current = nil
}
