// Package transfer owns the lifetime of downloaded bodies: saving them under
// a download directory and holding the single open preview.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/filex"
)

const fallbackName = "download"

// ErrShortBody is returned when fewer bytes arrive than the server announced.
var ErrShortBody = errors.New("transfer: body shorter than announced size")

// Save writes p into dir under name (p.Name when name is empty) and returns
// the final path. An existing file is never overwritten; "name (1).ext" and
// so on are tried instead. The payload body is always closed and the
// temporary file is always removed, including on failure.
func Save(dir, name string, p *models.Payload) (path string, err error) {
	defer p.Close()

	if name == "" {
		name = p.Name
	}
	name = filex.SafeName(name, fallbackName)

	dir, err = filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	tmp, err := writeTemp(dir, ".mycloud-*.part", p)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	path, err = filex.UniqueName(dir, name)
	if err != nil {
		return "", err
	}
	if err = os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}

// writeTemp copies the payload body into a new temp file in dir and returns
// its path. The file is removed if anything goes wrong.
func writeTemp(dir, pattern string, p *models.Payload) (string, error) {
	if p == nil || p.Body == nil {
		return "", errors.New("transfer: empty payload")
	}

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()

	n, err := io.Copy(f, p.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && p.Size >= 0 && n < p.Size {
		err = fmt.Errorf("%w: got %d of %d bytes", ErrShortBody, n, p.Size)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}
