package gate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tinoosan/draingate/internal/errs"
)

// Marker is a filesystem-backed maintenance flag: presence of the file means
// maintenance is on. It only coordinates processes sharing a filesystem, which
// makes it a local-development tier below any shared store.
type Marker struct {
	path string
}

// NewMarker returns a marker provider for the given path.
func NewMarker(path string) *Marker {
	return &Marker{path: path}
}

func (m *Marker) Name() string { return "marker:" + m.path }

// Active reports whether the marker file exists.
func (m *Marker) Active(_ context.Context) (bool, error) {
	_, err := os.Stat(m.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %v", errs.ErrStateUnavailable, m.path, err)
}

// SetActive creates or removes the marker file.
func (m *Marker) SetActive(_ context.Context, active bool) error {
	if active {
		f, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("%w: create %s: %v", errs.ErrToggleFailed, m.path, err)
		}
		return f.Close()
	}
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", errs.ErrToggleFailed, m.path, err)
	}
	return nil
}

// Static is a fixed-value provider, built once from configuration. It sits at
// the bottom of the chain so an environment-driven default still applies when
// no writable tier is configured.
type Static bool

func (s Static) Name() string { return "static" }

func (s Static) Active(_ context.Context) (bool, error) { return bool(s), nil }
