package changeset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Applier writes change sets below Root.
type Applier struct {
	Root string
}

// NewApplier creates an Applier rooted at root.
func NewApplier(root string) *Applier {
	return &Applier{Root: root}
}

// Apply validates every path, then removes deletions and writes creations.
// Nothing is touched when any path is unsafe. Deleting a missing file is not
// an error. The returned slice lists created paths in change-set order.
func (a *Applier) Apply(ctx context.Context, cs *domain.ChangeSet) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx)

	for _, p := range cs.Deletions {
		if _, err := a.resolve(p); err != nil {
			return nil, err
		}
	}
	for _, f := range cs.Creations {
		if _, err := a.resolve(f.Path); err != nil {
			return nil, err
		}
	}

	for _, p := range cs.Deletions {
		abs, _ := a.resolve(p)
		err := os.Remove(abs)
		switch {
		case err == nil:
			log.Info().Str("path", p).Msg("deleted file")
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", p).Msg("delete skipped, file absent")
		default:
			return nil, fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}

	written := make([]string, 0, len(cs.Creations))
	for _, f := range cs.Creations {
		abs, _ := a.resolve(f.Path)
		if err := os.MkdirAll(filepath.Dir(abs), dirPerm); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(abs, []byte(f.Content), filePerm); err != nil { //#nosec G306 -- generated source files are world-readable
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		log.Info().Str("path", f.Path).Int("bytes", len(f.Content)).Msg("wrote file")
		written = append(written, f.Path)
	}
	return written, nil
}

// resolve maps a change-set path to an absolute path under Root.
func (a *Applier) resolve(p string) (string, error) {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%q: %w", p, dlerrors.ErrPathTraversal)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", p, dlerrors.ErrPathTraversal)
	}
	return filepath.Join(a.Root, clean), nil
}
