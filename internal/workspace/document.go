package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

// ReadDocument returns the content of a project document. A missing file is
// reported with ok=false and no error.
func ReadDocument(path string) (content string, ok bool, err error) {
	if path == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}

// WriteDocument writes content to path, creating parent directories.
func WriteDocument(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), constants.FilePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
