// Package workitem persists work items and implements the pure list
// operations of the lifecycle engine: queries, status transitions and
// reconciliation of re-planned work with tracked runtime state.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/flock, std lib
//   - MUST NOT import: internal/ai, internal/cli, internal/cycle, internal/review
package workitem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/flock"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Store loads and saves the full ordered list of work items.
// There is no per-field API: callers mutate items in memory and save the
// whole snapshot.
type Store interface {
	Load(ctx context.Context) ([]*domain.WorkItem, error)
	Save(ctx context.Context, items []*domain.WorkItem) error
}

// FileStore keeps the list in one JSON file, or YAML when the path ends in
// .yaml or .yml.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path: %w", dlerrors.ErrEmptyValue)
	}
	return &FileStore{path: path}, nil
}

// Path returns the store file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the list. A missing file is an empty list.
func (s *FileStore) Load(ctx context.Context) ([]*domain.WorkItem, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(s.path) //#nosec G304 -- path comes from configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*domain.WorkItem{}, nil
		}
		return nil, fmt.Errorf("failed to read work items: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*domain.WorkItem{}, nil
	}

	var items []*domain.WorkItem
	if s.isYAML() {
		err = yaml.Unmarshal(data, &items)
	} else {
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.path, dlerrors.ErrStoreCorrupted, err)
	}

	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("%s: entry %d is null: %w", s.path, i, dlerrors.ErrStoreCorrupted)
		}
		normalize(it)
	}
	return items, nil
}

// Save replaces the stored list atomically under the store lock.
func (s *FileStore) Save(ctx context.Context, items []*domain.WorkItem) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := Validate(items); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if s.isYAML() {
		data, err = yaml.Marshal(items)
	} else {
		data, err = json.MarshalIndent(items, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode work items: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	lock, err := flock.Acquire(ctx, s.path+constants.LockSuffix, constants.LockTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	if err := atomicWrite(s.path, data); err != nil {
		return fmt.Errorf("failed to save work items: %w", err)
	}
	return nil
}

// Validate checks ids are present and unique and statuses are known.
func Validate(items []*domain.WorkItem) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it == nil || strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("work item %d id: %w", i, dlerrors.ErrEmptyValue)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%s: %w", it.ID, dlerrors.ErrDuplicateItemID)
		}
		seen[it.ID] = struct{}{}
		if !it.Status.IsValid() {
			return fmt.Errorf("%s has status %q: %w", it.ID, it.Status, dlerrors.ErrInvalidStatus)
		}
	}
	return nil
}

// normalize fills defaults for hand-edited stores.
func normalize(it *domain.WorkItem) {
	if it.Status == "" {
		it.Status = constants.StatusTodo
	}
	if it.AssociatedFiles == nil {
		it.AssociatedFiles = []string{}
	}
}

// atomicWrite writes data to a temp file, syncs it and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
