package workitem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func sampleItems() []*domain.WorkItem {
	return []*domain.WorkItem{
		{
			ID: "BE-1", Title: "Login", Description: "POST /login", Category: "backend",
			AcceptanceCriteria: "returns token", SourceReference: "PRD 2.1",
			Status: constants.StatusInReview, AssociatedFiles: []string{"src/Login.java", "src/LoginTest.java"},
			Feedback: "",
		},
		{
			ID: "FE-1", Title: "Login page", Category: "frontend",
			Status: constants.StatusTodo, AssociatedFiles: []string{}, Feedback: "reviewer rejected: no form validation",
		},
	}
}

func TestFileStore_LoadMissingIsEmpty(t *testing.T) {
	t.Parallel()
	store, err := workitem.NewFileStore(filepath.Join(t.TempDir(), "docs", "tasks.json"))
	require.NoError(t, err)

	items, err := store.Load(testContext())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFileStore_SaveLoad(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"tasks.json", "tasks.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "docs", name)
			store, err := workitem.NewFileStore(path)
			require.NoError(t, err)

			require.NoError(t, store.Save(testContext(), sampleItems()))
			loaded, err := store.Load(testContext())
			require.NoError(t, err)

			if diff := cmp.Diff(sampleItems(), loaded); diff != "" {
				t.Errorf("items changed through save/load (-want +got):\n%s", diff)
			}

			_, err = os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
		})
	}
}

func TestFileStore_JSONFieldNames(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json")
	store, err := workitem.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(testContext(), sampleItems()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, field := range []string{`"acceptance_criteria"`, `"source_reference"`, `"associated_files"`, `"status": "review"`} {
		assert.Contains(t, string(data), field)
	}
}

func TestFileStore_Corrupted(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := workitem.NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Load(testContext())
	require.ErrorIs(t, err, dlerrors.ErrStoreCorrupted)
}

func TestFileStore_NullEntryIsCorrupted(t *testing.T) {
	t.Parallel()

	for name, content := range map[string]string{
		"tasks.json": `[{"id":"A","status":"todo"}, null]`,
		"tasks.yaml": "- id: A\n  status: todo\n- null\n",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			store, err := workitem.NewFileStore(path)
			require.NoError(t, err)
			var items []*domain.WorkItem
			require.NotPanics(t, func() { items, err = store.Load(testContext()) })
			require.ErrorIs(t, err, dlerrors.ErrStoreCorrupted)
			assert.Nil(t, items)
		})
	}
}

func TestFileStore_NormalizesHandEditedItems(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"T1","title":"x"}]`), 0o600))

	store, err := workitem.NewFileStore(path)
	require.NoError(t, err)
	items, err := store.Load(testContext())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, constants.StatusTodo, items[0].Status)
	assert.NotNil(t, items[0].AssociatedFiles)
}

func TestFileStore_SaveRejectsInvalidLists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []*domain.WorkItem
		want  error
	}{
		{"duplicate id", []*domain.WorkItem{{ID: "A", Status: constants.StatusTodo}, {ID: "A", Status: constants.StatusDone}}, dlerrors.ErrDuplicateItemID},
		{"empty id", []*domain.WorkItem{{ID: " ", Status: constants.StatusTodo}}, dlerrors.ErrEmptyValue},
		{"unknown status", []*domain.WorkItem{{ID: "A", Status: "blocked"}}, dlerrors.ErrInvalidStatus},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "tasks.json")
			store, err := workitem.NewFileStore(path)
			require.NoError(t, err)

			require.ErrorIs(t, store.Save(testContext(), tc.items), tc.want)
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	t.Parallel()
	store, err := workitem.NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testContext())
	cancel()
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Save(ctx, nil), context.Canceled)
}

func TestNewFileStore_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := workitem.NewFileStore("")
	require.ErrorIs(t, err, dlerrors.ErrEmptyValue)
}
