package planner_test

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
	"github.com/wliublackruvy/agent-based-dev/internal/planner"
	"github.com/wliublackruvy/agent-based-dev/internal/prompts"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

type call struct {
	role string
	user string
	json bool
}

// roleGenerator answers each role with a fixed text.
type roleGenerator struct {
	answers map[string]string
	calls   []call
}

func (g *roleGenerator) Generate(_ context.Context, role, _, user string) (string, error) {
	g.calls = append(g.calls, call{role: role, user: user})
	return g.answers[role], nil
}

func (g *roleGenerator) GenerateJSON(_ context.Context, role, _, user string) (string, error) {
	g.calls = append(g.calls, call{role: role, user: user, json: true})
	return g.answers[role], nil
}

type fixture struct {
	root    string
	store   *workitem.FileStore
	planner *planner.Planner
	gen     *roleGenerator
}

func newFixture(t *testing.T, answers map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := workitem.NewFileStore(filepath.Join(root, "docs", "tasks.json"))
	require.NoError(t, err)
	gen := &roleGenerator{answers: answers}
	paths := planner.Paths{
		Requirements: filepath.Join(root, "docs", "PRD.md"),
		DesignPath: func(category string) string {
			return filepath.Join(root, "docs", "design", category+".md")
		},
	}
	return &fixture{
		root:    root,
		store:   store,
		gen:     gen,
		planner: planner.New(gen, prompts.NewLibrary(""), store, paths),
	}
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestPlanner_Design_BackendFirstAndReferenced(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		constants.RoleArchitectBackend:  "# Backend\nPOST /orders",
		constants.RoleArchitectFrontend: "```markdown\n# Frontend\nOrder form\n```",
	})
	f.write(t, "docs/PRD.md", "Users place orders.")

	results, err := f.planner.Design(testContext(), []string{constants.CategoryFrontend, constants.CategoryBackend})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, constants.CategoryBackend, results[0].Category)
	assert.False(t, results[0].Updated)
	assert.Equal(t, "# Backend\nPOST /orders\n", f.read(t, "docs/design/backend.md"))
	assert.Equal(t, "# Frontend\nOrder form\n", f.read(t, "docs/design/frontend.md"))

	require.Len(t, f.gen.calls, 2)
	assert.Equal(t, constants.RoleArchitectBackend, f.gen.calls[0].role)
	assert.NotContains(t, f.gen.calls[0].user, "BACKEND API REFERENCE")
	assert.Contains(t, f.gen.calls[1].user, "BACKEND API REFERENCE")
	assert.Contains(t, f.gen.calls[1].user, "POST /orders")
}

func TestPlanner_Design_UpdatesExisting(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{constants.RoleArchitectBackend: "v2"})
	f.write(t, "docs/PRD.md", "reqs")
	f.write(t, "docs/design/backend.md", "v1")

	results, err := f.planner.Design(testContext(), []string{constants.CategoryBackend})
	require.NoError(t, err)
	assert.True(t, results[0].Updated)
	assert.Contains(t, f.gen.calls[0].user, "EXISTING DESIGN DOCUMENT:\nv1")
}

func TestPlanner_Design_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := f.planner.Design(testContext(), nil)
	require.ErrorIs(t, err, dlerrors.ErrRequirementsMissing)

	f.write(t, "docs/PRD.md", "reqs")
	_, err = f.planner.Design(testContext(), []string{"mobile"})
	require.ErrorIs(t, err, dlerrors.ErrInvalidArgument)
	assert.Empty(t, f.gen.calls)
}

func TestPlanner_Sync_ReconcilesScope(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{
		constants.RoleTaskBroker: "Here you go:\n```json\n" +
			`{"tasks":[{"id":"BE-002","title":"Orders v2","description":"d"},{"id":"BE-003","title":"Refunds","description":"r"}]}` +
			"\n```",
	})
	f.write(t, "docs/design/backend.md", "# Backend")
	require.NoError(t, f.store.Save(testContext(), []*domain.WorkItem{
		{ID: "FE-001", Title: "Form", Category: "frontend", Status: constants.StatusDone},
		{ID: "BE-001", Title: "Users", Category: "backend", Status: constants.StatusDone},
		{ID: "BE-002", Title: "Orders", Category: "backend", Status: constants.StatusInReview, AssociatedFiles: []string{"orders.go"}},
	}))

	report, err := f.planner.Sync(testContext(), constants.CategoryBackend)
	require.NoError(t, err)

	assert.Equal(t, []string{"BE-003"}, report.Added)
	assert.Equal(t, []string{"BE-002"}, report.Kept)
	assert.Equal(t, []string{"BE-001"}, report.Dropped)
	assert.Equal(t, 3, report.Total)

	items, err := f.store.Load(testContext())
	require.NoError(t, err)
	want := []*domain.WorkItem{
		{ID: "FE-001", Title: "Form", Category: "frontend", Status: constants.StatusDone, AssociatedFiles: []string{}},
		{ID: "BE-002", Title: "Orders v2", Description: "d", Category: "backend", Status: constants.StatusInReview, AssociatedFiles: []string{"orders.go"}},
		{ID: "BE-003", Title: "Refunds", Description: "r", Category: "backend", Status: constants.StatusTodo, AssociatedFiles: []string{}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("stored items mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, f.gen.calls, 1)
	assert.True(t, f.gen.calls[0].json)
	assert.Contains(t, f.gen.calls[0].user, "CATEGORY: BACKEND")
	assert.Contains(t, f.gen.calls[0].user, `"id": "BE-002"`)
	assert.NotContains(t, f.gen.calls[0].user, "FE-001")
}

func TestPlanner_Sync_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string]string{constants.RoleTaskBroker: "I could not plan this."})

	_, err := f.planner.Sync(testContext(), constants.CategoryBackend)
	require.ErrorIs(t, err, dlerrors.ErrRequirementsMissing)

	f.write(t, "docs/design/backend.md", "# Backend")
	_, err = f.planner.Sync(testContext(), constants.CategoryBackend)
	require.ErrorIs(t, err, dlerrors.ErrInvalidPlan)

	_, err = f.planner.Sync(testContext(), "")
	require.ErrorIs(t, err, dlerrors.ErrEmptyValue)
}

func TestPlanner_Import_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	plan := []byte("- id: A\n  title: first\n- id: B\n  title: second\n")
	f.write(t, "plan.yaml", string(plan))

	first, err := f.planner.ImportFile(testContext(), filepath.Join(f.root, "plan.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, first.Added)

	items, err := f.store.Load(testContext())
	require.NoError(t, err)
	items[0].Status = constants.StatusDone
	items[0].Feedback = "tests passed"
	require.NoError(t, f.store.Save(testContext(), items))

	second, err := f.planner.Import(testContext(), plan, nil)
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.Empty(t, second.Dropped)
	assert.Equal(t, []string{"A", "B"}, second.Kept)

	after, err := f.store.Load(testContext())
	require.NoError(t, err)
	if diff := cmp.Diff(items, after); diff != "" {
		t.Errorf("re-import changed items (-before +after):\n%s", diff)
	}
}

func TestPlanner_ImportFile_Missing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := f.planner.ImportFile(testContext(), filepath.Join(f.root, "nope.json"), nil)
	require.Error(t, err)
}
