package workitem_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

func planned(ids ...string) []*domain.WorkItem {
	out := make([]*domain.WorkItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.WorkItem{ID: id, Title: "title " + id, Description: "desc " + id, Category: "backend"})
	}
	return out
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	current := []*domain.WorkItem{
		{ID: "A", Title: "old", Status: constants.StatusDone, AssociatedFiles: []string{"a.go"}, Feedback: "tests passed"},
		{ID: "X", Title: "gone", Status: constants.StatusTodo},
	}
	plan := planned("A", "B")

	once := workitem.Reconcile(current, plan)
	twice := workitem.Reconcile(once, plan)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("reconcile is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestReconcile_PreservesRuntimeState(t *testing.T) {
	t.Parallel()

	current := []*domain.WorkItem{{
		ID: "T1", Title: "old title", Description: "old", Status: constants.StatusInReview,
		AssociatedFiles: []string{"a.py", "test_a.py"}, Feedback: "keep me",
	}}
	plan := []*domain.WorkItem{{ID: "T1", Title: "new title", Description: "new", Category: "backend"}}

	got := workitem.Reconcile(current, plan)
	require.Len(t, got, 1)
	want := &domain.WorkItem{
		ID: "T1", Title: "new title", Description: "new", Category: "backend",
		Status: constants.StatusInReview, AssociatedFiles: []string{"a.py", "test_a.py"}, Feedback: "keep me",
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("unexpected merge (-want +got):\n%s", diff)
	}
}

func TestReconcile_NewItemsStartTodo(t *testing.T) {
	t.Parallel()

	plan := []*domain.WorkItem{{ID: "N", Status: constants.StatusDone, Feedback: "ignored", AssociatedFiles: []string{"x"}}}
	got := workitem.Reconcile(nil, plan)
	require.Len(t, got, 1)
	assert.Equal(t, constants.StatusTodo, got[0].Status)
	assert.Empty(t, got[0].Feedback)
	assert.Equal(t, []string{}, got[0].AssociatedFiles)
}

func TestReconcile_DropsAndReorders(t *testing.T) {
	t.Parallel()

	current := []*domain.WorkItem{{ID: "X", Status: constants.StatusDone}, {ID: "A"}, {ID: "B"}}
	got := workitem.Reconcile(current, planned("B", "A"))

	ids := make([]string, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"B", "A"}, ids)

	added, dropped := workitem.Diff(current, got)
	assert.Empty(t, added)
	assert.Equal(t, []string{"X"}, dropped)
}

func TestReconcile_DoesNotAlias(t *testing.T) {
	t.Parallel()

	current := []*domain.WorkItem{{ID: "A", Status: constants.StatusInReview, AssociatedFiles: []string{"a.go"}}}
	plan := planned("A")
	got := workitem.Reconcile(current, plan)

	got[0].AssociatedFiles[0] = "changed"
	got[0].Title = "changed"
	assert.Equal(t, "a.go", current[0].AssociatedFiles[0])
	assert.Equal(t, "title A", plan[0].Title)
}

func TestReconcileScoped_KeepsOtherCategories(t *testing.T) {
	t.Parallel()

	current := []*domain.WorkItem{
		{ID: "FE-1", Category: "frontend", Status: constants.StatusDone},
		{ID: "BE-1", Category: "backend", Status: constants.StatusInReview},
		{ID: "BE-2", Category: "backend", Status: constants.StatusTodo},
	}
	got := workitem.ReconcileScoped(current, planned("BE-1", "BE-3"), []string{"backend"})

	ids := make([]string, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"FE-1", "BE-1", "BE-3"}, ids)
	assert.Equal(t, constants.StatusDone, got[0].Status)
	assert.Equal(t, constants.StatusInReview, got[1].Status)
	assert.Equal(t, constants.StatusTodo, got[2].Status)
}
