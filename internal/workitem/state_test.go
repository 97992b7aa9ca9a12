package workitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

func TestIsValidTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to constants.ItemStatus
		want     bool
	}{
		{constants.StatusTodo, constants.StatusInReview, true},
		{constants.StatusTodo, constants.StatusDone, false},
		{constants.StatusInReview, constants.StatusDone, true},
		{constants.StatusInReview, constants.StatusTodo, true},
		{constants.StatusDone, constants.StatusTodo, true},
		{constants.StatusDone, constants.StatusInReview, false},
		{constants.StatusTodo, constants.StatusTodo, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, workitem.IsValidTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestSubmitRejectAccept(t *testing.T) {
	t.Parallel()

	it := &domain.WorkItem{ID: "A", Status: constants.StatusTodo, Feedback: "old failure"}
	files := []string{"a.go", "a_test.go"}
	require.NoError(t, workitem.Submit(it, files))
	assert.Equal(t, constants.StatusInReview, it.Status)
	assert.Empty(t, it.Feedback)
	files[0] = "mutated"
	assert.Equal(t, "a.go", it.AssociatedFiles[0])

	require.NoError(t, workitem.Reject(it, "missing file: a.go"))
	assert.Equal(t, constants.StatusTodo, it.Status)
	assert.Equal(t, "missing file: a.go", it.Feedback)

	require.NoError(t, workitem.Reject(it, "second"))
	assert.Equal(t, "second", it.Feedback)

	require.ErrorIs(t, workitem.Accept(it, "tests passed"), dlerrors.ErrInvalidTransition)
	require.NoError(t, workitem.Submit(it, nil))
	assert.NotNil(t, it.AssociatedFiles)
	require.NoError(t, workitem.Accept(it, "tests passed"))
	assert.Equal(t, constants.StatusDone, it.Status)
	require.ErrorIs(t, workitem.Submit(it, nil), dlerrors.ErrInvalidTransition)
}
