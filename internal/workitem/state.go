package workitem

import (
	"fmt"
	"slices"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// ValidTransitions lists allowed status changes.
//
//	Todo → InReview
//	InReview → Done, Todo
//	Done → Todo
//
//nolint:gochecknoglobals // Read-only lookup table
var ValidTransitions = map[constants.ItemStatus][]constants.ItemStatus{
	constants.StatusTodo:     {constants.StatusInReview},
	constants.StatusInReview: {constants.StatusDone, constants.StatusTodo},
	constants.StatusDone:     {constants.StatusTodo},
}

// IsValidTransition reports whether from → to is allowed.
// Staying in the same status is not a transition.
func IsValidTransition(from, to constants.ItemStatus) bool {
	return slices.Contains(ValidTransitions[from], to)
}

// Submit moves a Todo item to InReview with the files just written.
func Submit(it *domain.WorkItem, files []string) error {
	if err := transition(it, constants.StatusInReview); err != nil {
		return err
	}
	it.AssociatedFiles = slices.Clone(files)
	if it.AssociatedFiles == nil {
		it.AssociatedFiles = []string{}
	}
	it.Feedback = ""
	return nil
}

// Reject sends an InReview or Done item back to Todo with feedback. A Todo
// item keeps its status and only has its feedback replaced.
func Reject(it *domain.WorkItem, feedback string) error {
	if it.Status != constants.StatusTodo {
		if err := transition(it, constants.StatusTodo); err != nil {
			return err
		}
	}
	it.Feedback = feedback
	return nil
}

// Accept marks an InReview item Done.
func Accept(it *domain.WorkItem, note string) error {
	if err := transition(it, constants.StatusDone); err != nil {
		return err
	}
	it.Feedback = note
	return nil
}

func transition(it *domain.WorkItem, to constants.ItemStatus) error {
	if !IsValidTransition(it.Status, to) {
		return fmt.Errorf("%s: %s → %s: %w", it.ID, it.Status, to, dlerrors.ErrInvalidTransition)
	}
	it.Status = to
	return nil
}
