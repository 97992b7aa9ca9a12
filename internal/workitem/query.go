package workitem

import (
	"fmt"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// First returns the first item in stored order matching pred, or nil.
func First(items []*domain.WorkItem, pred func(*domain.WorkItem) bool) *domain.WorkItem {
	for _, it := range items {
		if pred(it) {
			return it
		}
	}
	return nil
}

// FindNext returns the first item with status, or nil.
func FindNext(items []*domain.WorkItem, status constants.ItemStatus) *domain.WorkItem {
	return First(items, func(it *domain.WorkItem) bool { return it.Status == status })
}

// FindByID returns the item with id or ErrItemNotFound.
func FindByID(items []*domain.WorkItem, id string) (*domain.WorkItem, error) {
	it := First(items, func(it *domain.WorkItem) bool { return it.ID == id })
	if it == nil {
		return nil, fmt.Errorf("%s: %w", id, dlerrors.ErrItemNotFound)
	}
	return it, nil
}

// Count returns how many items have status.
func Count(items []*domain.WorkItem, status constants.ItemStatus) int {
	n := 0
	for _, it := range items {
		if it.Status == status {
			n++
		}
	}
	return n
}

// Counts tallies items per status.
func Counts(items []*domain.WorkItem) map[constants.ItemStatus]int {
	counts := make(map[constants.ItemStatus]int, 3)
	for _, s := range constants.AllStatuses() {
		counts[s] = 0
	}
	for _, it := range items {
		counts[it.Status]++
	}
	return counts
}
