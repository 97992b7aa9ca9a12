package workitem

import (
	"slices"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
)

// Reconcile merges a freshly planned list with the currently stored one.
//
// The planned order wins. A reused id takes its definition from planned and
// keeps status, associated files and feedback from current. A new id starts
// as Todo with no files or feedback. Ids absent from planned are dropped.
// Inputs are never modified and the result shares no memory with them.
func Reconcile(current, planned []*domain.WorkItem) []*domain.WorkItem {
	byID := make(map[string]*domain.WorkItem, len(current))
	for _, it := range current {
		byID[it.ID] = it
	}

	out := make([]*domain.WorkItem, 0, len(planned))
	for _, p := range planned {
		merged := &domain.WorkItem{}
		merged.Definition(p)

		if old, ok := byID[p.ID]; ok {
			merged.Status = old.Status
			merged.AssociatedFiles = slices.Clone(old.AssociatedFiles)
			merged.Feedback = old.Feedback
		} else {
			merged.Status = constants.StatusTodo
		}
		if merged.AssociatedFiles == nil {
			merged.AssociatedFiles = []string{}
		}
		out = append(out, merged)
	}
	return out
}

// ReconcileScoped reconciles only the current items whose category is in
// scope. Out-of-scope items are kept unchanged, in order, ahead of the
// reconciled ones. An empty scope reconciles everything.
func ReconcileScoped(current, planned []*domain.WorkItem, scope []string) []*domain.WorkItem {
	if len(scope) == 0 {
		return Reconcile(current, planned)
	}

	plannedIDs := make(map[string]struct{}, len(planned))
	for _, p := range planned {
		plannedIDs[p.ID] = struct{}{}
	}

	var kept, inScope []*domain.WorkItem
	for _, it := range current {
		_, replanned := plannedIDs[it.ID]
		if slices.Contains(scope, it.Category) || replanned {
			inScope = append(inScope, it)
			continue
		}
		kept = append(kept, it.Clone())
	}
	return append(kept, Reconcile(inScope, planned)...)
}

// Diff reports ids added to and dropped from current by a reconciliation.
func Diff(current, reconciled []*domain.WorkItem) (added, dropped []string) {
	before := make(map[string]struct{}, len(current))
	for _, it := range current {
		before[it.ID] = struct{}{}
	}
	after := make(map[string]struct{}, len(reconciled))
	for _, it := range reconciled {
		after[it.ID] = struct{}{}
		if _, ok := before[it.ID]; !ok {
			added = append(added, it.ID)
		}
	}
	for _, it := range current {
		if _, ok := after[it.ID]; !ok {
			dropped = append(dropped, it.ID)
		}
	}
	return added, dropped
}
