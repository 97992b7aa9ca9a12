// Package domain provides shared domain types for the devloop work-item engine.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"slices"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

// WorkItem is one unit of planned work tracked through generation and review.
//
// Example JSON representation:
//
//	{
//	    "id": "BE-003",
//	    "title": "Order endpoint",
//	    "description": "Add POST /orders",
//	    "category": "backend",
//	    "acceptance_criteria": "Returns 201 with the order id",
//	    "source_reference": "PRD 4.2",
//	    "status": "review",
//	    "associated_files": ["src/main/java/OrderController.java"],
//	    "feedback": ""
//	}
type WorkItem struct {
	// ID is unique within a store and stable across re-plans.
	ID string `json:"id" yaml:"id"`

	// Title is a one-line summary.
	Title string `json:"title" yaml:"title"`

	// Description is the full work statement handed to the coder role.
	Description string `json:"description" yaml:"description"`

	// Category scopes the item (backend, frontend, ...).
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// AcceptanceCriteria describes what reviewers check.
	AcceptanceCriteria string `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`

	// SourceReference points back at the requirement that produced the item.
	SourceReference string `json:"source_reference,omitempty" yaml:"source_reference,omitempty"`

	// Status is the lifecycle state.
	Status constants.ItemStatus `json:"status" yaml:"status"`

	// AssociatedFiles lists the paths written by the most recent
	// successful generation, in change-set order.
	AssociatedFiles []string `json:"associated_files" yaml:"associated_files"`

	// Feedback carries the last rejection reason or failure log; empty when none.
	Feedback string `json:"feedback" yaml:"feedback"`
}

// Clone returns a deep copy so callers never share slices between lists.
func (w *WorkItem) Clone() *WorkItem {
	if w == nil {
		return nil
	}
	c := *w
	c.AssociatedFiles = slices.Clone(w.AssociatedFiles)
	if c.AssociatedFiles == nil {
		c.AssociatedFiles = []string{}
	}
	return &c
}

// Definition copies the planner-owned fields of src onto w.
func (w *WorkItem) Definition(src *WorkItem) {
	w.ID = src.ID
	w.Title = src.Title
	w.Description = src.Description
	w.Category = src.Category
	w.AcceptanceCriteria = src.AcceptanceCriteria
	w.SourceReference = src.SourceReference
}
