// Package review decides whether an InReview work item is Done or goes back
// to Todo.
//
// The gate runs three stages in order: file integrity, a semantic verdict
// from the reviewer role, and the item's check files. The first stage that
// rejects ends the review.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/ai"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/prompts"
	"github.com/wliublackruvy/agent-based-dev/internal/verify"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
	"github.com/wliublackruvy/agent-based-dev/internal/workspace"
)

// Feedback notes written on accepted items.
const (
	NoteTestsPassed = "tests passed"
	NoteManualCheck = "no tests found in submission; manual check recommended"
	NoteNeedsChecks = "no check files submitted; add tests that cover the work item"
)

// Kind classifies a review decision.
type Kind string

// Decision kinds.
const (
	KindMissingFile       Kind = "missing_file"
	KindRejected          Kind = "rejected"
	KindReviewUnavailable Kind = "review_unavailable"
	KindTestsPassed       Kind = "tests_passed"
	KindTestsFailed       Kind = "tests_failed"
	KindNoChecks          Kind = "no_checks"
	KindChecksRequired    Kind = "checks_required"
)

// Decision is the result of reviewing one item.
type Decision struct {
	ItemID       string                     `json:"item_id"`
	Kind         Kind                       `json:"kind"`
	Accepted     bool                       `json:"accepted"`
	Feedback     string                     `json:"feedback"`
	Missing      []string                   `json:"missing,omitempty"`
	Unreadable   []string                   `json:"unreadable,omitempty"`
	Verdict      *domain.Verdict            `json:"verdict,omitempty"`
	Verification *domain.VerificationResult `json:"verification,omitempty"`
}

// Verifier runs check files. *verify.Runner implements it.
type Verifier interface {
	Run(ctx context.Context, checkFiles []string) (*domain.VerificationResult, error)
	Catalog() verify.Catalog
}

// Policy configures the gate.
type Policy struct {
	// StrictVerdict rejects when the reviewer answer is unusable.
	StrictVerdict bool

	// RequireChecks rejects submissions without check files.
	RequireChecks bool

	// FeedbackLimit caps the test log stored as feedback.
	FeedbackLimit int

	// TreeExtensions selects the files listed in the project tree.
	TreeExtensions []string
}

// Gate reviews InReview items.
type Gate struct {
	generator ai.Generator
	prompts   *prompts.Library
	verifier  Verifier
	scanner   *workspace.Scanner
	policy    Policy
}

// NewGate creates a Gate.
func NewGate(gen ai.Generator, lib *prompts.Library, verifier Verifier, scanner *workspace.Scanner, policy Policy) *Gate {
	if policy.FeedbackLimit <= 0 {
		policy.FeedbackLimit = constants.DefaultFeedbackLimit
	}
	return &Gate{
		generator: gen,
		prompts:   lib,
		verifier:  verifier,
		scanner:   scanner,
		policy:    policy,
	}
}

// Review decides item and updates it in place. The caller persists it.
func (g *Gate) Review(ctx context.Context, item *domain.WorkItem) (*Decision, error) {
	if item.Status != constants.StatusInReview {
		return nil, fmt.Errorf("%s is %s, review needs review: %w", item.ID, item.Status, dlerrors.ErrInvalidStatus)
	}
	logger := zerolog.Ctx(ctx).With().Str("item_id", item.ID).Logger()

	submission, missing, unreadable := g.scanner.ReadFiles(item.AssociatedFiles)
	if len(missing) > 0 || len(unreadable) > 0 {
		logger.Warn().Strs("missing", missing).Strs("unreadable", unreadable).Msg("submitted files not readable on disk")
		d := &Decision{Kind: KindMissingFile, Missing: missing, Unreadable: unreadable}
		return g.reject(item, d, integrityFeedback(missing, unreadable))
	}

	verdict, err := g.semanticReview(ctx, item, submission)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if g.policy.StrictVerdict {
			logger.Warn().Err(err).Msg("reviewer unavailable, rejecting")
			return g.reject(item, &Decision{Kind: KindReviewUnavailable}, "review unavailable: "+err.Error())
		}
		logger.Warn().Err(err).Msg("reviewer unavailable, skipping semantic review")
	} else if !verdict.Passed() {
		logger.Info().Str("reason", verdict.Reason).Msg("reviewer rejected submission")
		return g.reject(item, &Decision{Kind: KindRejected, Verdict: verdict}, "reviewer rejected: "+verdict.Reason)
	}

	checks := g.verifier.Catalog().SelectCheckFiles(item.AssociatedFiles)
	if len(checks) == 0 {
		if g.policy.RequireChecks {
			return g.reject(item, &Decision{Kind: KindChecksRequired, Verdict: verdict}, NoteNeedsChecks)
		}
		logger.Warn().Msg("no tests in submission, accepting for manual check")
		return g.accept(item, &Decision{Kind: KindNoChecks, Verdict: verdict}, NoteManualCheck)
	}

	result, err := g.verifier.Run(ctx, checks)
	if err != nil {
		return nil, err
	}
	d := &Decision{Verdict: verdict, Verification: result}
	if result.Passed {
		d.Kind = KindTestsPassed
		return g.accept(item, d, NoteTestsPassed)
	}
	d.Kind = KindTestsFailed
	return g.reject(item, d, verify.Tail(result.Log, g.policy.FeedbackLimit))
}

func integrityFeedback(missing, unreadable []string) string {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing file: "+strings.Join(missing, ", "))
	}
	if len(unreadable) > 0 {
		parts = append(parts, "unreadable file: "+strings.Join(unreadable, ", "))
	}
	return strings.Join(parts, "; ")
}

func (g *Gate) semanticReview(ctx context.Context, item *domain.WorkItem, submission string) (*domain.Verdict, error) {
	tree, err := g.scanner.Tree(g.policy.TreeExtensions)
	if err != nil {
		return nil, err
	}
	data := prompts.ReviewData{
		ItemID:             item.ID,
		Title:              item.Title,
		AcceptanceCriteria: item.AcceptanceCriteria,
		Tree:               tree,
		Submission:         submission,
	}
	system, err := g.prompts.Render(prompts.ReviewerSystem, data)
	if err != nil {
		return nil, err
	}
	user, err := g.prompts.Render(prompts.ReviewerSubmission, data)
	if err != nil {
		return nil, err
	}

	raw, err := g.generator.GenerateJSON(ctx, constants.RoleReviewer, system, user)
	if err != nil {
		return nil, err
	}
	verdict, err := ai.ParseVerdict(raw)
	if err != nil {
		return nil, err
	}
	return &verdict, nil
}

func (g *Gate) reject(item *domain.WorkItem, d *Decision, feedback string) (*Decision, error) {
	if err := workitem.Reject(item, feedback); err != nil {
		return nil, err
	}
	d.ItemID = item.ID
	d.Feedback = feedback
	return d, nil
}

func (g *Gate) accept(item *domain.WorkItem, d *Decision, note string) (*Decision, error) {
	if err := workitem.Accept(item, note); err != nil {
		return nil, err
	}
	d.ItemID = item.ID
	d.Accepted = true
	d.Feedback = note
	return d, nil
}
