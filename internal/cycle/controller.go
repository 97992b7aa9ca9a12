// Package cycle runs the bounded generate → parse → apply → verify loop for
// one work item.
//
// Import rules:
//   - CAN import: internal/ai, internal/changeset, internal/verify,
//     internal/workitem, internal/workspace, internal/prompts, internal/domain,
//     internal/constants, internal/errors, std lib
//   - MUST NOT import: internal/cli, internal/orchestrator
package cycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/ai"
	"github.com/wliublackruvy/agent-based-dev/internal/changeset"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/prompts"
	"github.com/wliublackruvy/agent-based-dev/internal/verify"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
	"github.com/wliublackruvy/agent-based-dev/internal/workspace"
)

// Verifier runs check files. *verify.Runner implements it.
type Verifier interface {
	Run(ctx context.Context, checkFiles []string) (*domain.VerificationResult, error)
	Catalog() verify.Catalog
}

// ConfirmFunc is asked before a parsed change set is written. Returning
// false stops the cycle with ErrUserDeclined and leaves the item untouched.
type ConfirmFunc func(ctx context.Context, item *domain.WorkItem, preview []changeset.FileDiff) (bool, error)

// PromptObserver receives the full coder prompt of each attempt.
type PromptObserver func(attempt int, system, user string)

// Config bounds the cycle.
type Config struct {
	// MaxAttempts is the number of generation attempts per run.
	MaxAttempts int

	// AllowNoChecks submits change sets without check files for review.
	AllowNoChecks bool

	// FeedbackLimit caps the feedback stored on the item, in bytes.
	FeedbackLimit int

	// RequirementsPath is the requirements document, if any.
	RequirementsPath string

	// DesignPath returns the design document for an item category.
	DesignPath func(category string) string

	// SnapshotDirs and SnapshotExtensions select the code snapshot.
	SnapshotDirs       []string
	SnapshotExtensions []string
}

// Outcome reports how a cycle ended.
type Outcome struct {
	ItemID    string
	Attempts  int
	Succeeded bool
	// Exhausted is set when every attempt failed; the item needs attention.
	Exhausted bool
	Files     []string
	// LastLog is the unbounded log of the last failed attempt.
	LastLog      string
	Verification *domain.VerificationResult
}

// Controller drives generation for one work item at a time.
type Controller struct {
	generator ai.Generator
	prompts   *prompts.Library
	applier   *changeset.Applier
	verifier  Verifier
	scanner   *workspace.Scanner
	config    Config
	confirm   ConfirmFunc
	observe   PromptObserver
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirm installs an interactive confirmation hook.
func WithConfirm(fn ConfirmFunc) Option {
	return func(c *Controller) { c.confirm = fn }
}

// WithPromptObserver installs a hook that sees every coder prompt.
func WithPromptObserver(fn PromptObserver) Option {
	return func(c *Controller) { c.observe = fn }
}

// NewController creates a Controller writing below scanner.Root().
func NewController(gen ai.Generator, lib *prompts.Library, verifier Verifier, scanner *workspace.Scanner, cfg Config, opts ...Option) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.DefaultMaxAttempts
	}
	if cfg.FeedbackLimit <= 0 {
		cfg.FeedbackLimit = constants.DefaultFeedbackLimit
	}
	c := &Controller{
		generator: gen,
		prompts:   lib,
		applier:   changeset.NewApplier(scanner.Root()),
		verifier:  verifier,
		scanner:   scanner,
		config:    cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run generates code for item until verification passes or attempts run out.
// The item is updated in place; the caller persists it. Errors are returned
// only for cancellation, a declined change set, template failures, or an
// item that is not Todo. Unreadable prompt context never ends the cycle.
func (c *Controller) Run(ctx context.Context, item *domain.WorkItem) (*Outcome, error) {
	if item.Status != constants.StatusTodo {
		return nil, fmt.Errorf("%s is %s, generation needs todo: %w", item.ID, item.Status, dlerrors.ErrInvalidStatus)
	}

	logger := zerolog.Ctx(ctx).With().Str("item_id", item.ID).Logger()
	outcome := &Outcome{ItemID: item.ID}
	feedback := item.Feedback

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		outcome.Attempts = attempt
		attemptLog := logger.With().Int("attempt", attempt).Int("max_attempts", c.config.MaxAttempts).Logger()
		attemptCtx := attemptLog.WithContext(ctx)
		attemptLog.Info().Msg("starting generation attempt")

		res, err := c.attempt(attemptCtx, item, feedback, attempt)
		if err != nil {
			return outcome, err
		}

		if res.submitted {
			if err := workitem.Submit(item, res.files); err != nil {
				return outcome, err
			}
			outcome.Succeeded = true
			outcome.Files = res.files
			outcome.Verification = res.verification
			attemptLog.Info().Strs("files", res.files).Msg("generation verified, item ready for review")
			return outcome, nil
		}

		outcome.LastLog = res.log
		outcome.Verification = res.verification
		feedback = verify.ExtractKeyError(res.log, c.config.FeedbackLimit)
		attemptLog.Warn().Str("failure", res.kind).Msg("generation attempt failed")
	}

	outcome.Exhausted = true
	if err := workitem.Reject(item, feedback); err != nil {
		return outcome, err
	}
	logger.Error().
		Int("attempts", outcome.Attempts).
		Msg("generation attempts exhausted, manual intervention needed")
	return outcome, nil
}

// attemptResult is the result of one attempt. A failed attempt carries the
// log that becomes the next attempt's feedback.
type attemptResult struct {
	submitted    bool
	files        []string
	kind         string
	log          string
	verification *domain.VerificationResult
}

func failed(kind, log string) *attemptResult {
	return &attemptResult{kind: kind, log: log}
}

func (c *Controller) attempt(ctx context.Context, item *domain.WorkItem, feedback string, attempt int) (*attemptResult, error) {
	logger := zerolog.Ctx(ctx)

	system, user, err := c.buildPrompt(ctx, item, feedback, attempt)
	if err != nil {
		return nil, err
	}
	if c.observe != nil {
		c.observe(attempt, system, user)
	}

	start := time.Now()
	raw, err := c.generator.Generate(ctx, constants.RoleCoder, system, user)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return failed("provider", "provider error: "+err.Error()), nil
	}
	logger.Debug().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("coder answered")

	cs, err := changeset.Parse(raw)
	if err != nil {
		return failed("format", "format error: "+err.Error()), nil
	}

	if c.confirm != nil {
		ok, err := c.confirm(ctx, item, changeset.Preview(c.applier.Root, cs))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dlerrors.ErrUserDeclined
		}
	}

	files, err := c.applier.Apply(ctx, cs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, dlerrors.ErrPathTraversal) {
			return failed("format", "format error: "+err.Error()), nil
		}
		return failed("apply", "apply error: "+err.Error()), nil
	}

	checks := c.verifier.Catalog().SelectCheckFiles(files)
	result, err := c.verifier.Run(ctx, checks)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Passed:
		return &attemptResult{submitted: true, files: files, verification: result}, nil
	case result.NoChecks && c.config.AllowNoChecks:
		logger.Warn().Msg("change set has no check files, submitting for review")
		return &attemptResult{submitted: true, files: files, verification: result}, nil
	case result.NoChecks:
		r := failed("no_checks", "no check files in change set; include tests for the work item")
		r.verification = result
		return r, nil
	default:
		r := failed("verification", result.Log)
		r.verification = result
		return r, nil
	}
}

// buildPrompt renders the coder prompts. Context that cannot be read is left
// out with a warning; only template failures are returned.
func (c *Controller) buildPrompt(ctx context.Context, item *domain.WorkItem, feedback string, attempt int) (system, user string, err error) {
	logger := zerolog.Ctx(ctx)
	data := prompts.CoderTaskData{
		ItemID:             item.ID,
		Title:              item.Title,
		Description:        item.Description,
		AcceptanceCriteria: item.AcceptanceCriteria,
		SourceReference:    item.SourceReference,
		Feedback:           feedback,
		Attempt:            attempt,
		MaxAttempts:        c.config.MaxAttempts,
	}

	if doc, _, readErr := workspace.ReadDocument(c.config.RequirementsPath); readErr != nil {
		logger.Warn().Err(readErr).Msg("requirements unreadable, prompting without them")
	} else {
		data.Requirements = doc
	}
	if c.config.DesignPath != nil && item.Category != "" {
		if doc, _, readErr := workspace.ReadDocument(c.config.DesignPath(item.Category)); readErr != nil {
			logger.Warn().Err(readErr).Msg("design document unreadable, prompting without it")
		} else {
			data.Design = doc
		}
	}
	if attempt > 1 || feedback != "" {
		snapshot, skipped, snapErr := c.scanner.Snapshot(c.config.SnapshotDirs, c.config.SnapshotExtensions)
		switch {
		case snapErr != nil:
			logger.Warn().Err(snapErr).Msg("code snapshot failed, prompting without it")
		case len(skipped) > 0:
			logger.Warn().Strs("skipped", skipped).Msg("unreadable files left out of code snapshot")
		}
		data.Snapshot = snapshot
	}

	if system, err = c.prompts.Render(prompts.CoderSystem, data); err != nil {
		return "", "", err
	}
	if user, err = c.prompts.Render(prompts.CoderTask, data); err != nil {
		return "", "", err
	}
	return system, user, nil
}
