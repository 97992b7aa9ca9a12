// Package orchestrator schedules the work-item pipeline one tick at a time.
//
// Each tick loads the store, picks exactly one stage and saves the result.
// Review always runs before generation, and within a stage the first item
// in stored order wins.
//
// Import rules:
//   - CAN import: internal/cycle, internal/review, internal/workitem,
//     internal/domain, internal/constants, internal/errors, internal/clock
//   - MUST NOT import: internal/cli, internal/ai
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/clock"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/cycle"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/review"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

// Dispatch names the stage a tick ran.
type Dispatch string

// Dispatch values.
const (
	DispatchNone     Dispatch = "none"
	DispatchReview   Dispatch = "review"
	DispatchGenerate Dispatch = "generate"
)

// Generator runs the generation cycle for a Todo item.
type Generator interface {
	Run(ctx context.Context, item *domain.WorkItem) (*cycle.Outcome, error)
}

// Reviewer decides an InReview item.
type Reviewer interface {
	Review(ctx context.Context, item *domain.WorkItem) (*review.Decision, error)
}

// TickResult describes one tick.
type TickResult struct {
	Dispatch Dispatch
	ItemID   string
	Outcome  *cycle.Outcome
	Decision *review.Decision
}

// Summary describes a run.
type Summary struct {
	RunID     string                       `json:"run_id"`
	StartedAt time.Time                    `json:"started_at"`
	Duration  time.Duration                `json:"duration"`
	Ticks     int                          `json:"ticks"`
	Generated int                          `json:"generated"`
	Exhausted int                          `json:"exhausted"`
	Reviewed  int                          `json:"reviewed"`
	Accepted  int                          `json:"accepted"`
	Rejected  int                          `json:"rejected"`
	Finished  bool                         `json:"finished"`
	Declined  bool                         `json:"declined"`
	Counts    map[constants.ItemStatus]int `json:"counts"`
}

// String renders the summary on one line.
func (s *Summary) String() string {
	return fmt.Sprintf("ticks=%d generated=%d exhausted=%d reviewed=%d accepted=%d rejected=%d todo=%d review=%d done=%d",
		s.Ticks, s.Generated, s.Exhausted, s.Reviewed, s.Accepted, s.Rejected,
		s.Counts[constants.StatusTodo], s.Counts[constants.StatusInReview], s.Counts[constants.StatusDone])
}

func (s *Summary) record(res *TickResult) {
	switch res.Dispatch {
	case DispatchGenerate:
		s.Generated++
		if res.Outcome != nil && res.Outcome.Exhausted {
			s.Exhausted++
		}
	case DispatchReview:
		s.Reviewed++
		if res.Decision != nil && res.Decision.Accepted {
			s.Accepted++
		} else {
			s.Rejected++
		}
	case DispatchNone:
	}
}

// Loop is the top-level scheduler.
type Loop struct {
	store    workitem.Store
	coder    Generator
	reviewer Reviewer
	maxTicks int
	clock    clock.Clock
	observe  func(*TickResult)
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxTicks sets the tick ceiling of Run.
func WithMaxTicks(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxTicks = n
		}
	}
}

// WithClock sets the clock used to stamp runs.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithTickObserver installs a hook called after every tick of Run.
func WithTickObserver(fn func(*TickResult)) Option {
	return func(l *Loop) { l.observe = fn }
}

// NewLoop creates a Loop.
func NewLoop(store workitem.Store, coder Generator, reviewer Reviewer, opts ...Option) *Loop {
	l := &Loop{
		store:    store,
		coder:    coder,
		reviewer: reviewer,
		maxTicks: constants.DefaultMaxTicks,
		clock:    clock.Real{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick runs at most one stage and persists its result.
func (l *Loop) Tick(ctx context.Context) (*TickResult, error) {
	items, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if workitem.Count(items, constants.StatusTodo)+workitem.Count(items, constants.StatusInReview) == 0 {
		return &TickResult{Dispatch: DispatchNone}, nil
	}

	if it := workitem.FindNext(items, constants.StatusInReview); it != nil {
		decision, err := l.reviewer.Review(ctx, it)
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", it.ID, err)
		}
		if err := l.store.Save(ctx, items); err != nil {
			return nil, err
		}
		return &TickResult{Dispatch: DispatchReview, ItemID: it.ID, Decision: decision}, nil
	}

	it := workitem.FindNext(items, constants.StatusTodo)
	outcome, err := l.coder.Run(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", it.ID, err)
	}
	if err := l.store.Save(ctx, items); err != nil {
		return nil, err
	}
	return &TickResult{Dispatch: DispatchGenerate, ItemID: it.ID, Outcome: outcome}, nil
}

// Run ticks until no Todo or InReview items remain. It stops with
// ErrStuckLoop at the tick ceiling. A declined change set ends the run
// without error.
func (l *Loop) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: l.clock.Now(),
	}
	logger := zerolog.Ctx(ctx).With().Str("run_id", summary.RunID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Int("max_ticks", l.maxTicks).Msg("run started")

	defer func() {
		summary.Duration = l.clock.Now().Sub(summary.StartedAt)
	}()

	for summary.Ticks < l.maxTicks {
		summary.Ticks++
		res, err := l.Tick(ctx)
		if err != nil {
			if errors.Is(err, dlerrors.ErrUserDeclined) {
				summary.Declined = true
				l.finish(ctx, summary)
				logger.Info().Msg("change set declined, run stopped")
				return summary, nil
			}
			return summary, err
		}
		summary.record(res)
		if l.observe != nil {
			l.observe(res)
		}

		logger.Debug().
			Int("tick", summary.Ticks).
			Str("dispatch", string(res.Dispatch)).
			Str("item_id", res.ItemID).
			Msg("tick done")

		if res.Dispatch == DispatchNone {
			summary.Finished = true
			l.finish(ctx, summary)
			logger.Info().Str("summary", summary.String()).Msg("run finished")
			return summary, nil
		}
	}

	l.finish(ctx, summary)
	if summary.Counts[constants.StatusTodo]+summary.Counts[constants.StatusInReview] == 0 {
		summary.Finished = true
		logger.Info().Str("summary", summary.String()).Msg("run finished")
		return summary, nil
	}

	logger.Error().Str("summary", summary.String()).Msg("tick ceiling reached")
	return summary, fmt.Errorf("%w after %d ticks: %s", dlerrors.ErrStuckLoop, l.maxTicks, summary)
}

func (l *Loop) finish(ctx context.Context, summary *Summary) {
	items, err := l.store.Load(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("could not load final counts")
		return
	}
	summary.Counts = workitem.Counts(items)
}
