package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/cycle"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/orchestrator"
	"github.com/wliublackruvy/agent-based-dev/internal/review"
	"github.com/wliublackruvy/agent-based-dev/internal/signal"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

type generateOptions struct {
	yes         bool
	debug       bool
	maxAttempts int
}

func (o *generateOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "apply change sets without asking")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "print every coder prompt")
	cmd.Flags().IntVar(&o.maxAttempts, "max-attempts", 0, "generation attempts per item (default from config)")
}

func (o *generateOptions) cycleOptions(cmd *cobra.Command, out tui.Output, verbose bool) []cycle.Option {
	var opts []cycle.Option
	if !o.yes {
		opts = append(opts, cycle.WithConfirm(confirmChanges(cmd.OutOrStdout(), out, verbose)))
	}
	if o.debug {
		opts = append(opts, cycle.WithPromptObserver(printPrompt(cmd.ErrOrStderr())))
	}
	return opts
}

func printPrompt(w io.Writer) cycle.PromptObserver {
	return func(attempt int, system, user string) {
		_, _ = fmt.Fprintf(w, "===== coder prompt, attempt %d =====\n--- system ---\n%s\n--- user ---\n%s\n", attempt, system, user)
	}
}

// AddCodeCommand adds the code command.
func AddCodeCommand(root *cobra.Command, flags *GlobalFlags) {
	var (
		taskID string
		opts   generateOptions
	)

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate code for one Todo work item",
		Long: `Run the generation cycle for one work item: the coder role answers with a
change set, the change set is written and its check files are run. Failed
attempts feed their error log into the next attempt. A verified item moves
to review; after the last failed attempt it stays Todo with the error as
feedback.

Without --task the first Todo item is used.`,
		Example: `  devloop code
  devloop code --task BE-003 -y --debug`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			e, err := openEngine(ctx, flags, &config.Overrides{MaxAttempts: opts.maxAttempts})
			if err != nil {
				return err
			}
			items, err := e.store.Load(ctx)
			if err != nil {
				return err
			}
			item, err := pickItem(items, taskID, constants.StatusTodo)
			if err != nil {
				return err
			}
			if item == nil {
				out.Info("No Todo work items.")
				return nil
			}

			outcome, err := e.controller(opts.cycleOptions(cmd, out, flags.Verbose)...).Run(ctx, item)
			if errors.Is(err, dlerrors.ErrUserDeclined) {
				out.Warning(fmt.Sprintf("Change set for %s declined; nothing was written.", item.ID))
				return nil
			}
			if err != nil {
				return err
			}
			if err := e.store.Save(ctx, items); err != nil {
				return err
			}

			if flags.Output == tui.FormatJSON {
				return out.JSON(outcome)
			}
			renderOutcome(out, item, outcome)
			return nil
		},
	}
	cmd.Flags().StringVarP(&taskID, "task", "t", "", "work item id")
	opts.register(cmd)
	root.AddCommand(cmd)
}

// AddReviewCommand adds the review command.
func AddReviewCommand(root *cobra.Command, flags *GlobalFlags) {
	var taskID string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review submitted work items",
		Long: `Decide submitted work items. Every associated file must exist, the
reviewer role must not reject the submission, and its check files must
pass. Accepted items are Done; rejected items return to Todo with the
reason as feedback.

Without --task every item in review is decided in order.`,
		Example: `  devloop review
  devloop review --task FE-002`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			e, err := openEngine(ctx, flags, nil)
			if err != nil {
				return err
			}
			items, err := e.store.Load(ctx)
			if err != nil {
				return err
			}

			var queue []*domain.WorkItem
			if taskID != "" {
				item, err := workitem.FindByID(items, taskID)
				if err != nil {
					return err
				}
				queue = append(queue, item)
			} else {
				for _, it := range items {
					if it.Status == constants.StatusInReview {
						queue = append(queue, it)
					}
				}
			}
			if len(queue) == 0 {
				out.Info("No work items in review.")
				return nil
			}

			gate := e.gate()
			decisions := make([]*review.Decision, 0, len(queue))
			for _, item := range queue {
				d, err := gate.Review(ctx, item)
				if err != nil {
					return err
				}
				if err := e.store.Save(ctx, items); err != nil {
					return err
				}
				decisions = append(decisions, d)
				if flags.Output != tui.FormatJSON {
					renderDecision(out, d)
				}
			}
			if flags.Output == tui.FormatJSON {
				return out.JSON(decisions)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&taskID, "task", "t", "", "work item id")
	root.AddCommand(cmd)
}

// AddRunCommand adds the run command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	var (
		opts     generateOptions
		maxTicks int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and review until every work item is done",
		Long: `Tick until no Todo or review items remain. Each tick reviews the first
item in review, or else generates the first Todo item. The run stops with
an error at the tick ceiling, which usually means an item keeps failing
review.`,
		Example: `  devloop run -y
  devloop run --max-ticks 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := signal.NewHandler(commandContext(cmd))
			defer h.Stop()
			ctx := h.Context()
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			e, err := openEngine(ctx, flags, &config.Overrides{
				MaxAttempts: opts.maxAttempts,
				MaxTicks:    maxTicks,
			})
			if err != nil {
				return err
			}

			var observe []orchestrator.Option
			if flags.Output != tui.FormatJSON {
				observe = append(observe, orchestrator.WithTickObserver(func(res *orchestrator.TickResult) {
					renderTick(out, res)
				}))
			}
			loop := e.loop(e.controller(opts.cycleOptions(cmd, out, flags.Verbose)...), observe...)

			summary, err := loop.Run(ctx)
			if h.WasInterrupted() {
				out.Warning("Run interrupted; items keep the status of their last completed tick.")
			}
			if summary != nil {
				if flags.Output == tui.FormatJSON {
					if jerr := out.JSON(summary); jerr != nil && err == nil {
						err = jerr
					}
				} else {
					renderSummary(out, summary)
				}
			}
			return err
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "tick ceiling (default from config)")
	root.AddCommand(cmd)
}

// pickItem returns the item named by id, or the first item with status.
// It returns nil when no item has status.
func pickItem(items []*domain.WorkItem, id string, status constants.ItemStatus) (*domain.WorkItem, error) {
	if id == "" {
		return workitem.FindNext(items, status), nil
	}
	item, err := workitem.FindByID(items, id)
	if err != nil {
		return nil, err
	}
	if item.Status != status {
		return nil, dlerrors.NewExitCode2Error(fmt.Errorf("%s is %s, expected %s: %w",
			item.ID, tui.StatusLabel(item.Status), tui.StatusLabel(status), dlerrors.ErrInvalidStatus))
	}
	return item, nil
}

func renderOutcome(out tui.Output, item *domain.WorkItem, o *cycle.Outcome) {
	switch {
	case o.Succeeded:
		out.Success(fmt.Sprintf("%s verified after %d attempt(s), ready for review", item.ID, o.Attempts))
	case o.Exhausted:
		out.Warning(fmt.Sprintf("%s failed %d attempt(s) and needs attention: %s", item.ID, o.Attempts, firstLine(item.Feedback)))
	}
}

func renderDecision(out tui.Output, d *review.Decision) {
	if d.Accepted {
		out.Success(fmt.Sprintf("%s accepted: %s", d.ItemID, d.Feedback))
		return
	}
	out.Warning(fmt.Sprintf("%s rejected: %s", d.ItemID, firstLine(d.Feedback)))
}

func renderTick(out tui.Output, res *orchestrator.TickResult) {
	switch res.Dispatch {
	case orchestrator.DispatchGenerate:
		if res.Outcome != nil {
			item := &domain.WorkItem{ID: res.ItemID, Feedback: res.Outcome.LastLog}
			renderOutcome(out, item, res.Outcome)
		}
	case orchestrator.DispatchReview:
		if res.Decision != nil {
			renderDecision(out, res.Decision)
		}
	case orchestrator.DispatchNone:
	}
}

func renderSummary(out tui.Output, s *orchestrator.Summary) {
	switch {
	case s.Declined:
		out.Warning("Run stopped: change set declined.")
	case s.Finished:
		out.Success(fmt.Sprintf("All work items done in %d tick(s).", s.Ticks))
	}
	out.Info(s.String())
}
