package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
)

// statusReport is the JSON shape of the status command.
type statusReport struct {
	Store  string                       `json:"store"`
	Counts map[constants.ItemStatus]int `json:"counts"`
	Items  []*domain.WorkItem           `json:"items"`
}

// AddStatusCommand adds the status command.
func AddStatusCommand(root *cobra.Command, flags *GlobalFlags) {
	var (
		category string
		status   string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List work items and their status",
		Example: `  devloop status
  devloop status --status todo --category backend
  devloop status -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			if status != "" && !constants.ItemStatus(status).IsValid() {
				return dlerrors.NewExitCode2Error(fmt.Errorf("%w: status %q (use todo, review or done)", dlerrors.ErrInvalidArgument, status))
			}

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}
			items, err := p.store.Load(ctx)
			if err != nil {
				return err
			}

			filtered := slices.DeleteFunc(slices.Clone(items), func(it *domain.WorkItem) bool {
				return (category != "" && it.Category != category) ||
					(status != "" && it.Status != constants.ItemStatus(status))
			})

			report := statusReport{Store: p.store.Path(), Counts: workitem.Counts(items), Items: filtered}
			if flags.Output == tui.FormatJSON {
				return out.JSON(report)
			}

			if len(items) == 0 {
				out.Info("No work items yet. Run 'devloop sync' or 'devloop import' to plan some.")
				return nil
			}
			tui.RenderItems(cmd.OutOrStdout(), filtered)
			out.Info(fmt.Sprintf("\n%d todo, %d in review, %d done",
				report.Counts[constants.StatusTodo], report.Counts[constants.StatusInReview], report.Counts[constants.StatusDone]))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only items of this category")
	cmd.Flags().StringVar(&status, "status", "", "only items with this status (todo, review, done)")
	root.AddCommand(cmd)
}

// AddShowCommand adds the show command.
func AddShowCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}
			items, err := p.store.Load(ctx)
			if err != nil {
				return err
			}
			item, err := workitem.FindByID(items, args[0])
			if err != nil {
				return err
			}

			if flags.Output == tui.FormatJSON {
				return out.JSON(item)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tui.RenderMarkdown(itemMarkdown(item)))
			return err
		},
	}
	root.AddCommand(cmd)
}

// AddResetCommand adds the reset command.
func AddResetCommand(root *cobra.Command, flags *GlobalFlags) {
	var feedback string

	cmd := &cobra.Command{
		Use:   "reset <id>...",
		Short: "Send work items back to Todo",
		Long: `Move work items back to Todo so the next run generates them again. The
feedback is replaced with --feedback, which the coder sees on its next
attempt.`,
		Example: `  devloop reset BE-002
  devloop reset FE-001 --feedback "use the shared form component"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}
			items, err := p.store.Load(ctx)
			if err != nil {
				return err
			}

			reset := make([]*domain.WorkItem, 0, len(args))
			for _, id := range args {
				item, err := workitem.FindByID(items, id)
				if err != nil {
					return err
				}
				if err := workitem.Reject(item, feedback); err != nil {
					return err
				}
				reset = append(reset, item)
			}
			if err := p.store.Save(ctx, items); err != nil {
				return err
			}

			if flags.Output == tui.FormatJSON {
				return out.JSON(reset)
			}
			for _, it := range reset {
				out.Success(it.ID + " is Todo")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&feedback, "feedback", "", "feedback for the next generation attempt")
	root.AddCommand(cmd)
}

func itemMarkdown(it *domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", it.ID, it.Title)
	fmt.Fprintf(&b, "**Status:** %s %s", tui.StatusIcon(it.Status), tui.StatusLabel(it.Status))
	if it.Category != "" {
		fmt.Fprintf(&b, "  \n**Category:** %s", it.Category)
	}
	if it.SourceReference != "" {
		fmt.Fprintf(&b, "  \n**Source:** %s", it.SourceReference)
	}
	b.WriteString("\n\n")
	if it.Description != "" {
		fmt.Fprintf(&b, "## Description\n\n%s\n\n", it.Description)
	}
	if it.AcceptanceCriteria != "" {
		fmt.Fprintf(&b, "## Acceptance criteria\n\n%s\n\n", it.AcceptanceCriteria)
	}
	if len(it.AssociatedFiles) > 0 {
		b.WriteString("## Files\n\n")
		for _, f := range it.AssociatedFiles {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}
	if it.Feedback != "" {
		fmt.Fprintf(&b, "## Feedback\n\n```\n%s\n```\n", strings.TrimRight(it.Feedback, "\n"))
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
