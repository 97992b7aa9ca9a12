package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/planner"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
)

// AddDesignCommand adds the design command.
func AddDesignCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "design [category...]",
		Short: "Write design documents from the requirements document",
		Long: `Ask the architect roles to write docs/design/<category>.md from the
requirements document. Existing designs are updated in place. The backend
design is always written first and handed to the frontend architect as
the API reference.`,
		Example: `  devloop design
  devloop design frontend`,
		ValidArgs: []string{constants.CategoryBackend, constants.CategoryFrontend},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			e, err := openEngine(ctx, flags, nil)
			if err != nil {
				return err
			}
			results, err := e.planner().Design(ctx, args)
			if flags.Output == tui.FormatJSON && len(results) > 0 {
				if jerr := out.JSON(results); jerr != nil {
					return jerr
				}
			}
			for _, r := range results {
				verb := "Created"
				if r.Updated {
					verb = "Updated"
				}
				out.Success(fmt.Sprintf("%s %s design: %s", verb, r.Category, r.Path))
			}
			return err
		},
	}
	root.AddCommand(cmd)
}

// AddSyncCommand adds the sync command.
func AddSyncCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "sync [category...]",
		Short: "Plan work items from design documents",
		Long: `Ask the task broker to turn each category's design document into work
items and merge them into the store. Items that are still planned keep
their status, files and feedback; items no longer planned are dropped.
Items of other categories are never touched.`,
		Example: `  devloop sync
  devloop sync backend`,
		ValidArgs: []string{constants.CategoryBackend, constants.CategoryFrontend},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			categories := args
			if len(categories) == 0 {
				categories = []string{constants.CategoryBackend, constants.CategoryFrontend}
			}

			e, err := openEngine(ctx, flags, nil)
			if err != nil {
				return err
			}
			p := e.planner()

			reports := make([]*planner.Report, 0, len(categories))
			for _, category := range categories {
				report, err := p.Sync(ctx, category)
				if err != nil {
					return err
				}
				reports = append(reports, report)
				if flags.Output != tui.FormatJSON {
					renderReport(out, report)
				}
			}
			if flags.Output == tui.FormatJSON {
				return out.JSON(reports)
			}
			return nil
		},
	}
	root.AddCommand(cmd)
}

// AddImportCommand adds the import command.
func AddImportCommand(root *cobra.Command, flags *GlobalFlags) {
	var scope []string

	cmd := &cobra.Command{
		Use:   "import <plan-file>",
		Short: "Merge a JSON or YAML plan file into the store",
		Long: `Reconcile the work items in a plan file with the store, the same way sync
does with the task broker's answer. With --category only items of those
categories may be updated or dropped.`,
		Example: `  devloop import plan.yaml
  devloop import plan.json --category backend`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}
			report, err := p.importer().ImportFile(ctx, args[0], scope)
			if err != nil {
				return err
			}
			if flags.Output == tui.FormatJSON {
				return out.JSON(report)
			}
			renderReport(out, report)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&scope, "category", nil, "limit the merge to these categories")
	root.AddCommand(cmd)
}

// importer returns a Planner for plan files only; it has no generator.
func (p *project) importer() *planner.Planner {
	return planner.New(nil, nil, p.store, planner.Paths{
		Requirements: p.cfg.Paths.RequirementsPath(),
		DesignPath:   p.cfg.Paths.DesignPath,
	})
}

func renderReport(out tui.Output, r *planner.Report) {
	scope := "all categories"
	if len(r.Scope) > 0 {
		scope = strings.Join(r.Scope, ", ")
	}
	out.Success(fmt.Sprintf("Synced %s: %d added, %d kept, %d dropped (%d items total)",
		scope, len(r.Added), len(r.Kept), len(r.Dropped), r.Total))
	if len(r.Added) > 0 {
		out.Info("  added:   " + strings.Join(r.Added, ", "))
	}
	if len(r.Dropped) > 0 {
		out.Info("  dropped: " + strings.Join(r.Dropped, ", "))
	}
}
