package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wliublackruvy/agent-based-dev/internal/signal"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
	"github.com/wliublackruvy/agent-based-dev/internal/watch"
)

// AddWatchCommand adds the watch command.
func AddWatchCommand(root *cobra.Command, flags *GlobalFlags) {
	var (
		scope    []string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <plan-file>",
		Short: "Re-import a plan file whenever it changes",
		Long: `Import a plan file, then keep importing it each time it is saved. Bursts
of writes are coalesced. A plan that fails to parse is reported and the
watch continues. Stop with Ctrl+C.`,
		Example: `  devloop watch plan.yaml --category backend`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := signal.NewHandler(commandContext(cmd))
			defer h.Stop()
			ctx := h.Context()
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}
			importer := p.importer()

			onChange := func(ctx context.Context, path string) error {
				report, err := importer.ImportFile(ctx, path, scope)
				if err != nil {
					out.Warning(fmt.Sprintf("%s not imported: %v", path, err))
					return err
				}
				if flags.Output == tui.FormatJSON {
					return out.JSON(report)
				}
				renderReport(out, report)
				return nil
			}

			// A broken plan at startup is reported the same way as later edits.
			_ = onChange(ctx, args[0])
			return watch.New(args[0], onChange, watch.WithDebounce(debounce)).Run(ctx)
		},
	}
	cmd.Flags().StringSliceVar(&scope, "category", nil, "limit the merge to these categories")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-importing (default 500ms)")
	root.AddCommand(cmd)
}
