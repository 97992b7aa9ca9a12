package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
	"github.com/wliublackruvy/agent-based-dev/internal/verify"
)

var errMissingTools = errors.New("required tools are unavailable") //nolint:gochecknoglobals // doctor exit status

// AddDoctorCommand adds the doctor command.
func AddDoctorCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check providers and check tools",
		Long: `Probe every provider a role is routed to and every check command the
verification ecosystems use. Providers are required; check tools are
reported but optional.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}
			result, err := config.NewToolDetector().Detect(ctx, p.cfg, checkCommands(ecosystemCatalog(p.cfg.Verification)))
			if err != nil {
				return err
			}

			if flags.Output == tui.FormatJSON {
				if err := out.JSON(result); err != nil {
					return err
				}
			} else {
				renderTools(cmd, result)
				if logPath, err := LogFilePath(); err == nil {
					out.Info("\nlog file: " + logPath)
				}
			}

			if result.HasMissingRequired {
				return fmt.Errorf("%w\n%s", errMissingTools, config.FormatMissingToolsError(result.MissingRequiredTools()))
			}
			return nil
		},
	}
	root.AddCommand(cmd)
}

// checkCommands returns the executable of every ecosystem command.
func checkCommands(c verify.Catalog) []string {
	names := make([]string, 0, len(c))
	for _, e := range c {
		if len(e.Command) > 0 {
			names = append(names, e.Command[0])
		}
	}
	return names
}

func renderTools(cmd *cobra.Command, result *config.ToolDetectionResult) {
	t := tui.NewTable(cmd.OutOrStdout(),
		tui.Column{Name: "TOOL"},
		tui.Column{Name: "KIND"},
		tui.Column{Name: "STATUS"},
		tui.Column{Name: "VERSION"},
		tui.Column{Name: "DETAIL", Width: 50},
	)
	for _, tool := range result.Tools {
		detail := tool.Detail
		if tool.Status == config.ToolStatusMissing && tool.Hint != "" {
			detail = tool.Hint
		}
		t.Row(tool.Name, tool.Kind, tool.Status.String(), tool.Version, detail)
	}
	t.Render()
}
