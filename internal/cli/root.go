// Package cli provides the devloop command-line interface.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wliublackruvy/agent-based-dev/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalLogger is set in PersistentPreRunE and read through GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the logger initialized by the root command. Before
// PersistentPreRunE runs it returns a zero logger that discards output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// commandContext returns cmd's context carrying the CLI logger.
func commandContext(cmd *cobra.Command) context.Context {
	logger := GetLogger()
	return logger.WithContext(cmd.Context())
}

func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "devloop",
		Short: "devloop - plan, generate, verify and review code with AI roles",
		Long: `devloop turns a requirements document into a tracked list of work items and
drives each item through generation, verification and review.

Stages:
  • design   architect roles write backend and frontend design documents
  • sync     the task broker plans work items from a design document
  • code     the coder role generates a change set until its checks pass
  • review   the reviewer role and the check files decide each submission
  • run      review before generate, one item per tick, until the queue drains`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd, flags); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			if err := tui.ValidateFormat(flags.Output); err != nil {
				return err
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddDesignCommand(cmd, flags)
	AddSyncCommand(cmd, flags)
	AddImportCommand(cmd, flags)
	AddCodeCommand(cmd, flags)
	AddReviewCommand(cmd, flags)
	AddRunCommand(cmd, flags)
	AddStatusCommand(cmd, flags)
	AddShowCommand(cmd, flags)
	AddResetCommand(cmd, flags)
	AddDoctorCommand(cmd, flags)
	AddWatchCommand(cmd, flags)
	AddConfigCommand(cmd, flags)

	return cmd
}

func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command. Errors are printed in the selected
// output format before they are returned.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	defer CloseLogFile()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format := flags.Output
		if tui.ValidateFormat(format) != nil {
			format = tui.FormatText
		}
		tui.NewOutput(cmd.ErrOrStderr(), format).Error(err)
	}
	return err
}
