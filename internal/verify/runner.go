package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// Runner verifies check files with a wall-clock limit per command.
type Runner struct {
	catalog Catalog
	runner  CommandRunner
	workDir string
	timeout time.Duration
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithCommandRunner replaces the process runner (for testing).
func WithCommandRunner(cr CommandRunner) RunnerOption {
	return func(r *Runner) { r.runner = cr }
}

// WithTimeout sets the per-command limit.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithEcosystems replaces the default ecosystem catalog.
func WithEcosystems(c Catalog) RunnerOption {
	return func(r *Runner) {
		if len(c) > 0 {
			r.catalog = c
		}
	}
}

// NewRunner creates a Runner working in workDir.
func NewRunner(workDir string, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog: DefaultEcosystems(),
		runner:  &DefaultCommandRunner{},
		workDir: workDir,
		timeout: constants.DefaultVerificationTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the ecosystems this runner uses.
func (r *Runner) Catalog() Catalog {
	return r.catalog
}

// Run executes the ecosystem command selected by the first check file.
// Every outcome is reported in the result; only context cancellation by the
// caller is returned as an error.
func (r *Runner) Run(ctx context.Context, checkFiles []string) (*domain.VerificationResult, error) {
	if len(checkFiles) == 0 {
		return &domain.VerificationResult{NoChecks: true, ExitCode: -1, Log: "no check files found"}, nil
	}
	log := zerolog.Ctx(ctx)

	eco, ok := r.catalog.ForFile(checkFiles[0])
	if !ok {
		msg := fmt.Sprintf("%s: unknown check file type %s", dlerrors.ErrUnknownEcosystem, checkFiles[0])
		log.Warn().Str("file", checkFiles[0]).Msg("no ecosystem for check file")
		return &domain.VerificationResult{ExitCode: -1, Log: msg}, nil
	}

	argv := eco.Argv(checkFiles)
	result := &domain.VerificationResult{
		Ecosystem: eco.Name,
		Command:   strings.Join(argv, " "),
		ExitCode:  -1,
	}

	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	log.Info().
		Str("ecosystem", eco.Name).
		Str("command", result.Command).
		Int("check_files", len(checkFiles)).
		Msg("running checks")

	start := time.Now()
	output, exitCode, err := r.runner.Run(cmdCtx, r.workDir, argv)
	result.Duration = time.Since(start)
	result.Log = output

	switch {
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.TimedOut = true
		result.Log = fmt.Sprintf("check execution timed out (%s)\n%s", r.timeout, output)
		log.Error().Str("command", result.Command).Dur("timeout", r.timeout).Msg("check command timed out")
	case ctx.Err() != nil:
		return result, ctx.Err()
	case errors.Is(err, dlerrors.ErrCommandNotFound):
		result.Log = fmt.Sprintf("command not found: %s", argv[0])
		log.Error().Str("command", argv[0]).Msg("check command not installed")
	case err != nil:
		result.Log = fmt.Sprintf("failed to run %s: %v\n%s", result.Command, err, output)
		log.Error().Err(err).Str("command", result.Command).Msg("check command failed to start")
	default:
		result.ExitCode = exitCode
		result.Passed = exitCode == 0
		log.Info().
			Str("command", result.Command).
			Int("exit_code", exitCode).
			Int64("duration_ms", result.Duration.Milliseconds()).
			Bool("passed", result.Passed).
			Msg("checks finished")
	}
	return result, nil
}
