package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// CommandRunner executes one check command.
// This allows for testing by injecting mock implementations.
type CommandRunner interface {
	// Run executes argv in workDir and returns combined stdout and stderr.
	// A non-zero exit is reported through exitCode with a nil error; err is
	// reserved for commands that could not run at all.
	Run(ctx context.Context, workDir string, argv []string) (output string, exitCode int, err error)
}

// waitDelay bounds how long a canceled command may keep its output pipes open.
const waitDelay = 2 * time.Second

// DefaultCommandRunner implements CommandRunner using os/exec.
type DefaultCommandRunner struct{}

// Run executes argv without a shell. Cancelling ctx kills the command and
// every process it started.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir string, argv []string) (string, int, error) {
	if len(argv) == 0 {
		return "", -1, fmt.Errorf("empty command: %w", dlerrors.ErrEmptyValue)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return "", -1, fmt.Errorf("%s: %w", argv[0], dlerrors.ErrCommandNotFound)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //#nosec G204 -- argv comes from trusted ecosystem configuration
	cmd.Dir = workDir
	isolateProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.String(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return out.String(), exitErr.ExitCode(), nil
	}
	return out.String(), -1, err
}

var _ CommandRunner = (*DefaultCommandRunner)(nil)
