// Package ai routes generation roles to the providers that answer them.
//
// Providers are either local CLIs (codex, qwen) driven through os/exec, or
// remote APIs (DeepSeek over HTTP, Ollama, Gemini). The rest of devloop only
// sees the Generator interface and never knows which provider answered.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// Generator is the generation boundary used by the cycle controller, the
// review gate and the planner.
type Generator interface {
	// Generate asks role for free-form text.
	Generate(ctx context.Context, role, system, user string) (string, error)

	// GenerateJSON asks role for a bare JSON answer.
	GenerateJSON(ctx context.Context, role, system, user string) (string, error)
}

// Provider answers a single generation request.
type Provider interface {
	// Name returns the provider name used in role configuration.
	Name() string

	// Generate returns the provider's raw text answer.
	Generate(ctx context.Context, req *domain.GenerationRequest) (string, error)
}

// CommandExecutor abstracts subprocess execution so CLI providers can be
// tested without the real binaries.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr, and any error.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor runs commands with os/exec.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// cliInfo carries provider-specific text for error messages.
type cliInfo struct {
	name        string
	installHint string
	envVar      string
}

// wrapCLIError turns a failed CLI invocation into a sentinel-wrapped error.
func wrapCLIError(info cliInfo, err error, stderr []byte) error {
	stderrStr := strings.TrimSpace(string(stderr))

	if errors.Is(err, exec.ErrNotFound) || strings.Contains(stderrStr, "command not found") {
		return fmt.Errorf("%w: %s CLI not found (%s): %w",
			dlerrors.ErrProviderInvocation, info.name, info.installHint, dlerrors.ErrCommandNotFound)
	}

	lower := strings.ToLower(stderrStr)
	if strings.Contains(lower, "api key") || strings.Contains(lower, "authentication") ||
		(info.envVar != "" && strings.Contains(stderrStr, info.envVar)) {
		return fmt.Errorf("%w: %s: %w", dlerrors.ErrProviderInvocation, stderrStr, dlerrors.ErrAPIKeyMissing)
	}

	if stderrStr != "" {
		return fmt.Errorf("%w: %s: %s", dlerrors.ErrProviderInvocation, info.name, stderrStr)
	}
	return fmt.Errorf("%w: %s: %w", dlerrors.ErrProviderInvocation, info.name, err)
}

// resolveTimeout picks the request timeout, then the provider timeout, then
// the global default.
func resolveTimeout(req *domain.GenerationRequest, providerTimeout time.Duration) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if providerTimeout > 0 {
		return providerTimeout
	}
	return constants.DefaultProviderTimeout
}

// nonEmpty trims out and reports ErrProviderEmptyResponse when nothing is left.
func nonEmpty(provider, out string) (string, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: %s", dlerrors.ErrProviderEmptyResponse, provider)
	}
	return out, nil
}
