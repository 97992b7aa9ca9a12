package ai

import (
	"context"
	"os/exec"
	"strings"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
)

// glmProfile is the model alias that selects the codex "glm" profile instead
// of passing a model name.
const glmProfile = "glm"

//nolint:gochecknoglobals // Constant-like structure
var codexCLIInfo = cliInfo{
	name:        "codex",
	installHint: "install with: npm install -g @openai/codex",
	envVar:      "OPENAI_API_KEY",
}

// CodexProvider answers requests with `codex exec --full-auto`. The framed
// prompt is passed on stdin.
type CodexProvider struct {
	config   config.CLIProviderConfig
	executor CommandExecutor
}

// NewCodexProvider creates a CodexProvider. A nil executor runs the real CLI.
func NewCodexProvider(cfg config.CLIProviderConfig, executor CommandExecutor) *CodexProvider {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	if cfg.Binary == "" {
		cfg.Binary = constants.ProviderCodex
	}
	return &CodexProvider{config: cfg, executor: executor}
}

// Name implements Provider.
func (p *CodexProvider) Name() string { return constants.ProviderCodex }

// Generate implements Provider.
func (p *CodexProvider) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, resolveTimeout(req, p.config.Timeout))
	defer cancel()

	//nolint:gosec // Binary comes from user configuration
	cmd := exec.CommandContext(runCtx, p.config.Binary, codexArgs(req.Model)...)
	cmd.Dir = req.WorkDir
	cmd.Stdin = strings.NewReader(FramePrompt(req))

	stdout, stderr, err := p.executor.Execute(runCtx, cmd)
	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", wrapCLIError(codexCLIInfo, err, stderr)
	}
	return nonEmpty(p.Name(), string(stdout))
}

func codexArgs(model string) []string {
	args := []string{"exec", "--full-auto"}
	switch {
	case strings.EqualFold(model, glmProfile):
		args = append(args, "--profile", glmProfile)
	case model != "":
		args = append(args, "-m", model)
	}
	return append(args, "-")
}
