package ai

import (
	"context"
	"os/exec"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
)

// DefaultQwenModel is used when a role routed to qwen names no model.
const DefaultQwenModel = "qwen-coder-turbo"

//nolint:gochecknoglobals // Constant-like structure
var qwenCLIInfo = cliInfo{
	name:        "qwen",
	installHint: "install with: npm install -g @qwen-code/qwen-code",
	envVar:      "DASHSCOPE_API_KEY",
}

// QwenProvider answers requests with `qwen -y -m <model> -p <prompt>`.
type QwenProvider struct {
	config   config.CLIProviderConfig
	executor CommandExecutor
}

// NewQwenProvider creates a QwenProvider. A nil executor runs the real CLI.
func NewQwenProvider(cfg config.CLIProviderConfig, executor CommandExecutor) *QwenProvider {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	if cfg.Binary == "" {
		cfg.Binary = constants.ProviderQwen
	}
	return &QwenProvider{config: cfg, executor: executor}
}

// Name implements Provider.
func (p *QwenProvider) Name() string { return constants.ProviderQwen }

// Generate implements Provider.
func (p *QwenProvider) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, resolveTimeout(req, p.config.Timeout))
	defer cancel()

	model := req.Model
	if model == "" {
		model = DefaultQwenModel
	}

	//nolint:gosec // Binary comes from user configuration
	cmd := exec.CommandContext(runCtx, p.config.Binary, "-y", "-m", model, "-p", FramePrompt(req))
	cmd.Dir = req.WorkDir

	stdout, stderr, err := p.executor.Execute(runCtx, cmd)
	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", wrapCLIError(qwenCLIInfo, err, stderr)
	}
	return nonEmpty(p.Name(), string(stdout))
}
