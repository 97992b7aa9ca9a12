package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// ollamaChatter is the subset of the Ollama client used here.
type ollamaChatter interface {
	Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error
}

// OllamaProvider answers requests through an Ollama server.
type OllamaProvider struct {
	config config.OllamaConfig
	client ollamaChatter
}

// NewOllamaProvider creates an OllamaProvider. An empty host falls back to
// OLLAMA_HOST and the Ollama default.
func NewOllamaProvider(cfg config.OllamaConfig) (*OllamaProvider, error) {
	var client *ollama.Client
	if cfg.Host != "" {
		base, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("%w: ollama host %q: %w", dlerrors.ErrConfigInvalidProvider, cfg.Host, err)
		}
		client = ollama.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
	}
	return &OllamaProvider{config: cfg, client: client}, nil
}

// Name implements Provider.
func (p *OllamaProvider) Name() string { return constants.ProviderOllama }

// Generate implements Provider.
func (p *OllamaProvider) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, resolveTimeout(req, p.config.Timeout))
	defer cancel()

	stream := false
	chatReq := &ollama.ChatRequest{
		Model: req.Model,
		Messages: []ollama.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: UserContent(req)},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": req.Temperature},
	}
	if req.JSONMode {
		chatReq.Format = json.RawMessage(`"json"`)
	}

	var out strings.Builder
	err := p.client.Chat(runCtx, chatReq, func(resp ollama.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: ollama chat failed: %w", dlerrors.ErrProviderInvocation, err)
	}
	return nonEmpty(p.Name(), out.String())
}
