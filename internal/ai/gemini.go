package ai

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// geminiModels is the subset of genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider answers requests through the Gemini API. The client is
// created on first use so a missing key only fails roles routed here.
type GeminiProvider struct {
	config config.GeminiConfig
	getenv func(string) string

	mu     sync.Mutex
	models geminiModels
}

// GeminiOption configures a GeminiProvider.
type GeminiOption func(*GeminiProvider)

// WithGeminiGetenv sets the environment lookup used for the API key.
func WithGeminiGetenv(getenv func(string) string) GeminiOption {
	return func(p *GeminiProvider) { p.getenv = getenv }
}

// WithGeminiModels injects the model service, skipping client creation.
func WithGeminiModels(m geminiModels) GeminiOption {
	return func(p *GeminiProvider) { p.models = m }
}

// NewGeminiProvider creates a GeminiProvider.
func NewGeminiProvider(cfg config.GeminiConfig, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{config: cfg, getenv: os.Getenv}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return constants.ProviderGemini }

func (p *GeminiProvider) modelService(ctx context.Context) (geminiModels, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.models != nil {
		return p.models, nil
	}

	key := p.getenv(p.config.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: %s", dlerrors.ErrAPIKeyMissing, p.config.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %w", dlerrors.ErrProviderInvocation, err)
	}
	p.models = client.Models
	return p.models, nil
}

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	models, err := p.modelService(ctx)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, resolveTimeout(req, p.config.Timeout))
	defer cancel()

	temperature := float32(req.Temperature)
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temperature,
	}
	if req.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromText(UserContent(req), genai.RoleUser)}
	resp, err := models.GenerateContent(runCtx, req.Model, contents, genCfg)
	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: gemini: %w", dlerrors.ErrProviderInvocation, err)
	}
	return nonEmpty(p.Name(), resp.Text())
}
