package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/logging"
)

// errorBodyLimit caps how much of a failed response body ends up in an error.
const errorBodyLimit = 300

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// DeepSeekProvider calls the DeepSeek chat-completions API.
type DeepSeekProvider struct {
	config config.DeepSeekConfig
	client *http.Client
	getenv func(string) string
}

// DeepSeekOption configures a DeepSeekProvider.
type DeepSeekOption func(*DeepSeekProvider)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) DeepSeekOption {
	return func(p *DeepSeekProvider) { p.client = c }
}

// WithDeepSeekGetenv sets the environment lookup used for the API key.
func WithDeepSeekGetenv(getenv func(string) string) DeepSeekOption {
	return func(p *DeepSeekProvider) { p.getenv = getenv }
}

// NewDeepSeekProvider creates a DeepSeekProvider.
func NewDeepSeekProvider(cfg config.DeepSeekConfig, opts ...DeepSeekOption) *DeepSeekProvider {
	p := &DeepSeekProvider{
		config: cfg,
		client: http.DefaultClient,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *DeepSeekProvider) Name() string { return constants.ProviderDeepSeek }

// Generate implements Provider.
func (p *DeepSeekProvider) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	key := p.getenv(p.config.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: %s", dlerrors.ErrAPIKeyMissing, p.config.APIKeyEnv)
	}

	runCtx, cancel := context.WithTimeout(ctx, resolveTimeout(req, p.config.Timeout))
	defer cancel()

	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: UserContent(req)},
		},
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode deepseek request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(runCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %w", dlerrors.ErrProviderInvocation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: deepseek: %w", dlerrors.ErrProviderInvocation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read deepseek response: %w", dlerrors.ErrProviderInvocation, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", fmt.Errorf("%w: deepseek rejected %s", dlerrors.ErrAPIKeyMissing, p.config.APIKeyEnv)
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("%w: deepseek status %d: %s", dlerrors.ErrProviderInvocation,
			resp.StatusCode, logging.Excerpt(logging.FilterSensitiveValue(string(data)), errorBodyLimit))
	}

	var decoded chatResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode deepseek response: %w", dlerrors.ErrProviderInvocation, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: deepseek returned no choices", dlerrors.ErrProviderEmptyResponse)
	}
	return nonEmpty(p.Name(), decoded.Choices[0].Message.Content)
}
