package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// Router implements Generator by resolving each role to the provider and
// model named in configuration.
type Router struct {
	roles    map[string]config.RoleConfig
	registry *Registry
	workDir  string
	retry    retryPolicy
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithWorkDir sets the directory CLI providers run in.
func WithWorkDir(dir string) RouterOption {
	return func(r *Router) { r.workDir = dir }
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(attempts int, backoff time.Duration) RouterOption {
	return func(r *Router) { r.retry = retryPolicy{attempts: attempts, backoff: backoff} }
}

// NewRouter creates a Router over roles and registry.
func NewRouter(roles map[string]config.RoleConfig, registry *Registry, opts ...RouterOption) *Router {
	r := &Router{
		roles:    roles,
		registry: registry,
		retry:    retryPolicy{attempts: constants.MaxRetryAttempts, backoff: constants.InitialBackoff},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate implements Generator.
func (r *Router) Generate(ctx context.Context, role, system, user string) (string, error) {
	return r.generate(ctx, role, system, user, false)
}

// GenerateJSON implements Generator.
func (r *Router) GenerateJSON(ctx context.Context, role, system, user string) (string, error) {
	return r.generate(ctx, role, system, user, true)
}

func (r *Router) generate(ctx context.Context, role, system, user string, jsonMode bool) (string, error) {
	rc, ok := r.roles[role]
	if !ok {
		return "", fmt.Errorf("%w: %s", dlerrors.ErrRoleNotConfigured, role)
	}
	provider, err := r.registry.Get(rc.Provider)
	if err != nil {
		return "", fmt.Errorf("role %s: %w", role, err)
	}

	req := &domain.GenerationRequest{
		Role:        role,
		System:      system,
		User:        user,
		Model:       rc.Model,
		Temperature: rc.Temperature,
		JSONMode:    jsonMode,
		Timeout:     rc.Timeout,
		WorkDir:     r.workDir,
	}

	logger := zerolog.Ctx(ctx).With().
		Str("role", role).
		Str("provider", rc.Provider).
		Str("model", rc.Model).
		Logger()

	start := time.Now()
	logger.Debug().Bool("json_mode", jsonMode).Int("prompt_bytes", len(system)+len(user)).Msg("calling provider")

	out, err := r.retry.do(ctx, &logger, func(ctx context.Context) (string, error) {
		return provider.Generate(ctx, req)
	})
	if err != nil {
		logger.Error().Err(err).Msg("provider call failed")
		return "", err
	}

	logger.Debug().
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Int("response_bytes", len(out)).
		Msg("provider answered")
	return out, nil
}
