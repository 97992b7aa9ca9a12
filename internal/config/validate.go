package config

import (
	"slices"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// KnownProviders lists provider names a role may use.
func KnownProviders() []string {
	return []string{
		constants.ProviderCodex,
		constants.ProviderQwen,
		constants.ProviderDeepSeek,
		constants.ProviderOllama,
		constants.ProviderGemini,
	}
}

// Validate checks cfg for values the engine cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateEngine(&cfg.Engine); err != nil {
		return err
	}
	if err := validateVerification(&cfg.Verification); err != nil {
		return err
	}
	if err := validateRoles(cfg.Roles); err != nil {
		return err
	}
	if cfg.Providers.DeepSeek.BaseURL == "" {
		return errors.Wrap(errors.ErrConfigInvalidProvider, "providers.deepseek.base_url must not be empty")
	}
	if cfg.Paths.Store == "" {
		return errors.Wrap(errors.ErrConfigInvalidPaths, "paths.store must not be empty")
	}
	return nil
}

func validateEngine(e *EngineConfig) error {
	if e.MaxAttempts < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidEngine, "engine.max_attempts must be at least 1, got %d", e.MaxAttempts)
	}
	if e.MaxTicks < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidEngine, "engine.max_ticks must be at least 1, got %d", e.MaxTicks)
	}
	if e.FeedbackLimit < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidEngine, "engine.feedback_limit must not be negative, got %d", e.FeedbackLimit)
	}
	return nil
}

func validateVerification(v *VerificationConfig) error {
	if v.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidVerification, "verification.timeout must be positive, got %s", v.Timeout)
	}
	for i, eco := range v.Ecosystems {
		if eco.Name == "" || len(eco.Extensions) == 0 || len(eco.Command) == 0 {
			return errors.Wrapf(errors.ErrConfigInvalidVerification, "verification.ecosystems[%d] needs name, extensions and command", i)
		}
	}
	return nil
}

func validateRoles(roles map[string]RoleConfig) error {
	known := KnownProviders()
	for name, rc := range roles {
		if !slices.Contains(known, rc.Provider) {
			return errors.Wrapf(errors.ErrConfigInvalidRoles, "roles.%s.provider %q is not one of %v", name, rc.Provider, known)
		}
		if rc.Model == "" {
			return errors.Wrapf(errors.ErrConfigInvalidRoles, "roles.%s.model must not be empty", name)
		}
		if rc.Temperature < 0 || rc.Temperature > 2 {
			return errors.Wrapf(errors.ErrConfigInvalidRoles, "roles.%s.temperature must be within [0, 2], got %g", name, rc.Temperature)
		}
	}
	return nil
}
