package config

import (
	"github.com/spf13/viper"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Roles: map[string]RoleConfig{
			constants.RoleArchitectBackend:  {Provider: constants.ProviderCodex, Model: "gpt-5", Temperature: 0.2},
			constants.RoleArchitectFrontend: {Provider: constants.ProviderCodex, Model: "gpt-5", Temperature: 0.3},
			constants.RoleTaskBroker:        {Provider: constants.ProviderDeepSeek, Model: "deepseek-chat", Temperature: 0.1},
			constants.RoleCoder:             {Provider: constants.ProviderCodex, Model: "gpt-5-codex", Temperature: 0.1},
			constants.RoleReviewer:          {Provider: constants.ProviderDeepSeek, Model: "deepseek-chat", Temperature: 0.1},
		},
		Providers: ProvidersConfig{
			Codex:    CLIProviderConfig{Binary: "codex", Timeout: constants.DefaultProviderTimeout},
			Qwen:     CLIProviderConfig{Binary: "qwen", Timeout: constants.DefaultProviderTimeout},
			DeepSeek: DeepSeekConfig{BaseURL: "https://api.deepseek.com", APIKeyEnv: "DEEPSEEK_API_KEY", Timeout: constants.DefaultProviderTimeout},
			Ollama:   OllamaConfig{Timeout: constants.DefaultProviderTimeout},
			Gemini:   GeminiConfig{APIKeyEnv: "GEMINI_API_KEY", Timeout: constants.DefaultProviderTimeout},
		},
		Engine: EngineConfig{
			MaxAttempts:   constants.DefaultMaxAttempts,
			MaxTicks:      constants.DefaultMaxTicks,
			AllowNoChecks: true,
			FeedbackLimit: constants.DefaultFeedbackLimit,
		},
		Verification: VerificationConfig{
			Timeout: constants.DefaultVerificationTimeout,
		},
		Paths: PathsConfig{
			Root:               ".",
			Store:              constants.DefaultStorePath,
			Requirements:       constants.DefaultRequirementsPath,
			DesignDir:          constants.DefaultDesignDir,
			PromptsDir:         constants.DefaultPromptsDir,
			SnapshotDirs:       []string{"src"},
			SnapshotExtensions: []string{".java", ".py", ".go", ".ts", ".tsx", ".js", ".vue", ".yml", ".yaml", ".xml"},
			TreeExtensions:     []string{".py", ".ts", ".tsx", ".js", ".md", ".json", ".java", ".xml", ".vue", ".go"},
			IgnoreDirs:         []string{".git", "venv", "__pycache__", constants.AppHome, "node_modules", ".pytest_cache", "target"},
		},
	}
}

// setDefaults mirrors DefaultConfig onto v.
// IMPORTANT: Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	roles := make(map[string]any, len(d.Roles))
	for name, rc := range d.Roles {
		roles[name] = map[string]any{
			"provider":    rc.Provider,
			"model":       rc.Model,
			"temperature": rc.Temperature,
		}
	}
	v.SetDefault("roles", roles)

	v.SetDefault("providers.codex.binary", d.Providers.Codex.Binary)
	v.SetDefault("providers.codex.timeout", d.Providers.Codex.Timeout.String())
	v.SetDefault("providers.qwen.binary", d.Providers.Qwen.Binary)
	v.SetDefault("providers.qwen.timeout", d.Providers.Qwen.Timeout.String())
	v.SetDefault("providers.deepseek.base_url", d.Providers.DeepSeek.BaseURL)
	v.SetDefault("providers.deepseek.api_key_env", d.Providers.DeepSeek.APIKeyEnv)
	v.SetDefault("providers.deepseek.timeout", d.Providers.DeepSeek.Timeout.String())
	v.SetDefault("providers.ollama.host", d.Providers.Ollama.Host)
	v.SetDefault("providers.ollama.timeout", d.Providers.Ollama.Timeout.String())
	v.SetDefault("providers.gemini.api_key_env", d.Providers.Gemini.APIKeyEnv)
	v.SetDefault("providers.gemini.timeout", d.Providers.Gemini.Timeout.String())

	v.SetDefault("engine.max_attempts", d.Engine.MaxAttempts)
	v.SetDefault("engine.max_ticks", d.Engine.MaxTicks)
	v.SetDefault("engine.allow_no_checks", d.Engine.AllowNoChecks)
	v.SetDefault("engine.feedback_limit", d.Engine.FeedbackLimit)

	v.SetDefault("verification.timeout", d.Verification.Timeout.String())

	v.SetDefault("review.strict_verdict", d.Review.StrictVerdict)
	v.SetDefault("review.require_checks", d.Review.RequireChecks)

	v.SetDefault("paths.root", d.Paths.Root)
	v.SetDefault("paths.store", d.Paths.Store)
	v.SetDefault("paths.requirements", d.Paths.Requirements)
	v.SetDefault("paths.design_dir", d.Paths.DesignDir)
	v.SetDefault("paths.prompts_dir", d.Paths.PromptsDir)
	v.SetDefault("paths.snapshot_dirs", d.Paths.SnapshotDirs)
	v.SetDefault("paths.snapshot_extensions", d.Paths.SnapshotExtensions)
	v.SetDefault("paths.tree_extensions", d.Paths.TreeExtensions)
	v.SetDefault("paths.ignore_dirs", d.Paths.IgnoreDirs)
}
