// Package config provides configuration management for devloop.
//
// Configuration is layered with viper: built-in defaults, the global
// ~/.devloop/config.yaml, the project .devloop/config.yaml, then DEVLOOP_*
// environment variables, then CLI flag overrides.
package config

import "time"

// Config is the root configuration.
type Config struct {
	// Roles routes each generation role to a provider and model.
	Roles map[string]RoleConfig `yaml:"roles" mapstructure:"roles"`

	// Providers holds provider-specific settings.
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`

	// Engine bounds the generation loop and the orchestrator.
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`

	// Verification configures check commands.
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`

	// Review configures the review gate policies.
	Review ReviewConfig `yaml:"review" mapstructure:"review"`

	// Paths locates project files.
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
}

// RoleConfig selects the provider answering one role.
type RoleConfig struct {
	// Provider is one of codex, qwen, deepseek, ollama, gemini.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is passed to the provider as-is.
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is used by providers that accept one.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// Timeout overrides the provider timeout for this role.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	Codex    CLIProviderConfig `yaml:"codex" mapstructure:"codex"`
	Qwen     CLIProviderConfig `yaml:"qwen" mapstructure:"qwen"`
	DeepSeek DeepSeekConfig    `yaml:"deepseek" mapstructure:"deepseek"`
	Ollama   OllamaConfig      `yaml:"ollama" mapstructure:"ollama"`
	Gemini   GeminiConfig      `yaml:"gemini" mapstructure:"gemini"`
}

// CLIProviderConfig configures a provider reached through a local CLI.
type CLIProviderConfig struct {
	// Binary is the executable name or path.
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Timeout bounds one invocation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DeepSeekConfig configures the DeepSeek chat-completions API.
type DeepSeekConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OllamaConfig configures a local or remote Ollama server.
// An empty Host falls back to OLLAMA_HOST.
type OllamaConfig struct {
	Host    string        `yaml:"host" mapstructure:"host"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// GeminiConfig configures the Gemini API.
type GeminiConfig struct {
	APIKeyEnv string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EngineConfig bounds generation and scheduling.
type EngineConfig struct {
	// MaxAttempts is the number of generation attempts per item per run.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// MaxTicks is the orchestrator tick ceiling per run.
	MaxTicks int `yaml:"max_ticks" mapstructure:"max_ticks"`

	// AllowNoChecks lets a generation without check files move to review.
	AllowNoChecks bool `yaml:"allow_no_checks" mapstructure:"allow_no_checks"`

	// FeedbackLimit caps log text stored as item feedback, in bytes.
	FeedbackLimit int `yaml:"feedback_limit" mapstructure:"feedback_limit"`
}

// VerificationConfig configures check commands.
type VerificationConfig struct {
	// Timeout is the wall-clock limit for one check command.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Ecosystems replaces the built-in ecosystem table when non-empty.
	Ecosystems []EcosystemConfig `yaml:"ecosystems" mapstructure:"ecosystems"`
}

// EcosystemConfig maps file extensions to one check command template.
type EcosystemConfig struct {
	Name         string   `yaml:"name" mapstructure:"name"`
	Extensions   []string `yaml:"extensions" mapstructure:"extensions"`
	TestSuffixes []string `yaml:"test_suffixes" mapstructure:"test_suffixes"`
	Command      []string `yaml:"command" mapstructure:"command"`
}

// ReviewConfig configures the review gate.
type ReviewConfig struct {
	// StrictVerdict fails closed when the reviewer answer is unusable.
	StrictVerdict bool `yaml:"strict_verdict" mapstructure:"strict_verdict"`

	// RequireChecks sends submissions without check files back to Todo.
	RequireChecks bool `yaml:"require_checks" mapstructure:"require_checks"`
}

// PathsConfig locates project files, relative to Root unless absolute.
type PathsConfig struct {
	Root               string   `yaml:"root" mapstructure:"root"`
	Store              string   `yaml:"store" mapstructure:"store"`
	Requirements       string   `yaml:"requirements" mapstructure:"requirements"`
	DesignDir          string   `yaml:"design_dir" mapstructure:"design_dir"`
	PromptsDir         string   `yaml:"prompts_dir" mapstructure:"prompts_dir"`
	SnapshotDirs       []string `yaml:"snapshot_dirs" mapstructure:"snapshot_dirs"`
	SnapshotExtensions []string `yaml:"snapshot_extensions" mapstructure:"snapshot_extensions"`
	TreeExtensions     []string `yaml:"tree_extensions" mapstructure:"tree_extensions"`
	IgnoreDirs         []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
}

// Role returns the configuration for role and whether it exists.
func (c *Config) Role(role string) (RoleConfig, bool) {
	rc, ok := c.Roles[role]
	return rc, ok
}
