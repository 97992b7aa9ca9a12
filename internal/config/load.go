package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// newViperInstance creates a viper instance with defaults and DEVLOOP_ env support.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DEVLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr) || os.IsNotExist(err)
}

func unmarshalAndValidate(ctx context.Context, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Int("engine.max_attempts", cfg.Engine.MaxAttempts).
		Int("engine.max_ticks", cfg.Engine.MaxTicks).
		Dur("verification.timeout", cfg.Verification.Timeout).
		Str("paths.store", cfg.Paths.Store).
		Int("roles", len(cfg.Roles)).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration with this precedence (highest first):
//  1. Environment variables (DEVLOOP_* prefix)
//  2. Project config (.devloop/config.yaml)
//  3. Global config (~/.devloop/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not errors.
func Load(ctx context.Context) (*Config, error) {
	global, err := GlobalConfigPath()
	if err != nil {
		global = ""
	}
	return LoadFromPaths(ctx, ProjectConfigPath(), global)
}

// LoadFromPaths loads configuration from specific files. Either path may be
// empty to skip that layer.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// Overrides carries CLI flag values. Zero values leave config untouched.
type Overrides struct {
	Root          string
	Store         string
	MaxAttempts   int
	MaxTicks      int
	StrictVerdict *bool
	RequireChecks *bool
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// then validates again. A Root override also moves the project config file
// below that root.
func LoadWithOverrides(ctx context.Context, overrides *Overrides) (*Config, error) {
	project := ProjectConfigPath()
	if overrides != nil && overrides.Root != "" {
		project = filepath.Join(overrides.Root, project)
	}
	global, err := GlobalConfigPath()
	if err != nil {
		global = ""
	}

	cfg, err := LoadFromPaths(ctx, project, global)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Root != "" {
		cfg.Paths.Root = o.Root
	}
	if o.Store != "" {
		cfg.Paths.Store = o.Store
	}
	if o.MaxAttempts != 0 {
		cfg.Engine.MaxAttempts = o.MaxAttempts
	}
	if o.MaxTicks != 0 {
		cfg.Engine.MaxTicks = o.MaxTicks
	}
	if o.StrictVerdict != nil {
		cfg.Review.StrictVerdict = *o.StrictVerdict
	}
	if o.RequireChecks != nil {
		cfg.Review.RequireChecks = *o.RequireChecks
	}
}

// viperDecoderOption lets duration fields be written as "120s" or "3m".
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
