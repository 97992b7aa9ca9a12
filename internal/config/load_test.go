package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromPaths_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromPaths(testContext(), "", "")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Engine.MaxAttempts)
	assert.Equal(t, constants.DefaultMaxTicks, cfg.Engine.MaxTicks)
	assert.True(t, cfg.Engine.AllowNoChecks)
	assert.Equal(t, 120*time.Second, cfg.Verification.Timeout)
	assert.False(t, cfg.Review.StrictVerdict)
	assert.Equal(t, constants.DefaultStorePath, cfg.Paths.Store)

	coder, ok := cfg.Role(constants.RoleCoder)
	require.True(t, ok)
	assert.Equal(t, constants.ProviderCodex, coder.Provider)
	reviewer, ok := cfg.Role(constants.RoleReviewer)
	require.True(t, ok)
	assert.Equal(t, "deepseek-chat", reviewer.Model)
}

func TestLoadFromPaths_MissingFilesAreIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := config.LoadFromPaths(testContext(), filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "also-nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Engine.MaxAttempts)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	t.Parallel()

	global := writeConfig(t, `
engine:
  max_attempts: 5
  max_ticks: 10
verification:
  timeout: 3m
roles:
  coder:
    provider: qwen
    model: qwen-coder-turbo
`)
	project := writeConfig(t, `
engine:
  max_attempts: 2
roles:
  coder:
    model: qwen3-coder
review:
  strict_verdict: true
`)

	cfg, err := config.LoadFromPaths(testContext(), project, global)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Engine.MaxAttempts)
	assert.Equal(t, 10, cfg.Engine.MaxTicks)
	assert.Equal(t, 3*time.Minute, cfg.Verification.Timeout)
	assert.True(t, cfg.Review.StrictVerdict)

	coder, _ := cfg.Role(constants.RoleCoder)
	assert.Equal(t, constants.ProviderQwen, coder.Provider)
	assert.Equal(t, "qwen3-coder", coder.Model)

	_, ok := cfg.Role(constants.RoleTaskBroker)
	assert.True(t, ok, "default roles survive partial overrides")
}

func TestLoadFromPaths_CustomEcosystems(t *testing.T) {
	t.Parallel()

	project := writeConfig(t, `
verification:
  ecosystems:
    - name: gradle
      extensions: [".kt"]
      command: ["./gradlew", "test", "--tests", "{unit}"]
`)
	cfg, err := config.LoadFromPaths(testContext(), project, "")
	require.NoError(t, err)
	require.Len(t, cfg.Verification.Ecosystems, 1)
	assert.Equal(t, "gradle", cfg.Verification.Ecosystems[0].Name)
	assert.Equal(t, []string{"./gradlew", "test", "--tests", "{unit}"}, cfg.Verification.Ecosystems[0].Command)
}

func TestLoadFromPaths_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"zero attempts", "engine:\n  max_attempts: 0\n", dlerrors.ErrConfigInvalidEngine},
		{"bad provider", "roles:\n  coder:\n    provider: clippy\n    model: x\n", dlerrors.ErrConfigInvalidRoles},
		{"negative timeout", "verification:\n  timeout: -1s\n", dlerrors.ErrConfigInvalidVerification},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromPaths(testContext(), writeConfig(t, tc.content), "")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadFromPaths_EnvOverride(t *testing.T) {
	t.Setenv("DEVLOOP_ENGINE_MAX_TICKS", "7")

	cfg, err := config.LoadFromPaths(testContext(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.MaxTicks)
}

func TestPathsConfig_Resolve(t *testing.T) {
	t.Parallel()

	p := config.PathsConfig{Root: "/work/proj", Store: "docs/tasks.json", DesignDir: "docs/design"}
	assert.Equal(t, filepath.Join("/work/proj", "docs/tasks.json"), p.StorePath())
	assert.Equal(t, filepath.Join("/work/proj", "docs/design", "backend.md"), p.DesignPath("backend"))
	assert.Equal(t, "/abs/x.json", p.Resolve("/abs/x.json"))
}
