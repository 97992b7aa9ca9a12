package config_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

type fakeExecutor struct {
	installed map[string]string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if _, ok := f.installed[file]; ok {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (f *fakeExecutor) Run(_ context.Context, name string, _ ...string) (string, error) {
	return f.installed[name], nil
}

func TestToolDetector_Detect(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Roles = map[string]config.RoleConfig{
		constants.RoleCoder:    {Provider: constants.ProviderCodex, Model: "gpt-5-codex"},
		constants.RoleReviewer: {Provider: constants.ProviderDeepSeek, Model: "deepseek-chat"},
	}
	exec := &fakeExecutor{installed: map[string]string{
		"codex":  "codex-cli 0.46.0",
		"pytest": "pytest 8.3.2",
	}}
	env := map[string]string{}
	d := config.NewToolDetectorWithExecutor(exec, func(k string) string { return env[k] })

	res, err := d.Detect(testContext(), cfg, []string{"pytest", "mvn", "pytest"})
	require.NoError(t, err)

	byName := map[string]config.Tool{}
	for _, tool := range res.Tools {
		byName[tool.Name] = tool
	}
	require.Len(t, byName, 4)
	assert.Equal(t, config.ToolStatusInstalled, byName["codex"].Status)
	assert.Equal(t, "0.46.0", byName["codex"].Version)
	assert.Equal(t, config.ToolStatusMissing, byName["deepseek"].Status)
	assert.True(t, byName["deepseek"].Required)
	assert.Equal(t, config.ToolStatusInstalled, byName["pytest"].Status)
	assert.False(t, byName["mvn"].Required)

	assert.True(t, res.HasMissingRequired)
	missing := res.MissingRequiredTools()
	require.Len(t, missing, 1)
	assert.Contains(t, config.FormatMissingToolsError(missing), "DEEPSEEK_API_KEY")
}

func TestToolStatus_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(config.Tool{Name: "qwen", Status: config.ToolStatusInstalled})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"installed"`)
}
