package ai_test

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/ai"
	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

func TestCodexProvider_Generate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		model    string
		wantArgs []string
	}{
		{name: "model flag", model: "gpt-5-codex", wantArgs: []string{"codex", "exec", "--full-auto", "-m", "gpt-5-codex", "-"}},
		{name: "glm profile", model: "GLM", wantArgs: []string{"codex", "exec", "--full-auto", "--profile", "glm", "-"}},
		{name: "no model", model: "", wantArgs: []string{"codex", "exec", "--full-auto", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fx := &fakeExecutor{stdout: "  FILE: a.go\npackage a\n"}
			p := ai.NewCodexProvider(config.CLIProviderConfig{Binary: "codex"}, fx)

			out, err := p.Generate(testContext(t), &domain.GenerationRequest{
				System:  "sys",
				User:    "user",
				Model:   tt.model,
				WorkDir: "/tmp/project",
			})
			require.NoError(t, err)
			assert.Equal(t, "FILE: a.go\npackage a", out)

			require.Len(t, fx.args, 1)
			assert.Equal(t, tt.wantArgs, fx.args[0])
			assert.Equal(t, "### System ###\nsys\n\n### User ###\nuser", fx.stdin[0])
			assert.Equal(t, "/tmp/project", fx.dirs[0])
		})
	}
}

func TestCodexProvider_Errors(t *testing.T) {
	t.Parallel()

	t.Run("binary missing", func(t *testing.T) {
		t.Parallel()
		p := ai.NewCodexProvider(config.CLIProviderConfig{}, &fakeExecutor{err: exec.ErrNotFound})
		_, err := p.Generate(testContext(t), &domain.GenerationRequest{})
		require.ErrorIs(t, err, dlerrors.ErrProviderInvocation)
		require.ErrorIs(t, err, dlerrors.ErrCommandNotFound)
	})

	t.Run("auth failure", func(t *testing.T) {
		t.Parallel()
		p := ai.NewCodexProvider(config.CLIProviderConfig{}, &fakeExecutor{
			err:    errors.New("exit status 1"),
			stderr: "error: OPENAI_API_KEY is not set",
		})
		_, err := p.Generate(testContext(t), &domain.GenerationRequest{})
		require.ErrorIs(t, err, dlerrors.ErrAPIKeyMissing)
	})

	t.Run("stderr surfaced", func(t *testing.T) {
		t.Parallel()
		p := ai.NewCodexProvider(config.CLIProviderConfig{}, &fakeExecutor{
			err:    errors.New("exit status 2"),
			stderr: "rate limited",
		})
		_, err := p.Generate(testContext(t), &domain.GenerationRequest{})
		require.ErrorIs(t, err, dlerrors.ErrProviderInvocation)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("empty answer", func(t *testing.T) {
		t.Parallel()
		p := ai.NewCodexProvider(config.CLIProviderConfig{}, &fakeExecutor{stdout: "\n\n"})
		_, err := p.Generate(testContext(t), &domain.GenerationRequest{})
		require.ErrorIs(t, err, dlerrors.ErrProviderEmptyResponse)
	})
}

func TestQwenProvider_Generate(t *testing.T) {
	t.Parallel()

	fx := &fakeExecutor{stdout: "answer"}
	p := ai.NewQwenProvider(config.CLIProviderConfig{Binary: "qwen"}, fx)
	assert.Equal(t, "qwen", p.Name())

	out, err := p.Generate(testContext(t), &domain.GenerationRequest{System: "s", User: "u", JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, "answer", out)

	require.Len(t, fx.args, 1)
	assert.Equal(t, []string{"qwen", "-y", "-m", ai.DefaultQwenModel, "-p",
		"### System ###\ns\n\n### User ###\nu" + ai.JSONInstruction}, fx.args[0])
}
