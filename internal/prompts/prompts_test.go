package prompts_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/prompts"
)

func TestList_AllRolesEmbedded(t *testing.T) {
	t.Parallel()

	ids := prompts.List()
	for _, id := range []prompts.PromptID{
		prompts.CoderSystem, prompts.CoderTask,
		prompts.ReviewerSystem, prompts.ReviewerSubmission,
		prompts.ArchitectBackend, prompts.ArchitectFrontend, prompts.ArchitectInput,
		prompts.TaskBrokerSystem, prompts.TaskBrokerInput,
	} {
		assert.Contains(t, ids, id)
	}
}

func TestRender_CoderTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        prompts.CoderTaskData
		contains    []string
		notContains []string
	}{
		{
			name: "first attempt",
			data: prompts.CoderTaskData{
				ItemID:      "BE-001",
				Title:       "Health endpoint",
				Description: "Add GET /health",
				Attempt:     1,
				MaxAttempts: 3,
			},
			contains:    []string{"# Work item BE-001: Health endpoint", "Add GET /health", "FILE: <relative path>", "attempt 1 of 3"},
			notContains: []string{"Feedback from the previous attempt", "## Current code"},
		},
		{
			name: "retry with feedback and snapshot",
			data: prompts.CoderTaskData{
				ItemID:      "BE-001",
				Title:       "Health endpoint",
				Description: "Add GET /health",
				Feedback:    "Compilation failure: missing symbol",
				Snapshot:    "=== src/Health.java ===\nclass Health {}",
				Attempt:     2,
				MaxAttempts: 3,
			},
			contains: []string{"Compilation failure: missing symbol", "=== src/Health.java ===", "attempt 2 of 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := prompts.Render(prompts.CoderTask, tt.data)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRender_ArchitectInputWithBackendReference(t *testing.T) {
	t.Parallel()

	out, err := prompts.Render(prompts.ArchitectInput, prompts.ArchitectData{
		Requirements:     "users can log in",
		BackendReference: "POST /auth/login",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "BACKEND API REFERENCE")
	assert.Contains(t, out, "POST /auth/login")
	assert.Contains(t, out, "(none)")
}

func TestRender_TaskBrokerInput(t *testing.T) {
	t.Parallel()

	out, err := prompts.Render(prompts.TaskBrokerInput, prompts.TaskBrokerData{Category: "backend", Design: "# API"})
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY: BACKEND")
	assert.Contains(t, out, "CURRENT WORK ITEMS:\n[]")
}

func TestRender_UnknownID(t *testing.T) {
	t.Parallel()

	_, err := prompts.Render("nope", nil)
	require.ErrorIs(t, err, dlerrors.ErrTemplateNotFound)

	_, err = prompts.GetTemplate("nope")
	require.ErrorIs(t, err, dlerrors.ErrTemplateNotFound)
}

func TestLibrary_Override(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coder_system.tmpl"), []byte("custom coder for {{.ItemID}}"), 0o600))

	lib := prompts.NewLibrary(dir)
	assert.True(t, lib.Overridden(prompts.CoderSystem))
	assert.False(t, lib.Overridden(prompts.ReviewerSystem))

	out, err := lib.Render(prompts.CoderSystem, prompts.CoderTaskData{ItemID: "X-1"})
	require.NoError(t, err)
	assert.Equal(t, "custom coder for X-1", out)

	def, err := lib.Render(prompts.ReviewerSystem, nil)
	require.NoError(t, err)
	src, err := prompts.GetTemplate(prompts.ReviewerSystem)
	require.NoError(t, err)
	assert.Equal(t, src, def)
}

func TestLibrary_BrokenOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coder_task.tmpl"), []byte("{{.Title"), 0o600))

	_, err := prompts.NewLibrary(dir).Render(prompts.CoderTask, prompts.CoderTaskData{})
	require.Error(t, err)
}

func TestLibrary_NoDir(t *testing.T) {
	t.Parallel()

	lib := prompts.NewLibrary("")
	assert.False(t, lib.Overridden(prompts.CoderSystem))
	out, err := lib.Render(prompts.CoderSystem, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
