package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/ai"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

func TestFramePrompt(t *testing.T) {
	t.Parallel()

	req := &domain.GenerationRequest{System: "be terse", User: "write a.go"}
	assert.Equal(t, "### System ###\nbe terse\n\n### User ###\nwrite a.go", ai.FramePrompt(req))

	req.JSONMode = true
	assert.Equal(t, "### System ###\nbe terse\n\n### User ###\nwrite a.go"+ai.JSONInstruction, ai.FramePrompt(req))
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "fenced json block",
			input:  "Here you go:\n```json\n{\"status\": \"PASS\"}\n```\nthanks {not this}",
			want:   `{"status": "PASS"}`,
			wantOK: true,
		},
		{
			name:   "plain fence",
			input:  "```\n{\"a\": 1}\n```",
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "first brace to last brace",
			input:  `verdict: {"status":"FAIL","reason":"x {y}"} done`,
			want:   `{"status":"FAIL","reason":"x {y}"}`,
			wantOK: true,
		},
		{
			name:  "no object",
			input: "I cannot answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ai.ExtractJSON(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	t.Run("normalizes status", func(t *testing.T) {
		t.Parallel()
		v, err := ai.ParseVerdict(`{"status":" pass ","reason":"looks fine"}`)
		require.NoError(t, err)
		assert.True(t, v.Passed())
		assert.Equal(t, "looks fine", v.Reason)
	})

	t.Run("fail verdict", func(t *testing.T) {
		t.Parallel()
		v, err := ai.ParseVerdict("```json\n{\"status\":\"FAIL\",\"reason\":\"no error handling\"}\n```")
		require.NoError(t, err)
		assert.False(t, v.Passed())
		assert.Equal(t, domain.VerdictFail, v.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		_, err := ai.ParseVerdict(`{"status":"MAYBE"}`)
		require.ErrorIs(t, err, dlerrors.ErrInvalidVerdict)
	})

	t.Run("not json", func(t *testing.T) {
		t.Parallel()
		_, err := ai.ParseVerdict("LGTM")
		require.ErrorIs(t, err, dlerrors.ErrInvalidVerdict)
	})

	t.Run("broken json", func(t *testing.T) {
		t.Parallel()
		_, err := ai.ParseVerdict(`{"status": PASS}`)
		require.ErrorIs(t, err, dlerrors.ErrInvalidVerdict)
	})
}
