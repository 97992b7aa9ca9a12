package changeset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wliublackruvy/agent-based-dev/internal/changeset"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

func TestParse_CreateAndDelete(t *testing.T) {
	t.Parallel()

	cs, err := changeset.Parse("FILE: a.txt\nhello\nDELETE: b.txt")
	require.NoError(t, err)

	content, ok := cs.Content("a.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", content)
	assert.Equal(t, []string{"a.txt"}, cs.CreatedPaths())
	assert.Equal(t, []string{"b.txt"}, cs.Deletions)
}

func TestParse_StripsFences(t *testing.T) {
	t.Parallel()

	cs, err := changeset.Parse("FILE: a.py\n```python\nprint(1)\n```")
	require.NoError(t, err)

	content, _ := cs.Content("a.py")
	assert.Equal(t, "print(1)", content)
}

func TestParse_Preamble(t *testing.T) {
	t.Parallel()

	text := "Sure! Here is the change you asked for.\n\n" +
		"### FILE: src/app.ts\n```ts\nexport const x = 1;\n```\n\n" +
		"**DELETE: src/old.ts**\n"

	cs, err := changeset.Parse(text)
	require.NoError(t, err)

	content, _ := cs.Content("src/app.ts")
	assert.Equal(t, "export const x = 1;", content)
	assert.Equal(t, []string{"src/old.ts"}, cs.Deletions)
}

func TestParse_NoDirectives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"prose only", "I could not complete this task."},
		{"directive without path", "FILE:   \nsome content"},
		{"lowercase keyword", "file: a.txt\nhello"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cs, err := changeset.Parse(tc.text)
			require.ErrorIs(t, err, dlerrors.ErrNoDirectives)
			assert.True(t, cs.IsEmpty())
		})
	}
}

func TestParse_PathConflicts(t *testing.T) {
	t.Parallel()

	t.Run("creation wins over deletion", func(t *testing.T) {
		t.Parallel()
		cs, err := changeset.Parse("DELETE: a.txt\nFILE: a.txt\nnew")
		require.NoError(t, err)
		assert.Empty(t, cs.Deletions)
		content, _ := cs.Content("a.txt")
		assert.Equal(t, "new", content)
	})

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()
		cs, err := changeset.Parse("FILE: a.txt\none\nFILE: b.txt\nbee\nFILE: a.txt\ntwo")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt"}, cs.CreatedPaths())
		content, _ := cs.Content("a.txt")
		assert.Equal(t, "two", content)
	})
}

func TestParse_MultiFileKeepsInnerBlankLines(t *testing.T) {
	t.Parallel()

	text := "FILE: main.go\n\npackage main\n\nfunc main() {}\n\nFILE: README.md\n# Title\n"
	cs, err := changeset.Parse(text)
	require.NoError(t, err)

	main, _ := cs.Content("main.go")
	assert.Equal(t, "package main\n\nfunc main() {}", main)
	readme, _ := cs.Content("README.md")
	assert.Equal(t, "# Title", readme)
}

func TestParse_CRLF(t *testing.T) {
	t.Parallel()

	cs, err := changeset.Parse("FILE: a.txt\r\nhello\r\n")
	require.NoError(t, err)
	content, _ := cs.Content("a.txt")
	assert.Equal(t, "hello", content)
}

func TestParse_DirectiveLikeLinesInsideFence(t *testing.T) {
	t.Parallel()

	text := "### FILE: app.py\n```python\n# FILE: handlers.py\nimport handlers\n# - DELETE: legacy.py once migrated\n```\n" +
		"### FILE: handlers.py\n```python\ndef handle(): pass\n```\n"
	cs, err := changeset.Parse(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py", "handlers.py"}, cs.CreatedPaths())
	assert.Empty(t, cs.Deletions)
	app, _ := cs.Content("app.py")
	assert.Equal(t, "# FILE: handlers.py\nimport handlers\n# - DELETE: legacy.py once migrated", app)
	handlers, _ := cs.Content("handlers.py")
	assert.Equal(t, "def handle(): pass", handlers)
}

func TestParse_UnclosedFenceStillSplits(t *testing.T) {
	t.Parallel()

	text := "FILE: a.py\n```python\nx = 1\n### FILE: b.py\n```python\ny = 2\n```\n"
	cs, err := changeset.Parse(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py", "b.py"}, cs.CreatedPaths())
	a, _ := cs.Content("a.py")
	assert.Equal(t, "x = 1", a)
	b, _ := cs.Content("b.py")
	assert.Equal(t, "y = 2", b)
}
