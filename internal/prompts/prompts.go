// Package prompts provides the role prompts for devloop.
// Default prompts are text/template files embedded at compile time; a project
// may override any of them by placing <id>.tmpl in its prompts directory.
package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"text/template"
)

// ErrTemplateExecution indicates a failure during template execution.
var ErrTemplateExecution = errors.New("template execution failed")

// Render executes an embedded prompt template with data.
func Render(id PromptID, data any) (string, error) {
	tmpl, err := defaultRegistry.get(id)
	if err != nil {
		return "", err
	}
	return execute(id, tmpl, data)
}

// List returns all embedded prompt IDs, sorted.
func List() []PromptID {
	return defaultRegistry.list()
}

// GetTemplate returns the embedded template source for id.
func GetTemplate(id PromptID) (string, error) {
	return defaultRegistry.getSource(id)
}

func execute(id PromptID, tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrTemplateExecution, fmt.Errorf("prompt %s: %w", id, err))
	}
	return buf.String(), nil
}

// Library renders prompts, preferring project overrides over the embedded
// defaults. Overrides are parsed once and cached.
type Library struct {
	dir string

	mu    sync.Mutex
	cache map[PromptID]*template.Template
}

// NewLibrary creates a Library reading overrides from dir. An empty dir
// disables overrides.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir, cache: make(map[PromptID]*template.Template)}
}

// Render executes the template for id with data.
func (l *Library) Render(id PromptID, data any) (string, error) {
	tmpl, err := l.lookup(id)
	if err != nil {
		return "", err
	}
	return execute(id, tmpl, data)
}

// Overridden reports whether the project provides its own template for id.
func (l *Library) Overridden(id PromptID) bool {
	if l.dir == "" {
		return false
	}
	_, err := os.Stat(l.overridePath(id))
	return err == nil
}

func (l *Library) overridePath(id PromptID) string {
	return filepath.Join(l.dir, string(id)+templateExt)
}

func (l *Library) lookup(id PromptID) (*template.Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tmpl, ok := l.cache[id]; ok {
		return tmpl, nil
	}

	tmpl, err := l.load(id)
	if err != nil {
		return nil, err
	}
	l.cache[id] = tmpl
	return tmpl, nil
}

func (l *Library) load(id PromptID) (*template.Template, error) {
	if l.dir != "" {
		content, err := os.ReadFile(l.overridePath(id))
		switch {
		case err == nil:
			return parse(id, string(content))
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading prompt override %s: %w", id, err)
		}
	}
	return defaultRegistry.get(id)
}
