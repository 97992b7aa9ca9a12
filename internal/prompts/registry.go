package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// templateExt is the file extension for prompt templates.
const templateExt = ".tmpl"

// registry holds parsed templates and provides thread-safe access.
type registry struct {
	mu        sync.RWMutex
	templates map[PromptID]*template.Template
	sources   map[PromptID]string
}

// defaultRegistry holds the embedded templates.
//
//nolint:gochecknoglobals // Parsed once from the embedded filesystem
var defaultRegistry = mustLoadEmbedded()

func mustLoadEmbedded() *registry {
	r := &registry{
		templates: make(map[PromptID]*template.Template),
		sources:   make(map[PromptID]string),
	}
	if err := r.loadAll(templateFS, "templates"); err != nil {
		// Embedded templates failing to parse is a build defect.
		panic(fmt.Sprintf("failed to load embedded templates: %v", err))
	}
	return r
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"hasContent": func(s string) bool {
			return strings.TrimSpace(s) != ""
		},
		"upper": strings.ToUpper,
		"join":  strings.Join,
	}
}

func parse(id PromptID, source string) (*template.Template, error) {
	tmpl, err := template.New(string(id)).Funcs(funcMap()).Option("missingkey=zero").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", id, err)
	}
	return tmpl, nil
}

func (r *registry) loadAll(fsys fs.FS, dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading template %s: %w", entry.Name(), err)
		}
		id := PromptID(strings.TrimSuffix(entry.Name(), templateExt))
		tmpl, err := parse(id, string(content))
		if err != nil {
			return err
		}
		r.templates[id] = tmpl
		r.sources[id] = string(content)
	}
	return nil
}

func (r *registry) get(id PromptID) (*template.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dlerrors.ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

func (r *registry) getSource(id PromptID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", dlerrors.ErrTemplateNotFound, id)
	}
	return source, nil
}

func (r *registry) list() []PromptID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]PromptID, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
