// Package planner turns a requirements document into design documents and
// work items, and merges re-planned items into the store without losing
// runtime state.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/ai"
	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
	"github.com/wliublackruvy/agent-based-dev/internal/prompts"
	"github.com/wliublackruvy/agent-based-dev/internal/workitem"
	"github.com/wliublackruvy/agent-based-dev/internal/workspace"
)

// Paths locates the planning documents.
type Paths struct {
	Requirements string
	DesignPath   func(category string) string
}

// Report describes one reconciliation.
type Report struct {
	Scope   []string `json:"scope,omitempty"`
	Added   []string `json:"added"`
	Kept    []string `json:"kept"`
	Dropped []string `json:"dropped"`
	Total   int      `json:"total"`
}

// DesignResult names a written design document.
type DesignResult struct {
	Category string `json:"category"`
	Path     string `json:"path"`
	Updated  bool   `json:"updated"`
}

// Planner runs the design, sync and import stages.
type Planner struct {
	generator ai.Generator
	prompts   *prompts.Library
	store     workitem.Store
	paths     Paths
}

// New creates a Planner.
func New(gen ai.Generator, lib *prompts.Library, store workitem.Store, paths Paths) *Planner {
	return &Planner{generator: gen, prompts: lib, store: store, paths: paths}
}

type architect struct {
	role   string
	prompt prompts.PromptID
}

//nolint:gochecknoglobals // Fixed role table
var architects = map[string]architect{
	constants.CategoryBackend:  {role: constants.RoleArchitectBackend, prompt: prompts.ArchitectBackend},
	constants.CategoryFrontend: {role: constants.RoleArchitectFrontend, prompt: prompts.ArchitectFrontend},
}

// Design writes the design document of each category. The backend design
// is always written first so the frontend can follow its API.
func (p *Planner) Design(ctx context.Context, categories []string) ([]DesignResult, error) {
	requirements, ok, err := workspace.ReadDocument(p.paths.Requirements)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(requirements) == "" {
		return nil, fmt.Errorf("%s: %w", p.paths.Requirements, dlerrors.ErrRequirementsMissing)
	}

	ordered, err := designOrder(categories)
	if err != nil {
		return nil, err
	}

	results := make([]DesignResult, 0, len(ordered))
	for _, category := range ordered {
		res, err := p.designOne(ctx, category, requirements)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func designOrder(categories []string) ([]string, error) {
	if len(categories) == 0 {
		return []string{constants.CategoryBackend, constants.CategoryFrontend}, nil
	}
	for _, c := range categories {
		if _, ok := architects[c]; !ok {
			return nil, fmt.Errorf("design category %q: %w", c, dlerrors.ErrInvalidArgument)
		}
	}
	var out []string
	for _, c := range []string{constants.CategoryBackend, constants.CategoryFrontend} {
		if slices.Contains(categories, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Planner) designOne(ctx context.Context, category, requirements string) (*DesignResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("category", category).Logger()
	arch := architects[category]
	path := p.paths.DesignPath(category)

	existing, updated, err := workspace.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	data := prompts.ArchitectData{Requirements: requirements, ExistingDesign: existing}
	if category == constants.CategoryFrontend {
		if data.BackendReference, _, err = workspace.ReadDocument(p.paths.DesignPath(constants.CategoryBackend)); err != nil {
			return nil, err
		}
		if data.BackendReference == "" {
			logger.Warn().Msg("no backend design to reference")
		}
	}

	system, err := p.prompts.Render(arch.prompt, data)
	if err != nil {
		return nil, err
	}
	user, err := p.prompts.Render(prompts.ArchitectInput, data)
	if err != nil {
		return nil, err
	}

	doc, err := p.generator.Generate(ctx, arch.role, system, user)
	if err != nil {
		return nil, fmt.Errorf("design %s: %w", category, err)
	}
	if err := workspace.WriteDocument(path, stripMarkdownFence(doc)+"\n"); err != nil {
		return nil, err
	}
	logger.Info().Str("path", path).Bool("updated", updated).Msg("design document written")
	return &DesignResult{Category: category, Path: path, Updated: updated}, nil
}

// stripMarkdownFence removes a fence wrapping the whole document.
func stripMarkdownFence(doc string) string {
	doc = strings.TrimSpace(doc)
	if !strings.HasPrefix(doc, "```") || !strings.HasSuffix(doc, "```") {
		return doc
	}
	first := strings.IndexByte(doc, '\n')
	if first < 0 {
		return doc
	}
	return strings.TrimSpace(doc[first+1 : len(doc)-3])
}

// Sync asks the task broker to plan items for category from its design
// document and reconciles them into the store.
func (p *Planner) Sync(ctx context.Context, category string) (*Report, error) {
	if category == "" {
		return nil, fmt.Errorf("sync category: %w", dlerrors.ErrEmptyValue)
	}
	designPath := p.paths.DesignPath(category)
	design, ok, err := workspace.ReadDocument(designPath)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(design) == "" {
		return nil, fmt.Errorf("%s: %w", designPath, dlerrors.ErrRequirementsMissing)
	}

	current, err := p.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	inScope, err := currentItemsJSON(current, category)
	if err != nil {
		return nil, err
	}

	data := prompts.TaskBrokerData{Category: category, Design: design, CurrentItems: inScope}
	system, err := p.prompts.Render(prompts.TaskBrokerSystem, data)
	if err != nil {
		return nil, err
	}
	user, err := p.prompts.Render(prompts.TaskBrokerInput, data)
	if err != nil {
		return nil, err
	}

	raw, err := p.generator.GenerateJSON(ctx, constants.RoleTaskBroker, system, user)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", category, err)
	}
	body, ok := ai.ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in task broker answer", dlerrors.ErrInvalidPlan)
	}
	planned, err := workitem.DecodePlan([]byte(body))
	if err != nil {
		return nil, err
	}
	for _, it := range planned {
		if it.Category == "" {
			it.Category = category
		}
	}

	return p.merge(ctx, current, planned, []string{category})
}

// Import reconciles a plan (JSON or YAML) into the store. A non-empty scope
// limits which stored categories may be dropped or updated.
func (p *Planner) Import(ctx context.Context, plan []byte, scope []string) (*Report, error) {
	planned, err := workitem.DecodePlan(plan)
	if err != nil {
		return nil, err
	}
	current, err := p.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.merge(ctx, current, planned, scope)
}

// ImportFile reads path and calls Import.
func (p *Planner) ImportFile(ctx context.Context, path string, scope []string) (*Report, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return p.Import(ctx, data, scope)
}

func (p *Planner) merge(ctx context.Context, current, planned []*domain.WorkItem, scope []string) (*Report, error) {
	reconciled := workitem.ReconcileScoped(current, planned, scope)
	if err := p.store.Save(ctx, reconciled); err != nil {
		return nil, err
	}

	added, dropped := workitem.Diff(current, reconciled)
	report := &Report{
		Scope:   scope,
		Added:   nonNil(added),
		Dropped: nonNil(dropped),
		Kept:    []string{},
		Total:   len(reconciled),
	}
	for _, it := range planned {
		if !slices.Contains(report.Added, it.ID) {
			report.Kept = append(report.Kept, it.ID)
		}
	}

	zerolog.Ctx(ctx).Info().
		Strs("scope", scope).
		Int("added", len(report.Added)).
		Int("kept", len(report.Kept)).
		Int("dropped", len(report.Dropped)).
		Msg("work items reconciled")
	return report, nil
}

type itemDefinition struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Category           string               `json:"category"`
	AcceptanceCriteria string               `json:"acceptance_criteria,omitempty"`
	SourceReference    string               `json:"source_reference,omitempty"`
	Status             constants.ItemStatus `json:"status"`
}

func currentItemsJSON(items []*domain.WorkItem, category string) (string, error) {
	var defs []itemDefinition
	for _, it := range items {
		if it.Category != category {
			continue
		}
		defs = append(defs, itemDefinition{
			ID:                 it.ID,
			Title:              it.Title,
			Description:        it.Description,
			Category:           it.Category,
			AcceptanceCriteria: it.AcceptanceCriteria,
			SourceReference:    it.SourceReference,
			Status:             it.Status,
		})
	}
	if len(defs) == 0 {
		return "", nil
	}
	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode current items: %w", err)
	}
	return string(data), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
