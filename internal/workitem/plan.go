package workitem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// planEnvelope accepts {"tasks": [...]} or {"items": [...]} wrappers.
type planEnvelope struct {
	Tasks []*domain.WorkItem `json:"tasks" yaml:"tasks"`
	Items []*domain.WorkItem `json:"items" yaml:"items"`
}

// DecodePlan reads planned items from JSON or YAML, either a bare list or
// wrapped in a tasks/items object. Runtime fields in the input are ignored:
// only the definition of each item is kept.
func DecodePlan(data []byte) ([]*domain.WorkItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty plan: %w", dlerrors.ErrInvalidPlan)
	}

	var raw []*domain.WorkItem
	if err := decodeList(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", dlerrors.ErrInvalidPlan, err)
	}

	planned := make([]*domain.WorkItem, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, it := range raw {
		if it == nil || strings.TrimSpace(it.ID) == "" {
			return nil, fmt.Errorf("plan item %d has no id: %w", i, dlerrors.ErrInvalidPlan)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("plan item %s: %w", it.ID, dlerrors.ErrDuplicateItemID)
		}
		seen[it.ID] = struct{}{}
		def := &domain.WorkItem{}
		def.Definition(it)
		planned = append(planned, def)
	}
	return planned, nil
}

func decodeList(data []byte, out *[]*domain.WorkItem) error {
	switch data[0] {
	case '[':
		return json.Unmarshal(data, out)
	case '{':
		var env planEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return err
		}
		*out = env.pick()
		return nil
	}

	if err := yaml.Unmarshal(data, out); err == nil {
		return nil
	}
	var env planEnvelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return err
	}
	*out = env.pick()
	return nil
}

func (e planEnvelope) pick() []*domain.WorkItem {
	if len(e.Tasks) > 0 {
		return e.Tasks
	}
	return e.Items
}
