package config

// This file implements `devloop doctor`: it checks that every provider a
// role uses is reachable and that check commands are installed.

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

// toolDetectionTimeout bounds the whole detection run.
const toolDetectionTimeout = 10 * time.Second

//nolint:gochecknoglobals // Compiled once
var versionRe = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// ToolStatus represents the availability of an external tool.
//
//nolint:recvcheck // MarshalJSON uses a value receiver
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not installed or not configured.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is available.
	ToolStatusInstalled
)

// String returns a human-readable representation of the tool status.
func (s ToolStatus) String() string {
	switch s {
	case ToolStatusInstalled:
		return "installed"
	case ToolStatusMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string form.
func (s ToolStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Tool kinds.
const (
	ToolKindProvider = "provider"
	ToolKindCheck    = "check"
)

// Tool is one external dependency.
type Tool struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Required bool       `json:"required"`
	Status   ToolStatus `json:"status"`
	Version  string     `json:"version,omitempty"`
	Detail   string     `json:"detail,omitempty"`
	Hint     string     `json:"hint,omitempty"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	Tools              []Tool `json:"tools"`
	HasMissingRequired bool   `json:"has_missing_required"`
}

// MissingRequiredTools returns required tools that are not available.
func (r *ToolDetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && tool.Status == ToolStatusMissing {
			missing = append(missing, tool)
		}
	}
	return missing
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultCommandExecutor implements CommandExecutor using os/exec.
type DefaultCommandExecutor struct{}

// LookPath searches for an executable in the PATH.
func (e *DefaultCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its combined output.
func (e *DefaultCommandExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //#nosec G204 -- tool names come from configuration
	return string(output), err
}

// ToolDetector checks providers and check commands.
type ToolDetector struct {
	executor CommandExecutor
	getenv   func(string) string
}

// NewToolDetector creates a detector using os/exec and the process environment.
func NewToolDetector() *ToolDetector {
	return NewToolDetectorWithExecutor(&DefaultCommandExecutor{}, os.Getenv)
}

// NewToolDetectorWithExecutor creates a detector with custom dependencies.
func NewToolDetectorWithExecutor(executor CommandExecutor, getenv func(string) string) *ToolDetector {
	return &ToolDetector{executor: executor, getenv: getenv}
}

type probe struct {
	tool Tool
	run  func(ctx context.Context, t *Tool)
}

// Detect probes every provider referenced by a role (required) and every
// check command (optional) concurrently. Results are sorted by kind then name.
func (d *ToolDetector) Detect(ctx context.Context, cfg *Config, checkCommands []string) (*ToolDetectionResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	detectCtx, cancel := context.WithTimeout(ctx, toolDetectionTimeout)
	defer cancel()

	probes := d.providerProbes(cfg)
	for _, name := range uniqueSorted(checkCommands) {
		probes = append(probes, probe{
			tool: Tool{Name: name, Kind: ToolKindCheck, Hint: "install " + name + " to run its checks"},
			run:  d.binaryProbe(name),
		})
	}

	result := &ToolDetectionResult{Tools: make([]Tool, 0, len(probes))}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(detectCtx)
	for _, p := range probes {
		g.Go(func() error {
			tool := p.tool
			p.run(gCtx, &tool)
			mu.Lock()
			result.Tools = append(result.Tools, tool)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	sort.Slice(result.Tools, func(i, j int) bool {
		if result.Tools[i].Kind != result.Tools[j].Kind {
			return result.Tools[i].Kind > result.Tools[j].Kind
		}
		return result.Tools[i].Name < result.Tools[j].Name
	})
	result.HasMissingRequired = len(result.MissingRequiredTools()) > 0
	return result, nil
}

func (d *ToolDetector) providerProbes(cfg *Config) []probe {
	used := make(map[string]struct{})
	for _, rc := range cfg.Roles {
		used[rc.Provider] = struct{}{}
	}

	var probes []probe
	for _, name := range KnownProviders() {
		if _, ok := used[name]; !ok {
			continue
		}
		tool := Tool{Name: name, Kind: ToolKindProvider, Required: true}
		switch name {
		case constants.ProviderCodex:
			tool.Hint = "npm install -g @openai/codex"
			probes = append(probes, probe{tool: tool, run: d.binaryProbe(cfg.Providers.Codex.Binary)})
		case constants.ProviderQwen:
			tool.Hint = "npm install -g @qwen-code/qwen-code"
			probes = append(probes, probe{tool: tool, run: d.binaryProbe(cfg.Providers.Qwen.Binary)})
		case constants.ProviderDeepSeek:
			tool.Hint = "export " + cfg.Providers.DeepSeek.APIKeyEnv
			probes = append(probes, probe{tool: tool, run: d.envProbe(cfg.Providers.DeepSeek.APIKeyEnv)})
		case constants.ProviderGemini:
			tool.Hint = "export " + cfg.Providers.Gemini.APIKeyEnv
			probes = append(probes, probe{tool: tool, run: d.envProbe(cfg.Providers.Gemini.APIKeyEnv)})
		case constants.ProviderOllama:
			tool.Hint = "install ollama and run 'ollama serve'"
			probes = append(probes, probe{tool: tool, run: d.binaryProbe("ollama")})
		}
	}
	return probes
}

func (d *ToolDetector) binaryProbe(binary string) func(context.Context, *Tool) {
	return func(ctx context.Context, t *Tool) {
		if _, err := d.executor.LookPath(binary); err != nil {
			t.Detail = binary + " not found in PATH"
			return
		}
		t.Status = ToolStatusInstalled
		out, err := d.executor.Run(ctx, binary, "--version")
		if err != nil {
			t.Version = "unknown"
			return
		}
		t.Version = parseVersion(out)
	}
}

func (d *ToolDetector) envProbe(envVar string) func(context.Context, *Tool) {
	return func(_ context.Context, t *Tool) {
		if strings.TrimSpace(d.getenv(envVar)) == "" {
			t.Detail = envVar + " is not set"
			return
		}
		t.Status = ToolStatusInstalled
		t.Detail = envVar + " is set"
	}
}

func parseVersion(output string) string {
	if m := versionRe.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return "unknown"
}

func uniqueSorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// FormatMissingToolsError renders missing tools with their hints.
func FormatMissingToolsError(missing []Tool) string {
	var b strings.Builder
	b.WriteString("required tools are unavailable:\n")
	for _, t := range missing {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", t.Name, t.Detail, t.Hint)
	}
	return b.String()
}
