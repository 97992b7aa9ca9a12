package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	"github.com/wliublackruvy/agent-based-dev/internal/tui"
)

// ConfigSource names where a configuration section came from.
type ConfigSource string

// Configuration sources, lowest precedence first.
const (
	SourceDefault ConfigSource = "default"
	SourceGlobal  ConfigSource = "global"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// configSections are the top-level keys of config.yaml.
//
//nolint:gochecknoglobals // Fixed key list
var configSections = []string{"roles", "providers", "engine", "verification", "review", "paths"}

// configView is the JSON shape of config show.
type configView struct {
	GlobalFile  string                  `json:"global_file,omitempty"`
	ProjectFile string                  `json:"project_file"`
	Sources     map[string]ConfigSource `json:"sources"`
	Config      *config.Config          `json:"config"`
}

// AddConfigCommand adds the config command group.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration and where each section comes from:
  - default: built-in default
  - global:  ~/.devloop/config.yaml
  - project: .devloop/config.yaml
  - env:     DEVLOOP_* environment variable

API keys are never stored in configuration; only the names of the
environment variables holding them are shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			p, err := openProject(ctx, flags, nil)
			if err != nil {
				return err
			}

			view := configView{
				ProjectFile: filepath.Join(p.root(), config.ProjectConfigPath()),
				Config:      p.cfg,
			}
			if global, err := config.GlobalConfigPath(); err == nil {
				view.GlobalFile = global
			}
			view.Sources = sectionSources(view.GlobalFile, view.ProjectFile, os.Environ())

			if flags.Output == tui.FormatJSON {
				return out.JSON(view)
			}
			return renderConfig(cmd.OutOrStdout(), &view)
		},
	}
	cmd.AddCommand(show)
	root.AddCommand(cmd)
}

// sectionSources reports the highest-precedence source that sets each
// top-level section.
func sectionSources(globalFile, projectFile string, environ []string) map[string]ConfigSource {
	global := fileSections(globalFile)
	project := fileSections(projectFile)

	sources := make(map[string]ConfigSource, len(configSections))
	for _, section := range configSections {
		envPrefix := "DEVLOOP_" + strings.ToUpper(section) + "_"
		switch {
		case hasEnvPrefix(environ, envPrefix):
			sources[section] = SourceEnv
		case project[section]:
			sources[section] = SourceProject
		case global[section]:
			sources[section] = SourceGlobal
		default:
			sources[section] = SourceDefault
		}
	}
	return sources
}

func fileSections(path string) map[string]bool {
	found := map[string]bool{}
	if path == "" {
		return found
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return found
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return found
	}
	for k := range raw {
		found[k] = true
	}
	return found
}

func hasEnvPrefix(environ []string, prefix string) bool {
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}
	return false
}

func renderConfig(w io.Writer, view *configView) error {
	styles := tui.NewOutputStyles()

	_, _ = fmt.Fprintln(w, styles.Info.Render("devloop configuration"))
	if view.GlobalFile != "" {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("global:  "+view.GlobalFile))
	}
	_, _ = fmt.Fprintln(w, styles.Dim.Render("project: "+view.ProjectFile))
	_, _ = fmt.Fprintln(w)

	for _, section := range configSections {
		body, err := yaml.Marshal(sectionValue(view.Config, section))
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", section, err)
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.Success.Render(section+":"), styles.Dim.Render("# "+string(view.Sources[section])))
		for _, line := range strings.Split(strings.TrimRight(string(body), "\n"), "\n") {
			_, _ = fmt.Fprintln(w, "  "+line)
		}
	}
	return nil
}

func sectionValue(cfg *config.Config, section string) any {
	switch section {
	case "roles":
		return cfg.Roles
	case "providers":
		return cfg.Providers
	case "engine":
		return cfg.Engine
	case "verification":
		return cfg.Verification
	case "review":
		return cfg.Review
	default:
		return cfg.Paths
	}
}
