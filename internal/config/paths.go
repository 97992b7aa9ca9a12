package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
	"github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// GlobalConfigDir returns ~/.devloop, or $DEVLOOP_HOME when set.
func GlobalConfigDir() (string, error) {
	if home := os.Getenv("DEVLOOP_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.AppHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns .devloop/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.AppHome, constants.ProjectConfigName)
}

// Resolve returns p joined to the project root unless it is absolute.
func (p PathsConfig) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// StorePath returns the resolved work-item store path.
func (p PathsConfig) StorePath() string {
	return p.Resolve(p.Store)
}

// RequirementsPath returns the resolved requirements document path.
func (p PathsConfig) RequirementsPath() string {
	return p.Resolve(p.Requirements)
}

// DesignPath returns the resolved design document for a category.
func (p PathsConfig) DesignPath(category string) string {
	return filepath.Join(p.Resolve(p.DesignDir), category+".md")
}

// PromptsPath returns the resolved prompt override directory.
func (p PathsConfig) PromptsPath() string {
	return p.Resolve(p.PromptsDir)
}
