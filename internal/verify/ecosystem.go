// Package verify runs language-appropriate check commands for generated files.
//
// The first check file picks the ecosystem, and each ecosystem maps to exactly
// one command template. Commands come from project or global configuration and
// run directly (no shell), with the project root as working directory.
package verify

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Template placeholders. An argument equal to PlaceholderFiles expands into
// one argument per check file; the others are substituted in place.
const (
	PlaceholderFiles = "{files}"
	PlaceholderFile  = "{file}"
	PlaceholderUnit  = "{unit}"
	PlaceholderDir   = "{dir}"
)

// Ecosystem is one toolchain and the command that runs its checks.
type Ecosystem struct {
	Name         string   `mapstructure:"name" yaml:"name"`
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	TestSuffixes []string `mapstructure:"test_suffixes" yaml:"test_suffixes"`
	Command      []string `mapstructure:"command" yaml:"command"`
}

// DefaultEcosystems returns the built-in ecosystems in match order.
func DefaultEcosystems() []Ecosystem {
	return []Ecosystem{
		{
			Name:         "java",
			Extensions:   []string{".java"},
			TestSuffixes: []string{"Test.java", "Tests.java"},
			Command:      []string{"mvn", "-Dtest=" + PlaceholderUnit, "test"},
		},
		{
			Name:         "python",
			Extensions:   []string{".py"},
			TestSuffixes: []string{"_test.py"},
			Command:      []string{"pytest", PlaceholderFiles, "-v", "--disable-warnings"},
		},
		{
			Name:         "node",
			Extensions:   []string{".ts", ".tsx", ".js", ".jsx", ".vue"},
			TestSuffixes: []string{".spec.ts", ".test.ts", ".spec.js", ".test.js"},
			Command:      []string{"npm", "run", "test"},
		},
		{
			Name:         "go",
			Extensions:   []string{".go"},
			TestSuffixes: []string{"_test.go"},
			Command:      []string{"go", "test", PlaceholderDir},
		},
	}
}

// Catalog is an ordered set of ecosystems.
type Catalog []Ecosystem

// ForFile returns the ecosystem whose extensions match file.
func (c Catalog) ForFile(file string) (Ecosystem, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range c {
		if slices.Contains(e.Extensions, ext) {
			return e, true
		}
	}
	return Ecosystem{}, false
}

// IsCheckFile reports whether file looks like a test: "test" anywhere in the
// lowercased path, a known test suffix, or a python test_ prefix.
func (c Catalog) IsCheckFile(file string) bool {
	if strings.Contains(strings.ToLower(file), "test") {
		return true
	}
	base := path.Base(filepath.ToSlash(file))
	if strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py") {
		return true
	}
	for _, e := range c {
		for _, suffix := range e.TestSuffixes {
			if strings.HasSuffix(base, suffix) {
				return true
			}
		}
	}
	return false
}

// SelectCheckFiles keeps the check files from paths, preserving order.
func (c Catalog) SelectCheckFiles(paths []string) []string {
	checks := make([]string, 0, len(paths))
	for _, p := range paths {
		if c.IsCheckFile(p) {
			checks = append(checks, p)
		}
	}
	return checks
}

// Argv expands the command template for files. files must be non-empty.
func (e Ecosystem) Argv(files []string) []string {
	first := filepath.ToSlash(files[0])
	unit := strings.TrimSuffix(path.Base(first), path.Ext(first))
	dir := "./" + path.Dir(first)
	if path.Dir(first) == "." {
		dir = "."
	}

	argv := make([]string, 0, len(e.Command)+len(files))
	for _, arg := range e.Command {
		if arg == PlaceholderFiles {
			argv = append(argv, files...)
			continue
		}
		arg = strings.ReplaceAll(arg, PlaceholderFile, first)
		arg = strings.ReplaceAll(arg, PlaceholderUnit, unit)
		arg = strings.ReplaceAll(arg, PlaceholderDir, dir)
		argv = append(argv, arg)
	}
	return argv
}
