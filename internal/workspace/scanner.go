// Package workspace reads the project tree on behalf of generation and review:
// the file listing shown to the reviewer, the code snapshot injected into
// retries, and the contents of submitted files.
package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

// IgnoreFileName is the project-local ignore file, read in addition to .gitignore.
const IgnoreFileName = "devloopignore"

// Scanner walks a project root, skipping configured directories and paths
// matched by ignore rules.
type Scanner struct {
	root       string
	ignoreDirs map[string]struct{}
	rules      *ignore.GitIgnore
}

// NewScanner creates a Scanner for root. Rules are read from root/.gitignore
// and root/.devloop/devloopignore when present.
func NewScanner(root string, ignoreDirs []string) *Scanner {
	dirs := make(map[string]struct{}, len(ignoreDirs))
	for _, d := range ignoreDirs {
		dirs[d] = struct{}{}
	}
	return &Scanner{
		root:       root,
		ignoreDirs: dirs,
		rules:      loadIgnoreRules(root),
	}
}

func loadIgnoreRules(root string) *ignore.GitIgnore {
	var lines []string
	for _, p := range []string{
		filepath.Join(root, ".gitignore"),
		filepath.Join(root, constants.AppHome, IgnoreFileName),
	} {
		data, err := os.ReadFile(p) //nolint:gosec // Paths are fixed under the project root
		if err != nil {
			continue
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}

	filtered := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			filtered = append(filtered, line)
		}
	}
	return ignore.CompileIgnoreLines(filtered...)
}

// Root returns the project root.
func (s *Scanner) Root() string {
	return s.root
}

// Ignored reports whether rel (slash-separated, relative to root) is excluded.
func (s *Scanner) Ignored(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if _, skip := s.ignoreDirs[part]; skip {
			return true
		}
	}
	return s.rules.MatchesPath(rel)
}

// Files lists files under dir (relative to root, "" or "." for the whole
// project) whose extension is in exts, in lexical walk order. An empty exts
// matches every file. A missing dir yields no files.
func (s *Scanner) Files(dir string, exts []string) ([]string, error) {
	start := filepath.Join(s.root, filepath.FromSlash(dir))
	if _, err := os.Stat(start); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if _, skip := s.ignoreDirs[d.Name()]; skip || s.rules.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.Ignored(rel) || !hasExtension(rel, exts) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

// Tree returns the project file listing, one relative path per line.
func (s *Scanner) Tree(exts []string) (string, error) {
	files, err := s.Files("", exts)
	if err != nil {
		return "", err
	}
	return strings.Join(files, "\n"), nil
}

func hasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}
