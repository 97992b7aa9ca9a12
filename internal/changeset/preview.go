package changeset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
)

// FileDiff describes the effect of a change set on one file.
type FileDiff struct {
	Path    string
	Action  string // create, modify, delete
	Added   int
	Removed int
	Pretty  string
}

// Preview compares a change set with the tree under root. Unsafe paths are
// skipped; Apply reports them.
func Preview(root string, cs *domain.ChangeSet) []FileDiff {
	a := NewApplier(root)
	dmp := diffmatchpatch.New()
	diffs := make([]FileDiff, 0, len(cs.Creations)+len(cs.Deletions))

	for _, p := range cs.Deletions {
		abs, err := a.resolve(p)
		if err != nil {
			continue
		}
		old := readOrEmpty(abs)
		diffs = append(diffs, FileDiff{Path: p, Action: "delete", Removed: countLines(old)})
	}

	for _, f := range cs.Creations {
		abs, err := a.resolve(f.Path)
		if err != nil {
			continue
		}
		old, exists := readFile(abs)
		d := FileDiff{Path: f.Path, Action: "modify"}
		if !exists {
			d.Action = "create"
		}

		chars1, chars2, lines := dmp.DiffLinesToChars(old, f.Content)
		lineDiffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)
		for _, ld := range lineDiffs {
			switch ld.Type {
			case diffmatchpatch.DiffInsert:
				d.Added += countLines(ld.Text)
			case diffmatchpatch.DiffDelete:
				d.Removed += countLines(ld.Text)
			case diffmatchpatch.DiffEqual:
			}
		}
		d.Pretty = dmp.DiffPrettyText(dmp.DiffCleanupSemantic(lineDiffs))
		diffs = append(diffs, d)
	}
	return diffs
}

func readFile(path string) (string, bool) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", true
		}
		return "", false
	}
	return string(data), true
}

func readOrEmpty(path string) string {
	s, _ := readFile(path)
	return s
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
