package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotHeader opens a code snapshot.
const SnapshotHeader = "=== CURRENT PROJECT CODE SNAPSHOT ==="

// fileHeader marks one file inside a snapshot or submission. It must never
// look like a change-set directive, or a model echoing it back would
// produce spurious file writes.
func fileHeader(path string) string {
	return "=== " + path + " ==="
}

// Snapshot concatenates every file under dirs with an extension in exts.
// Files that cannot be read are left out and returned in skipped. It
// returns "" when nothing was read.
func (s *Scanner) Snapshot(dirs, exts []string) (snapshot string, skipped []string, err error) {
	var b strings.Builder
	seen := make(map[string]struct{})

	for _, dir := range dirs {
		files, err := s.Files(dir, exts)
		if err != nil {
			return "", nil, fmt.Errorf("snapshot %s: %w", dir, err)
		}
		for _, rel := range files {
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}

			content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel))) //nolint:gosec // Walked from root
			if err != nil {
				skipped = append(skipped, rel)
				continue
			}
			writeFile(&b, rel, string(content))
		}
	}

	if b.Len() == 0 {
		return "", skipped, nil
	}
	return SnapshotHeader + "\n" + b.String(), skipped, nil
}

// ReadFiles concatenates the named files for review. Paths that do not exist
// are returned in missing and paths that exist but cannot be read as files
// (directories, permission errors) in unreadable, both in input order.
func (s *Scanner) ReadFiles(paths []string) (content string, missing, unreadable []string) {
	var b strings.Builder
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel))) //nolint:gosec // Item paths are validated at apply time
		switch {
		case errors.Is(err, os.ErrNotExist):
			missing = append(missing, rel)
		case err != nil:
			unreadable = append(unreadable, rel)
		default:
			writeFile(&b, rel, string(data))
		}
	}
	return b.String(), missing, unreadable
}

func writeFile(b *strings.Builder, rel, content string) {
	b.WriteString("\n")
	b.WriteString(fileHeader(rel))
	b.WriteString("\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
}
