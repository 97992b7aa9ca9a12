// Package changeset turns free-form generation output into file operations
// and applies them to a project tree.
//
// The text protocol has two directives:
//
//	FILE: path/to/file.go
//	<full file content, optionally inside a ``` fence>
//	DELETE: path/to/old.go
//
// Directives may carry markdown decoration (### FILE: x, **DELETE: y**) and may
// appear anywhere in a larger answer; text before the first directive is ignored.
// Inside a fenced block that is closed later, directive-like lines are content.
package changeset

import (
	"fmt"
	"strings"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

const (
	fileDirective   = "FILE:"
	deleteDirective = "DELETE:"
	fence           = "```"
)

// directiveMarkup is stripped from the start of a line before matching.
const directiveMarkup = "#*>- \t"

type parseState int

const (
	statePreamble parseState = iota
	stateContent
)

// Parse extracts a ChangeSet from text. It returns ErrNoDirectives when no
// usable directive is found, together with an empty ChangeSet.
func Parse(text string) (*domain.ChangeSet, error) {
	cs := &domain.ChangeSet{}
	found := false

	state := statePreamble
	var path string
	var block []string
	inFence := false

	flush := func() {
		if state == stateContent {
			cs.Put(path, stripFences(block))
		}
		state = statePreamble
		path = ""
		block = nil
		inFence = false
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		kind, target, ok := directive(line)
		if ok && state == stateContent && inFence && fenceClosedLater(lines[i+1:]) {
			ok = false
		}
		if !ok {
			if state == stateContent {
				block = append(block, line)
				if strings.HasPrefix(strings.TrimSpace(line), fence) {
					inFence = !inFence
				}
			}
			continue
		}

		flush()
		if target == "" {
			continue
		}
		found = true

		switch kind {
		case fileDirective:
			state = stateContent
			path = target
		case deleteDirective:
			cs.Delete(target)
		}
	}
	flush()

	if !found {
		return &domain.ChangeSet{}, fmt.Errorf("parse generation output: %w", dlerrors.ErrNoDirectives)
	}
	return cs, nil
}

// directive reports whether line is a FILE or DELETE directive and returns
// its kind and cleaned path.
func directive(line string) (kind, path string, ok bool) {
	trimmed := strings.TrimLeft(line, directiveMarkup)
	for _, d := range []string{fileDirective, deleteDirective} {
		if strings.HasPrefix(trimmed, d) {
			return d, cleanPath(trimmed[len(d):]), true
		}
	}
	return "", "", false
}

// fenceClosedLater reports whether the next fence line in rest is a bare
// closing fence. A tagged fence means the open block was never closed.
func fenceClosedLater(rest []string) bool {
	for _, line := range rest {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, fence) {
			return trimmed == fence
		}
	}
	return false
}

func cleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.Trim(p, "*`")
	return strings.TrimSpace(p)
}

// stripFences trims the block and removes a leading fence line (with any
// language tag) and a trailing fence line.
func stripFences(lines []string) string {
	content := strings.TrimSpace(strings.Join(lines, "\n"))
	if strings.HasPrefix(content, fence) {
		if nl := strings.IndexByte(content, '\n'); nl >= 0 {
			content = content[nl+1:]
		} else {
			content = ""
		}
	}
	if strings.HasSuffix(content, fence) {
		content = strings.TrimSuffix(content, fence)
	}
	return strings.TrimSpace(content)
}
