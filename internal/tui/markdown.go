package tui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer
	mdRendererOnce sync.Once             //nolint:gochecknoglobals // guards mdRenderer
)

func markdownRenderer() *glamour.TermRenderer {
	mdRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			mdRenderer = r
		}
	})
	return mdRenderer
}

// RenderMarkdown renders md for the terminal. Without color support, or if
// rendering fails, md is returned unchanged.
func RenderMarkdown(md string) string {
	if !HasColorSupport() {
		return md
	}
	r := markdownRenderer()
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
