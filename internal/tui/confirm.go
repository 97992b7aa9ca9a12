package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/wliublackruvy/agent-based-dev/internal/changeset"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// Theme returns the huh theme in devloop colors.
func Theme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(ColorSuccess)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}

// Confirm asks a yes/no question. It returns ErrPromptCanceled when stdin
// is not a terminal or the user aborts.
func Confirm(message string, defaultYes bool) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // Fd fits in int
		return false, dlerrors.ErrPromptCanceled
	}

	confirmed := defaultYes
	field := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).WithTheme(Theme())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, dlerrors.ErrPromptCanceled
		}
		return false, fmt.Errorf("confirm prompt failed: %w", err)
	}
	return confirmed, nil
}

// RenderPreview writes a per-file summary of a change set. With verbose the
// colored diff of each file follows its summary line.
func RenderPreview(w io.Writer, preview []changeset.FileDiff, verbose bool) {
	styles := NewOutputStyles()
	for _, d := range preview {
		var marker string
		switch d.Action {
		case "create":
			marker = styles.Success.Render("+ " + d.Path)
		case "delete":
			marker = styles.Error.Render("- " + d.Path)
		default:
			marker = styles.Warning.Render("~ " + d.Path)
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", marker, styles.Dim.Render(fmt.Sprintf("(+%d -%d)", d.Added, d.Removed)))
		if verbose && d.Pretty != "" {
			_, _ = fmt.Fprintln(w, d.Pretty)
		}
	}
}
