package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// formKind says what a completed prompt should do.
type formKind int

const (
	formNone formKind = iota
	formNewMap
	formSaveAs
)

// prompt is an embedded huh form plus the values it writes. Values live
// behind pointers because the bubbletea model is copied on every update.
type prompt struct {
	kind    formKind
	form    *huh.Form
	confirm *bool
	name    *string
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithTheme(huh.ThemeDracula()).
		WithShowHelp(false).
		WithWidth(48)
}

func newMapPrompt() *prompt {
	confirm := false
	return &prompt{
		kind:    formNewMap,
		confirm: &confirm,
		form: newForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Start a new map?").
				Description("Unsaved changes to the current map are lost.").
				Affirmative("New map").
				Negative("Cancel").
				Value(&confirm),
		)),
	}
}

func saveAsPrompt(current string) *prompt {
	name := current
	return &prompt{
		kind: formSaveAs,
		name: &name,
		form: newForm(huh.NewGroup(
			huh.NewInput().
				Title("Save map as").
				CharLimit(80).
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
		)),
	}
}

// update forwards msg to the form. done reports that the form has finished,
// either submitted or aborted.
func (p *prompt) update(msg tea.Msg) (done bool, cmd tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "esc" || k.String() == "ctrl+c") {
		p.form.State = huh.StateAborted
		return true, nil
	}
	next, cmd := p.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		p.form = f
	}
	return p.form.State != huh.StateNormal, cmd
}

func (p *prompt) submitted() bool {
	return p.form.State == huh.StateCompleted
}
