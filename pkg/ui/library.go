package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/procmap/pkg/store"
)

// LoadMapMsg asks the model to replace the open map with a library slot.
type LoadMapMsg struct {
	Entry store.Entry
}

// DeleteMapMsg asks the model to delete a library slot.
type DeleteMapMsg struct {
	Entry store.Entry
}

// CloseLibraryMsg is sent when the library is dismissed.
type CloseLibraryMsg struct{}

// libraryItem wraps store.Entry to implement list.Item.
type libraryItem struct {
	entry store.Entry
}

func (i libraryItem) FilterValue() string { return i.entry.Name }

// libraryDelegate renders one slot per line: name, then age and key.
type libraryDelegate struct {
	theme Theme
}

func (d libraryDelegate) Height() int                               { return 1 }
func (d libraryDelegate) Spacing() int                              { return 0 }
func (d libraryDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d libraryDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(libraryItem)
	if !ok {
		return
	}
	width := m.Width() - 1
	if width <= 0 {
		width = 60
	}

	meta := formatSavedAt(i.entry.SavedAt)
	if i.entry.Key != store.DefaultKey {
		meta += "  " + i.entry.Key
	}
	nameWidth := max(width-len(meta)-4, 8)
	name := truncateRunesHelper(i.entry.Name, nameWidth, "…")

	marker := "  "
	nameStyle := d.theme.Base
	if index == m.Index() {
		marker = "▸ "
		nameStyle = d.theme.Selected
	}
	fmt.Fprintf(w, "%s%s  %s", marker, nameStyle.Render(name), d.theme.Muted.Render(meta))
}

// LibraryModel picks a saved map to load or delete.
type LibraryModel struct {
	list  list.Model
	theme Theme
}

// NewLibrary builds the picker over the given slots.
func NewLibrary(entries []store.Entry, theme Theme, width, height int) LibraryModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = libraryItem{entry: e}
	}
	l := list.New(items, libraryDelegate{theme: theme}, width, height)
	l.Title = "Maps"
	l.Styles.Title = theme.Header
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return LibraryModel{list: l, theme: theme}
}

// SetSize updates the picker dimensions.
func (m *LibraryModel) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Selected returns the highlighted slot.
func (m LibraryModel) Selected() (store.Entry, bool) {
	i, ok := m.list.SelectedItem().(libraryItem)
	if !ok {
		return store.Entry{}, false
	}
	return i.entry, true
}

// Update handles keyboard input for the picker.
func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch k.String() {
		case "esc", "q":
			if m.list.IsFiltered() {
				m.list.ResetFilter()
				return m, nil
			}
			return m, func() tea.Msg { return CloseLibraryMsg{} }
		case "enter":
			if e, ok := m.Selected(); ok {
				return m, func() tea.Msg { return LoadMapMsg{Entry: e} }
			}
			return m, nil
		case "ctrl+d", "delete":
			if e, ok := m.Selected(); ok && e.Key != store.DefaultKey {
				return m, func() tea.Msg { return DeleteMapMsg{Entry: e} }
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker.
func (m LibraryModel) View() string {
	return m.list.View()
}
