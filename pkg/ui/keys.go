package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the canvas key map. The mouse does the same things: double
// click a node to add a child, double click empty space to add a stage,
// double click a label to rename it, drag a node far enough to delete it.
type keyMap struct {
	Expand    key.Binding
	Collapse  key.Binding
	ResetZoom key.Binding
	Next      key.Binding
	Prev      key.Binding
	AddChild  key.Binding
	AddStage  key.Binding
	Rename    key.Binding
	Delete    key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	PanUp     key.Binding
	PanDown   key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	NewMap    key.Binding
	Save      key.Binding
	Library   key.Binding
	Yank      key.Binding
	Export    key.Binding
	Details   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Expand:    key.NewBinding(key.WithKeys("+", "=", "e"), key.WithHelp("+/e", "expand")),
		Collapse:  key.NewBinding(key.WithKeys("-", "c"), key.WithHelp("-/c", "collapse")),
		ResetZoom: key.NewBinding(key.WithKeys("z", "0"), key.WithHelp("z", "reset zoom")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev node")),
		AddChild:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		AddStage:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add stage")),
		Rename:    key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "rename")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		PanLeft:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan")),
		PanRight:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "pan")),
		PanUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan")),
		PanDown:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan")),
		ZoomIn:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "zoom out")),
		NewMap:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new map")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Library:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load")),
		Yank:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy JSON")),
		Export:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "export svg")),
		Details:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Expand, k.Collapse, k.AddChild, k.Rename, k.Delete, k.Library, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Expand, k.Collapse, k.ResetZoom, k.ZoomIn, k.ZoomOut},
		{k.Next, k.Prev, k.PanLeft, k.PanRight, k.PanUp, k.PanDown},
		{k.AddChild, k.AddStage, k.Rename, k.Delete, k.Details},
		{k.NewMap, k.Save, k.Library, k.Yank, k.Export, k.Help, k.Quit},
	}
}
