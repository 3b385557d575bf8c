// Package ui is the terminal front end: a retained canvas fed by scene
// frames, keyboard and mouse input routed into session operations, the map
// library and the description panel.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/camera"
	"github.com/vanderheijden86/procmap/pkg/config"
	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/export"
	"github.com/vanderheijden86/procmap/pkg/layout"
	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/scene"
	"github.com/vanderheijden86/procmap/pkg/session"
	"github.com/vanderheijden86/procmap/pkg/store"
)

// Options configure the TUI.
type Options struct {
	Config config.Config
	Store  *store.Store // nil disables save and load
	Map    *model.Map   // nil opens the default map
	Source string       // file the map was read from, if any
}

// FrameMsg drives the animation loop.
type FrameMsg struct {
	At time.Time
}

// MapReloadedMsg carries a new version of the watched map file.
type MapReloadedMsg struct {
	Map *model.Map
}

// MapReloadErrorMsg reports a watched map file that failed to load. The
// open map is kept.
type MapReloadErrorMsg struct {
	Err error
}

type mode int

const (
	modeCanvas mode = iota
	modeRename
	modeLibrary
	modePrompt
)

// press is an active left-button gesture: a node drag or a background pan.
type press struct {
	id     string
	screen r2.Vec
}

type click struct {
	at       time.Time
	col, row int
}

// Distances for keyboard pan and zoom.
const (
	panCells   = 4
	zoomFactor = 1.25
	wheelZoom  = 1.15
)

// Model is the bubbletea model of one procmap window.
type Model struct {
	cfg   config.Config
	theme Theme
	keys  keyMap
	help  help.Model

	sess   *session.Session
	view   *camera.Viewport
	canvas *Canvas
	prev   scene.Frame
	store  *store.Store
	source string

	width, height int
	mode          mode
	selected      string
	hovered       string
	showDetails   bool
	details       *detailsPanel

	rename   textinput.Model
	renameID string
	library  LibraryModel
	prompt   *prompt

	press     *press
	lastClick click
	now       func() time.Time

	ticking  bool
	lastTick time.Time

	statusMsg     string
	statusIsError bool
}

// NewModel opens the map in opts and sizes everything for a default
// terminal until the first WindowSizeMsg arrives.
func NewModel(opts Options) Model {
	const defaultWidth = 120
	const defaultHeight = 40

	if opts.Config.Validate() != nil {
		opts.Config = config.DefaultConfig()
	}
	m := opts.Map
	if m == nil {
		m = model.DefaultMap()
	}

	ti := textinput.New()
	ti.Prompt = "Rename: "
	ti.CharLimit = 120
	ti.Width = 48

	h := help.New()
	h.ShowAll = false

	mdl := Model{
		cfg:         opts.Config,
		theme:       DefaultTheme(lipgloss.NewRenderer(os.Stdout)),
		keys:        defaultKeyMap(),
		help:        h,
		canvas:      NewCanvas(),
		store:       opts.Store,
		source:      opts.Source,
		width:       defaultWidth,
		height:      defaultHeight,
		showDetails: true,
		details:     newDetailsPanel(DetailsPanelWidth),
		rename:      ti,
		now:         time.Now,
		ticking:     true,
	}
	cols, rows := mdl.canvasSize()
	mdl.view = camera.NewViewport(float64(cols*CellW), float64(rows*CellH))
	mdl.sess = session.New(m, mdl.view, opts.Config.SessionOptions())
	mdl.resize()
	mdl.prev = mdl.sess.Frame()
	scene.Sync(mdl.canvas, scene.Frame{}, mdl.prev)
	return mdl
}

// Init starts the animation loop.
func (m Model) Init() tea.Cmd {
	return m.frameCmd()
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.cfg.FrameInterval(), func(t time.Time) tea.Msg {
		return FrameMsg{At: t}
	})
}

// wake restarts the frame loop after it went idle.
func (m *Model) wake() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	m.lastTick = time.Time{}
	return m.frameCmd()
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
	if isError {
		debug.Log("ui: %s", msg)
	}
}

// canvasSize returns the canvas area in cells: everything below the header
// and above the footer, minus the details panel when shown.
func (m Model) canvasSize() (cols, rows int) {
	cols = m.width
	if m.detailsShown() {
		cols -= DetailsPanelWidth
	}
	return max(cols, 1), max(m.height-2, 1)
}

func (m Model) detailsShown() bool {
	return m.showDetails && m.width >= 2*DetailsPanelWidth
}

func (m *Model) resize() {
	cols, rows := m.canvasSize()
	m.sess.Resize(float64(cols*CellW), float64(rows*CellH))
	m.help.Width = m.width
	if m.mode == modeLibrary {
		m.library.SetSize(m.width, max(m.height-2, 1))
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, m.wake()

	case FrameMsg:
		return m.frame(msg.At)

	case MapReloadedMsg:
		m.loadMap(msg.Map, fmt.Sprintf("Reloaded %s", msg.Map.Name))
		return m, m.wake()

	case MapReloadErrorMsg:
		m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
		return m, nil

	case LoadMapMsg:
		m.mode = modeCanvas
		m.loadEntry(msg.Entry)
		return m, m.wake()

	case DeleteMapMsg:
		m.deleteEntry(msg.Entry)
		return m, nil

	case CloseLibraryMsg:
		m.mode = modeCanvas
		return m, nil
	}

	switch m.mode {
	case modePrompt:
		return m.updatePrompt(msg)
	case modeLibrary:
		var cmd tea.Cmd
		m.library, cmd = m.library.Update(msg)
		return m, cmd
	case modeRename:
		return m.updateRename(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.wake()
	}
	return m, nil
}

// frame advances the session, syncs the canvas and keeps ticking until
// nothing is left to animate.
func (m Model) frame(at time.Time) (tea.Model, tea.Cmd) {
	dt := m.cfg.FrameInterval()
	if !m.lastTick.IsZero() {
		if d := at.Sub(m.lastTick); d > 0 && d < 4*dt {
			dt = d
		}
	}
	m.lastTick = at

	next := m.sess.Tick(dt)
	scene.Sync(m.canvas, m.prev, next)
	m.prev = next

	if m.sess.Settled() && !m.view.Animating() && m.press == nil {
		m.ticking = false
		return m, nil
	}
	return m, m.frameCmd()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	if m.help.ShowAll && !key.Matches(msg, m.keys.Quit) {
		m.help.ShowAll = false
		return m, nil
	}

	cols, rows := m.canvasSize()
	center := r2.Vec{X: float64(cols*CellW) / 2, Y: float64(rows*CellH) / 2}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
	case key.Matches(msg, m.keys.Expand):
		if !m.sess.Expand() {
			m.setStatus("Already showing every level", false)
		}
	case key.Matches(msg, m.keys.Collapse):
		if !m.sess.Collapse() {
			m.setStatus("Already at the top level", false)
		}
	case key.Matches(msg, m.keys.ResetZoom):
		m.sess.ResetZoom()
	case key.Matches(msg, m.keys.Next):
		m.cycleSelection(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycleSelection(-1)
	case key.Matches(msg, m.keys.AddChild):
		m.addChild(m.selected)
	case key.Matches(msg, m.keys.AddStage):
		m.addStage()
	case key.Matches(msg, m.keys.Rename):
		m.startRename(m.selected)
	case key.Matches(msg, m.keys.Delete):
		m.deleteNode(m.selected)
	case key.Matches(msg, m.keys.PanLeft):
		m.pan(panCells*CellW, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.pan(-panCells*CellW, 0)
	case key.Matches(msg, m.keys.PanUp):
		m.pan(0, panCells*CellH/2)
	case key.Matches(msg, m.keys.PanDown):
		m.pan(0, -panCells*CellH/2)
	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(zoomFactor, center)
	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(1/zoomFactor, center)
	case key.Matches(msg, m.keys.NewMap):
		return m, m.openPrompt(newMapPrompt())
	case key.Matches(msg, m.keys.Save):
		if m.store == nil {
			m.setStatus("No map library open", true)
			break
		}
		return m, m.openPrompt(saveAsPrompt(m.sess.Map().Name))
	case key.Matches(msg, m.keys.Library):
		m.openLibrary()
	case key.Matches(msg, m.keys.Yank):
		m.yank()
	case key.Matches(msg, m.keys.Export):
		m.exportSnapshot()
	case key.Matches(msg, m.keys.Details):
		m.showDetails = !m.showDetails
		m.resize()
	}
	return m, m.wake()
}

// cycleSelection moves the selection through the visible nodes in tree
// order.
func (m *Model) cycleSelection(step int) {
	visible := layout.Visible(m.sess.Map().Stages, m.sess.DetailLevel())
	if len(visible) == 0 {
		m.selected = ""
		return
	}
	idx := -1
	for i, n := range visible {
		if n.ID == m.selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(visible) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + step + len(visible)) % len(visible)
	}
	m.selected = visible[idx].ID
}

func (m *Model) selectedNode() (*model.Node, bool) {
	if m.selected == "" {
		return nil, false
	}
	return m.sess.Map().Node(m.selected)
}

func (m *Model) addChild(parentID string) {
	if parentID == "" {
		m.setStatus("Select a node first (tab)", true)
		return
	}
	n, err := m.sess.CreateChild(parentID)
	if err != nil {
		m.setStatus(fmt.Sprintf("Add child: %v", err), true)
		return
	}
	m.selected = n.ID
}

func (m *Model) addStage() {
	n, err := m.sess.CreateStage()
	if err != nil {
		m.setStatus(fmt.Sprintf("Add stage: %v", err), true)
		return
	}
	m.selected = n.ID
}

func (m *Model) deleteNode(id string) {
	n, ok := m.sess.Map().Node(id)
	if !ok {
		m.setStatus("Select a node first (tab)", true)
		return
	}
	title := n.Title
	if err := m.sess.Delete(id); err != nil {
		m.setStatus(fmt.Sprintf("Delete: %v", err), true)
		return
	}
	m.forget()
	m.setStatus(fmt.Sprintf("Deleted %q", title), false)
}

// forget drops selection and hover that point at removed nodes.
func (m *Model) forget() {
	if _, ok := m.sess.Map().Node(m.selected); !ok {
		m.selected = ""
	}
	if _, ok := m.sess.Map().Node(m.hovered); !ok {
		m.hovered = ""
	}
}

func (m *Model) startRename(id string) {
	n, ok := m.sess.Map().Node(id)
	if !ok {
		m.setStatus("Select a node first (tab)", true)
		return
	}
	m.selected = id
	m.renameID = id
	m.rename.SetValue(n.Title)
	m.rename.CursorEnd()
	m.rename.Focus()
	m.mode = modeRename
}

func (m Model) updateRename(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.commitRename()
			return m, m.wake()
		case tea.KeyEsc:
			m.rename.Blur()
			m.mode = modeCanvas
			return m, nil
		}
	case tea.MouseMsg:
		// Clicking anywhere else commits, like a text field losing focus.
		if msg.Action == tea.MouseActionPress {
			m.commitRename()
			m.handleMouse(msg)
			return m, m.wake()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *Model) commitRename() {
	if err := m.sess.Rename(m.renameID, m.rename.Value()); err != nil {
		m.setStatus(fmt.Sprintf("Rename: %v", err), true)
	}
	m.rename.Blur()
	m.renameID = ""
	m.mode = modeCanvas
}

func (m *Model) pan(dx, dy float64) {
	m.view.Pan(dx, dy)
	m.sess.MarkManual()
}

func (m *Model) zoom(factor float64, around r2.Vec) {
	m.view.Zoom(factor, around)
	m.sess.MarkManual()
}

func (m *Model) openPrompt(p *prompt) tea.Cmd {
	m.prompt = p
	m.mode = modePrompt
	return p.form.Init()
}

func (m Model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, cmd := m.prompt.update(msg)
	if !done {
		return m, cmd
	}
	p := m.prompt
	m.prompt = nil
	m.mode = modeCanvas
	if !p.submitted() {
		return m, nil
	}
	switch p.kind {
	case formNewMap:
		if *p.confirm {
			m.loadMap(model.BlankMap(), "Started a new map")
		}
	case formSaveAs:
		m.save(*p.name)
	}
	return m, m.wake()
}

func (m *Model) save(name string) {
	if m.store == nil {
		m.setStatus("No map library open", true)
		return
	}
	e, err := m.store.Save(context.Background(), name, m.sess.Map())
	if err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v", err), true)
		return
	}
	m.sess.Map().Name = e.Name
	m.setStatus(fmt.Sprintf("Saved %q", e.Name), false)
}

func (m *Model) openLibrary() {
	if m.store == nil {
		m.setStatus("No map library open", true)
		return
	}
	entries, err := m.store.List(context.Background())
	if err != nil {
		m.setStatus(fmt.Sprintf("Listing maps failed: %v", err), true)
		return
	}
	m.library = NewLibrary(entries, m.theme, m.width, max(m.height-2, 1))
	m.mode = modeLibrary
}

// loadEntry replaces the open map with a library slot. A slot that fails
// to load leaves the open map untouched.
func (m *Model) loadEntry(e store.Entry) {
	if m.store == nil {
		m.setStatus("No map library open", true)
		return
	}
	mp, err := m.store.Load(context.Background(), e.Key)
	if err != nil {
		debug.Errorf("load %s: %v", e.Key, err)
		m.setStatus(fmt.Sprintf("Failed to load %q", e.Name), true)
		return
	}
	m.loadMap(mp, fmt.Sprintf("Loaded %q", mp.Name))
}

func (m *Model) deleteEntry(e store.Entry) {
	if err := m.store.Delete(context.Background(), e.Key); err != nil {
		m.setStatus(fmt.Sprintf("Delete failed: %v", err), true)
		return
	}
	m.openLibrary()
	m.setStatus(fmt.Sprintf("Deleted %q from the library", e.Name), false)
}

func (m *Model) loadMap(mp *model.Map, status string) {
	if err := m.sess.Load(mp); err != nil {
		m.setStatus(fmt.Sprintf("Load failed: %v", err), true)
		return
	}
	m.selected, m.hovered = "", ""
	m.press = nil
	m.setStatus(status, false)
}

func (m *Model) yank() {
	data, err := model.Encode(m.sess.Map())
	if err != nil {
		m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus("Copied map JSON to clipboard", false)
}

func (m *Model) exportSnapshot() {
	name := m.sess.Map().Name
	path := fileSlug(name) + ".svg"
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:  path,
		Title: name,
		Frame: m.sess.Frame(),
	})
	if err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", err), true)
		return
	}
	if full, err := filepath.Abs(path); err == nil {
		path = full
	}
	m.setStatus("Exported "+path, false)
}

// fileSlug turns a map name into a file name stem.
func fileSlug(name string) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, strings.TrimSpace(name))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "procmap"
	}
	return slug
}

// handleMouse turns terminal mouse events into session gestures. Cells are
// mapped to screen pixels and then through the camera into the world.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-1
	cols, rows := m.canvasSize()
	inside := col >= 0 && row >= 0 && col < cols && row < rows
	screen := CellToScreen(col, row)
	world := m.view.Current().Invert(screen)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		m.zoom(wheelZoom, screen)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		m.zoom(1/wheelZoom, screen)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		m.statusMsg = ""
		m.mouseDown(col, row, screen, world)
	case msg.Action == tea.MouseActionMotion && m.press != nil:
		m.mouseDrag(screen, world)
	case msg.Action == tea.MouseActionMotion:
		m.hovered = ""
		if inside {
			if n, ok := m.nodeAt(col, row, world); ok {
				m.hovered = n.ID
			} else if id, ok := m.canvas.LabelAt(col, row); ok {
				m.hovered = id
			}
		}
	case msg.Action == tea.MouseActionRelease:
		m.mouseUp()
	}
}

func (m *Model) nodeAt(col, row int, world r2.Vec) (*model.Node, bool) {
	if id, ok := m.canvas.GlyphAt(col, row); ok {
		if n, ok := m.sess.Map().Node(id); ok {
			return n, true
		}
	}
	k := m.view.Current().K
	return m.sess.HitTest(world, CellW/(2*k))
}

func (m *Model) mouseDown(col, row int, screen, world r2.Vec) {
	now := m.now()
	last := m.lastClick
	if !last.at.IsZero() && now.Sub(last.at) <= m.cfg.DoubleClick() &&
		abs(col-last.col) <= 1 && abs(row-last.row) <= 1 {
		m.lastClick = click{}
		m.doubleClick(col, row, world)
		return
	}
	m.lastClick = click{at: now, col: col, row: row}

	if n, ok := m.nodeAt(col, row, world); ok {
		m.selected = n.ID
		if err := m.sess.BeginDrag(n.ID, world); err != nil {
			m.setStatus(fmt.Sprintf("Drag: %v", err), true)
			return
		}
		m.press = &press{id: n.ID, screen: screen}
		return
	}
	if id, ok := m.canvas.LabelAt(col, row); ok {
		m.selected = id
		return
	}
	m.press = &press{screen: screen}
}

// doubleClick on a label renames, on a node adds a child, on empty canvas
// adds a stage.
func (m *Model) doubleClick(col, row int, world r2.Vec) {
	if id, ok := m.canvas.LabelAt(col, row); ok {
		m.startRename(id)
		return
	}
	if n, ok := m.nodeAt(col, row, world); ok {
		m.addChild(n.ID)
		return
	}
	m.addStage()
}

func (m *Model) mouseDrag(screen, world r2.Vec) {
	p := m.press
	if p.id == "" {
		d := r2.Sub(screen, p.screen)
		m.pan(d.X, d.Y)
		p.screen = screen
		return
	}
	marked, err := m.sess.DragTo(world)
	if err != nil {
		m.press = nil
		return
	}
	if marked {
		m.setStatus("Release to delete", true)
	} else {
		m.statusMsg = ""
	}
	p.screen = screen
}

func (m *Model) mouseUp() {
	p := m.press
	m.press = nil
	if p == nil || p.id == "" {
		return
	}
	title := ""
	if n, ok := m.sess.Map().Node(p.id); ok {
		title = n.Title
	}
	deleted, err := m.sess.EndDrag()
	if err != nil {
		return
	}
	if deleted {
		m.forget()
		m.setStatus(fmt.Sprintf("Deleted %q", title), false)
	} else {
		m.statusMsg = ""
	}
}

// View implements tea.Model.
func (m Model) View() string {
	cols, rows := m.canvasSize()

	var body string
	switch m.mode {
	case modeLibrary:
		body = lipgloss.NewStyle().Height(rows).MaxHeight(rows).Render(m.library.View())
	default:
		body = m.canvas.Render(RenderOptions{
			Transform: m.view.Current(),
			Cols:      cols,
			Rows:      rows,
			Selected:  m.selected,
			Hovered:   m.hovered,
			Theme:     m.theme,
		})
		if m.detailsShown() {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.details.View(m.detailNode(), rows, m.theme))
		}
		switch {
		case m.mode == modePrompt && m.prompt != nil:
			body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center,
				m.theme.Modal.Render(m.prompt.form.View()))
		case m.help.ShowAll:
			body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center,
				m.theme.Modal.Render(m.help.View(m.keys)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m Model) detailNode() *model.Node {
	for _, id := range []string{m.hovered, m.selected} {
		if n, ok := m.sess.Map().Node(id); ok && id != "" {
			return n
		}
	}
	return nil
}

func (m Model) headerView() string {
	mp := m.sess.Map()
	parts := []string{
		m.theme.Header.Render("procmap"),
		m.theme.Base.Bold(true).Render(mp.Name),
		m.theme.Muted.Render(fmt.Sprintf("detail %d/%d", m.sess.DetailLevel(), mp.MaxDepth())),
	}
	if m.sess.Manual() {
		parts = append(parts, m.theme.Muted.Render("manual view (z to fit)"))
	}
	if m.source != "" {
		parts = append(parts, m.theme.Muted.Render(filepath.Base(m.source)))
	}
	return truncateLine(strings.Join(parts, "  "), m.width)
}

func (m Model) footerView() string {
	switch {
	case m.mode == modeRename:
		return m.rename.View()
	case m.statusMsg != "" && m.statusIsError:
		return m.theme.StatusErr.Render(m.statusMsg)
	case m.statusMsg != "":
		return m.theme.StatusOK.Render(m.statusMsg)
	case m.mode == modeLibrary:
		return m.theme.Status.Render("enter load · ctrl+d delete · / filter · esc back")
	default:
		return m.help.ShortHelpView(m.keys.ShortHelp())
	}
}

// truncateLine cuts a styled line to width cells.
func truncateLine(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
