package ui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/camera"
	"github.com/vanderheijden86/procmap/pkg/scene"
)

// A terminal cell stands for a CellW x CellH block of screen pixels. The
// camera works in pixels so world sizes keep their proportions.
const (
	CellW = 8
	CellH = 16
)

// Labels fade in with their node; below these opacities they are dimmed or
// not drawn at all.
const (
	labelHidden = 0.35
	labelDimmed = 0.75
	labelMax    = 24
)

// CellToScreen returns the pixel at the center of a terminal cell.
func CellToScreen(col, row int) r2.Vec {
	return r2.Vec{X: float64(col*CellW) + CellW/2, Y: float64(row*CellH) + CellH/2}
}

// ScreenToCell returns the terminal cell that holds a pixel.
func ScreenToCell(p r2.Vec) (col, row int) {
	return int(math.Floor(p.X / CellW)), int(math.Floor(p.Y / CellH))
}

type cellKind uint8

const (
	kindEmpty cellKind = iota
	kindEdge
	kindNode
	kindLabel
	kindCont // right half of a wide rune
)

type cell struct {
	ch    string
	kind  cellKind
	style *lipgloss.Style
}

// Canvas is a retained-mode terminal renderer. scene.Sync keeps it current;
// Render rasterises it for one camera transform.
type Canvas struct {
	nodes map[string]scene.NodeState
	edges map[string]scene.EdgeState

	// label and glyph hit areas from the last Render, keyed by row*cols+col
	labels map[int]string
	glyphs map[int]string
	cols   int
}

var _ scene.Renderer = (*Canvas)(nil)

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		nodes:  make(map[string]scene.NodeState),
		edges:  make(map[string]scene.EdgeState),
		labels: make(map[int]string),
		glyphs: make(map[int]string),
	}
}

func (c *Canvas) SetNode(n scene.NodeState) { c.nodes[n.ID] = n }
func (c *Canvas) RemoveNode(id string)      { delete(c.nodes, id) }
func (c *Canvas) SetEdge(e scene.EdgeState) { c.edges[e.Key] = e }
func (c *Canvas) RemoveEdge(key string)     { delete(c.edges, key) }

// Len returns the number of retained nodes and edges.
func (c *Canvas) Len() (nodes, edges int) {
	return len(c.nodes), len(c.edges)
}

// LabelAt returns the node whose label covers the cell in the last render.
func (c *Canvas) LabelAt(col, row int) (string, bool) {
	if c.cols == 0 {
		return "", false
	}
	id, ok := c.labels[row*c.cols+col]
	return id, ok
}

// GlyphAt returns the node drawn in the cell in the last render.
func (c *Canvas) GlyphAt(col, row int) (string, bool) {
	if c.cols == 0 {
		return "", false
	}
	id, ok := c.glyphs[row*c.cols+col]
	return id, ok
}

// RenderOptions control one rasterisation.
type RenderOptions struct {
	Transform camera.Transform
	Cols      int
	Rows      int
	Selected  string
	Hovered   string
	Theme     Theme
}

// Render draws edges first, then nodes in paint order, then labels, and
// returns Rows lines of exactly Cols cells each.
func (c *Canvas) Render(o RenderOptions) string {
	if o.Cols <= 0 || o.Rows <= 0 {
		return ""
	}
	grid := make([][]cell, o.Rows)
	for i := range grid {
		grid[i] = make([]cell, o.Cols)
	}
	c.cols = o.Cols
	clear(c.labels)
	clear(c.glyphs)

	put := func(col, row int, ch string, kind cellKind, st *lipgloss.Style) bool {
		if col < 0 || row < 0 || col >= o.Cols || row >= o.Rows {
			return false
		}
		grid[row][col] = cell{ch: ch, kind: kind, style: st}
		return true
	}

	keys := make([]string, 0, len(c.edges))
	for k := range c.edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := c.edges[k]
		a := o.Transform.Apply(r2.Vec{X: e.X1, Y: e.Y1})
		b := o.Transform.Apply(r2.Vec{X: e.X2, Y: e.Y2})
		a, b, ok := clipSegment(a, b, float64(o.Cols*CellW), float64(o.Rows*CellH))
		if !ok {
			continue
		}
		c0, r0 := ScreenToCell(a)
		c1, r1 := ScreenToCell(b)
		ch := edgeRune(c1-c0, r1-r0)
		line(c0, r0, c1, r1, func(col, row int) {
			if col >= 0 && row >= 0 && col < o.Cols && row < o.Rows && grid[row][col].kind == kindEmpty {
				put(col, row, ch, kindEdge, &o.Theme.Edge)
			}
		})
	}

	nodes := make([]scene.NodeState, 0, len(c.nodes))
	for _, n := range c.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	scene.SortPaintOrder(nodes)

	type pendingLabel struct {
		n        scene.NodeState
		col, row int
	}
	var labels []pendingLabel

	for _, n := range nodes {
		if n.Radius <= 0 {
			continue
		}
		center := o.Transform.Apply(r2.Vec{X: n.X, Y: n.Y})
		col, row := ScreenToCell(center)
		rpx := n.Radius * o.Transform.K

		st := o.Theme.RoleStyle(n.Role)
		switch {
		case n.Marked:
			st = o.Theme.Marked
		case n.ID == o.Selected:
			st = o.Theme.Selected
		}
		style := &st

		rows := 0
		if rpx >= CellH/2 {
			rows = int(rpx / CellH)
			cols := int(rpx / CellW)
			for dr := -rows; dr <= rows; dr++ {
				for dc := -cols; dc <= cols; dc++ {
					dx, dy := float64(dc*CellW), float64(dr*CellH)
					if dx*dx+dy*dy > rpx*rpx {
						continue
					}
					if put(col+dc, row+dr, "█", kindNode, style) {
						c.glyphs[(row+dr)*o.Cols+col+dc] = n.ID
					}
				}
			}
		}
		if put(col, row, glyphFor(n), kindNode, style) {
			c.glyphs[row*o.Cols+col] = n.ID
		}
		if n.Opacity >= labelHidden {
			labels = append(labels, pendingLabel{n: n, col: col, row: row + rows + 1})
		}
	}

	for _, l := range labels {
		st := o.Theme.Label
		switch {
		case l.n.Opacity < labelDimmed:
			st = o.Theme.LabelDim
		case l.n.ID == o.Hovered:
			st = o.Theme.Hovered
		}
		text := truncateRunesHelper(l.n.Label, labelMax, "…")
		col := l.col - runewidth.StringWidth(text)/2
		for _, r := range text {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if col >= 0 && col+w <= o.Cols && l.row >= 0 && l.row < o.Rows && grid[l.row][col].kind != kindNode {
				put(col, l.row, string(r), kindLabel, &st)
				c.labels[l.row*o.Cols+col] = l.n.ID
				if w == 2 {
					put(col+1, l.row, "", kindCont, &st)
					c.labels[l.row*o.Cols+col+1] = l.n.ID
				}
			}
			col += w
		}
	}

	var sb strings.Builder
	for i, row := range grid {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeRow(&sb, row)
	}
	return sb.String()
}

// writeRow emits runs of cells that share a style with one Render call each.
func writeRow(sb *strings.Builder, row []cell) {
	var run strings.Builder
	var cur *lipgloss.Style
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if cur == nil {
			sb.WriteString(run.String())
		} else {
			sb.WriteString(cur.Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		if c.kind == kindCont {
			continue
		}
		if c.style != cur {
			flush()
			cur = c.style
		}
		if c.kind == kindEmpty {
			run.WriteByte(' ')
		} else {
			run.WriteString(c.ch)
		}
	}
	flush()
}

func glyphFor(n scene.NodeState) string {
	switch {
	case n.Marked:
		return "✕"
	case n.Depth == 0:
		return "◉"
	case n.Depth == 1:
		return "●"
	default:
		return "•"
	}
}

// edgeRune picks a box-drawing character for a line's overall slope in
// cell space.
func edgeRune(dc, dr int) string {
	adc, adr := abs(dc), abs(dr)
	switch {
	case adc >= 2*adr:
		return "─"
	case adr >= 2*adc:
		return "│"
	case (dc > 0) == (dr > 0):
		return "╲"
	default:
		return "╱"
	}
}

// line walks the cells between two points with Bresenham's algorithm.
func line(c0, r0, c1, r1 int, visit func(col, row int)) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	err := dc + dr
	for {
		visit(c0, r0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * err
		if e2 >= dr {
			err += dr
			c0 += sc
		}
		if e2 <= dc {
			err += dc
			r0 += sr
		}
	}
}

// clipSegment clips a-b to the rectangle [0,w]x[0,h] (Liang-Barsky).
func clipSegment(a, b r2.Vec, w, h float64) (r2.Vec, r2.Vec, bool) {
	d := r2.Sub(b, a)
	t0, t1 := 0.0, 1.0
	for _, pq := range [4][2]float64{
		{-d.X, a.X}, {d.X, w - a.X},
		{-d.Y, a.Y}, {d.Y, h - a.Y},
	} {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return r2.Add(a, r2.Scale(t0, d)), r2.Add(a, r2.Scale(t1, d)), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
