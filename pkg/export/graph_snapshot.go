package export

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/procmap/pkg/metrics"
	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/scene"
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string      // output path; format inferred from extension when Format is empty
	Format string      // "svg" or "png" (case-insensitive)
	Title  string      // rendered in the summary block
	Frame  scene.Frame // settled frame to draw
}

// MaxSide caps the longer side of an exported image in pixels.
const MaxSide = 4096.0

// SaveSnapshot renders a static picture of a frame as SVG or PNG.
func SaveSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.ExportRender)()
	if len(opts.Frame.Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)
	switch format {
	case "svg":
		return renderSVG(opts.Path, layout)
	default:
		return renderPNG(opts.Path, layout)
	}
}

// SaveAll writes base.svg and base.png concurrently and returns the paths.
func SaveAll(ctx context.Context, base, title string, frame scene.Frame) ([]string, error) {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	paths := []string{base + ".svg", base + ".png"}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return SaveSnapshot(SnapshotOptions{Path: p, Title: title, Frame: frame})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// --- layout ------------------------------------------------------------------

type layoutNode struct {
	ID      string
	Label   string
	Role    model.Role
	X, Y    float64
	R       float64
	LabelDY float64
	Opacity float64
}

type layoutEdge struct {
	X1, Y1, X2, Y2 float64
}

type layoutResult struct {
	Nodes   []layoutNode
	Edges   []layoutEdge
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title       string
	NodeCount   int
	EdgeCount   int
	DetailLevel int
}

const (
	padding      = 36.0
	headerHeight = 120.0
	labelGap     = 20.0
)

// buildLayout maps world coordinates onto the canvas below the header. Only
// nodes with a radius are drawn.
func buildLayout(opts SnapshotOptions) layoutResult {
	var drawn []scene.NodeState
	for _, n := range opts.Frame.Nodes {
		if n.Radius > 0 {
			drawn = append(drawn, n)
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range drawn {
		minX = math.Min(minX, n.X-n.Radius)
		minY = math.Min(minY, n.Y-n.Radius)
		maxX = math.Max(maxX, n.X+n.Radius)
		maxY = math.Max(maxY, n.Y+n.Radius+labelGap)
	}
	if len(drawn) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}

	scale := 1.0
	if side := math.Max(maxX-minX, maxY-minY); side > MaxSide {
		scale = MaxSide / side
	}
	tx := func(x float64) float64 { return padding + (x-minX)*scale }
	ty := func(y float64) float64 { return padding + headerHeight + (y-minY)*scale }

	nodes := make([]layoutNode, 0, len(drawn))
	for _, n := range drawn {
		nodes = append(nodes, layoutNode{
			ID:      n.ID,
			Label:   truncate(n.Label, 40),
			Role:    n.Role,
			X:       tx(n.X),
			Y:       ty(n.Y),
			R:       n.Radius * scale,
			LabelDY: n.Radius*scale + labelGap,
			Opacity: n.Opacity,
		})
	}

	edges := make([]layoutEdge, 0, len(opts.Frame.Edges))
	for _, e := range opts.Frame.Edges {
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			continue
		}
		edges = append(edges, layoutEdge{X1: tx(e.X1), Y1: ty(e.Y1), X2: tx(e.X2), Y2: ty(e.Y2)})
	}

	width := int(math.Ceil(padding*2 + (maxX-minX)*scale))
	height := int(math.Ceil(padding*2 + headerHeight + (maxY-minY)*scale))
	width = max(width, 640)
	height = max(height, 480)

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Process Map"
	}
	return layoutResult{
		Nodes:  nodes,
		Edges:  edges,
		Width:  width,
		Height: height,
		Header: headerHeight,
		Summary: summaryInfo{
			Title:       title,
			NodeCount:   len(nodes),
			EdgeCount:   len(edges),
			DetailLevel: opts.Frame.DetailLevel,
		},
	}
}

// --- rendering ---------------------------------------------------------------

var (
	colorAI       = color.RGBA{0x90, 0xca, 0xf9, 0xff}
	colorHuman    = color.RGBA{0xff, 0xcc, 0x80, 0xff}
	colorHybrid   = color.RGBA{0xce, 0x93, 0xd8, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

func roleColor(r model.Role) color.RGBA {
	switch r {
	case model.RoleAI:
		return colorAI
	case model.RoleHybrid:
		return colorHybrid
	default:
		return colorHuman
	}
}

func withAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(255 * math.Max(0, math.Min(1, a))))}
}

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	drawSummaryBlock(dc, layout)
	drawLegend(dc, layout)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(2)
	for _, e := range layout.Edges {
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}
	for _, n := range layout.Nodes {
		drawNode(dc, n)
	}
	return dc.SavePNG(path)
}

func drawNode(dc *gg.Context, n layoutNode) {
	dc.SetColor(roleColor(n.Role))
	dc.DrawCircle(n.X, n.Y, n.R)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1.2)
	dc.DrawCircle(n.X, n.Y, n.R)
	dc.Stroke()

	if n.Opacity > 0 {
		dc.SetColor(withAlpha(colorText, n.Opacity))
		dc.DrawStringAnchored(n.Label, n.X, n.Y+n.LabelDY, 0.5, 0.5)
	}
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("nodes: %d  connectors: %d", layout.Summary.NodeCount, layout.Summary.EdgeCount), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("detail level: %d", layout.Summary.DetailLevel), 32, 84, 0, 0.5)
}

func drawLegend(dc *gg.Context, layout layoutResult) {
	boxW := 200.0
	boxH := 80.0
	x := float64(layout.Width) - boxW - 20
	y := 24.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+16, 0, 0.5)
	for i, r := range model.Roles {
		ry := y + 34 + float64(i)*16
		dc.SetColor(roleColor(r))
		dc.DrawCircle(x+19, ry, 6)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(r.Legend(), x+32, ry, 0, 0.5)
	}
}

func renderSVG(path string, layout layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)
	drawLegendSVG(canvas, layout)

	canvas.Gid("connectors")
	for _, e := range layout.Edges {
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:2", css(colorEdge)))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range layout.Nodes {
		x, y := int(n.X), int(n.Y)
		canvas.Circle(x, y, int(math.Max(1, math.Round(n.R))),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(roleColor(n.Role)), css(colorStroke)),
			fmt.Sprintf(`class="node %s"`, n.Role))
		if n.Opacity > 0 {
			canvas.Text(x, y+int(n.LabelDY), n.Label,
				fmt.Sprintf("fill:%s;fill-opacity:%.2f;font-size:12px;font-family:sans-serif;text-anchor:middle", css(colorText), n.Opacity))
		}
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("nodes: %d  connectors: %d", layout.Summary.NodeCount, layout.Summary.EdgeCount), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("detail level: %d", layout.Summary.DetailLevel), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawLegendSVG(canvas *svg.SVG, layout layoutResult) {
	boxW := 200
	boxH := 80
	x := layout.Width - boxW - 20
	y := 24
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+18, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, r := range model.Roles {
		ry := y + 36 + i*16
		canvas.Circle(x+19, ry-4, 6, fmt.Sprintf("fill:%s", css(roleColor(r))))
		canvas.Text(x+32, ry, r.Legend(), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}
}

// --- helpers -----------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
