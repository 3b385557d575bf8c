package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// DetailsPanelWidth is the width of the description panel, borders included.
const DetailsPanelWidth = 36

// detailsPanel renders the hovered or selected node's description as
// markdown. Output is cached per node and width.
type detailsPanel struct {
	renderer *glamour.TermRenderer
	width    int

	cacheKey string
	cached   string
}

func newDetailsPanel(width int) *detailsPanel {
	p := &detailsPanel{}
	p.setWidth(width)
	return p
}

func (p *detailsPanel) setWidth(width int) {
	if width == p.width && p.renderer != nil {
		return
	}
	p.width = width
	p.cacheKey = ""
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 10)),
	)
	if err != nil {
		p.renderer = nil
		return
	}
	p.renderer = r
}

// nodeMarkdown builds the panel source for a node.
func nodeMarkdown(n *model.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", strings.TrimSpace(n.Label()))
	fmt.Fprintf(&sb, "*%s*", n.Role.Legend())
	if n.HasChildren() {
		fmt.Fprintf(&sb, " · %d sub-steps", len(n.Children))
	}
	sb.WriteString("\n\n")
	sb.WriteString(n.Tooltip())
	sb.WriteString("\n")
	return sb.String()
}

// legendMarkdown lists the role colors when nothing is hovered or selected.
func legendMarkdown() string {
	var sb strings.Builder
	sb.WriteString("## Legend\n\n")
	for _, r := range model.Roles {
		fmt.Fprintf(&sb, "- **%s**: %s\n", r, r.Legend())
	}
	return sb.String()
}

// View renders the panel for n, or the legend when n is nil.
func (p *detailsPanel) View(n *model.Node, height int, theme Theme) string {
	src, key := legendMarkdown(), "legend"
	if n != nil {
		src = nodeMarkdown(n)
		key = n.ID + "\x00" + n.Title + "\x00" + n.Description
	}
	if key != p.cacheKey {
		p.cacheKey = key
		p.cached = src
		if p.renderer != nil {
			if out, err := p.renderer.Render(src); err == nil {
				p.cached = strings.TrimRight(out, "\n ")
			}
		}
	}

	lines := strings.Split(p.cached, "\n")
	inner := max(height-2, 1)
	if len(lines) > inner {
		lines = append(lines[:inner-1], "…")
	}
	return theme.Panel.
		Width(p.width - 2).
		Height(inner).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
