package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI white
// (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Dracula-based palette, adaptive for light terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
)

// Theme holds the styles the TUI paints with. Styles are built once from a
// renderer so per-frame painting never allocates new styles.
type Theme struct {
	Renderer *lipgloss.Renderer

	Base      lipgloss.Style
	Muted     lipgloss.Style
	Edge      lipgloss.Style
	Label     lipgloss.Style
	LabelDim  lipgloss.Style
	Hovered   lipgloss.Style
	Selected  lipgloss.Style
	Marked    lipgloss.Style
	Header    lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
	StatusOK  lipgloss.Style
	Panel     lipgloss.Style
	Modal     lipgloss.Style

	roles map[model.Role]lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{Renderer: r}

	t.Base = r.NewStyle().Foreground(ColorText)
	t.Muted = r.NewStyle().Foreground(ColorMuted)
	t.Edge = r.NewStyle().Foreground(ColorMuted)
	t.Label = r.NewStyle().Foreground(ColorText)
	t.LabelDim = r.NewStyle().Foreground(ColorSubtext).Faint(true)
	t.Hovered = r.NewStyle().Foreground(ColorText).Underline(true)
	t.Selected = r.NewStyle().Foreground(ColorPrimary).Background(ThemeBg("#44475A")).Bold(true)
	t.Marked = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.Header = r.NewStyle().
		Background(ColorPrimary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Status = r.NewStyle().Foreground(ColorSubtext)
	t.StatusErr = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.StatusOK = r.NewStyle().Foreground(ColorSuccess)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	t.Modal = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)

	t.roles = map[model.Role]lipgloss.Style{
		model.RoleAI:     r.NewStyle().Foreground(ThemeFg("#8BE9FD")).Bold(true),
		model.RoleHuman:  r.NewStyle().Foreground(ThemeFg("#FFB86C")).Bold(true),
		model.RoleHybrid: r.NewStyle().Foreground(ThemeFg("#BD93F9")).Bold(true),
	}
	return t
}

// RoleStyle returns the node style for a role; unknown roles render muted.
func (t Theme) RoleStyle(role model.Role) lipgloss.Style {
	if s, ok := t.roles[role]; ok {
		return s
	}
	return t.Muted
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
