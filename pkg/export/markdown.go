package export

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/scene"
)

// sanitizeMermaidID returns a Mermaid-safe node id.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "node"
	}
	return sb.String()
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
	return truncate(strings.TrimSpace(result), 40)
}

// GenerateMermaid renders the drawn part of a frame as a Mermaid flowchart.
// Nodes with zero radius are left out, as are connectors touching them.
func GenerateMermaid(frame scene.Frame) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for _, r := range model.Roles {
		c := roleColor(r)
		fmt.Fprintf(&sb, "    classDef %s fill:%s,stroke:#333,color:#000\n", r, css(c))
	}
	sb.WriteString("\n")

	nodes := make([]scene.NodeState, 0, len(frame.Nodes))
	for _, n := range frame.Nodes {
		if n.Radius > 0 {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	safeIDs := make(map[string]string, len(nodes))
	used := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		safe := sanitizeMermaidID(n.ID)
		if used[safe] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(n.ID))
			safe = fmt.Sprintf("%s_%x", safe, h.Sum32())
		}
		used[safe] = true
		safeIDs[n.ID] = safe
	}

	for _, n := range nodes {
		shape := `(("%s"))`
		if n.Depth > 0 {
			shape = `("%s")`
		}
		fmt.Fprintf(&sb, "    %s"+shape+"\n", safeIDs[n.ID], sanitizeMermaidText(n.Label))
		if n.Role != "" {
			fmt.Fprintf(&sb, "    class %s %s\n", safeIDs[n.ID], n.Role)
		}
	}
	sb.WriteString("\n")

	edges := append([]scene.EdgeState(nil), frame.Edges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Key < edges[j].Key })
	for _, e := range edges {
		from, okFrom := safeIDs[e.SourceID]
		to, okTo := safeIDs[e.TargetID]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
	}
	return sb.String()
}

// GenerateMarkdown writes a readable report of a map: a summary, the
// diagram at the frame's detail level and the full outline of every stage.
func GenerateMarkdown(m *model.Map, frame scene.Frame) string {
	var sb strings.Builder

	title := m.Name
	if strings.TrimSpace(title) == "" {
		title = "Process Map"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	counts := make(map[model.Role]int)
	for _, n := range m.Nodes() {
		counts[n.Role]++
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	fmt.Fprintf(&sb, "| **Stages** | %d |\n", len(m.Stages))
	fmt.Fprintf(&sb, "| **Nodes** | %d |\n", m.Len())
	fmt.Fprintf(&sb, "| Depth | %d |\n", m.MaxDepth())
	for _, r := range model.Roles {
		fmt.Fprintf(&sb, "| %s %s | %d |\n", roleEmoji(r), r.Legend(), counts[r])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## Diagram (detail level %d)\n\n", frame.DetailLevel)
	sb.WriteString("```mermaid\n")
	sb.WriteString(GenerateMermaid(frame))
	sb.WriteString("```\n\n")

	sb.WriteString("## Outline\n\n")
	for i, s := range m.Stages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, outlineItem(s))
		writeOutline(&sb, s.Children, 1)
	}
	return sb.String()
}

func writeOutline(sb *strings.Builder, nodes []*model.Node, depth int) {
	indent := strings.Repeat("   ", depth)
	for _, n := range nodes {
		fmt.Fprintf(sb, "%s- %s\n", indent, outlineItem(n))
		writeOutline(sb, n.Children, depth+1)
	}
}

func outlineItem(n *model.Node) string {
	item := fmt.Sprintf("%s **%s**", roleEmoji(n.Role), escapeMarkdown(n.Label()))
	if d := strings.TrimSpace(n.Description); d != "" {
		item += " - " + escapeMarkdown(strings.Join(strings.Fields(d), " "))
	}
	return item
}

func roleEmoji(r model.Role) string {
	switch r {
	case model.RoleAI:
		return "🤖"
	case model.RoleHuman:
		return "🧑"
	case model.RoleHybrid:
		return "🤝"
	default:
		return "•"
	}
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`").Replace(s)
}

// SaveMarkdown writes GenerateMarkdown output to path.
func SaveMarkdown(path string, m *model.Map, frame scene.Frame) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return os.WriteFile(path, []byte(GenerateMarkdown(m, frame)), 0o644)
}
