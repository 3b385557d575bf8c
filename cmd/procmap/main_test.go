package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/vanderheijden86/procmap/pkg/config"
	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/store"
)

func TestMain(m *testing.M) {
	debug.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const pipelineJSON = `{
  "name": "Pipeline",
  "stages": [
    {"id": "s1", "title": "Intake", "role": "human", "children": [
      {"id": "s1a", "title": "Triage", "role": "ai", "children": []}
    ]},
    {"id": "s2", "title": "Ship", "role": "hybrid", "children": []}
  ]
}`

// run executes the CLI in-process against a private config and library.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	t.Setenv("PROCMAP_DB", "")
	t.Setenv("PROCMAP_CONFIG", "")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	base := []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--db", filepath.Join(dir, "maps.db"),
	}
	cmd.SetArgs(append(args, base...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeMap(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}
	return path
}

func TestMapsImportListShowDelete(t *testing.T) {
	dir := t.TempDir()
	file := writeMap(t, dir, "pipeline.json", pipelineJSON)

	out, _, err := run(t, dir, "maps", "import", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported Pipeline as "+store.KeyPrefix) {
		t.Fatalf("import output = %q", out)
	}
	key := strings.TrimSpace(out[strings.LastIndex(out, " as ")+4:])

	out, _, err = run(t, dir, "maps", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{store.DefaultKey, model.DefaultMapName, key, "Pipeline", "2 maps"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, dir, "maps", "show", key)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	m, err := model.Decode([]byte(out))
	if err != nil {
		t.Fatalf("show output does not decode: %v\n%s", err, out)
	}
	if m.Name != "Pipeline" || m.Len() != 3 {
		t.Errorf("shown map = %q with %d nodes", m.Name, m.Len())
	}

	out, stderr, err := run(t, dir, "maps", "delete", store.DefaultKey, key)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(stderr, "cannot be deleted") || !strings.Contains(out, "deleted "+key) {
		t.Errorf("delete output = %q / %q", out, stderr)
	}

	if _, _, err := run(t, dir, "maps", "show", key); err == nil {
		t.Error("show of a deleted slot should fail")
	}
}

func TestMapsImportRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	file := writeMap(t, dir, "broken.json", `{"stages": [{"id": "a", "title": "A", "role": "robot"}]}`)

	_, _, err := run(t, dir, "maps", "import", file)
	if err == nil {
		t.Fatal("expected an error for an unknown role")
	}
	if !strings.Contains(err.Error(), "broken.json") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestMapsImportNameFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	file := writeMap(t, dir, "onboarding.json", `[{"id": "a", "title": "Start", "role": "human"}]`)

	out, _, err := run(t, dir, "maps", "import", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported onboarding as") {
		t.Errorf("import output = %q", out)
	}
}

func TestExportDefaultMapSVG(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "default.svg")

	out, _, err := run(t, dir, "export", "--out", outPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, outPath) {
		t.Errorf("export output = %q", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) || !bytes.Contains(data, []byte("A Business Exists")) {
		t.Error("svg is missing the root element or the first stage")
	}
}

func TestExportFileAllFormats(t *testing.T) {
	dir := t.TempDir()
	file := writeMap(t, dir, "pipeline.json", pipelineJSON)
	base := filepath.Join(dir, "out", "pipeline")

	out, _, err := run(t, dir, "export", "--map", file, "--detail", "5", "--format", "all", "--out", base)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, ext := range []string{".svg", ".png"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
		if !strings.Contains(out, base+ext) {
			t.Errorf("output does not list %s: %q", ext, out)
		}
	}
	svg, _ := os.ReadFile(base + ".svg")
	if !bytes.Contains(svg, []byte("Triage")) {
		t.Error("detail level was not applied: sub-stage missing from export")
	}
}

func TestExportMapAndSlotAreExclusive(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := run(t, dir, "export", "--map", "a.json", "--slot", "map_1"); err == nil {
		t.Error("expected --map and --slot to conflict")
	}
}

func TestExportUnknownSlot(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := run(t, dir, "export", "--slot", "map_404"); err == nil {
		t.Error("expected an error for a missing slot")
	}
}

func TestSettledFrameHidesDeeperLevels(t *testing.T) {
	m, err := model.Decode([]byte(pipelineJSON))
	if err != nil {
		t.Fatal(err)
	}
	f := settledFrame(m, 0, config.DefaultConfig().SessionOptions())
	for _, n := range f.Nodes {
		if n.Depth > 0 && (n.Visible || n.Radius != 0) {
			t.Errorf("node %s visible at level 0: %+v", n.ID, n)
		}
	}

	m, _ = model.Decode([]byte(pipelineJSON))
	f = settledFrame(m, 1, config.DefaultConfig().SessionOptions())
	for _, n := range f.Nodes {
		if !n.Visible {
			t.Errorf("node %s hidden at level 1", n.ID)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Default Map", "default-map"},
		{"  Q3 / Sales  ", "q3-sales"},
		{"", "procmap"},
		{"***", "procmap"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRootNeedsTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("running attached to a terminal")
	}
	_, _, err := run(t, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Errorf("err = %v", err)
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "procmap ") {
		t.Errorf("version output = %q", out)
	}
}

func TestExportMermaidToStdout(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "export", "--format", "mermaid", "--out", "-")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "graph LR") || !strings.Contains(out, "m1 --> m2") {
		t.Errorf("mermaid output = %q", out)
	}
}

func TestExportMarkdown(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "report")
	out, _, err := run(t, dir, "export", "--format", "md", "--out", base)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, base+".md") {
		t.Errorf("export output = %q", out)
	}
	data, err := os.ReadFile(base + ".md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "## Outline") {
		t.Error("markdown report has no outline")
	}
}

func TestExportRunsHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook commands use sh syntax")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	marker := filepath.Join(dir, "post.txt")
	if err := os.MkdirAll(filepath.Join(dir, ".procmap"), 0o755); err != nil {
		t.Fatal(err)
	}
	hooksYAML := "hooks:\n  post-export:\n    - command: echo \"$PROCMAP_EXPORT_PATH $PROCMAP_NODE_COUNT\" > " + marker + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".procmap", "hooks.yaml"), []byte(hooksYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, dir, "export", "--map", writeMap(t, dir, "p.json", pipelineJSON), "--out", "p.svg"); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "p.svg 3" {
		t.Errorf("hook saw %q", got)
	}

	os.Remove(marker)
	if _, _, err := run(t, dir, "export", "--no-hooks", "--out", "d.svg"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("--no-hooks still ran the hook")
	}
}

func TestExportPreHookCancels(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook commands use sh syntax")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll(filepath.Join(dir, ".procmap"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".procmap", "hooks.yaml"), []byte("hooks:\n  pre-export:\n    - command: exit 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := run(t, dir, "export", "--out", "never.svg")
	if err == nil || !strings.Contains(err.Error(), "export cancelled") {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "never.svg")); err == nil {
		t.Error("file written despite failing pre-export hook")
	}
}
