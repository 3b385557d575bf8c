package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/procmap/pkg/export"
	"github.com/vanderheijden86/procmap/pkg/hooks"
	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/scene"
	"github.com/vanderheijden86/procmap/pkg/session"
	"github.com/vanderheijden86/procmap/pkg/store"
	"github.com/vanderheijden86/procmap/pkg/watcher"
)

type exportOptions struct {
	mapFile string
	slot    string
	detail  int
	out     string
	format  string
	noHooks bool
}

func newExportCmd(a *app) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a settled map to SVG and/or PNG",
		Long: `Render a map at a given detail level without opening the TUI.

The map comes from --map (a JSON file), --slot (a library key) or the
built-in default map. --format all writes both an SVG and a PNG; md writes
a markdown report and mermaid a flowchart ("--out -" prints it).

Commands in .procmap/hooks.yaml run before and after the export with the
PROCMAP_EXPORT_* variables set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.exportMap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(a.stdout, "%s %s\n", brand.Sprint("wrote"), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.mapFile, "map", "m", "", "Map file to export")
	cmd.Flags().StringVar(&opts.slot, "slot", "", "Library slot key to export (see 'procmap maps list')")
	cmd.Flags().IntVarP(&opts.detail, "detail", "d", 0, "Detail level (clamped to the map's depth)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path (default <map name>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "svg, png, all, md or mermaid (default from --out extension, else svg)")
	cmd.Flags().BoolVar(&opts.noHooks, "no-hooks", false, "Skip hooks from .procmap/hooks.yaml")
	cmd.MarkFlagsMutuallyExclusive("map", "slot")
	return cmd
}

func (a *app) exportMap(ctx context.Context, opts exportOptions) ([]string, error) {
	m, err := a.resolveMap(ctx, opts.mapFile, opts.slot)
	if err != nil {
		return nil, err
	}
	frame := settledFrame(m, opts.detail, a.cfg.SessionOptions())

	hctx := hooks.ExportContext{
		MapName:     m.Name,
		Format:      opts.format,
		NodeCount:   m.Len(),
		DetailLevel: frame.DetailLevel,
		Timestamp:   time.Now(),
	}
	cwd, _ := os.Getwd()
	runner, err := hooks.RunHooks(cwd, hctx, opts.noHooks)
	if err != nil {
		return nil, err
	}
	if runner != nil {
		defer func() {
			if runner.Failed() > 0 {
				warn.Fprint(a.stderr, runner.Summary())
			}
		}()
		if err := runner.RunPreExport(ctx); err != nil {
			return nil, fmt.Errorf("export cancelled: %w", err)
		}
	}

	paths, err := a.render(ctx, m, frame, opts)
	if err != nil || runner == nil {
		return paths, err
	}
	hctx.Paths = paths
	runner.SetContext(hctx)
	if err := runner.RunPostExport(ctx); err != nil {
		return paths, err
	}
	return paths, nil
}

// render writes m in the requested format and returns the written paths.
func (a *app) render(ctx context.Context, m *model.Map, frame scene.Frame, opts exportOptions) ([]string, error) {
	out := opts.out
	if out == "" {
		out = slug(m.Name)
	}
	format := strings.ToLower(opts.format)

	switch format {
	case "all":
		return export.SaveAll(ctx, out, m.Name, frame)
	case "md", "markdown":
		if filepath.Ext(out) == "" {
			out += ".md"
		}
		if err := export.SaveMarkdown(out, m, frame); err != nil {
			return nil, err
		}
		return []string{out}, nil
	case "mermaid", "mmd":
		if out == "-" {
			_, err := fmt.Fprint(a.stdout, export.GenerateMermaid(frame))
			return nil, err
		}
		if filepath.Ext(out) == "" {
			out += ".mmd"
		}
		if err := os.WriteFile(out, []byte(export.GenerateMermaid(frame)), 0o644); err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	if format != "" && filepath.Ext(out) == "" {
		out += "." + format
	}
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:   out,
		Format: format,
		Title:  m.Name,
		Frame:  frame,
	})
	if err != nil {
		return nil, err
	}
	if filepath.Ext(out) == "" {
		out += ".svg"
	}
	return []string{out}, nil
}

// resolveMap picks the map named by a file or a slot, falling back to the
// built-in default.
func (a *app) resolveMap(ctx context.Context, mapFile, slot string) (*model.Map, error) {
	switch {
	case mapFile != "":
		return watcher.ReadMap(mapFile)
	case slot != "" && slot != store.DefaultKey:
		st, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Load(ctx, slot)
	default:
		return model.DefaultMap(), nil
	}
}

// settledFrame lays m out at level with every animation finished.
func settledFrame(m *model.Map, level int, opts session.Options) scene.Frame {
	s := session.New(m, nil, opts)
	s.SetDetailLevel(level)
	s.Snap()
	return s.Frame()
}

// slug turns a map name into a file name stem.
func slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "-")
	if s == "" {
		return "procmap"
	}
	return s
}
