package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/procmap/pkg/config"
	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/store"
	"github.com/vanderheijden86/procmap/pkg/ui"
	"github.com/vanderheijden86/procmap/pkg/version"
	"github.com/vanderheijden86/procmap/pkg/watcher"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
)

// app carries what every subcommand shares.
type app struct {
	cfg        config.Config
	configPath string
	dbPath     string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	var mapFile string
	var noWatch bool

	root := &cobra.Command{
		Use:           "procmap",
		Short:         "procmap - an interactive process map in your terminal",
		Long:          brand.Sprint("procmap") + " renders a zoomable tree of process stages.\n" + subtle.Sprint("Expand, collapse, drag to delete and double click to add."),
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), mapFile, !noWatch)
		},
	}
	root.SetVersionTemplate("procmap {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/procmap/config.yaml, env PROCMAP_CONFIG)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Map library database (env PROCMAP_DB)")
	root.Flags().StringVarP(&mapFile, "map", "m", "", "Open a map file instead of the default map")
	root.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the --map file when it changes")

	root.AddCommand(newExportCmd(a), newMapsCmd(a))
	return root
}

// init loads .env, the config file and resolves the store path. Flags win
// over environment variables, which win over the config file.
func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		warn.Fprintf(a.stderr, "procmap: ignoring .env: %v\n", err)
	}
	if a.configPath == "" {
		a.configPath = os.Getenv("PROCMAP_CONFIG")
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		// Non-fatal: LoadFrom already fell back to defaults.
		warn.Fprintf(a.stderr, "procmap: %v (using defaults)\n", err)
	}

	if a.dbPath == "" {
		a.dbPath = os.Getenv("PROCMAP_DB")
	}
	if a.dbPath == "" {
		a.dbPath = a.cfg.StorePath()
	}
	return nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if a.dbPath == "" {
		return nil, fmt.Errorf("cannot determine map library path; set --db or PROCMAP_DB")
	}
	return store.Open(ctx, a.dbPath)
}

func (a *app) runTUI(ctx context.Context, mapFile string, watch bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("procmap needs an interactive terminal; use 'procmap export' for static output")
	}

	if path := config.LogPath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				defer f.Close()
				debug.SetOutput(f)
				defer debug.SetOutput(os.Stderr)
			}
		}
	}

	st, err := a.openStore(ctx)
	if err != nil {
		// The canvas still works without a library.
		warn.Fprintf(a.stderr, "procmap: map library unavailable: %v\n", err)
		debug.Errorf("store: %v", err)
	} else {
		defer st.Close()
	}

	var m *model.Map
	source := ""
	if mapFile != "" {
		m, err = watcher.ReadMap(mapFile)
		if err != nil {
			return err
		}
		source = mapFile
	}

	p := tea.NewProgram(ui.NewModel(ui.Options{
		Config: a.cfg,
		Store:  st,
		Map:    m,
		Source: source,
	}), tea.WithAltScreen(), tea.WithMouseAllMotion())

	if mapFile != "" && watch {
		w, err := watcher.WatchMap(mapFile,
			func(m *model.Map) { p.Send(ui.MapReloadedMsg{Map: m}) },
			func(err error) { p.Send(ui.MapReloadErrorMsg{Err: err}) },
		)
		if err != nil {
			debug.Warnf("watcher: %v", err)
		} else {
			defer w.Stop()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func printErr(w io.Writer, err error) {
	bad.Fprintf(w, "procmap: %s\n", strings.TrimSpace(err.Error()))
}
