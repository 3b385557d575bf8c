package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/store"
)

func newMapsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maps",
		Aliases: []string{"library"},
		Short:   "Manage the saved map library",
	}
	cmd.AddCommand(
		mapsListCmd(a),
		mapsShowCmd(a),
		mapsImportCmd(a),
		mapsDeleteCmd(a),
	)
	return cmd
}

func mapsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the default map and every saved map",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", subtle.Sprint("KEY"), subtle.Sprint("NAME"), subtle.Sprint("SAVED"))
			for _, e := range entries {
				saved := "built in"
				if !e.SavedAt.IsZero() {
					saved = humanize.Time(e.SavedAt)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, brand.Sprint(e.Name), saved)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, subtle.Sprintf("\n%d maps in %s", len(entries), st.Path()))
			return nil
		},
	}
}

func mapsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show KEY",
		Short: "Print the stored JSON document of a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := st.Raw(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, strings.TrimRight(string(data), "\n"))
			return err
		},
	}
}

func mapsImportCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Save a map file into the library",
		Long: `Save a map file into the library under a new slot.

The slot name is --name, else the document's own name, else the file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading map: %w", err)
			}
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if name == "" {
				name = importName(data, args[0])
			}
			e, err := st.Import(cmd.Context(), name, data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(a.stdout, "%s %s as %s\n", brand.Sprint("imported"), e.Name, e.Key)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name for the saved map")
	return cmd
}

// importName returns "" when the document names itself, so the store
// keeps that name; otherwise the file stem.
func importName(data []byte, path string) string {
	if m, err := model.Decode(data); err == nil && strings.TrimSpace(m.Name) != "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func mapsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete KEY...",
		Aliases: []string{"rm"},
		Short:   "Delete saved maps",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			for _, key := range args {
				if key == store.DefaultKey {
					warn.Fprintf(a.stderr, "skipping %s: the default map cannot be deleted\n", key)
					continue
				}
				if err := st.Delete(cmd.Context(), key); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s %s\n", bad.Sprint("deleted"), key)
			}
			return nil
		},
	}
}
