// ABOUTME: Save, load, export, and search commands backed by the storage manager.
// ABOUTME: Search queries the SQLite index, rebuilding it first when the workspace has unsaved changes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/2389-research/kanban-lite/kanban/export"
	"github.com/spf13/cobra"
)

func (a *app) pathOrState(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return a.mgr.StatePath()
}

func newSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save [filename]",
		Short: "Save state to file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.pathOrState(args)
			if err := a.ws.Save(path); err != nil {
				return fmt.Errorf("saving state: %w", err)
			}
			if path == a.mgr.StatePath() {
				a.dirty = false
			}
			a.success("✓ State saved to '%s' (JSON format).", path)
			if info, err := os.Stat(path); err == nil {
				a.printf("  File size: %d bytes", info.Size())
			}
			return nil
		},
	}
}

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load [filename]",
		Short: "Load state from file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.pathOrState(args)
			report, err := a.ws.Load(path)
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading state: file '%s' does not exist", path)
			}
			if err != nil {
				return fmt.Errorf("loading state: %w", err)
			}
			if a.journal != nil {
				if err := a.journal.Rewrite(a.ws.ActivityLog().All()); err != nil {
					return fmt.Errorf("loading state: %w", err)
				}
			}
			a.markDirty()

			boards := a.ws.Boards()
			total := 0
			for _, b := range boards {
				total += b.CardCount()
			}
			a.success("✓ State loaded from '%s' (JSON format).", path)
			a.printf("  Loaded %d board(s), %d user(s)", len(boards), a.ws.Users().Len())
			a.printf("  Total cards: %d", total)
			if report.Len() > 0 {
				a.printf("  Skipped %d invalid entr%s", report.Len(), plural(report.Len(), "y", "ies"))
			}
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func newExportCmd(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "export <board> [md|yaml|html]",
		Short: "Print a board as Markdown, YAML, or HTML",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(args[0])
			if err != nil {
				return err
			}
			if write {
				paths, err := a.mgr.WriteExports(b)
				if err != nil {
					return err
				}
				for _, p := range paths {
					a.success("✓ Exported '%s' to '%s'.", b.Name(), p)
				}
				return nil
			}

			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			format, err := export.ParseFormat(name)
			if err != nil {
				return err
			}
			out, err := export.Render(b, format)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write every format to the exports directory")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <tag>",
		Short: "Search tag across all boards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Index {
				return failf("Search needs the index; enable it with KANBAN_INDEX=true.")
			}
			if a.dirty {
				a.reindex()
			}
			idx, err := a.mgr.OpenIndex()
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			hits, err := idx.SearchTag(args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				a.printf("No cards found with tag '%s'.", args[0])
				return nil
			}
			a.heading("Cards with tag '%s' across boards:", args[0])
			for _, h := range hits {
				a.printf("  - [%s] %s (Board: %s, Column: %s, Priority: %d)", h.CardID, h.Title, h.BoardName, h.Column, h.Priority)
			}
			return nil
		},
	}
}
