// ABOUTME: CLI application state: resolved config, the open workspace, storage manager, and journal.
// ABOUTME: Opens once per process, executes command lines, and autosaves after mutating commands.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/session"
	"github.com/2389-research/kanban-lite/kanban/store"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app is shared by every command tree built during one process, so the
// interactive shell keeps one workspace across lines.
type app struct {
	cfg     config
	ws      *session.Workspace
	mgr     *store.StorageManager
	journal *store.Journal

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	style  styles
	errSty styles

	opened bool
	dirty  bool
}

func newApp(in io.Reader, out, errOut io.Writer, cfg config) *app {
	return &app{
		cfg:    cfg,
		in:     in,
		out:    out,
		errOut: errOut,
		style:  newStyles(out),
		errSty: newStyles(errOut),
	}
}

// open recovers the state under the configured home and restores the
// workspace from it. Calls after the first are no-ops.
func (a *app) open() error {
	if a.opened {
		return nil
	}
	if err := a.cfg.validate(); err != nil {
		return err
	}
	log.SetLevel(a.cfg.logLevel())

	mgr, err := store.NewStorageManager(a.cfg.Home)
	if err != nil {
		return err
	}
	mgr.SetStatePath(a.cfg.StateFile)

	ws := session.New(session.WithIDGenerator(a.cfg.idGenerator()))
	if _, err := ws.Recover(mgr, store.RecoverOptions{Journal: a.cfg.Journal, Index: a.cfg.Index}); err != nil {
		return err
	}

	if a.cfg.Journal {
		j, err := store.OpenJournal(mgr.JournalPath())
		if err != nil {
			return err
		}
		ws.Subscribe(j.Observe)
		a.journal = j
	}

	a.mgr, a.ws, a.opened = mgr, ws, true
	log.WithFields(log.Fields{
		"component": "kanban.cli",
		"action":    "open",
		"home":      a.cfg.Home,
		"state":     mgr.StatePath(),
		"boards":    len(ws.Boards()),
	}).Debug("workspace opened")
	return nil
}

func (a *app) close() {
	if a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		log.WithError(err).WithField("component", "kanban.cli").Warn("close journal failed")
	}
	a.journal = nil
}

// markDirty flags the workspace as changed since the last persist.
func (a *app) markDirty() {
	a.dirty = true
}

// commit writes the state file and refreshes the index when a command
// changed the workspace and autosave is enabled.
func (a *app) commit() error {
	if !a.dirty || !a.cfg.Autosave {
		return nil
	}
	if err := store.SaveStateFile(a.mgr.StatePath(), a.ws.Snapshot()); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	a.dirty = false
	if a.cfg.Index {
		a.reindex()
	}
	return nil
}

func (a *app) reindex() {
	if err := a.mgr.Reindex(a.ws.Boards()); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"component": "kanban.cli",
			"action":    "reindex",
		}).Warn("index rebuild failed")
	}
}

// execute runs one command line against a fresh command tree.
func (a *app) execute(args []string) error {
	root := newRootCmd(a)
	if name, ok := unknownCommand(root, args); ok {
		err := failf("Unknown command '%s'. Use 'help' for usage.", name)
		a.printError(err)
		return err
	}
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	if err := root.Execute(); err != nil {
		a.printError(err)
		return err
	}
	if err := a.commit(); err != nil {
		a.printError(err)
		return err
	}
	return nil
}

// userError carries a message written for the person at the terminal. It is
// printed as-is, unlike wrapped errors from the lower layers.
type userError struct{ msg string }

func (e *userError) Error() string { return e.msg }

func failf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

func (a *app) printError(err error) {
	fmt.Fprintln(a.errOut, a.errSty.failure.Render("Error: "+err.Error()))
}

// unknownCommand reports the first argument when it names no subcommand.
func unknownCommand(root *cobra.Command, args []string) (string, bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") || args[0] == "help" {
		return "", false
	}
	for _, c := range root.Commands() {
		if c.Name() == args[0] || c.HasAlias(args[0]) {
			return "", false
		}
	}
	return args[0], true
}
