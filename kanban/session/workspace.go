// ABOUTME: Workspace owns the board collection, user registry, shared activity log, and card id generator.
// ABOUTME: It snapshots to and restores from store.State, relinking assignees after every load.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/2389-research/kanban-lite/kanban/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrBoardExists   = errors.New("board already exists")
	ErrBoardNotFound = errors.New("board not found")
	ErrCardNotFound  = errors.New("card not found")
)

// Workspace is the adapter-side owner of everything a board borrows.
// It is not safe for concurrent use.
type Workspace struct {
	boards      []*core.Board
	users       *UserRegistry
	activity    *core.ActivityLog
	ids         core.IDGenerator
	clock       core.Clock
	metadata    map[string]any
	subscribers []func(core.ActivityEntry)
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithIDGenerator sets the card id generator. The default is a
// SequenceGenerator starting at zero.
func WithIDGenerator(g core.IDGenerator) Option {
	return func(w *Workspace) { w.ids = g }
}

// WithClock sets the clock used for new cards and the initial activity log.
func WithClock(c core.Clock) Option {
	return func(w *Workspace) { w.clock = c }
}

// New creates a workspace with no boards and the default user.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		users:    NewDefaultUserRegistry(),
		ids:      core.NewSequenceGenerator(0),
		clock:    core.SystemClock,
		metadata: map[string]any{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.activity = core.NewActivityLogWithClock(w.clock)
	return w
}

func (w *Workspace) Users() *UserRegistry           { return w.users }
func (w *Workspace) ActivityLog() *core.ActivityLog { return w.activity }
func (w *Workspace) IDGenerator() core.IDGenerator  { return w.ids }
func (w *Workspace) Boards() []*core.Board          { return slices.Clone(w.boards) }

// Record appends message to the shared activity log.
func (w *Workspace) Record(message string) {
	w.activity.Record(message)
}

// Subscribe registers fn on the current activity log and on every log
// installed by a later Restore.
func (w *Workspace) Subscribe(fn func(core.ActivityEntry)) {
	w.addSubscriber(fn)
}

func (w *Workspace) addSubscriber(fn func(core.ActivityEntry)) {
	w.subscribers = append(w.subscribers, fn)
	w.activity.Subscribe(fn)
}

// CreateBoard adds a new board with a random UUID id and attaches the shared log.
func (w *Workspace) CreateBoard(name string) (*core.Board, error) {
	if _, err := w.Board(name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBoardExists, name)
	}
	b, err := core.NewBoard(uuid.New().String(), name)
	if err != nil {
		return nil, err
	}
	b.AttachActivityLog(w.activity)
	w.boards = append(w.boards, b)
	return b, nil
}

// RemoveBoard deletes the named board and everything it owns.
func (w *Workspace) RemoveBoard(name string) error {
	i := slices.IndexFunc(w.boards, func(b *core.Board) bool { return b.Name() == name })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, name)
	}
	w.boards = slices.Delete(w.boards, i, i+1)
	return nil
}

// Board returns the board with the given name.
func (w *Workspace) Board(name string) (*core.Board, error) {
	for _, b := range w.boards {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, name)
}

// NewCard creates a card with a generated id, assigned to the default user
// when that user is registered.
func (w *Workspace) NewCard(title string) (*core.Card, error) {
	card, err := core.NewCardWithClock(w.ids.NewID(), title, w.clock)
	if err != nil {
		return nil, err
	}
	if u, ok := w.users.LookupUser(DefaultUserID); ok {
		card.SetAssignee(u)
	}
	return card, nil
}

// FindCard looks up a card by id on the named board.
func (w *Workspace) FindCard(boardName, cardID string) (*core.Card, *core.Column, error) {
	b, err := w.Board(boardName)
	if err != nil {
		return nil, nil, err
	}
	card, col := b.FindCard(cardID)
	if card == nil {
		return nil, nil, fmt.Errorf("%w: %s in board %s", ErrCardNotFound, cardID, boardName)
	}
	return card, col, nil
}

// AddUser registers a new user.
func (w *Workspace) AddUser(id, name, email string) (*core.User, error) {
	u, err := core.NewUser(id, name, email)
	if err != nil {
		return nil, err
	}
	if err := w.users.Add(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Snapshot captures the workspace as a store.State. Boards, users, and the
// log are shared, not copied.
func (w *Workspace) Snapshot() *store.State {
	meta := make(map[string]any, len(w.metadata)+1)
	for k, v := range w.metadata {
		meta[k] = v
	}
	s := &store.State{
		Boards:      w.Boards(),
		Users:       w.users.All(),
		ActivityLog: w.activity,
		Metadata:    meta,
	}
	if seq, ok := w.ids.(*core.SequenceGenerator); ok {
		s.SetCardIDCounter(seq.Last())
	}
	return s
}

// Restore replaces the workspace contents with s. Users are registered first,
// then every card's assignee is relinked against them and the shared log is
// re-attached to every board. Returns the assignee ids that did not resolve.
func (w *Workspace) Restore(s *store.State) []string {
	users := NewUserRegistry()
	for _, u := range s.Users {
		if err := users.Add(u); err != nil {
			log.WithError(err).WithField("component", "kanban.session").Warn("duplicate user skipped")
		}
	}

	activity := s.ActivityLog
	if activity == nil {
		activity = core.NewActivityLogWithClock(w.clock)
	}
	for _, fn := range w.subscribers {
		activity.Subscribe(fn)
	}

	var unresolved []string
	for _, b := range s.Boards {
		b.AttachActivityLog(activity)
		for _, id := range b.ResolveAssignees(users) {
			unresolved = append(unresolved, id)
			log.WithFields(log.Fields{
				"component":   "kanban.session",
				"action":      "relink_assignee",
				"board":       b.Name(),
				"assignee_id": id,
			}).Warn("assignee not found in user registry")
		}
	}

	w.users = users
	w.boards = slices.Clone(s.Boards)
	w.activity = activity
	w.metadata = map[string]any{}
	for k, v := range s.Metadata {
		w.metadata[k] = v
	}
	delete(w.metadata, store.MetaSavedAt)

	if seq, ok := w.ids.(*core.SequenceGenerator); ok {
		seq.Reset(max(s.CardIDCounter(), highestSequence(s.Boards)))
	}
	return unresolved
}

// highestSequence returns the largest n among card ids of the form card_<n>.
func highestSequence(boards []*core.Board) int {
	highest := 0
	for _, b := range boards {
		for _, col := range b.Columns() {
			for _, card := range col.Cards() {
				rest, ok := strings.CutPrefix(card.ID(), "card_")
				if !ok {
					continue
				}
				if n, err := strconv.Atoi(rest); err == nil && n > highest {
					highest = n
				}
			}
		}
	}
	return highest
}

// Recover restores the workspace from m's home directory. When no state file
// exists yet, the currently registered users are kept, so a new workspace
// still has its default user.
func (w *Workspace) Recover(m *store.StorageManager, opts store.RecoverOptions) (*core.DecodeReport, error) {
	opts.Users = w.users.All()
	s, report, err := m.Recover(opts)
	if err != nil {
		return nil, err
	}
	w.Restore(s)
	return report, nil
}

// Save writes the workspace to path and records the save in the activity log.
func (w *Workspace) Save(path string) error {
	if err := store.SaveStateFile(path, w.Snapshot()); err != nil {
		return err
	}
	w.activity.Record(fmt.Sprintf("State saved to file '%s'", path))
	return nil
}

// Load replaces the workspace with the state file at path and records the
// load in the activity log.
func (w *Workspace) Load(path string) (*core.DecodeReport, error) {
	s, report, err := store.LoadStateFile(path)
	if err != nil {
		return nil, err
	}
	w.Restore(s)
	w.activity.Record(fmt.Sprintf("State loaded from file '%s'", path))
	return report, nil
}
