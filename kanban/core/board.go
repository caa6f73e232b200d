// ABOUTME: Board is the top-level aggregate owning uniquely named columns of cards.
// ABOUTME: Provides the card move protocol, cross-column queries, and audit logging.
package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Board owns an ordered set of columns and borrows an optional Recorder.
type Board struct {
	id      string
	name    string
	columns []*Column
	log     Recorder
}

// NewBoard creates a board with no columns and no activity log.
func NewBoard(id, name string) (*Board, error) {
	if id == "" {
		return nil, emptyField("board", "id")
	}
	if name == "" {
		return nil, emptyField("board", "name")
	}
	return &Board{id: id, name: name}, nil
}

func (b *Board) ID() string   { return b.id }
func (b *Board) Name() string { return b.name }

// Columns returns a snapshot of the board's columns in order.
func (b *Board) Columns() []*Column {
	return slices.Clone(b.columns)
}

// AttachActivityLog replaces the recorder used for audit entries. nil disables logging.
func (b *Board) AttachActivityLog(r Recorder) {
	b.log = r
}

func (b *Board) record(format string, args ...any) {
	if b.log == nil {
		return
	}
	b.log.Record(fmt.Sprintf(format, args...))
}

// AddColumn appends col. Fails when a column with the same name exists.
func (b *Board) AddColumn(col *Column) bool {
	if col == nil || b.FindColumn(col.Name()) != nil {
		return false
	}
	b.columns = append(b.columns, col)
	b.record("Column '%s' added to board '%s'", col.Name(), b.name)
	return true
}

// RemoveColumn deletes the named column together with its cards.
func (b *Board) RemoveColumn(name string) bool {
	i := b.columnIndex(name)
	if i < 0 {
		return false
	}
	b.record("Column '%s' removed from board '%s'", name, b.name)
	b.columns = slices.Delete(b.columns, i, i+1)
	return true
}

// FindColumn returns the named column, or nil.
func (b *Board) FindColumn(name string) *Column {
	if i := b.columnIndex(name); i >= 0 {
		return b.columns[i]
	}
	return nil
}

func (b *Board) columnIndex(name string) int {
	return slices.IndexFunc(b.columns, func(c *Column) bool { return c.Name() == name })
}

// AddCard places card at the end of the named column. Fails when the column is
// missing or full, or when the card id is already used anywhere on the board.
func (b *Board) AddCard(columnName string, card *Card) bool {
	col := b.FindColumn(columnName)
	if col == nil || card == nil {
		return false
	}
	if existing, _ := b.FindCard(card.ID()); existing != nil {
		return false
	}
	if !col.AddCard(card) {
		return false
	}
	b.record("Card '%s' added to column '%s' in board '%s'", card.ID(), columnName, b.name)
	return true
}

// RemoveCard deletes a card from the named column.
func (b *Board) RemoveCard(columnName, cardID string) bool {
	col := b.FindColumn(columnName)
	if col == nil || !col.RemoveCard(cardID) {
		return false
	}
	b.record("Card '%s' removed from column '%s' in board '%s'", cardID, columnName, b.name)
	return true
}

// MoveCard moves a card between columns.
//
// Preconditions checked before anything changes: both columns exist, the card
// is in the source, and the destination is not full. If the insert into the
// destination still fails, the card is restored to its original position in
// the source, so a failed move never loses a card.
func (b *Board) MoveCard(cardID, fromColumn, toColumn string) bool {
	from := b.FindColumn(fromColumn)
	to := b.FindColumn(toColumn)
	if from == nil || to == nil {
		return false
	}
	pos := from.indexOf(cardID)
	if pos < 0 {
		return false
	}
	if to.IsFull() {
		return false
	}

	moved := from.cards[pos].Clone()
	if !from.RemoveCard(cardID) {
		return false
	}
	if !to.AddCard(moved) {
		from.insertAt(pos, moved)
		b.record("Card '%s' could not be moved to '%s' in board '%s'; restored to '%s'",
			cardID, toColumn, b.name, fromColumn)
		return false
	}
	b.record("Card '%s' moved from '%s' to '%s' in board '%s'", cardID, fromColumn, toColumn, b.name)
	return true
}

// FindCard searches every column for id and returns the card with its column.
func (b *Board) FindCard(id string) (*Card, *Column) {
	for _, col := range b.columns {
		if card := col.FindCard(id); card != nil {
			return card, col
		}
	}
	return nil, nil
}

// CardCount returns the number of cards across all columns.
func (b *Board) CardCount() int {
	n := 0
	for _, col := range b.columns {
		n += col.Len()
	}
	return n
}

func (b *Board) collect(match func(*Card) bool) []*Card {
	var out []*Card
	for _, col := range b.columns {
		for _, card := range col.cards {
			if match(card) {
				out = append(out, card)
			}
		}
	}
	return out
}

// FindCardsByTag returns every card carrying tag, in column then card order.
func (b *Board) FindCardsByTag(tag string) []*Card {
	return b.collect(func(c *Card) bool { return c.HasTag(tag) })
}

// FilterByPriority returns every card with priority >= minPriority.
func (b *Board) FilterByPriority(minPriority int) []*Card {
	return b.collect(func(c *Card) bool { return c.Priority() >= minPriority })
}

// FilterByAssignee returns cards assigned to exactly this *User. A nil user
// matches nothing.
func (b *Board) FilterByAssignee(u *User) []*Card {
	if u == nil {
		return nil
	}
	return b.collect(func(c *Card) bool { return c.Assignee() == u })
}

// AllTags returns the sorted, de-duplicated union of every card's tags.
func (b *Board) AllTags() []string {
	seen := map[string]struct{}{}
	for _, col := range b.columns {
		for _, card := range col.cards {
			for _, tag := range card.tags {
				seen[tag] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ResolveAssignees relinks every card's pending assignee id against r and
// returns the ids that could not be found.
func (b *Board) ResolveAssignees(r UserResolver) []string {
	var missing []string
	for _, col := range b.columns {
		for _, card := range col.cards {
			if !card.ResolveAssignee(r) {
				missing = append(missing, card.assigneeID)
			}
		}
	}
	return missing
}

type boardJSON struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
}

// MarshalJSON encodes the board as {id, name, columns}.
func (b *Board) MarshalJSON() ([]byte, error) {
	cols := b.columns
	if cols == nil {
		cols = []*Column{}
	}
	return json.Marshal(boardJSON{ID: b.id, Name: b.name, Columns: cols})
}

// DecodeBoard decodes a board. id and name are required; on failure no board
// is returned. Bad or duplicate columns, and cards whose id already appeared
// in an earlier column, are skipped and recorded in report.
func DecodeBoard(data []byte, report *DecodeReport) (*Board, error) {
	return DecodeBoardAt(data, "", report)
}

// DecodeBoardAt is DecodeBoard with a path prefix for report entries.
func DecodeBoardAt(data []byte, path string, report *DecodeReport) (*Board, error) {
	f, err := parseObject("board", data)
	if err != nil {
		return nil, err
	}
	id, err := f.requiredString("board", "id")
	if err != nil {
		return nil, err
	}
	name, err := f.requiredString("board", "name")
	if err != nil {
		return nil, err
	}
	board := &Board{id: id, name: name}

	owners := map[string]string{}
	claimed := func(id string) (string, bool) {
		owner, ok := owners[id]
		return owner, ok
	}
	for i, raw := range f.optionalArray("columns") {
		colPath := indexPath(path, "columns", i)
		col, err := decodeColumn(raw, colPath, report, claimed)
		if err != nil {
			report.Skip(colPath, err)
			continue
		}
		if board.FindColumn(col.Name()) != nil {
			report.Skip(colPath, fmt.Errorf("duplicate column name %q", col.Name()))
			continue
		}
		for _, card := range col.cards {
			owners[card.ID()] = col.Name()
		}
		board.columns = append(board.columns, col)
	}
	return board, nil
}
