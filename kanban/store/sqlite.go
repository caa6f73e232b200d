// ABOUTME: SQLite-backed search index mirroring boards, columns, cards, and tags.
// ABOUTME: Schema is managed by golang-migrate from embedded SQL; the index is always rebuildable.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// BoardSummary is one row of ListBoards.
type BoardSummary struct {
	BoardID string
	Name    string
	Columns int
	Cards   int
}

// CardRow is a card as stored in the index.
type CardRow struct {
	BoardID    string
	BoardName  string
	CardID     string
	Column     string
	Title      string
	Priority   int
	AssigneeID *string
	UpdatedAt  int64
}

// SqliteIndex is a queryable cache of board contents. The state file stays
// the source of truth; IndexBoards replaces the whole index.
type SqliteIndex struct {
	db   *sql.DB
	path string
}

// OpenSqlite opens or creates the index database at path and migrates its
// schema to the latest version.
func OpenSqlite(path string) (*SqliteIndex, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve index path: %w", err)
	}
	if err := migrateSchema(abs); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", abs)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SqliteIndex{db: db, path: abs}, nil
}

func migrateSchema(path string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()
	m.Log = migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrateLogger routes golang-migrate output to logrus at debug level.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	log.WithField("component", "kanban.store.migrate").Debugf(format, v...)
}

func (migrateLogger) Verbose() bool {
	return log.IsLevelEnabled(log.TraceLevel)
}

// Path returns the database file path.
func (idx *SqliteIndex) Path() string {
	return idx.path
}

// Close closes the database connection.
func (idx *SqliteIndex) Close() error {
	return idx.db.Close()
}

// IndexBoards clears the index and inserts every board in one transaction.
func (idx *SqliteIndex) IndexBoards(boards []*core.Board) (err error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"card_tags", "cards", "columns", "boards"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for bi, b := range boards {
		if _, err := tx.Exec(
			"INSERT INTO boards (board_id, name, position) VALUES (?, ?, ?)",
			b.ID(), b.Name(), bi); err != nil {
			return fmt.Errorf("insert board %s: %w", b.ID(), err)
		}
		for ci, col := range b.Columns() {
			if _, err := tx.Exec(
				"INSERT INTO columns (board_id, name, wip_limit, position) VALUES (?, ?, ?, ?)",
				b.ID(), col.Name(), col.WIPLimit(), ci); err != nil {
				return fmt.Errorf("insert column %s: %w", col.Name(), err)
			}
			for pos, card := range col.Cards() {
				if err := insertCard(tx, b.ID(), col.Name(), pos, card); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index tx: %w", err)
	}
	log.WithFields(log.Fields{
		"component": "kanban.store",
		"action":    "index_boards",
		"boards":    len(boards),
	}).Debug("index rebuilt")
	return nil
}

func insertCard(tx *sql.Tx, boardID, column string, pos int, card *core.Card) error {
	var assignee *string
	if id := card.AssigneeID(); id != "" {
		assignee = &id
	}
	_, err := tx.Exec(
		`INSERT INTO cards (board_id, card_id, column_name, title, description, priority,
			assignee_id, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		boardID, card.ID(), column, card.Title(), card.Description(), card.Priority(),
		assignee, pos, card.CreatedAt().UnixMilli(), card.UpdatedAt().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert card %s: %w", card.ID(), err)
	}
	for _, tag := range card.Tags() {
		if _, err := tx.Exec(
			"INSERT INTO card_tags (board_id, card_id, tag) VALUES (?, ?, ?)",
			boardID, card.ID(), tag); err != nil {
			return fmt.Errorf("insert tag %s on %s: %w", tag, card.ID(), err)
		}
	}
	return nil
}

// ListBoards returns every indexed board with its column and card counts.
func (idx *SqliteIndex) ListBoards() ([]BoardSummary, error) {
	rows, err := idx.db.Query(
		`SELECT b.board_id, b.name,
			(SELECT COUNT(*) FROM columns c WHERE c.board_id = b.board_id),
			(SELECT COUNT(*) FROM cards k WHERE k.board_id = b.board_id)
		 FROM boards b ORDER BY b.position`)
	if err != nil {
		return nil, fmt.Errorf("query boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var boards []BoardSummary
	for rows.Next() {
		var s BoardSummary
		if err := rows.Scan(&s.BoardID, &s.Name, &s.Columns, &s.Cards); err != nil {
			return nil, fmt.Errorf("scan board row: %w", err)
		}
		boards = append(boards, s)
	}
	return boards, rows.Err()
}

const cardSelect = `SELECT k.board_id, b.name, k.card_id, k.column_name, k.title, k.priority,
		k.assignee_id, k.updated_at
	 FROM cards k
	 JOIN boards b ON b.board_id = k.board_id
	 JOIN columns c ON c.board_id = k.board_id AND c.name = k.column_name`

const cardOrder = ` ORDER BY b.position, c.position, k.position`

// ListCards returns the cards of one board in column then card order.
func (idx *SqliteIndex) ListCards(boardID string) ([]CardRow, error) {
	return idx.queryCards(cardSelect+" WHERE k.board_id = ?"+cardOrder, boardID)
}

// SearchTag returns every card carrying tag across all boards.
func (idx *SqliteIndex) SearchTag(tag string) ([]CardRow, error) {
	return idx.queryCards(cardSelect+
		" JOIN card_tags t ON t.board_id = k.board_id AND t.card_id = k.card_id WHERE t.tag = ?"+
		cardOrder, tag)
}

func (idx *SqliteIndex) queryCards(query string, args ...any) ([]CardRow, error) {
	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []CardRow
	for rows.Next() {
		var c CardRow
		if err := rows.Scan(&c.BoardID, &c.BoardName, &c.CardID, &c.Column, &c.Title,
			&c.Priority, &c.AssigneeID, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CountCards returns the number of indexed cards across all boards.
func (idx *SqliteIndex) CountCards() (int, error) {
	var n int
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}
