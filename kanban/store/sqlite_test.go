// ABOUTME: Tests for the SQLite search index: migration, rebuild, listing, and tag search.
// ABOUTME: Each test opens a fresh database in a temp dir.
package store_test

import (
	"path/filepath"
	"testing"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/2389-research/kanban-lite/kanban/store"
)

func openIndex(t *testing.T) *store.SqliteIndex {
	t.Helper()
	idx, err := store.OpenSqlite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func boardWithTags(t *testing.T, id, name string, tagged ...string) *core.Board {
	t.Helper()
	b, _ := core.NewBoard(id, name)
	col, _ := core.NewColumn("Todo", core.Unlimited)
	b.AddColumn(col)
	for i, tag := range tagged {
		card, _ := core.NewCard(id+"_card_"+string(rune('a'+i)), "Card "+tag)
		card.AddTag(tag)
		b.AddCard("Todo", card)
	}
	return b
}

func TestOpenSqliteTwiceIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	for i := 0; i < 2; i++ {
		idx, err := store.OpenSqlite(path)
		if err != nil {
			t.Fatalf("OpenSqlite #%d: %v", i+1, err)
		}
		_ = idx.Close()
	}
}

func TestIndexBoardsAndList(t *testing.T) {
	idx := openIndex(t)
	boards := []*core.Board{
		boardWithTags(t, "b1", "Alpha", "bug", "ui"),
		boardWithTags(t, "b2", "Beta", "bug"),
	}
	if err := idx.IndexBoards(boards); err != nil {
		t.Fatalf("IndexBoards: %v", err)
	}

	summaries, err := idx.ListBoards()
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Name != "Alpha" || summaries[0].Cards != 2 || summaries[1].Columns != 1 {
		t.Errorf("summaries = %+v", summaries)
	}

	cards, err := idx.ListCards("b1")
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) != 2 || cards[0].Column != "Todo" || cards[0].BoardName != "Alpha" {
		t.Errorf("cards = %+v", cards)
	}

	n, err := idx.CountCards()
	if err != nil || n != 3 {
		t.Errorf("CountCards = %d, %v; want 3", n, err)
	}
}

func TestSearchTagAcrossBoards(t *testing.T) {
	idx := openIndex(t)
	if err := idx.IndexBoards([]*core.Board{
		boardWithTags(t, "b1", "Alpha", "bug", "ui"),
		boardWithTags(t, "b2", "Beta", "bug"),
	}); err != nil {
		t.Fatalf("IndexBoards: %v", err)
	}

	hits, err := idx.SearchTag("bug")
	if err != nil {
		t.Fatalf("SearchTag: %v", err)
	}
	if len(hits) != 2 || hits[0].BoardID != "b1" || hits[1].BoardID != "b2" {
		t.Errorf("hits = %+v", hits)
	}
	none, err := idx.SearchTag("nope")
	if err != nil || len(none) != 0 {
		t.Errorf("SearchTag(nope) = %v, %v", none, err)
	}
}

func TestIndexBoardsReplacesPreviousContent(t *testing.T) {
	idx := openIndex(t)
	_ = idx.IndexBoards([]*core.Board{boardWithTags(t, "b1", "Alpha", "bug")})
	if err := idx.IndexBoards([]*core.Board{boardWithTags(t, "b2", "Beta")}); err != nil {
		t.Fatalf("IndexBoards: %v", err)
	}
	summaries, _ := idx.ListBoards()
	if len(summaries) != 1 || summaries[0].BoardID != "b2" {
		t.Errorf("summaries = %+v", summaries)
	}
	if n, _ := idx.CountCards(); n != 0 {
		t.Errorf("CountCards = %d, want 0", n)
	}
}

func TestIndexStoresAssignee(t *testing.T) {
	idx := openIndex(t)
	b := boardWithTags(t, "b1", "Alpha", "bug")
	u, _ := core.NewUser("ann", "Ann", "ann@example.com")
	card, _ := b.FindCard("b1_card_a")
	card.SetAssignee(u)
	if err := idx.IndexBoards([]*core.Board{b}); err != nil {
		t.Fatalf("IndexBoards: %v", err)
	}
	cards, _ := idx.ListCards("b1")
	if len(cards) != 1 || cards[0].AssigneeID == nil || *cards[0].AssigneeID != "ann" {
		t.Errorf("cards = %+v", cards)
	}
}
