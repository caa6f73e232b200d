// ABOUTME: Tests for Card construction, mutation timestamps, tags, cloning, and the JSON codec.
// ABOUTME: Uses a manual clock so updatedAt ordering is deterministic.
package core_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/2389-research/kanban-lite/kanban/core"
)

type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func mustCard(t *testing.T, id, title string) *core.Card {
	t.Helper()
	card, err := core.NewCard(id, title)
	if err != nil {
		t.Fatalf("NewCard(%q, %q): %v", id, title, err)
	}
	return card
}

func TestNewCardDefaults(t *testing.T) {
	clock := newManualClock()
	card, err := core.NewCardWithClock("card_1", "Write docs", clock.Now)
	if err != nil {
		t.Fatalf("NewCardWithClock: %v", err)
	}
	if card.Priority() != 0 {
		t.Errorf("Priority = %d, want 0", card.Priority())
	}
	if card.Assignee() != nil {
		t.Errorf("Assignee = %v, want nil", card.Assignee())
	}
	if len(card.Tags()) != 0 {
		t.Errorf("Tags = %v, want empty", card.Tags())
	}
	if !card.CreatedAt().Equal(clock.now) || !card.UpdatedAt().Equal(clock.now) {
		t.Errorf("timestamps = %v/%v, want %v", card.CreatedAt(), card.UpdatedAt(), clock.now)
	}
}

func TestNewCardRejectsEmptyFields(t *testing.T) {
	cases := []struct{ id, title string }{{"", "t"}, {"id", ""}}
	for _, tc := range cases {
		_, err := core.NewCard(tc.id, tc.title)
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("NewCard(%q, %q) err = %v, want ErrValidation", tc.id, tc.title, err)
		}
	}
}

func TestCardSettersRefreshUpdatedAt(t *testing.T) {
	clock := newManualClock()
	card, _ := core.NewCardWithClock("card_1", "Task", clock.Now)
	u, _ := core.NewUser("u1", "Ann", "ann@example.com")

	steps := []struct {
		name string
		fn   func()
	}{
		{"SetTitle", func() { card.SetTitle("Renamed") }},
		{"SetDescription", func() { card.SetDescription("body") }},
		{"SetPriority", func() { card.SetPriority(5) }},
		{"SetAssignee", func() { card.SetAssignee(u) }},
	}
	for _, step := range steps {
		before := card.UpdatedAt()
		clock.Advance(time.Second)
		step.fn()
		if !card.UpdatedAt().After(before) {
			t.Errorf("%s: UpdatedAt = %v, want after %v", step.name, card.UpdatedAt(), before)
		}
	}
	if card.CreatedAt().After(card.UpdatedAt()) {
		t.Error("CreatedAt is after UpdatedAt")
	}
}

func TestCardTagsAreASet(t *testing.T) {
	clock := newManualClock()
	card, _ := core.NewCardWithClock("card_1", "Task", clock.Now)

	clock.Advance(time.Second)
	if !card.AddTag("bug") {
		t.Fatal("AddTag(bug) = false, want true")
	}
	stamped := card.UpdatedAt()

	clock.Advance(time.Second)
	if card.AddTag("bug") {
		t.Error("second AddTag(bug) = true, want false")
	}
	if !card.UpdatedAt().Equal(stamped) {
		t.Errorf("duplicate AddTag refreshed UpdatedAt to %v", card.UpdatedAt())
	}
	if got := card.Tags(); len(got) != 1 || got[0] != "bug" {
		t.Errorf("Tags = %v, want [bug]", got)
	}

	if card.RemoveTag("missing") {
		t.Error("RemoveTag(missing) = true, want false")
	}
	if !card.UpdatedAt().Equal(stamped) {
		t.Error("no-op RemoveTag refreshed UpdatedAt")
	}
	if !card.RemoveTag("bug") || card.HasTag("bug") {
		t.Error("RemoveTag(bug) did not remove the tag")
	}
	if !card.UpdatedAt().After(stamped) {
		t.Error("RemoveTag did not refresh UpdatedAt")
	}
}

func TestCardTagsPreserveInsertionOrder(t *testing.T) {
	card := mustCard(t, "card_1", "Task")
	for _, tag := range []string{"zeta", "alpha", "mid"} {
		card.AddTag(tag)
	}
	got := card.Tags()
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tags = %v, want %v", got, want)
		}
	}
}

func TestCardUpdatedAtNeverRegresses(t *testing.T) {
	clock := newManualClock()
	card, _ := core.NewCardWithClock("card_1", "Task", clock.Now)
	clock.Advance(time.Minute)
	card.SetPriority(1)
	stamped := card.UpdatedAt()

	clock.Advance(-time.Hour)
	card.SetPriority(2)
	if !card.UpdatedAt().Equal(stamped) {
		t.Errorf("UpdatedAt = %v, want %v after clock regression", card.UpdatedAt(), stamped)
	}
}

func TestCardEqualIsIdentityOnly(t *testing.T) {
	a := mustCard(t, "card_1", "One")
	b := mustCard(t, "card_1", "Two")
	c := mustCard(t, "card_2", "One")
	if !a.Equal(b) {
		t.Error("cards with same id should be equal")
	}
	if a.Equal(c) {
		t.Error("cards with different ids should not be equal")
	}
}

func TestCardCloneIsIndependent(t *testing.T) {
	card := mustCard(t, "card_1", "Task")
	card.AddTag("a")
	dup := card.Clone()
	dup.AddTag("b")
	dup.SetTitle("Other")
	if card.HasTag("b") || card.Title() != "Task" {
		t.Errorf("mutating the clone changed the original: title=%q tags=%v", card.Title(), card.Tags())
	}
}

func TestCardJSONShape(t *testing.T) {
	clock := newManualClock()
	card, _ := core.NewCardWithClock("card_1", "Task", clock.Now)
	data, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["assigneeId"] != nil {
		t.Errorf("assigneeId = %v, want null", m["assigneeId"])
	}
	if tags, ok := m["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("tags = %v, want []", m["tags"])
	}
	if got := int64(m["createdAt"].(float64)); got != clock.now.UnixMilli() {
		t.Errorf("createdAt = %d, want %d", got, clock.now.UnixMilli())
	}
}

func TestCardRoundTripKeepsAssigneeID(t *testing.T) {
	u, _ := core.NewUser("u1", "Ann", "ann@example.com")
	card := mustCard(t, "card_1", "Task")
	card.SetDescription("desc")
	card.SetPriority(3)
	card.AddTag("x")
	card.SetAssignee(u)

	data, _ := json.Marshal(card)
	got, err := core.DecodeCard(data)
	if err != nil {
		t.Fatalf("DecodeCard: %v", err)
	}
	if got.Assignee() != nil {
		t.Error("decoded Assignee should be nil until resolved")
	}
	if got.AssigneeID() != "u1" {
		t.Errorf("AssigneeID = %q, want u1", got.AssigneeID())
	}
	if got.Description() != "desc" || got.Priority() != 3 || !got.HasTag("x") {
		t.Errorf("decoded card = %q/%d/%v", got.Description(), got.Priority(), got.Tags())
	}
	if !got.CreatedAt().Equal(card.CreatedAt()) || !got.UpdatedAt().Equal(card.UpdatedAt()) {
		t.Error("timestamps did not survive the round trip")
	}
}

func TestDecodeCardDefaultsAndClamps(t *testing.T) {
	data := []byte(`{"id":"c","title":"T","priority":"high","description":7,
		"tags":["a",1,"a",null,"b"],"createdAt":2000,"updatedAt":1000}`)
	card, err := core.DecodeCard(data)
	if err != nil {
		t.Fatalf("DecodeCard: %v", err)
	}
	if card.Priority() != 0 {
		t.Errorf("Priority = %d, want 0", card.Priority())
	}
	if card.Description() != "" {
		t.Errorf("Description = %q, want empty", card.Description())
	}
	if got := card.Tags(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Tags = %v, want [a b]", got)
	}
	if card.UpdatedAt().UnixMilli() != 2000 {
		t.Errorf("UpdatedAt = %d, want clamped to 2000", card.UpdatedAt().UnixMilli())
	}
}

func TestDecodeCardMissingUpdatedAtDefaultsToCreated(t *testing.T) {
	card, err := core.DecodeCard([]byte(`{"id":"c","title":"T","createdAt":5000}`))
	if err != nil {
		t.Fatalf("DecodeCard: %v", err)
	}
	if card.UpdatedAt().UnixMilli() != 5000 {
		t.Errorf("UpdatedAt = %d, want 5000", card.UpdatedAt().UnixMilli())
	}
}

func TestDecodeCardRequiresIDAndTitle(t *testing.T) {
	for _, in := range []string{
		`{"title":"T"}`,
		`{"id":"","title":"T"}`,
		`{"id":"c"}`,
		`{"id":3,"title":"T"}`,
	} {
		_, err := core.DecodeCard([]byte(in))
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("DecodeCard(%s) err = %v, want *ValidationError", in, err)
		}
	}
}
