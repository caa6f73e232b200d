// ABOUTME: Tests for encoding and tolerant decoding of the state document.
// ABOUTME: Covers decode order, duplicate handling, metadata passthrough, and the activity log fallback.
package store_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/2389-research/kanban-lite/kanban/store"
)

func sampleState(t *testing.T) *store.State {
	t.Helper()
	s := store.NewState()
	ann, _ := core.NewUser("ann", "Ann", "ann@example.com")
	s.Users = append(s.Users, ann)

	board, _ := core.NewBoard("b1", "Project")
	board.AttachActivityLog(s.ActivityLog)
	todo, _ := core.NewColumn("Todo", 2)
	done, _ := core.NewColumn("Done", core.Unlimited)
	board.AddColumn(todo)
	board.AddColumn(done)
	card, _ := core.NewCard("card_1", "Fix bug")
	card.AddTag("bug")
	card.SetAssignee(ann)
	board.AddCard("Todo", card)
	s.Boards = append(s.Boards, board)
	s.SetCardIDCounter(1)
	return s
}

func TestEncodeStateShape(t *testing.T) {
	data, err := store.EncodeState(sampleState(t), time.UnixMilli(1234))
	if err != nil {
		t.Fatalf("EncodeState: %v", err)
	}
	if !strings.HasPrefix(string(data), "{\n  \"boards\"") {
		t.Errorf("state not indented by two spaces:\n%s", data[:40])
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"boards", "users", "activityLog", "metadata"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	var meta map[string]any
	_ = json.Unmarshal(doc["metadata"], &meta)
	if meta["version"] != "1.0" || meta["cardIdCounter"] != float64(1) || meta["savedAt"] != float64(1234) {
		t.Errorf("metadata = %v", meta)
	}
}

func TestStateRoundTrip(t *testing.T) {
	orig := sampleState(t)
	orig.Metadata["theme"] = "dark"
	data, err := store.EncodeState(orig, time.Time{})
	if err != nil {
		t.Fatalf("EncodeState: %v", err)
	}
	got, report, err := store.DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if report.Len() != 0 {
		t.Errorf("unexpected skips: %v", report.Err())
	}
	if len(got.Boards) != 1 || len(got.Users) != 1 {
		t.Fatalf("got %d boards, %d users", len(got.Boards), len(got.Users))
	}
	if got.ActivityLog.Len() != orig.ActivityLog.Len() {
		t.Errorf("log len = %d, want %d", got.ActivityLog.Len(), orig.ActivityLog.Len())
	}
	if got.CardIDCounter() != 1 {
		t.Errorf("CardIDCounter = %d, want 1", got.CardIDCounter())
	}
	if got.Metadata["theme"] != "dark" {
		t.Error("unknown metadata key was dropped")
	}

	again, err := store.EncodeState(got, time.Time{})
	if err != nil {
		t.Fatalf("second EncodeState: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("second encode differs:\n%s\n---\n%s", data, again)
	}
}

func TestDecodeStateSkipsInvalidEntities(t *testing.T) {
	data := []byte(`{
		"users": [{"id":"u1","name":"U","email":"u@x"}, {"id":"u2","name":"no email"}, {"id":"u1","name":"dup","email":"d@x"}],
		"boards": [
			{"id":"b1","name":"One","columns":[]},
			{"name":"NoId"},
			{"id":"b3","name":"One"},
			{"id":"b4","name":"Four","columns":[{"name":"C","cards":[{"title":"no id"}]}]}
		],
		"activityLog": {"entries":[{"timestamp":1,"message":"ok"},{"message":"bad"}]}
	}`)
	state, report, err := store.DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if len(state.Users) != 1 {
		t.Errorf("users = %d, want 1", len(state.Users))
	}
	if len(state.Boards) != 2 || state.Boards[1].ID() != "b4" {
		t.Errorf("boards = %d", len(state.Boards))
	}
	if state.ActivityLog.Len() != 1 {
		t.Errorf("log len = %d, want 1", state.ActivityLog.Len())
	}

	var paths []string
	for _, s := range report.Skipped {
		paths = append(paths, s.Path)
	}
	want := "users[1],users[2],boards[1],boards[2],boards[3].columns[0].cards[0],activityLog.entries[1]"
	if strings.Join(paths, ",") != want {
		t.Errorf("skipped paths = %v\nwant %s", paths, want)
	}
}

func TestDecodeStateBadActivityLogFallsBack(t *testing.T) {
	state, report, err := store.DecodeState([]byte(`{"boards":[],"activityLog":"broken"}`))
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if state.ActivityLog == nil || state.ActivityLog.Len() != 0 {
		t.Error("expected a fresh empty activity log")
	}
	if report.Len() != 1 || report.Skipped[0].Path != "activityLog" {
		t.Errorf("report = %v", report.Err())
	}
}

func TestDecodeStateRejectsMalformedJSON(t *testing.T) {
	for _, in := range []string{`{"boards":`, `[]`, `null`} {
		if _, _, err := store.DecodeState([]byte(in)); err == nil {
			t.Errorf("DecodeState(%s) err = nil, want error", in)
		}
	}
}
