// ABOUTME: Tests for Column admission control, removal, WIP limit changes, and tolerant decoding.
// ABOUTME: Decode cases check that skipped cards are reported with their paths.
package core_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/2389-research/kanban-lite/kanban/core"
)

func mustColumn(t *testing.T, name string, limit int) *core.Column {
	t.Helper()
	col, err := core.NewColumn(name, limit)
	if err != nil {
		t.Fatalf("NewColumn(%q, %d): %v", name, limit, err)
	}
	return col
}

func TestNewColumnValidation(t *testing.T) {
	if _, err := core.NewColumn("", core.Unlimited); !errors.Is(err, core.ErrValidation) {
		t.Errorf("empty name err = %v, want ErrValidation", err)
	}
	if _, err := core.NewColumn("X", -2); !errors.Is(err, core.ErrValidation) {
		t.Errorf("wipLimit -2 err = %v, want ErrValidation", err)
	}
	if _, err := core.NewColumn("X", 0); err != nil {
		t.Errorf("wipLimit 0 err = %v, want nil", err)
	}
}

func TestColumnWIPLimitAdmission(t *testing.T) {
	col := mustColumn(t, "Doing", 1)
	if !col.AddCard(mustCard(t, "a", "A")) {
		t.Fatal("first AddCard = false, want true")
	}
	if !col.IsFull() {
		t.Error("IsFull = false, want true at limit")
	}
	if col.AddCard(mustCard(t, "b", "B")) {
		t.Error("AddCard beyond limit = true, want false")
	}
	if col.Len() != 1 {
		t.Errorf("Len = %d, want 1", col.Len())
	}
}

func TestColumnZeroLimitAdmitsNothing(t *testing.T) {
	col := mustColumn(t, "Frozen", 0)
	if col.AddCard(mustCard(t, "a", "A")) {
		t.Error("AddCard on wipLimit 0 = true, want false")
	}
}

func TestColumnRejectsDuplicateID(t *testing.T) {
	col := mustColumn(t, "Todo", core.Unlimited)
	col.AddCard(mustCard(t, "a", "A"))
	if col.AddCard(mustCard(t, "a", "Again")) {
		t.Error("AddCard with duplicate id = true, want false")
	}
}

func TestColumnRemoveAndFind(t *testing.T) {
	col := mustColumn(t, "Todo", core.Unlimited)
	col.AddCard(mustCard(t, "a", "A"))
	col.AddCard(mustCard(t, "b", "B"))

	if col.FindCard("b") == nil {
		t.Error("FindCard(b) = nil")
	}
	if col.RemoveCard("missing") {
		t.Error("RemoveCard(missing) = true, want false")
	}
	if !col.RemoveCard("a") {
		t.Fatal("RemoveCard(a) = false, want true")
	}
	if col.FindCard("a") != nil || col.Len() != 1 {
		t.Errorf("after remove: Len = %d, FindCard(a) = %v", col.Len(), col.FindCard("a"))
	}
}

func TestColumnCardsIsACopy(t *testing.T) {
	col := mustColumn(t, "Todo", core.Unlimited)
	col.AddCard(mustCard(t, "a", "A"))
	cards := col.Cards()
	cards[0] = nil
	if col.FindCard("a") == nil {
		t.Error("modifying Cards() result changed the column")
	}
}

func TestSetWIPLimitNeverEvicts(t *testing.T) {
	col := mustColumn(t, "Doing", core.Unlimited)
	col.AddCard(mustCard(t, "a", "A"))
	col.AddCard(mustCard(t, "b", "B"))

	if col.SetWIPLimit(1) {
		t.Error("SetWIPLimit(1) with 2 cards = true, want false")
	}
	if col.WIPLimit() != core.Unlimited || col.Len() != 2 {
		t.Errorf("limit = %d, len = %d after refused change", col.WIPLimit(), col.Len())
	}
	if !col.SetWIPLimit(2) || !col.IsFull() {
		t.Error("SetWIPLimit(2) should succeed and leave the column full")
	}
	if col.SetWIPLimit(-5) {
		t.Error("SetWIPLimit(-5) = true, want false")
	}
	if !col.SetWIPLimit(core.Unlimited) || col.IsFull() {
		t.Error("SetWIPLimit(Unlimited) should lift the limit")
	}
}

func TestColumnEqualByName(t *testing.T) {
	if !mustColumn(t, "X", 1).Equal(mustColumn(t, "X", 5)) {
		t.Error("columns with same name should be equal")
	}
}

func TestDecodeColumnDefaultsMissingCards(t *testing.T) {
	col, err := core.DecodeColumn([]byte(`{"name":"X"}`), nil)
	if err != nil {
		t.Fatalf("DecodeColumn: %v", err)
	}
	if col.Name() != "X" || col.WIPLimit() != core.Unlimited || col.Len() != 0 {
		t.Errorf("got name=%q limit=%d len=%d", col.Name(), col.WIPLimit(), col.Len())
	}
}

func TestDecodeColumnSkipsBadCards(t *testing.T) {
	data := []byte(`{"name":"Todo","wipLimit":-7,"cards":[
		{"id":"a","title":"A"},
		{"title":"no id"},
		{"id":"b","title":"B"},
		{"id":"a","title":"dup"}
	]}`)
	report := &core.DecodeReport{}
	col, err := core.DecodeColumn(data, report)
	if err != nil {
		t.Fatalf("DecodeColumn: %v", err)
	}
	if col.WIPLimit() != core.Unlimited {
		t.Errorf("WIPLimit = %d, want Unlimited", col.WIPLimit())
	}
	if col.Len() != 2 {
		t.Errorf("Len = %d, want 2", col.Len())
	}
	if report.Len() != 2 {
		t.Fatalf("report.Len = %d, want 2: %v", report.Len(), report.Err())
	}
	if report.Skipped[0].Path != "cards[1]" || report.Skipped[1].Path != "cards[3]" {
		t.Errorf("paths = %q, %q", report.Skipped[0].Path, report.Skipped[1].Path)
	}
	if !errors.Is(report.Skipped[0].Err, core.ErrValidation) {
		t.Errorf("skip err = %v, want ErrValidation", report.Skipped[0].Err)
	}
}

func TestDecodeColumnEnforcesWIPLimit(t *testing.T) {
	data := []byte(`{"name":"Doing","wipLimit":1,"cards":[{"id":"a","title":"A"},{"id":"b","title":"B"}]}`)
	report := &core.DecodeReport{}
	col, err := core.DecodeColumn(data, report)
	if err != nil {
		t.Fatalf("DecodeColumn: %v", err)
	}
	if col.Len() != 1 || report.Len() != 1 {
		t.Errorf("Len = %d, skipped = %d, want 1 and 1", col.Len(), report.Len())
	}
}

func TestDecodeColumnRequiresName(t *testing.T) {
	if _, err := core.DecodeColumn([]byte(`{"wipLimit":3}`), nil); !errors.Is(err, core.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := core.DecodeColumn([]byte(`[1,2]`), nil); err == nil {
		t.Error("DecodeColumn of an array should fail")
	}
}

func TestColumnJSONRoundTrip(t *testing.T) {
	col := mustColumn(t, "Todo", 3)
	col.AddCard(mustCard(t, "a", "A"))
	data, err := json.Marshal(col)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := core.DecodeColumn(data, nil)
	if err != nil {
		t.Fatalf("DecodeColumn: %v", err)
	}
	if got.Name() != "Todo" || got.WIPLimit() != 3 || got.FindCard("a") == nil {
		t.Errorf("round trip lost data: %s", data)
	}
}
