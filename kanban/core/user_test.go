// ABOUTME: Tests for User validation and codec, and for the card id generators.
// ABOUTME: Generators are checked for format and per-instance independence.
package core_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/2389-research/kanban-lite/kanban/core"
)

func TestNewUserRequiresAllFields(t *testing.T) {
	for _, tc := range [][3]string{{"", "n", "e"}, {"i", "", "e"}, {"i", "n", ""}} {
		if _, err := core.NewUser(tc[0], tc[1], tc[2]); !errors.Is(err, core.ErrValidation) {
			t.Errorf("NewUser(%q) err = %v, want ErrValidation", tc, err)
		}
	}
}

func TestUserRoundTrip(t *testing.T) {
	u := mustUser(t, "ann")
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := core.DecodeUser(data)
	if err != nil {
		t.Fatalf("DecodeUser: %v", err)
	}
	if got.ID() != "ann" || got.Name() != "ann" || got.Email() != "ann@example.com" {
		t.Errorf("got %s", data)
	}
	if !got.Equal(u) {
		t.Error("decoded user should equal original by id")
	}
}

func TestDecodeUserMissingEmail(t *testing.T) {
	_, err := core.DecodeUser([]byte(`{"id":"u","name":"U"}`))
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Errorf("err = %v, want validation error on email", err)
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := core.NewSequenceGenerator(0)
	if got := gen.NewID(); got != "card_1" {
		t.Errorf("NewID = %q, want card_1", got)
	}
	gen.Reset(41)
	if got := gen.NewID(); got != "card_42" {
		t.Errorf("NewID after Reset(41) = %q, want card_42", got)
	}
	if gen.Last() != 42 {
		t.Errorf("Last = %d, want 42", gen.Last())
	}
}

func TestSequenceGeneratorsAreIndependent(t *testing.T) {
	a := core.NewSequenceGenerator(0)
	b := core.NewSequenceGenerator(0)
	a.NewID()
	if got := b.NewID(); got != "card_1" {
		t.Errorf("second generator NewID = %q, want card_1", got)
	}
}

func TestULIDGenerator(t *testing.T) {
	var gen core.ULIDGenerator
	first, second := gen.NewID(), gen.NewID()
	if !strings.HasPrefix(first, "card_") || len(first) != len("card_")+26 {
		t.Errorf("NewID = %q, want card_<ULID>", first)
	}
	if first == second {
		t.Error("ULIDGenerator returned the same id twice")
	}
}
