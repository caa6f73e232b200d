// ABOUTME: Column is an ordered, owning container of cards with an optional WIP limit.
// ABOUTME: Admission is checked on insert; decode skips bad cards and reports them.
package core

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Unlimited is the WIP limit sentinel for a column without a ceiling.
const Unlimited = -1

// Column holds cards in insertion order.
type Column struct {
	name     string
	wipLimit int
	cards    []*Card
}

// NewColumn creates an empty column. Pass Unlimited for no WIP limit.
func NewColumn(name string, wipLimit int) (*Column, error) {
	if name == "" {
		return nil, emptyField("column", "name")
	}
	if wipLimit < Unlimited {
		return nil, &ValidationError{Entity: "column", Field: "wipLimit", Reason: "must be -1 or greater"}
	}
	return &Column{name: name, wipLimit: wipLimit}, nil
}

func (c *Column) Name() string  { return c.name }
func (c *Column) WIPLimit() int { return c.wipLimit }
func (c *Column) Len() int      { return len(c.cards) }

// Limited reports whether the column has a finite WIP limit.
func (c *Column) Limited() bool {
	return c.wipLimit != Unlimited
}

// IsFull reports whether another card would exceed the WIP limit.
func (c *Column) IsFull() bool {
	return c.Limited() && len(c.cards) >= c.wipLimit
}

// Cards returns a snapshot of the column's cards. The slice is a copy; the
// cards are not, and are only valid until the next removal from this column.
func (c *Column) Cards() []*Card {
	return slices.Clone(c.cards)
}

// AddCard appends card. It fails without mutation when the column is full or
// already holds a card with the same id.
func (c *Column) AddCard(card *Card) bool {
	if card == nil || c.IsFull() || c.indexOf(card.ID()) >= 0 {
		return false
	}
	c.cards = append(c.cards, card)
	return true
}

// RemoveCard removes the first card with id. Returns false when absent.
func (c *Column) RemoveCard(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.cards = slices.Delete(c.cards, i, i+1)
	return true
}

// FindCard returns the first card with id, or nil.
func (c *Column) FindCard(id string) *Card {
	if i := c.indexOf(id); i >= 0 {
		return c.cards[i]
	}
	return nil
}

// SetWIPLimit changes the limit. Lowering it below the current card count is
// refused rather than evicting cards.
func (c *Column) SetWIPLimit(limit int) bool {
	if limit < Unlimited {
		return false
	}
	if limit != Unlimited && len(c.cards) > limit {
		return false
	}
	c.wipLimit = limit
	return true
}

// Equal compares columns by name.
func (c *Column) Equal(other *Column) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.name == other.name
}

func (c *Column) indexOf(id string) int {
	return slices.IndexFunc(c.cards, func(card *Card) bool { return card.ID() == id })
}

// insertAt puts card back at index i, bypassing admission. Used to undo a
// removal that could not be completed.
func (c *Column) insertAt(i int, card *Card) {
	i = min(max(i, 0), len(c.cards))
	c.cards = slices.Insert(c.cards, i, card)
}

type columnJSON struct {
	Name     string  `json:"name"`
	WIPLimit int     `json:"wipLimit"`
	Cards    []*Card `json:"cards"`
}

// MarshalJSON encodes the column as {name, wipLimit, cards}.
func (c *Column) MarshalJSON() ([]byte, error) {
	cards := c.cards
	if cards == nil {
		cards = []*Card{}
	}
	return json.Marshal(columnJSON{Name: c.name, WIPLimit: c.wipLimit, Cards: cards})
}

// DecodeColumn decodes a column. name is required. Cards that fail to decode,
// repeat an id, or exceed the WIP limit are skipped and recorded in report.
func DecodeColumn(data []byte, report *DecodeReport) (*Column, error) {
	return decodeColumn(data, "", report, nil)
}

// decodeColumn decodes a column at path. When claimed is non-nil, cards whose
// id it reports as owned by another column are skipped.
func decodeColumn(data []byte, path string, report *DecodeReport, claimed func(id string) (string, bool)) (*Column, error) {
	f, err := parseObject("column", data)
	if err != nil {
		return nil, err
	}
	name, err := f.requiredString("column", "name")
	if err != nil {
		return nil, err
	}
	limit := f.optionalInt("wipLimit", Unlimited)
	if limit < Unlimited {
		limit = Unlimited
	}
	col := &Column{name: name, wipLimit: limit}

	for i, raw := range f.optionalArray("cards") {
		cardPath := indexPath(path, "cards", i)
		card, err := DecodeCard(raw)
		if err != nil {
			report.Skip(cardPath, err)
			continue
		}
		if col.indexOf(card.ID()) >= 0 {
			report.Skip(cardPath, fmt.Errorf("duplicate card id %q in column %q", card.ID(), name))
			continue
		}
		if claimed != nil {
			if owner, ok := claimed(card.ID()); ok {
				report.Skip(cardPath, fmt.Errorf("card %q already in column %q", card.ID(), owner))
				continue
			}
		}
		if !col.AddCard(card) {
			report.Skip(cardPath, fmt.Errorf("column %q is at its WIP limit of %d", name, limit))
		}
	}
	return col, nil
}
