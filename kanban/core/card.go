// ABOUTME: Card is a kanban work item with title, description, priority, tags, and an assignee.
// ABOUTME: Mutating setters refresh UpdatedAt; encode/decode keep the assignee as an id reference.
package core

import (
	"encoding/json"
	"slices"
	"time"
)

// Card represents a unit of work on a board.
//
// The assignee is a borrowed reference: the caller's user registry owns the
// User and must keep it alive while the card points at it. After decode the
// reference is nil and AssigneeID holds the id to resolve.
type Card struct {
	id          string
	title       string
	description string
	priority    int
	assignee    *User
	assigneeID  string
	tags        []string
	createdAt   time.Time
	updatedAt   time.Time
	clock       Clock
}

// NewCard creates a Card with priority 0, no assignee, and no tags.
func NewCard(id, title string) (*Card, error) {
	return NewCardWithClock(id, title, SystemClock)
}

// NewCardWithClock creates a Card whose timestamps come from clock.
func NewCardWithClock(id, title string, clock Clock) (*Card, error) {
	if id == "" {
		return nil, emptyField("card", "id")
	}
	if title == "" {
		return nil, emptyField("card", "title")
	}
	now := stamp(clock)
	return &Card{
		id:        id,
		title:     title,
		tags:      []string{},
		createdAt: now,
		updatedAt: now,
		clock:     clock,
	}, nil
}

func (c *Card) ID() string             { return c.id }
func (c *Card) Title() string          { return c.title }
func (c *Card) Description() string    { return c.description }
func (c *Card) Priority() int          { return c.priority }
func (c *Card) Assignee() *User        { return c.assignee }
func (c *Card) CreatedAt() time.Time   { return c.createdAt }
func (c *Card) UpdatedAt() time.Time   { return c.updatedAt }
func (c *Card) SetClock(clock Clock)   { c.clock = clock }
func (c *Card) Tags() []string         { return slices.Clone(c.tags) }
func (c *Card) HasTag(tag string) bool { return slices.Contains(c.tags, tag) }

// AssigneeID returns the id of the assignee, resolved or not.
func (c *Card) AssigneeID() string {
	if c.assignee != nil {
		return c.assignee.ID()
	}
	return c.assigneeID
}

func (c *Card) SetTitle(title string) {
	c.title = title
	c.touch()
}

func (c *Card) SetDescription(description string) {
	c.description = description
	c.touch()
}

func (c *Card) SetPriority(priority int) {
	c.priority = priority
	c.touch()
}

// SetAssignee points the card at u, or clears the assignment when u is nil.
func (c *Card) SetAssignee(u *User) {
	c.assignee = u
	c.assigneeID = ""
	if u != nil {
		c.assigneeID = u.ID()
	}
	c.touch()
}

// ResolveAssignee links the pending AssigneeID to a user from r.
// It does not count as a modification and leaves UpdatedAt alone.
func (c *Card) ResolveAssignee(r UserResolver) bool {
	if c.assigneeID == "" || r == nil {
		return c.assigneeID == ""
	}
	u, ok := r.LookupUser(c.assigneeID)
	if !ok {
		return false
	}
	c.assignee = u
	return true
}

// AddTag inserts tag if absent. Returns true only when the tag was added.
func (c *Card) AddTag(tag string) bool {
	if c.HasTag(tag) {
		return false
	}
	c.tags = append(c.tags, tag)
	c.touch()
	return true
}

// RemoveTag deletes tag if present. Returns true only when the tag was removed.
func (c *Card) RemoveTag(tag string) bool {
	i := slices.Index(c.tags, tag)
	if i < 0 {
		return false
	}
	c.tags = slices.Delete(c.tags, i, i+1)
	c.touch()
	return true
}

// Equal compares cards by id only; it is not a content comparison.
func (c *Card) Equal(other *Card) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.id == other.id
}

// Clone copies the full state of the card. The assignee stays a shared reference.
func (c *Card) Clone() *Card {
	dup := *c
	dup.tags = slices.Clone(c.tags)
	return &dup
}

// touch refreshes updatedAt without ever moving it backwards.
func (c *Card) touch() {
	now := stamp(c.clock)
	if now.After(c.updatedAt) {
		c.updatedAt = now
	}
}

type cardJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
	Tags        []string `json:"tags"`
	AssigneeID  *string  `json:"assigneeId"`
}

// MarshalJSON encodes the card. The assignee is written as assigneeId, never embedded.
func (c *Card) MarshalJSON() ([]byte, error) {
	j := cardJSON{
		ID:          c.id,
		Title:       c.title,
		Description: c.description,
		Priority:    c.priority,
		CreatedAt:   millis(c.createdAt),
		UpdatedAt:   millis(c.updatedAt),
		Tags:        c.tags,
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	if id := c.AssigneeID(); id != "" {
		j.AssigneeID = &id
	}
	return json.Marshal(j)
}

// DecodeCard decodes a card. id and title are required; other fields default
// when absent or of the wrong type. The assignee is left unresolved.
func DecodeCard(data []byte) (*Card, error) {
	f, err := parseObject("card", data)
	if err != nil {
		return nil, err
	}
	id, err := f.requiredString("card", "id")
	if err != nil {
		return nil, err
	}
	title, err := f.requiredString("card", "title")
	if err != nil {
		return nil, err
	}

	card := &Card{
		id:          id,
		title:       title,
		description: f.optionalString("description", ""),
		priority:    f.optionalInt("priority", 0),
		assigneeID:  f.optionalString("assigneeId", ""),
		tags:        []string{},
		clock:       SystemClock,
	}
	for _, tag := range f.optionalStrings("tags") {
		if !slices.Contains(card.tags, tag) {
			card.tags = append(card.tags, tag)
		}
	}

	created, ok := f.optionalMillis("createdAt")
	if !ok {
		created = stamp(SystemClock)
	}
	updated, ok := f.optionalMillis("updatedAt")
	if !ok || updated.Before(created) {
		updated = created
	}
	card.createdAt = created
	card.updatedAt = updated
	return card, nil
}
