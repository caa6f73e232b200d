// ABOUTME: UserRegistry owns the users that cards borrow as assignees.
// ABOUTME: It implements core.UserResolver for relinking after a load.
package session

import (
	"errors"
	"fmt"

	"github.com/2389-research/kanban-lite/kanban/core"
)

// ErrUserExists is returned when adding a user whose id is already registered.
var ErrUserExists = errors.New("user already exists")

// Default user seeded into every new registry.
const (
	DefaultUserID    = "default"
	DefaultUserName  = "Default User"
	DefaultUserEmail = "user@example.com"
)

// UserRegistry keeps users in registration order, unique by id.
type UserRegistry struct {
	users []*core.User
	byID  map[string]*core.User
}

// NewUserRegistry returns an empty registry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{byID: map[string]*core.User{}}
}

// NewDefaultUserRegistry returns a registry containing only the default user.
func NewDefaultUserRegistry() *UserRegistry {
	r := NewUserRegistry()
	u, _ := core.NewUser(DefaultUserID, DefaultUserName, DefaultUserEmail)
	_ = r.Add(u)
	return r
}

// Add registers u. Fails with ErrUserExists on a duplicate id.
func (r *UserRegistry) Add(u *core.User) error {
	if _, ok := r.byID[u.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, u.ID())
	}
	r.users = append(r.users, u)
	r.byID[u.ID()] = u
	return nil
}

// LookupUser implements core.UserResolver.
func (r *UserRegistry) LookupUser(id string) (*core.User, bool) {
	u, ok := r.byID[id]
	return u, ok
}

// All returns the users in registration order.
func (r *UserRegistry) All() []*core.User {
	out := make([]*core.User, len(r.users))
	copy(out, r.users)
	return out
}

// Len returns the number of registered users.
func (r *UserRegistry) Len() int {
	return len(r.users)
}
