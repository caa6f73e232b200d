// ABOUTME: User is an immutable identity record referenced, never owned, by cards.
// ABOUTME: Includes the UserResolver interface used to relink assignees after a load.
package core

import "encoding/json"

// User identifies a responsible party. It cannot be changed after construction.
type User struct {
	id    string
	name  string
	email string
}

// UserResolver looks users up by id. Registries owned by the caller implement it.
type UserResolver interface {
	LookupUser(id string) (*User, bool)
}

// NewUser creates a User. All three fields must be non-empty.
func NewUser(id, name, email string) (*User, error) {
	switch {
	case id == "":
		return nil, emptyField("user", "id")
	case name == "":
		return nil, emptyField("user", "name")
	case email == "":
		return nil, emptyField("user", "email")
	}
	return &User{id: id, name: name, email: email}, nil
}

func (u *User) ID() string    { return u.id }
func (u *User) Name() string  { return u.name }
func (u *User) Email() string { return u.email }

// Equal compares users by id.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.id == other.id
}

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MarshalJSON encodes the user as {id, name, email}.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{ID: u.id, Name: u.name, Email: u.email})
}

// DecodeUser decodes a user; every field is required.
func DecodeUser(data []byte) (*User, error) {
	f, err := parseObject("user", data)
	if err != nil {
		return nil, err
	}
	id, err := f.requiredString("user", "id")
	if err != nil {
		return nil, err
	}
	name, err := f.requiredString("user", "name")
	if err != nil {
		return nil, err
	}
	email, err := f.requiredString("user", "email")
	if err != nil {
		return nil, err
	}
	return &User{id: id, name: name, email: email}, nil
}
