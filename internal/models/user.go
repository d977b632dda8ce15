// Package models holds the records shared by the store, the services and the CLI.
package models

import (
	"github.com/dmitrijs2005/gradekeeper/internal/cryptox"
)

// AdminID is the reserved identity of the built-in super-user. It is used as
// both id and email and never appears in the user file.
const AdminID = "admin"

// User is the persisted account record.
type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	PasswordHash cryptox.HashBlob `json:"pw_hash"`
	Grades       []float32        `json:"grades"`
}

// Clone returns a deep copy so callers cannot reach into the store.
func (u User) Clone() User {
	c := u
	if u.Grades != nil {
		c.Grades = append(make([]float32, 0, len(u.Grades)), u.Grades...)
	}
	return c
}

// Identity returns the authentication projection of u.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email}
}

// Identity is what an authenticated caller carries around. It deliberately
// has no password hash and no grades.
type Identity struct {
	ID    string
	Email string
}

// IsAdmin reports whether i is the built-in super-user.
func (i Identity) IsAdmin() bool {
	return i.ID == AdminID
}

// NewAccount is the input of account creation.
type NewAccount struct {
	Email    string `validate:"required,email,max=254"`
	Name     string `validate:"required,max=128"`
	Password []byte `validate:"required,min=8"`
}
