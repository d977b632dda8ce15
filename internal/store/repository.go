// Package store keeps the user records in memory behind a single mutex and
// writes the whole collection back to one JSON file after each mutation.
package store

import (
	"github.com/dmitrijs2005/gradekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
)

// Repository is the credential store consumed by the services.
type Repository interface {
	FindByEmail(email string) (models.User, bool)
	Append(user models.User) error
	UpdatePasswordHash(email string, hash cryptox.HashBlob) bool
	AppendGrade(email string, grade float32) bool
	Users() []models.User
	Persist() error
}
