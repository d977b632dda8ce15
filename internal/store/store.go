package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
)

const filePerm = 0o600

// FileStore is the file-backed Repository. Every method holds mu for its
// whole duration, so operations are totally ordered.
type FileStore struct {
	mu     sync.Mutex
	path   string
	users  []models.User
	logger logging.Logger
}

var _ Repository = (*FileStore)(nil)

// Open loads path into memory. A missing or empty file yields an empty
// store; an unreadable or corrupt file is an error wrapping
// common.ErrorPersistence, so existing data is never silently discarded.
func Open(path string, logger logging.Logger) (*FileStore, error) {
	s := &FileStore{path: path, logger: logger.With("component", "store")}

	users, err := readUsers(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", common.ErrorPersistence, path, err)
	}
	for i, u := range users {
		if !u.PasswordHash.Valid() {
			return nil, fmt.Errorf("%w: load %s: record %d (%s) has an invalid password hash",
				common.ErrorPersistence, path, i, u.Email)
		}
	}
	s.users = users

	s.logger.Debug(context.Background(), "store loaded", "path", path, "users", len(users))
	return s, nil
}

func readUsers(path string) ([]models.User, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.User{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// FindByEmail returns a copy of the first record with the given email.
func (s *FileStore) FindByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(email); i >= 0 {
		return s.users[i].Clone(), true
	}
	return models.User{}, false
}

// Append adds user. Emails are compared case-insensitively and must be
// unique; the super-user identity is refused.
func (s *FileStore) Append(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == models.AdminID || strings.EqualFold(user.Email, models.AdminID) {
		return common.ErrorReservedIdentity
	}
	if s.indexLocked(user.Email) >= 0 {
		return fmt.Errorf("email %s: %w", user.Email, common.ErrorAlreadyExists)
	}
	for _, u := range s.users {
		if u.ID == user.ID {
			return fmt.Errorf("id %s: %w", user.ID, common.ErrorAlreadyExists)
		}
	}
	s.users = append(s.users, user.Clone())
	return nil
}

func (s *FileStore) UpdatePasswordHash(email string, hash cryptox.HashBlob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(email)
	if i < 0 {
		return false
	}
	s.users[i].PasswordHash = hash
	return true
}

func (s *FileStore) AppendGrade(email string, grade float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(email)
	if i < 0 {
		return false
	}
	s.users[i].Grades = append(s.users[i].Grades, grade)
	return true
}

// Users returns a deep copy of every record in insertion order.
func (s *FileStore) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

// Persist rewrites the whole backing file atomically.
func (s *FileStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(s.users)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", common.ErrorPersistence, err)
	}
	if err := writeFileAtomic(s.path, b, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrorPersistence, s.path, err)
	}

	s.logger.Debug(context.Background(), "store saved", "path", s.path, "users", len(s.users))
	return nil
}

func (s *FileStore) indexLocked(email string) int {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return i
		}
	}
	return -1
}
