package services

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gradekeeper/internal/access"
	"github.com/dmitrijs2005/gradekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
	"github.com/dmitrijs2005/gradekeeper/internal/store"
)

// countingStore records how often Persist is called.
type countingStore struct {
	store.Repository
	persists int
}

func (c *countingStore) Persist() error {
	c.persists++
	return c.Repository.Persist()
}

func newStore(t *testing.T) (*countingStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	fs, err := store.Open(path, logging.Discard())
	require.NoError(t, err)
	return &countingStore{Repository: fs}, path
}

// fakeAuthorizer grants actions per subject id.
type fakeAuthorizer struct {
	mu       sync.Mutex
	grants   map[string]map[access.Action]bool
	teachers []string
	err      error
	addErr   error
}

func newFakeAuthorizer() *fakeAuthorizer {
	return &fakeAuthorizer{grants: map[string]map[access.Action]bool{}}
}

func (f *fakeAuthorizer) allow(id string, actions ...access.Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grants[id] == nil {
		f.grants[id] = map[access.Action]bool{}
	}
	for _, a := range actions {
		f.grants[id][a] = true
	}
}

func (f *fakeAuthorizer) Authorize(_ context.Context, id models.Identity, action access.Action) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.grants[id.ID][action], nil
}

func (f *fakeAuthorizer) AddTeacher(_ context.Context, userID string) error {
	f.mu.Lock()
	if f.addErr != nil {
		f.mu.Unlock()
		return f.addErr
	}
	f.teachers = append(f.teachers, userID)
	f.mu.Unlock()
	f.allow(userID, access.CreateStudentAccount, access.EnterGrade, access.ShowAllGrades)
	return nil
}

// fakeSender captures codes synchronously.
type fakeSender struct {
	to    []string
	codes []string
}

func (f *fakeSender) Send(_ context.Context, to, code string) {
	f.to = append(f.to, to)
	f.codes = append(f.codes, code)
}

func bufferLogger(t *testing.T) (logging.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := logging.New(&buf, "debug", "text")
	require.NoError(t, err)
	return log, &buf
}

// seedUser stores an account with the given password and grades.
func seedUser(t *testing.T, repo store.Repository, id, email, password string, grades ...float32) models.Identity {
	t.Helper()
	hash, err := cryptox.GenerateHash([]byte(password))
	require.NoError(t, err)
	if grades == nil {
		grades = []float32{}
	}
	u := models.User{ID: id, Email: email, Name: id, PasswordHash: hash, Grades: grades}
	require.NoError(t, repo.Append(u))
	return u.Identity()
}

var adminIdentity = models.Identity{ID: models.AdminID, Email: models.AdminID}
