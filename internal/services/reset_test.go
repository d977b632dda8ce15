package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
)

func newResetFixture(t *testing.T) (*ResetService, *AuthService, *countingStore, *fakeSender) {
	t.Helper()
	repo, _ := newStore(t)
	sender := &fakeSender{}
	rs := NewResetService(repo, sender, 10*time.Minute, logging.Discard())
	rs.newCode = func() (string, error) { return "482913", nil }
	as := NewAuthService(repo, newFakeAuthorizer(), logging.Discard())
	return rs, as, repo, sender
}

func TestReset_CorrectCodeInstallsNewPassword(t *testing.T) {
	rs, as, repo, sender := newResetFixture(t)
	ctx := context.Background()
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")

	ticket, err := rs.Request(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@x.com"}, sender.to)
	assert.Equal(t, []string{"482913"}, sender.codes)

	require.NoError(t, ticket.Confirm(ctx, "482913", []byte("new-password")))
	assert.Equal(t, 1, repo.persists, "success path persists")

	_, err = as.Login(ctx, "alice@x.com", []byte("old-password"))
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = as.Login(ctx, "alice@x.com", []byte("new-password"))
	assert.NoError(t, err)
}

func TestReset_WrongCodeAbortsWithoutMutation(t *testing.T) {
	rs, as, repo, _ := newResetFixture(t)
	ctx := context.Background()
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")
	before, _ := repo.FindByEmail("alice@x.com")

	ticket, err := rs.Request(ctx, alice)
	require.NoError(t, err)

	err = ticket.Confirm(ctx, "123456", []byte("new-password"))
	assert.ErrorIs(t, err, common.ErrorWrongCode)

	// Exactly one attempt: even the right code is refused now.
	err = ticket.Confirm(ctx, "482913", []byte("new-password"))
	assert.ErrorIs(t, err, common.ErrorTicketUsed)

	after, _ := repo.FindByEmail("alice@x.com")
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Zero(t, repo.persists)

	_, err = as.Login(ctx, "alice@x.com", []byte("old-password"))
	assert.NoError(t, err)
}

func TestReset_SuperUserRefused(t *testing.T) {
	rs, _, repo, sender := newResetFixture(t)

	ticket, err := rs.Request(context.Background(), adminIdentity)
	assert.ErrorIs(t, err, common.ErrorSuperUserReset)
	assert.Nil(t, ticket)
	assert.Empty(t, sender.to, "no code is sent")
	assert.Zero(t, repo.persists)
}

func TestReset_ExpiredCode(t *testing.T) {
	rs, _, repo, _ := newResetFixture(t)
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rs.now = func() time.Time { return now }

	ticket, err := rs.Request(context.Background(), alice)
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	err = ticket.Verify(context.Background(), "482913")
	assert.ErrorIs(t, err, common.ErrorCodeExpired)
	assert.Zero(t, repo.persists)
}

func TestReset_CompleteRequiresVerify(t *testing.T) {
	rs, _, repo, _ := newResetFixture(t)
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")

	ticket, err := rs.Request(context.Background(), alice)
	require.NoError(t, err)

	err = ticket.Complete(context.Background(), []byte("new-password"))
	assert.ErrorIs(t, err, errNotVerified)
	assert.Zero(t, repo.persists)
}

func TestReset_WeakPasswordCanBeRetried(t *testing.T) {
	rs, _, repo, _ := newResetFixture(t)
	ctx := context.Background()
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")

	ticket, err := rs.Request(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, ticket.Verify(ctx, "482913"))

	assert.ErrorIs(t, ticket.Complete(ctx, []byte("short")), common.ErrorValidation)
	require.NoError(t, ticket.Complete(ctx, []byte("long-enough")))
	assert.ErrorIs(t, ticket.Complete(ctx, []byte("another-one")), common.ErrorTicketUsed)
	assert.Equal(t, 1, repo.persists)
}

func TestReset_CodeGeneratorFailure(t *testing.T) {
	rs, _, repo, sender := newResetFixture(t)
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")
	rs.newCode = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := rs.Request(context.Background(), alice)
	assert.Error(t, err)
	assert.Empty(t, sender.to)
}

func TestReset_DefaultCodeGenerator(t *testing.T) {
	repo, _ := newStore(t)
	sender := &fakeSender{}
	rs := NewResetService(repo, sender, time.Minute, logging.Discard())
	alice := seedUser(t, repo, "u1", "alice@x.com", "old-password")

	_, err := rs.Request(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, sender.codes, 1)
	assert.Len(t, sender.codes[0], 6)
}
