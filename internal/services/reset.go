package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/mail"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
	"github.com/dmitrijs2005/gradekeeper/internal/store"
)

var errNotVerified = errors.New("reset code not verified")

// ResetService runs the one-time-code password reset.
type ResetService struct {
	store   store.Repository
	sender  mail.Sender
	logger  logging.Logger
	ttl     time.Duration
	newCode func() (string, error)
	now     func() time.Time
}

func NewResetService(repo store.Repository, sender mail.Sender, ttl time.Duration, logger logging.Logger) *ResetService {
	return &ResetService{
		store:   repo,
		sender:  sender,
		logger:  logger.With("service", "reset"),
		ttl:     ttl,
		newCode: common.NewOneTimeCode,
		now:     time.Now,
	}
}

// Request mails a fresh six-digit code to actor and returns the ticket the
// code must be checked against. The super-user is refused up front.
func (s *ResetService) Request(ctx context.Context, actor models.Identity) (*ResetTicket, error) {
	s.logger.Debug(ctx, "reset password", "actor", actor.Email)

	if actor.IsAdmin() {
		return nil, common.ErrorSuperUserReset
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	s.sender.Send(ctx, actor.Email, code)
	s.logger.Info(ctx, "password change requested", "email", actor.Email)

	return &ResetTicket{
		svc:      s,
		identity: actor,
		code:     code,
		expires:  s.now().Add(s.ttl),
	}, nil
}

// ResetTicket is a pending reset. The code can be entered exactly once;
// after a successful Verify, Complete installs the new password.
type ResetTicket struct {
	svc      *ResetService
	identity models.Identity
	code     string
	expires  time.Time

	mu       sync.Mutex
	attempts int
	verified bool
	done     bool
}

// Verify checks code. Whatever the outcome, the ticket accepts no further codes.
func (t *ResetTicket) Verify(ctx context.Context, code string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := t.svc.logger
	if t.attempts > 0 {
		return common.ErrorTicketUsed
	}
	t.attempts++

	if t.svc.now().After(t.expires) {
		log.Warn(ctx, "unsuccessful password reset: code expired", "email", t.identity.Email)
		return common.ErrorCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(t.code)) != 1 {
		log.Warn(ctx, "unsuccessful password reset", "email", t.identity.Email)
		return common.ErrorWrongCode
	}
	t.verified = true
	return nil
}

// Complete hashes newPassword, stores it and persists the store. A password
// rejected by validation may be retried with the same ticket.
func (t *ResetTicket) Complete(ctx context.Context, newPassword []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.verified {
		return errNotVerified
	}
	if t.done {
		return common.ErrorTicketUsed
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.GenerateHash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if !t.svc.store.UpdatePasswordHash(t.identity.Email, hash) {
		return fmt.Errorf("account %s: %w", t.identity.Email, common.ErrorNotFound)
	}
	t.done = true

	if err := t.svc.store.Persist(); err != nil {
		return err
	}
	t.svc.logger.Info(ctx, "successful password reset", "email", t.identity.Email)
	return nil
}

// Confirm is Verify followed by Complete.
func (t *ResetTicket) Confirm(ctx context.Context, code string, newPassword []byte) error {
	if err := t.Verify(ctx, code); err != nil {
		return err
	}
	return t.Complete(ctx, newPassword)
}
