package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gradekeeper/internal/access"
	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
	"github.com/dmitrijs2005/gradekeeper/internal/store"
)

// AuthService logs users in and creates accounts.
type AuthService struct {
	store     store.Repository
	access    access.Authorizer
	logger    logging.Logger
	adminHash cryptox.HashBlob
}

func NewAuthService(repo store.Repository, az access.Authorizer, logger logging.Logger) *AuthService {
	return &AuthService{
		store:     repo,
		access:    az,
		logger:    logger.With("service", "auth"),
		adminHash: cryptox.AdminBlob(),
	}
}

// Login checks email and password. Unknown email and wrong password both
// return common.ErrorUnauthorized. The super-user is checked against its
// built-in hash and never looked up in the store.
func (s *AuthService) Login(ctx context.Context, email string, password []byte) (*models.Identity, error) {
	s.logger.Debug(ctx, "login", "email", email)

	if strings.EqualFold(strings.TrimSpace(email), models.AdminID) {
		if !cryptox.VerifyHash(s.adminHash, password) {
			s.logger.Warn(ctx, "failed login", "email", email)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Info(ctx, "login", "email", email)
		return &models.Identity{ID: models.AdminID, Email: models.AdminID}, nil
	}

	user, ok := s.store.FindByEmail(email)
	if !ok {
		// Burn the same amount of work as a real check so response time
		// does not reveal which emails exist.
		cryptox.VerifyHash(s.adminHash, password)
		s.logger.Warn(ctx, "failed login", "email", email)
		return nil, common.ErrorUnauthorized
	}
	if !cryptox.VerifyHash(user.PasswordHash, password) {
		s.logger.Warn(ctx, "failed login", "email", email)
		return nil, common.ErrorUnauthorized
	}

	id := user.Identity()
	s.logger.Info(ctx, "login", "email", email)
	return &id, nil
}

// CreateAccount creates a student or teacher account on behalf of actor.
// A teacher account is also grouped into the teacher role.
func (s *AuthService) CreateAccount(ctx context.Context, actor models.Identity, isTeacher bool, in models.NewAccount) (*models.Identity, error) {
	s.logger.Debug(ctx, "create account", "actor", actor.Email, "teacher", isTeacher)

	action := access.CreateStudentAccount
	kind := "student"
	if isTeacher {
		action = access.CreateTeacherAccount
		kind = "teacher"
	}

	allowed, err := s.access.Authorize(ctx, actor, action)
	if err != nil {
		return nil, fmt.Errorf("authorize %s: %w", action, err)
	}
	if !allowed {
		s.logger.Warn(ctx, "not allowed", "actor", actor.Email, "action", action)
		return nil, common.ErrorForbidden
	}

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if strings.EqualFold(in.Email, models.AdminID) {
		return nil, common.ErrorReservedIdentity
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, describe(err))
	}
	if _, exists := s.store.FindByEmail(in.Email); exists {
		return nil, fmt.Errorf("email %s: %w", in.Email, common.ErrorAlreadyExists)
	}

	hash, err := cryptox.GenerateHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Grades:       []float32{},
	}
	// Grouping first, so a failure never leaves a teacher record without its rule.
	if isTeacher {
		if err := s.access.AddTeacher(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
		}
	}

	if err := s.store.Append(user); err != nil {
		return nil, err
	}

	if err := s.store.Persist(); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account created", "actor", actor.Email, "kind", kind, "email", user.Email)
	id := user.Identity()
	return &id, nil
}

// describe turns validator errors into a short human message.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
		case "email":
			msgs = append(msgs, "invalid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fe.Field()), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}
