package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gradekeeper/internal/access"
	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
	"github.com/dmitrijs2005/gradekeeper/internal/store"
)

// GradeService enters and lists grades.
type GradeService struct {
	store  store.Repository
	access access.Authorizer
	logger logging.Logger
}

func NewGradeService(repo store.Repository, az access.Authorizer, logger logging.Logger) *GradeService {
	return &GradeService{store: repo, access: az, logger: logger.With("service", "grades")}
}

// EnterGrade appends grade to the account registered under targetEmail.
// An unknown target is only logged: nothing changes and nothing is saved.
func (s *GradeService) EnterGrade(ctx context.Context, actor models.Identity, targetEmail string, grade float32) error {
	s.logger.Debug(ctx, "enter grade", "actor", actor.Email)

	allowed, err := s.access.Authorize(ctx, actor, access.EnterGrade)
	if err != nil {
		return fmt.Errorf("authorize %s: %w", access.EnterGrade, err)
	}
	if !allowed {
		s.logger.Warn(ctx, "not allowed", "actor", actor.Email, "action", access.EnterGrade)
		return common.ErrorForbidden
	}

	if err := ValidateGrade(grade); err != nil {
		return err
	}

	if !s.store.AppendGrade(strings.TrimSpace(targetEmail), grade) {
		s.logger.Warn(ctx, "no student found with that email", "actor", actor.Email, "target", targetEmail)
		return nil
	}
	if err := s.store.Persist(); err != nil {
		return err
	}

	s.logger.Info(ctx, "grade entered", "actor", actor.Email, "target", targetEmail, "grade", grade)
	return nil
}

// ShowGrades lists every non-empty grade list with its mean. Callers without
// the show_all_grades permission only get their own line. targetEmail, when
// not empty, narrows the result to that account.
func (s *GradeService) ShowGrades(ctx context.Context, actor models.Identity, targetEmail string) ([]models.GradeReport, error) {
	s.logger.Debug(ctx, "show grades", "actor", actor.Email)

	all, err := s.access.Authorize(ctx, actor, access.ShowAllGrades)
	if err != nil {
		// Fail closed: an evaluation error is treated like a denial.
		s.logger.Warn(ctx, "authorization error, showing own grades only", "actor", actor.Email, "error", err)
		all = false
	}

	targetEmail = strings.TrimSpace(targetEmail)
	reports := make([]models.GradeReport, 0)
	for _, u := range s.store.Users() {
		if len(u.Grades) == 0 {
			continue
		}
		if !all && u.ID != actor.ID {
			continue
		}
		if targetEmail != "" && !strings.EqualFold(u.Email, targetEmail) {
			continue
		}
		reports = append(reports, models.NewGradeReport(u.Email, u.Grades))
	}

	s.logger.Info(ctx, "successfully showed grades", "actor", actor.Email, "all", all, "lines", len(reports))
	return reports, nil
}
