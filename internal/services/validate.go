package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
)

var validate = validator.New()

// Grades live in [MinGrade, MaxGrade].
const (
	MinGrade = 0.0
	MaxGrade = 6.0
)

// ValidateGrade rejects grades outside [0, 6] and NaN.
func ValidateGrade(grade float32) error {
	if err := validate.Var(grade, "gte=0,lte=6"); err != nil {
		return fmt.Errorf("%w: got %v", common.ErrorInvalidGrade, grade)
	}
	return nil
}

// ValidatePassword applies the minimum password policy.
func ValidatePassword(password []byte) error {
	if err := validate.Var(password, "required,min=8"); err != nil {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
	}
	return nil
}
