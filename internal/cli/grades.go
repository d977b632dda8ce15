package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ShowGrades prints one line per account with grades. filter, when not
// empty, selects a single account by email.
func (a *App) ShowGrades(ctx context.Context, filter string) error {
	reports, err := a.gradeService.ShowGrades(ctx, *a.identity, filter)
	if err != nil {
		return a.report(ctx, "show grades", err)
	}
	if len(reports) == 0 {
		fmt.Fprintln(a.out, "No grades yet.")
		return nil
	}

	for _, r := range reports {
		grades := make([]string, 0, len(r.Grades))
		for _, g := range r.Grades {
			grades = append(grades, formatGrade(g))
		}
		fmt.Fprintf(a.out, "%s: %s (mean %s)\n", r.Email, strings.Join(grades, " "), formatGrade(r.Mean))
	}
	return nil
}

// EnterGrade asks for a student email and a grade and records it.
func (a *App) EnterGrade(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter the email of the student", a.out)
	if err != nil {
		return err
	}
	grade, err := getGrade(a.reader, a.out)
	if err != nil {
		return err
	}

	if err := a.gradeService.EnterGrade(ctx, *a.identity, email, grade); err != nil {
		return a.report(ctx, "enter grade", err)
	}
	fmt.Fprintln(a.out, "Done.")
	return nil
}

func formatGrade(g float32) string {
	return strconv.FormatFloat(float64(g), 'f', -1, 32)
}
