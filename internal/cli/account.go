package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
)

// getSimpleText, getPassword and getGrade are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getGrade      = GetGrade
)

// Login prompts for credentials and, on success, makes the account the
// current identity. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return a.report(ctx, "login", err)
	}

	a.identity = id
	fmt.Fprintf(a.out, "Logged in as %s\n", id.Email)
	return nil
}

// Logout forgets the current identity.
func (a *App) Logout(ctx context.Context) error {
	a.identity = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) CreateStudent(ctx context.Context) error {
	return a.createAccount(ctx, false)
}

func (a *App) CreateTeacher(ctx context.Context) error {
	return a.createAccount(ctx, true)
}

func (a *App) createAccount(ctx context.Context, isTeacher bool) error {
	email, err := getSimpleText(a.reader, "Enter the email of the new account", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter the name of the new account", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter the initial password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.authService.CreateAccount(ctx, *a.identity, isTeacher, models.NewAccount{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return a.report(ctx, "create account", err)
	}

	fmt.Fprintf(a.out, "Account %s created.\n", id.Email)
	return nil
}

// ResetPassword mails a one-time code to the current account, asks for it
// and then for the new password. One wrong code ends the attempt.
func (a *App) ResetPassword(ctx context.Context) error {
	ticket, err := a.resetService.Request(ctx, *a.identity)
	if err != nil {
		if errors.Is(err, common.ErrorSuperUserReset) {
			fmt.Fprintln(a.out, "The admin password cannot be reset.")
			return err
		}
		return a.report(ctx, "reset password", err)
	}
	fmt.Fprintf(a.out, "A code was sent to %s.\n", a.identity.Email)

	code, err := getSimpleText(a.reader, "Enter the code", a.out)
	if err != nil {
		return err
	}
	if err := ticket.Verify(ctx, code); err != nil {
		switch {
		case errors.Is(err, common.ErrorCodeExpired):
			fmt.Fprintln(a.out, "The code has expired, your password was not changed.")
		default:
			fmt.Fprintln(a.out, "Wrong code, your password was not changed.")
		}
		return err
	}

	for {
		password, err := getPassword(a.out, "Enter the new password: ")
		if err != nil {
			return err
		}
		err = ticket.Complete(ctx, password)
		common.WipeByteArray(password)

		if errors.Is(err, common.ErrorValidation) {
			fmt.Fprintln(a.out, err)
			continue
		}
		if err != nil {
			return a.report(ctx, "reset password", err)
		}
		break
	}

	fmt.Fprintln(a.out, "Password changed.")
	return nil
}
