package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/gradekeeper/internal/access"
	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/config"
	"github.com/dmitrijs2005/gradekeeper/internal/filex"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/mail"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
	"github.com/dmitrijs2005/gradekeeper/internal/services"
	"github.com/dmitrijs2005/gradekeeper/internal/store"
)

// exitFn is a test seam for os.Exit.
var exitFn = os.Exit

type authService interface {
	Login(ctx context.Context, email string, password []byte) (*models.Identity, error)
	CreateAccount(ctx context.Context, actor models.Identity, isTeacher bool, in models.NewAccount) (*models.Identity, error)
}

type gradeService interface {
	EnterGrade(ctx context.Context, actor models.Identity, targetEmail string, grade float32) error
	ShowGrades(ctx context.Context, actor models.Identity, targetEmail string) ([]models.GradeReport, error)
}

type resetService interface {
	Request(ctx context.Context, actor models.Identity) (*services.ResetTicket, error)
}

type App struct {
	config       *config.Config
	logger       logging.Logger
	authService  authService
	gradeService gradeService
	resetService resetService
	policy       *access.Control
	mailer       *mail.SMTPSender
	identity     *models.Identity
	reader       *bufio.Reader
	out          io.Writer
}

// NewApp opens the user file and the rule file named in c and builds the services.
func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	for _, path := range []string{c.StorePath, c.PolicyPath} {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(c.StorePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open user file: %w", err)
	}

	policy, err := access.New(c.PolicyPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open policy file: %w", err)
	}

	app := &App{
		config: c,
		logger: logger,
		policy: policy,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	var sender mail.Sender
	if c.SMTPHost != "" {
		app.mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			User:     c.SMTPUser,
			Password: c.SMTPPassword,
			From:     c.MailFrom,
		}, logger)
		sender = app.mailer
	} else {
		sender = mail.NewLogSender(logger)
	}

	app.authService = services.NewAuthService(st, policy, logger)
	app.gradeService = services.NewGradeService(st, policy, logger)
	app.resetService = services.NewResetService(st, sender, c.ResetCodeTTL, logger)

	return app, nil
}

// Run blocks in the REPL until the user leaves. Pending mails are flushed
// before it returns.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	if a.config.WatchPolicy {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.policy.Watch(ctx); err != nil {
				a.logger.Error(ctx, "policy watcher stopped", "error", err)
			}
		}()
	}

	fmt.Fprintln(a.out, "Welcome to GradeKeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
	if a.mailer != nil {
		a.mailer.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.identity != nil
}

func (a *App) getStatus() string {
	if a.identity == nil {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.identity.Email)
}

// report tells the user what went wrong. A persistence failure is fatal:
// it is logged and the process exits with status 1.
func (a *App) report(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorPersistence):
		a.logger.Error(ctx, "could not save data, exiting", "op", op, "error", err)
		exitFn(1)
	case errors.Is(err, common.ErrorForbidden):
		fmt.Fprintln(a.out, "You are not allowed to do that.")
	case errors.Is(err, common.ErrorUnauthorized):
		fmt.Fprintln(a.out, "Invalid email or password.")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}
