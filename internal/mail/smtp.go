package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"

	"github.com/dmitrijs2005/gradekeeper/internal/logging"
)

// sendMail is a test seam for smtp.SendMail.
var sendMail = smtp.SendMail

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender mails codes from a background goroutine, retrying transient
// failures with exponential backoff. Failures are only logged.
type SMTPSender struct {
	cfg      SMTPConfig
	logger   logging.Logger
	attempts uint
	delay    time.Duration
	wg       sync.WaitGroup
}

func NewSMTPSender(cfg SMTPConfig, logger logging.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:      cfg,
		logger:   logger.With("component", "mail", "smtp_host", cfg.Host),
		attempts: 3,
		delay:    time.Second,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, code string) {
	// The caller's context may end as soon as Send returns.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deliver(ctx, to, code); err != nil {
			s.logger.Error(ctx, "reset code delivery failed", "to", to, "error", err)
			return
		}
		s.logger.Info(ctx, "reset code sent", "to", to)
	}()
}

// Close waits for in-flight deliveries.
func (s *SMTPSender) Close() {
	s.wg.Wait()
}

func (s *SMTPSender) deliver(ctx context.Context, to, code string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	msg := buildMessage(s.cfg.From, to, code)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	return retry.Do(
		func() error {
			return sendMail(addr, auth, s.cfg.From, []string{to}, msg)
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn(ctx, "smtp send retry", "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
	)
}

func buildMessage(from, to, code string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Password reset\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your password reset code is: %s\r\n", code)
	b.WriteString("If you did not ask for a reset, ignore this message.\r\n")
	return []byte(b.String())
}
