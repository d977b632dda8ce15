// Package mail delivers one-time password-reset codes. Delivery is
// fire-and-forget: Send never reports a result to the caller.
package mail

import (
	"context"

	"github.com/dmitrijs2005/gradekeeper/internal/logging"
)

type Sender interface {
	Send(ctx context.Context, to, code string)
}

// LogSender writes the code to the log instead of mailing it. It is the
// default when no SMTP host is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "mail")}
}

func (s *LogSender) Send(ctx context.Context, to, code string) {
	s.logger.Info(ctx, "password reset code", "to", to, "code", code)
}
