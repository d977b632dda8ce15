package mail

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gradekeeper/internal/logging"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
	auth bool
}

func stubSendMail(t *testing.T, failures int) *[]sentMail {
	t.Helper()
	var (
		mu    sync.Mutex
		calls int
		sent  []sentMail
	)
	orig := sendMail
	sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= failures {
			return errors.New("421 try again later")
		}
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg), auth: a != nil})
		return nil
	}
	t.Cleanup(func() { sendMail = orig })
	return &sent
}

func TestSMTPSender_Delivers(t *testing.T) {
	sent := stubSendMail(t, 0)

	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 2525, User: "u", Password: "p", From: "noreply@x.com"}, logging.Discard())
	s.Send(context.Background(), "a@x.com", "482913")
	s.Close()

	require.Len(t, *sent, 1)
	got := (*sent)[0]
	assert.Equal(t, "mail.local:2525", got.addr)
	assert.Equal(t, "noreply@x.com", got.from)
	assert.Equal(t, []string{"a@x.com"}, got.to)
	assert.True(t, got.auth)
	assert.Contains(t, got.msg, "To: a@x.com\r\n")
	assert.Contains(t, got.msg, "482913")
}

func TestSMTPSender_RetriesThenSucceeds(t *testing.T) {
	sent := stubSendMail(t, 2)

	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 25, From: "noreply@x.com"}, logging.Discard())
	s.delay = time.Millisecond
	s.Send(context.Background(), "a@x.com", "123456")
	s.Close()

	require.Len(t, *sent, 1)
	assert.False(t, (*sent)[0].auth, "no auth without a user")
}

func TestSMTPSender_GivesUpAndLogs(t *testing.T) {
	sent := stubSendMail(t, 100)

	var buf bytes.Buffer
	log, err := logging.New(&buf, "info", "text")
	require.NoError(t, err)

	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 25, From: "noreply@x.com"}, log)
	s.delay = time.Millisecond
	s.Send(context.Background(), "a@x.com", "123456")
	s.Close()

	assert.Empty(t, *sent)
	assert.Contains(t, buf.String(), "reset code delivery failed")
}

func TestSMTPSender_SurvivesCancelledCallerContext(t *testing.T) {
	sent := stubSendMail(t, 1)

	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 25, From: "noreply@x.com"}, logging.Discard())
	s.delay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	s.Send(ctx, "a@x.com", "123456")
	cancel()
	s.Close()

	assert.Len(t, *sent, 1)
}

func TestLogSender_LogsCode(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "info", "text")
	require.NoError(t, err)

	NewLogSender(log).Send(context.Background(), "a@x.com", "654321")

	out := buf.String()
	assert.True(t, strings.Contains(out, "to=a@x.com") && strings.Contains(out, "code=654321"), out)
}
