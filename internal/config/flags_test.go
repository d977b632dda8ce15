package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{
			"-s", "data/users.json", "-r", "data/rules.csv", "-W",
			"-l", "debug", "-f", "json", "-t", "5",
			"-H", "smtp.example.com", "-P", "2525", "-u", "mailer", "-p", "secret", "-m", "noreply@example.com",
		}, expected: &Config{
			StorePath:    "data/users.json",
			PolicyPath:   "data/rules.csv",
			WatchPolicy:  true,
			LogLevel:     "debug",
			LogFormat:    "json",
			ResetCodeTTL: 5 * time.Minute,
			SMTPHost:     "smtp.example.com",
			SMTPPort:     2525,
			SMTPUser:     "mailer",
			SMTPPassword: "secret",
			MailFrom:     "noreply@example.com",
		}},
		{name: "unknown flags ignored", args: []string{
			"-c", "cfg.json", "-x", "1", "-s", "u.json",
		}, expected: &Config{StorePath: "u.json"}},
		{name: "inline values", args: []string{
			"-s=u.json", "-W=false", "-t=15",
		}, expected: &Config{StorePath: "u.json", ResetCodeTTL: 15 * time.Minute}},
		{name: "non numeric ttl", args: []string{"-t", "soon"}, expectPanic: true},
		{name: "non numeric port", args: []string{"-P", "smtp"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}

func TestParseFlags_KeepsTTLWhenAbsent(t *testing.T) {
	config := &Config{}
	config.LoadDefaults()
	config.ResetCodeTTL = 90 * time.Second

	parseFlags(config, []string{"-l", "warn"})

	assert.Equal(t, 90*time.Second, config.ResetCodeTTL)
	assert.Equal(t, "warn", config.LogLevel)
}
