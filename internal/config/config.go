package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings.
type Config struct {
	StorePath    string `validate:"required"`
	PolicyPath   string `validate:"required"`
	WatchPolicy  bool
	LogLevel     string        `validate:"oneof=debug info warn error"`
	LogFormat    string        `validate:"oneof=text json"`
	ResetCodeTTL time.Duration `validate:"gt=0"`
	SMTPHost     string
	SMTPPort     int `validate:"omitempty,min=1,max=65535"`
	SMTPUser     string
	SMTPPassword string
	MailFrom     string `validate:"omitempty,email"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.StorePath = "users.json"
	c.PolicyPath = "access_control.csv"
	c.WatchPolicy = false
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ResetCodeTTL = 10 * time.Minute
	c.SMTPHost = ""
	c.SMTPPort = 587
	c.SMTPUser = ""
	c.SMTPPassword = ""
	c.MailFrom = "noreply@gradekeeper.local"
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.SMTPHost != "" && c.MailFrom == "" {
		return errors.New("invalid config: mail sender address is required with an SMTP host")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags. A file or
// flag that cannot be parsed makes it panic, as does an invalid result.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
