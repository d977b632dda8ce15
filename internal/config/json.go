package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gradekeeper/internal/flagx"
	"github.com/dmitrijs2005/gradekeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from zero values, so a partial file only overrides what it names.
type JsonConfig struct {
	StorePath    *string         `json:"store_path"`
	PolicyPath   *string         `json:"policy_path"`
	WatchPolicy  *bool           `json:"watch_policy"`
	LogLevel     *string         `json:"log_level"`
	LogFormat    *string         `json:"log_format"`
	ResetCodeTTL *timex.Duration `json:"reset_code_ttl"`
	SMTPHost     *string         `json:"smtp_host"`
	SMTPPort     *int            `json:"smtp_port"`
	SMTPUser     *string         `json:"smtp_user"`
	SMTPPassword *string         `json:"smtp_password"`
	MailFrom     *string         `json:"mail_from"`
}

// parseJson overlays the JSON file named by -c / -config, if any.
// It panics when the file cannot be read or decoded.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.StorePath, c.StorePath)
	setIf(&config.PolicyPath, c.PolicyPath)
	setIf(&config.WatchPolicy, c.WatchPolicy)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFormat, c.LogFormat)
	if c.ResetCodeTTL != nil {
		config.ResetCodeTTL = c.ResetCodeTTL.Duration
	}
	setIf(&config.SMTPHost, c.SMTPHost)
	setIf(&config.SMTPPort, c.SMTPPort)
	setIf(&config.SMTPUser, c.SMTPUser)
	setIf(&config.SMTPPassword, c.SMTPPassword)
	setIf(&config.MailFrom, c.MailFrom)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
