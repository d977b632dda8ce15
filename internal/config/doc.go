// Package config loads runtime configuration for GradeKeeper.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   user file path
//	-r string   policy (rule) file path
//	-W          reload the policy file when it changes on disk
//	-l string   log level: debug, info, warn, error
//	-f string   log format: text, json
//	-t int      reset code validity (minutes)
//	-H string   SMTP host (empty: codes are written to the log)
//	-P int      SMTP port
//	-u string   SMTP user
//	-p string   SMTP password
//	-m string   sender address of reset mails
//
// # JSON schema
//
//	{
//	  "store_path": "users.json",
//	  "policy_path": "access_control.csv",
//	  "watch_policy": true,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "reset_code_ttl": "10m",
//	  "smtp_host": "smtp.example.com",
//	  "smtp_port": 587,
//	  "smtp_user": "mailer",
//	  "smtp_password": "secret",
//	  "mail_from": "noreply@example.com"
//	}
package config
