package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/flagx"
)

var (
	valueFlags = []string{"-s", "-r", "-l", "-f", "-t", "-H", "-P", "-u", "-p", "-m"}
	boolFlags  = []string{"-W"}
)

// parseFlags overlays command-line flags onto config (see the package doc
// for the list). Unknown arguments are ignored; a malformed known flag panics.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, valueFlags, boolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.StorePath, "s", config.StorePath, "user file path")
	fs.StringVar(&config.PolicyPath, "r", config.PolicyPath, "policy file path")
	fs.BoolVar(&config.WatchPolicy, "W", config.WatchPolicy, "reload the policy file on change")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")

	resetCodeTTL := fs.Int("t", int(config.ResetCodeTTL.Minutes()), "reset code validity (in minutes)")

	fs.StringVar(&config.SMTPHost, "H", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "P", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "u", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "p", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.MailFrom, "m", config.MailFrom, "reset mail sender address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if isSet(fs, "t") {
		config.ResetCodeTTL = time.Duration(*resetCodeTTL) * time.Minute
	}
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
