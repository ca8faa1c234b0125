package config

import (
	"flag"
	"os"
	"time"

	"github.com/authkeep/authkeep/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags:
//
//	-e string   server base URL (e.g., "http://127.0.0.1:8080")
//	-i string   application identifier
//	-o int      request timeout, seconds
//
// The function filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so the command verbs and their arguments pass through
// untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-e", "-i", "-o"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&config.ServerURL, "e", config.ServerURL, "server base URL")
	fs.StringVar(&config.AppID, "i", config.AppID, "application identifier")
	timeout := fs.Int("o", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RequestTimeout = time.Duration(*timeout) * time.Second
}
