// Command tally-token prints a signed bearer token for a user id.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"tally/internal/auth"
	"tally/internal/cli"
	"tally/internal/config"
)

func main() {
	cli.LoadEnvFile()
	if err := run(os.Args[1:], os.Stdout, config.Load()); err != nil {
		fmt.Fprintln(os.Stderr, "tally-token:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, cfg *config.Config) error {
	fs := flag.NewFlagSet("tally-token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	user := fs.String("user", "", "user id to put in the token subject")
	ttl := fs.Duration("ttl", cfg.AuthTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return errors.New("-user is required")
	}
	if len(cfg.AuthSecret) < 32 {
		return errors.New("AUTH_SECRET must be at least 32 characters")
	}
	if *ttl < time.Minute {
		return fmt.Errorf("ttl %v is shorter than a minute", *ttl)
	}

	token, err := auth.NewTokens(cfg.AuthSecret, cfg.AuthIssuer, *ttl).Issue(*user)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
