package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tally/internal/auth"
	"tally/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestRunPrintsVerifiableToken(t *testing.T) {
	cfg := &config.Config{AuthSecret: secret, AuthIssuer: "tally", AuthTokenTTL: time.Hour}
	var out bytes.Buffer
	if err := run([]string{"-user", "alice"}, &out, cfg); err != nil {
		t.Fatal(err)
	}

	user, err := auth.NewTokens(secret, "tally", time.Hour).Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user != "alice" {
		t.Fatalf("subject = %q", user)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	good := &config.Config{AuthSecret: secret, AuthIssuer: "tally", AuthTokenTTL: time.Hour}
	tests := []struct {
		name string
		args []string
		cfg  *config.Config
	}{
		{"missing user", nil, good},
		{"short secret", []string{"-user", "a"}, &config.Config{AuthSecret: "x", AuthTokenTTL: time.Hour}},
		{"tiny ttl", []string{"-user", "a", "-ttl", "1s"}, good},
		{"unknown flag", []string{"-nope"}, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}, tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
