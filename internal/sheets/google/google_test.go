package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestQuoteTab(t *testing.T) {
	tests := map[string]string{
		"alice 2025":   "'alice 2025'",
		"o'brien 2024": "'o''brien 2024'",
	}
	for in, want := range tests {
		if got := quoteTab(in); got != want {
			t.Errorf("quoteTab(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadCredentials(t *testing.T) {
	if _, err := loadCredentials(Credentials{}); err == nil {
		t.Fatal("expected error without credentials")
	}

	got, err := loadCredentials(Credentials{JSON: `{"a":1}`, File: "/does/not/exist"})
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("inline JSON should win: %q %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"b":2}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = loadCredentials(Credentials{File: path})
	if err != nil || string(got) != `{"b":2}` {
		t.Fatalf("file credentials: %q %v", got, err)
	}

	if _, err := loadCredentials(Credentials{File: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Credentials{JSON: "{}"}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
}
