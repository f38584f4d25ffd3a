// Package google exports year reports to a Google Sheets spreadsheet, one tab per user and year.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"tally/internal/log"
	"tally/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu    sync.Mutex
	known map[string]bool
}

var _ sheets.Exporter = (*Client)(nil)

type Credentials struct {
	SpreadsheetID string
	// JSON takes precedence over File.
	JSON string
	File string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, creds Credentials) (*Client, error) {
	if strings.TrimSpace(creds.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	credentialsJSON, err := loadCredentials(creds)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", creds.SpreadsheetID)
	return &Client{svc: svc, spreadsheetID: creds.SpreadsheetID, known: make(map[string]bool)}, nil
}

func loadCredentials(creds Credentials) ([]byte, error) {
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		return []byte(creds.JSON), nil
	case strings.TrimSpace(creds.File) != "":
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportYear overwrites the report's tab, creating it first when missing.
func (c *Client) ExportYear(ctx context.Context, r sheets.YearReport) error {
	tab := sheets.TabName(r.UserID, r.Year)
	if err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	rows := sheets.Rows(r)
	rng := fmt.Sprintf("%s!A1:D%d", quoteTab(tab), len(rows))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write range %s: %w", rng, err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Year report exported",
		log.FieldUserID, r.UserID,
		log.FieldYear, r.Year,
		"tab", tab)
	return nil
}

func (c *Client) ensureTab(ctx context.Context, tab string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known[tab] {
		return nil
	}

	doc, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range doc.Sheets {
		if s.Properties != nil {
			c.known[s.Properties.Title] = true
		}
	}
	if c.known[tab] {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", tab, err)
	}
	c.known[tab] = true
	return nil
}

// quoteTab quotes a tab title for A1 notation.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
