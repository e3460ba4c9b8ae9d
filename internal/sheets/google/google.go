// Package google mirrors collections into a Google Spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "tripdesk/internal/log"
	"tripdesk/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *applog.Logger

	mu    sync.Mutex
	known map[string]bool
}

var _ sheets.Mirror = (*Client)(nil)

// Credentials resolves the service account key from inline JSON or a file
// path. Inline JSON wins when both are set.
func Credentials(inlineJSON, file string) ([]byte, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)
	switch {
	case inlineJSON != "":
		return []byte(inlineJSON), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// New creates a client authenticated with the service account key.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, logger), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID string, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(applog.ComponentSheets),
		known:         make(map[string]bool),
	}
}

// ReplaceRows clears sheet and writes rows from A1, creating the sheet when
// the spreadsheet does not have it yet.
func (c *Client) ReplaceRows(ctx context.Context, sheet string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	whole := quoteSheet(sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, whole, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, whole+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}

	c.logger.DebugContext(ctx, "Sheet replaced", applog.FieldSheet, sheet, applog.FieldRows, len(rows))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known[sheet] {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.known[s.Properties.Title] = true
		}
	}
	if c.known[sheet] {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet, err)
	}
	c.known[sheet] = true
	c.logger.InfoContext(ctx, "Sheet created", applog.FieldSheet, sheet)
	return nil
}

// quoteSheet renders a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
