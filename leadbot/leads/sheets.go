package leads

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// BackendSheets is the config name of the Google Sheets backend.
const BackendSheets = "sheets"

// RowAppender appends one row to a spreadsheet range.
type RowAppender interface {
	AppendRow(ctx context.Context, spreadsheetID, rng string, row []any) error
}

// SheetsConfig locates the target spreadsheet.
type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

// SheetsSink appends leads to a Google spreadsheet.
type SheetsSink struct {
	appender      RowAppender
	spreadsheetID string
	rng           string
}

// NewSheetsSink authenticates with a service account file and returns a sink.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig) (*SheetsSink, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("leads: sheets client: %w", err)
	}
	return NewSheetsSinkWithAppender(serviceAppender{srv: srv}, cfg), nil
}

// NewSheetsSinkWithAppender builds a sink over any appender.
func NewSheetsSinkWithAppender(a RowAppender, cfg SheetsConfig) *SheetsSink {
	rng := cfg.Range
	if rng == "" {
		rng = "A1"
	}
	return &SheetsSink{appender: a, spreadsheetID: cfg.SpreadsheetID, rng: rng}
}

// Name identifies the backend in logs.
func (s *SheetsSink) Name() string { return BackendSheets }

// Record appends Row() to the configured range.
func (s *SheetsSink) Record(ctx context.Context, rec Record) error {
	cells := rec.Row()
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	if err := s.appender.AppendRow(ctx, s.spreadsheetID, s.rng, row); err != nil {
		return storageErr(BackendSheets, fmt.Errorf("append: %w", err))
	}
	return nil
}

type serviceAppender struct {
	srv *sheets.Service
}

func (a serviceAppender) AppendRow(ctx context.Context, spreadsheetID, rng string, row []any) error {
	_, err := a.srv.Spreadsheets.Values.
		Append(spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
