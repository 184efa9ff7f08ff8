package export

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/fundlab/overlap/internal/domain"
)

// SheetsWriter publishes overlap reports to a Google Sheet.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Export ensures the report sheets exist, then clears and rewrites them
// with the given overlap result. Implements worker.ReportSink.
func (w *SheetsWriter) Export(ctx context.Context, result domain.MatrixResult) error {
	if err := w.ensureSheets(ctx, "MATRIX", "CORE"); err != nil {
		return err
	}

	matrixValues := buildMatrixValues(result)
	coreValues := buildCoreValues(result)

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{"MATRIX!A:Z", "CORE!A:Z"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: "MATRIX!A1", Values: matrixValues},
				{Range: "CORE!A1", Values: coreValues},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	return nil
}

// buildMatrixValues builds the MATRIX sheet data: a timestamp row, then
// the percentage grid with fund symbols as row and column labels.
func buildMatrixValues(result domain.MatrixResult) [][]any {
	data := make([][]any, 0, len(result.ETFs)+2)
	data = append(data, []any{"Generated", time.Now().UTC().Format(time.RFC3339)})

	header := append([]any{""}, toAnys(result.ETFs)...)
	data = append(data, header)

	for i, etf := range result.ETFs {
		row := make([]any, 0, len(result.ETFs)+1)
		row = append(row, etf)
		for _, v := range result.Matrix[i] {
			row = append(row, v)
		}
		data = append(data, row)
	}

	return data
}

// buildCoreValues builds the CORE sheet data.
// Columns: Symbol | Name | one weight column per fund | Min Weight
func buildCoreValues(result domain.MatrixResult) [][]any {
	header := []any{"Symbol", "Name"}
	for _, etf := range result.ETFs {
		header = append(header, etf)
	}
	header = append(header, "Min Weight")

	data := [][]any{header}
	for _, h := range result.CoreOverlap.SharedHoldings {
		row := []any{h.Symbol, h.Name}
		for _, etf := range result.ETFs {
			row = append(row, h.Weights[etf])
		}
		row = append(row, h.MinWeight)
		data = append(data, row)
	}
	data = append(data, []any{"Total", "", result.CoreOverlap.TotalOverlap})

	return data
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
