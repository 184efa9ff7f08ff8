// Package export renders overlap results to spreadsheet destinations:
// xlsx workbooks for download and Google Sheets for scheduled reports.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/fundlab/overlap/internal/domain"
)

const (
	matrixSheet = "Matrix"
	coreSheet   = "Core Overlap"
	pairsSheet  = "Pair Details"
)

// BuildWorkbook renders an overlap result into an xlsx workbook with one
// sheet for the matrix, one for the core overlap, and one listing every
// ordered pair's shared holdings.
func BuildWorkbook(result domain.MatrixResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeMatrixSheet(f, result); err != nil {
		return nil, err
	}
	if err := writeCoreSheet(f, result); err != nil {
		return nil, err
	}
	if err := writePairsSheet(f, result); err != nil {
		return nil, err
	}

	// The default sheet excelize creates is replaced by Matrix.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(matrixSheet)
	if err != nil {
		return nil, fmt.Errorf("locating matrix sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	return f, nil
}

func writeMatrixSheet(f *excelize.File, result domain.MatrixResult) error {
	if _, err := f.NewSheet(matrixSheet); err != nil {
		return fmt.Errorf("creating matrix sheet: %w", err)
	}

	header := append([]any{""}, toAnys(result.ETFs)...)
	if err := f.SetSheetRow(matrixSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing matrix header: %w", err)
	}

	for i, etf := range result.ETFs {
		row := make([]any, 0, len(result.ETFs)+1)
		row = append(row, etf)
		for _, v := range result.Matrix[i] {
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing matrix row %d: %w", i, err)
		}
		if err := f.SetSheetRow(matrixSheet, cell, &row); err != nil {
			return fmt.Errorf("writing matrix row %d: %w", i, err)
		}
	}
	return nil
}

func writeCoreSheet(f *excelize.File, result domain.MatrixResult) error {
	if _, err := f.NewSheet(coreSheet); err != nil {
		return fmt.Errorf("creating core sheet: %w", err)
	}

	header := []any{"Symbol", "Name"}
	for _, etf := range result.ETFs {
		header = append(header, fmt.Sprintf("Weight in %s", etf))
	}
	header = append(header, "Min Weight")
	if err := f.SetSheetRow(coreSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing core header: %w", err)
	}

	for i, h := range result.CoreOverlap.SharedHoldings {
		row := []any{h.Symbol, h.Name}
		for _, etf := range result.ETFs {
			row = append(row, h.Weights[etf])
		}
		row = append(row, h.MinWeight)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing core row %d: %w", i, err)
		}
		if err := f.SetSheetRow(coreSheet, cell, &row); err != nil {
			return fmt.Errorf("writing core row %d: %w", i, err)
		}
	}

	totalCell := fmt.Sprintf("A%d", len(result.CoreOverlap.SharedHoldings)+2)
	total := []any{"Total", "", result.CoreOverlap.TotalOverlap}
	if err := f.SetSheetRow(coreSheet, totalCell, &total); err != nil {
		return fmt.Errorf("writing core total: %w", err)
	}
	return nil
}

func writePairsSheet(f *excelize.File, result domain.MatrixResult) error {
	if _, err := f.NewSheet(pairsSheet); err != nil {
		return fmt.Errorf("creating pairs sheet: %w", err)
	}

	header := []any{"Pair", "Symbol", "Name", "Weight 1", "Weight 2", "Contribution"}
	if err := f.SetSheetRow(pairsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing pairs header: %w", err)
	}

	// Map iteration order is random; keep the workbook deterministic.
	keys := make([]string, 0, len(result.Details))
	for k := range result.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rowNum := 2
	for _, key := range keys {
		detail := result.Details[key]
		for _, s := range detail.SharedHoldings {
			row := []any{key, s.Symbol, s.Name, s.Weight1, s.Weight2, s.OverlapContribution}
			if err := f.SetSheetRow(pairsSheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return fmt.Errorf("writing pair row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}
	return nil
}

func toAnys(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
