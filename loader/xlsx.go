package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/xuri/excelize/v2"
)

var ErrSheetNotFound = errors.New("sheet not found")

// ReadWorkbookSheet reads one sheet; an empty name means the first sheet. The first
// row is the header.
func ReadWorkbookSheet(r io.Reader, sheet string) ([]models.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

// ReadWorkbook reads several sheets from one workbook. Sheets that do not exist are
// absent from the result.
func ReadWorkbook(r io.Reader, sheets ...string) (map[string][]models.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	out := make(map[string][]models.RawRow, len(sheets))
	for _, s := range sheets {
		rows, err := readSheet(f, s)
		if errors.Is(err, ErrSheetNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[s] = rows
	}
	return out, nil
}

func readSheet(f *excelize.File, sheet string) ([]models.RawRow, error) {
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, ErrSheetNotFound
		}
		sheet = list[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("%q: %w", sheet, ErrSheetNotFound)
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rowsFromGrid(grid), nil
}

// rowsFromGrid turns a header row plus data rows into RawRows numbered the way a
// spreadsheet user sees them (the header is row 1).
func rowsFromGrid(grid [][]string) []models.RawRow {
	if len(grid) == 0 {
		return []models.RawRow{}
	}
	headers := grid[0]
	rows := make([]models.RawRow, 0, len(grid)-1)
	for i, values := range grid[1:] {
		rows = append(rows, models.NewRawRow(i+2, headers, values))
	}
	return rows
}
