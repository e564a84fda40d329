package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/dimension_resolver/models"
)

var ErrUnsupportedFormat = errors.New("unsupported input format")

// ReadTable reads a .csv file or one sheet of an .xlsx workbook, local or on GCS.
func ReadTable(ctx context.Context, p string, sheet string) ([]models.RawRow, error) {
	ext := extension(p)
	if ext != ".csv" && ext != ".xlsx" && ext != ".xlsm" {
		return nil, fmt.Errorf("%s: %w", p, ErrUnsupportedFormat)
	}

	r, err := Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if ext == ".csv" {
		return ReadCSV(r)
	}
	return ReadWorkbookSheet(r, sheet)
}
