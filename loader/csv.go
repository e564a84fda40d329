package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mmdatafocus/dimension_resolver/models"
)

// ReadCSV reads a comma-separated table whose first record is the header. Ragged
// records are allowed.
func ReadCSV(r io.Reader) ([]models.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(grid) > 0 && len(grid[0]) > 0 {
		grid[0][0] = strings.TrimPrefix(grid[0][0], "\ufeff")
	}
	return rowsFromGrid(grid), nil
}
