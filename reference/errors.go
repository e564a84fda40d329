package reference

import (
	"errors"
	"fmt"

	"github.com/mmdatafocus/dimension_resolver/utils"
)

// Table names used in errors and logs.
const (
	TableEdi      = "edi"
	TableBuilding = "building"
	TableEmid     = "emid"
	TableLocation = "location_lookup"
)

// TableError is the fatal startup error raised when a reference table is missing,
// empty or lacks a required column.
type TableError struct {
	Table  string
	Column string
	Err    error
}

func (e *TableError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("reference table %s: %v: %s", e.Table, e.Err, e.Column)
	}
	return fmt.Sprintf("reference table %s: %v", e.Table, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

func NewMissingColumnError(table, column string) *TableError {
	return &TableError{Table: table, Column: column, Err: utils.ErrMissingColumn}
}

// IsFatal reports whether err is a reference-load failure that must abort the run.
func IsFatal(err error) bool {
	var te *TableError
	return errors.As(err, &te)
}
