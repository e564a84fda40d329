package models

import "strings"

// RawRow is one row of a tabular input keyed by normalized header.
type RawRow struct {
	RowNumber int
	Cells     map[string]string
}

func NewRawRow(rowNumber int, headers []string, values []string) RawRow {
	cells := make(map[string]string, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := cells[key]; dup {
			continue
		}
		if i < len(values) {
			cells[key] = values[i]
		} else {
			cells[key] = ""
		}
	}
	return RawRow{RowNumber: rowNumber, Cells: cells}
}

// Get returns the first non-blank cell among aliases.
func (r RawRow) Get(aliases ...string) string {
	for _, a := range aliases {
		if v, ok := r.Cells[NormalizeHeader(a)]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Has reports whether any alias is a column of the row, blank or not.
func (r RawRow) Has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := r.Cells[NormalizeHeader(a)]; ok {
			return true
		}
	}
	return false
}

func (r RawRow) IsBlank() bool {
	for _, v := range r.Cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader lower-cases h, turns underscores into spaces and collapses runs of
// whitespace, so "BUILDING_CODE", "Building  Code" and "building code" agree.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.ReplaceAll(h, "_", " "))
	return strings.Join(strings.Fields(h), " ")
}
