// Package normalizer turns source-specific raw rows into canonical invoice lines.
package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/shopspring/decimal"
)

// RejectedRowError reports a raw row that cannot become a canonical line.
type RejectedRowError struct {
	Source        models.SourceSystem
	RowNumber     int
	InvoiceNumber string
	Reason        string
}

func (e *RejectedRowError) Error() string {
	return fmt.Sprintf("source %s row %d rejected: %s", e.Source, e.RowNumber, e.Reason)
}

func (e *RejectedRowError) Is(target error) bool {
	return target == utils.ErrRejectedRow
}

func (e *RejectedRowError) RejectedRow() models.RejectedRow {
	return models.RejectedRow{
		Source:        e.Source,
		RowNumber:     e.RowNumber,
		InvoiceNumber: e.InvoiceNumber,
		Reason:        e.Reason,
	}
}

// Normalize maps one raw row of the given source onto the canonical shape.
// It fails only with *RejectedRowError (or for an unknown source).
func Normalize(row models.RawRow, source models.SourceSystem) (models.CanonicalInvoiceLine, error) {
	cols, ok := sourceColumns[source]
	if !ok {
		return models.CanonicalInvoiceLine{}, fmt.Errorf("unknown source system %q", source)
	}

	reject := func(invoice, reason string) error {
		return &RejectedRowError{Source: source, RowNumber: row.RowNumber, InvoiceNumber: invoice, Reason: reason}
	}

	invoice := strings.TrimSpace(row.Get(cols.invoice...))
	if invoice == "" {
		return models.CanonicalInvoiceLine{}, reject("", "missing invoice number")
	}
	rawDate := row.Get(cols.workDate...)
	if rawDate == "" {
		return models.CanonicalInvoiceLine{}, reject(invoice, "missing work date")
	}
	workDate, err := parseWorkDate(rawDate)
	if err != nil {
		return models.CanonicalInvoiceLine{}, reject(invoice, err.Error())
	}

	line := models.CanonicalInvoiceLine{
		InvoiceNumber: invoice,
		Source:        source,
		SecondaryKey:  utils.NilIfBlank(row.Get(cols.secondaryKey...)),
		WorkDate:      workDate,
		ShiftStart:    utils.NilIfBlank(row.Get(cols.shiftStart...)),
		Customer:      utils.NilIfBlank(row.Get(cols.customer...)),
		EmployeeId:    utils.NilIfBlank(row.Get(cols.employeeId...)),
		EmployeeName:  utils.NilIfBlank(row.Get(cols.employeeName...)),
		SourceRow:     row.RowNumber,
	}

	extra := extraCells(row, cols)
	line.Hours = decimalOrKeep(row, cols.hours, extra)
	line.PayRate = decimalOrKeep(row, cols.payRate, extra)
	line.BillRate = decimalOrKeep(row, cols.billRate, extra)
	line.Amount = decimalOrKeep(row, cols.amount, extra)
	if len(extra) > 0 {
		line.Extra = extra
	}

	if source == models.SourceSystemA && line.Customer != nil {
		line.FallbackJobCode = JobCodeFromCustomerLabel(*line.Customer)
	}
	return line, nil
}

// JobCodeFromCustomerLabel splits a combined customer label on its first colon and
// keeps the trailing segment: "Acme:KSP:NCL" -> "KSP:NCL".
func JobCodeFromCustomerLabel(label string) *string {
	_, tail, ok := strings.Cut(label, ":")
	if !ok {
		return nil
	}
	return utils.NilIfBlank(tail)
}

// NormalizeBatch normalizes every non-blank row; rejected rows are returned, not raised.
func NormalizeBatch(rows []models.RawRow, source models.SourceSystem) ([]models.CanonicalInvoiceLine, []models.RejectedRow, error) {
	lines := make([]models.CanonicalInvoiceLine, 0, len(rows))
	var rejected []models.RejectedRow
	for _, row := range rows {
		if row.IsBlank() {
			continue
		}
		line, err := Normalize(row, source)
		if err != nil {
			var rej *RejectedRowError
			if errors.As(err, &rej) {
				rejected = append(rejected, rej.RejectedRow())
				continue
			}
			return nil, nil, err
		}
		lines = append(lines, line)
	}
	return lines, rejected, nil
}

// decimalOrKeep parses a pay field; unparseable values stay in extra under their alias
// so nothing from the source row is lost.
func decimalOrKeep(row models.RawRow, aliases []string, extra map[string]string) decimal.Decimal {
	raw := row.Get(aliases...)
	if raw == "" {
		return decimal.Zero
	}
	d, err := utils.ParseDecimal(strings.TrimPrefix(raw, "$"))
	if err != nil {
		extra[models.NormalizeHeader(aliases[0])] = raw
		return decimal.Zero
	}
	return d
}

func extraCells(row models.RawRow, cols columnSet) map[string]string {
	known := make(map[string]bool)
	for _, aliases := range cols.all() {
		for _, a := range aliases {
			known[models.NormalizeHeader(a)] = true
		}
	}
	extra := make(map[string]string)
	for k, v := range row.Cells {
		if known[k] || strings.TrimSpace(v) == "" {
			continue
		}
		extra[k] = v
	}
	return extra
}
