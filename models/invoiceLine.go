package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalInvoiceLine is the source-independent shape of one invoice line.
// Pay fields are carried through resolution untouched.
type CanonicalInvoiceLine struct {
	InvoiceNumber string       `json:"invoice_number"`
	Source        SourceSystem `json:"source"`
	SecondaryKey  *string      `json:"secondary_key"`
	WorkDate      time.Time    `json:"work_date"`
	ShiftStart    *string      `json:"shift_start"`

	// FallbackJobCode is only set for source A, from the combined customer label.
	FallbackJobCode *string `json:"fallback_job_code"`
	Customer        *string `json:"customer"`

	EmployeeId   *string         `json:"employee_id"`
	EmployeeName *string         `json:"employee_name"`
	Hours        decimal.Decimal `json:"hours"`
	PayRate      decimal.Decimal `json:"pay_rate"`
	BillRate     decimal.Decimal `json:"bill_rate"`
	Amount       decimal.Decimal `json:"amount"`

	SourceRow int               `json:"source_row"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type ResolvedInvoiceLine struct {
	Line       CanonicalInvoiceLine `json:"line"`
	Dimensions ResolvedDimensions   `json:"dimensions"`
}

// RejectedRow is an input row that failed normalization.
type RejectedRow struct {
	Source        SourceSystem `json:"source"`
	RowNumber     int          `json:"row_number"`
	InvoiceNumber string       `json:"invoice_number"`
	Reason        string       `json:"reason"`
}
