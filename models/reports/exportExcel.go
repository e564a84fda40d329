package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mmdatafocus/dimension_resolver/ledger"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/xuri/excelize/v2"
)

const (
	SheetResolved  = "Resolved"
	SheetConflicts = "Conflicts"
	SheetRejected  = "Rejected"
	SheetSummary   = "Summary"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExcelExporter is one data row of an exported sheet.
type ExcelExporter interface {
	GetCellValues() []interface{}
}

var resolvedHeadings = []string{
	"Invoice Number", "Source", "Secondary Key", "Work Date", "Shift Start", "Customer",
	"Employee Id", "Employee Name", "Hours", "Pay Rate", "Bill Rate", "Amount",
	"Building Code", "Building Business Unit", "EMID", "Service Area", "Job Code",
	"Operational Region", "Paying Region", "Notes",
}

type resolvedRow models.ResolvedInvoiceLine

func (r resolvedRow) GetCellValues() []interface{} {
	l, d := r.Line, r.Dimensions
	return []interface{}{
		l.InvoiceNumber,
		string(l.Source),
		utils.DereferencePtr(l.SecondaryKey),
		l.WorkDate.Format("2006-01-02"),
		utils.DereferencePtr(l.ShiftStart),
		utils.DereferencePtr(l.Customer),
		utils.DereferencePtr(l.EmployeeId),
		utils.DereferencePtr(l.EmployeeName),
		l.Hours.InexactFloat64(),
		l.PayRate.InexactFloat64(),
		l.BillRate.InexactFloat64(),
		l.Amount.InexactFloat64(),
		utils.DereferencePtr(d.BuildingCode),
		utils.DereferencePtr(d.BuildingBusinessUnit),
		utils.DereferencePtr(d.Emid),
		utils.DereferencePtr(d.ServiceArea),
		utils.DereferencePtr(d.JobCode),
		utils.DereferencePtr(d.OperationalRegion),
		utils.DereferencePtr(d.PayingRegion),
		formatNotes(d.Notes),
	}
}

var conflictHeadings = []string{
	"Kind", "Invoice Number", "Source", "Secondary Key", "EMID", "Candidate Count", "Candidate Buildings",
}

type conflictRow models.Conflict

func (r conflictRow) GetCellValues() []interface{} {
	c := models.Conflict(r)
	codes := c.BuildingCodes()
	return []interface{}{
		string(c.Kind),
		c.InvoiceNumber,
		string(c.Source),
		c.SecondaryKey,
		utils.DereferencePtr(c.Emid),
		len(codes),
		strings.Join(codes, ", "),
	}
}

var rejectedHeadings = []string{"Source", "Row", "Invoice Number", "Reason"}

type rejectedRow models.RejectedRow

func (r rejectedRow) GetCellValues() []interface{} {
	return []interface{}{string(r.Source), r.RowNumber, r.InvoiceNumber, r.Reason}
}

type summaryRow struct {
	metric string
	value  int
}

func (r summaryRow) GetCellValues() []interface{} {
	return []interface{}{r.metric, r.value}
}

// WriteRunWorkbook writes the resolved lines, the conflict worklist, the rejected rows
// and the run summary as one workbook.
func WriteRunWorkbook(w io.Writer, lines []models.ResolvedInvoiceLine, report ledger.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	resolved := make([]ExcelExporter, 0, len(lines))
	for _, l := range lines {
		resolved = append(resolved, resolvedRow(l))
	}
	conflicts := make([]ExcelExporter, 0, len(report.Conflicts))
	for _, c := range report.Conflicts {
		conflicts = append(conflicts, conflictRow(c))
	}
	rejected := make([]ExcelExporter, 0, len(report.Rejected))
	for _, r := range report.Rejected {
		rejected = append(rejected, rejectedRow(r))
	}

	if err := writeSheet(f, SheetResolved, resolvedHeadings, resolved); err != nil {
		return err
	}
	if err := writeSheet(f, SheetConflicts, conflictHeadings, conflicts); err != nil {
		return err
	}
	if err := writeSheet(f, SheetRejected, rejectedHeadings, rejected); err != nil {
		return err
	}
	if err := writeSheet(f, SheetSummary, []string{"Metric", "Value"}, summaryRows(report.Summary)); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(SheetResolved); err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}

// SaveRunWorkbook writes the workbook to a local path or a gs:// object.
func SaveRunWorkbook(ctx context.Context, path string, lines []models.ResolvedInvoiceLine, report ledger.Report) error {
	var buf bytes.Buffer
	if err := WriteRunWorkbook(&buf, lines, report); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	if utils.IsGCSPath(path) {
		return utils.UploadToGCS(ctx, path, &buf, xlsxContentType)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ExportConflictWorklist writes only the conflict sheet, for the manual review queue.
func ExportConflictWorklist(w io.Writer, conflicts []models.Conflict) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := make([]ExcelExporter, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, conflictRow(c))
	}
	if err := writeSheet(f, SheetConflicts, conflictHeadings, rows); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, headings []string, data []ExcelExporter) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(headings))
	for i, h := range headings {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, d := range data {
		values := d.GetCellValues()
		if err := f.SetSheetRow(sheet, "A"+fmt.Sprint(i+2), &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func summaryRows(s models.RunSummary) []ExcelExporter {
	rows := []ExcelExporter{
		summaryRow{"Total lines", s.TotalLines},
	}
	for _, src := range models.AllSourceSystems {
		rows = append(rows, summaryRow{"Lines from source " + string(src), s.LinesBySource[src]})
	}
	rows = append(rows,
		summaryRow{"EDI matched", s.EdiMatched},
		summaryRow{"Fallback used", s.FallbackUsed},
		summaryRow{"Ambiguous flagged", s.Ambiguous},
		summaryRow{"Unresolved", s.Unresolved},
		summaryRow{"Rejected", s.Rejected},
	)
	for _, src := range models.AllSourceSystems {
		rows = append(rows, summaryRow{"Rejected from source " + string(src), s.RejectedBySource[src]})
	}

	kinds := make([]string, 0, len(s.ConflictsByKind))
	for k := range s.ConflictsByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		rows = append(rows, summaryRow{"Conflicts " + k, s.ConflictsByKind[models.ConflictKind(k)]})
	}
	return rows
}

func formatNotes(notes []models.Note) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.Detail == "" {
			parts = append(parts, string(n.Kind))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", n.Kind, n.Detail))
	}
	return strings.Join(parts, "; ")
}
