package reports

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmdatafocus/dimension_resolver/ledger"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr(s string) *string { return &s }

func sampleRun() ([]models.ResolvedInvoiceLine, ledger.Report) {
	lines := []models.ResolvedInvoiceLine{
		{
			Line: models.CanonicalInvoiceLine{
				InvoiceNumber: "5001",
				Source:        models.SourceSystemA,
				SecondaryKey:  ptr("LOC1"),
				WorkDate:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
				Hours:         decimal.RequireFromString("7.5"),
			},
			Dimensions: models.ResolvedDimensions{
				BuildingCode:         ptr("CA100"),
				BuildingBusinessUnit: ptr("BU-West"),
				Emid:                 ptr("E1"),
				Notes:                []models.Note{{Kind: models.NoteEdiMatch, Step: "edi-lookup"}},
			},
		},
		{
			Line: models.CanonicalInvoiceLine{
				InvoiceNumber: "9998",
				Source:        models.SourceSystemA,
				SecondaryKey:  ptr("LOC9"),
				WorkDate:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			},
			Dimensions: models.ResolvedDimensions{
				Notes: []models.Note{{Kind: models.NoteAmbiguousFlagged, Step: "secondary-key", Detail: "2 candidates"}},
			},
		},
	}

	led := ledger.New()
	for _, l := range lines {
		led.RecordLine(l.Line.Source, l.Dimensions)
	}
	led.AppendConflict(models.Conflict{
		Kind:          models.ConflictMultipleCandidatesNoEmid,
		InvoiceNumber: "9998",
		Source:        models.SourceSystemA,
		SecondaryKey:  "LOC9",
		Candidates: []models.LocationLookupEntry{
			{LocationNumber: "LOC9", BuildingCode: "CA201"},
			{LocationNumber: "LOC9", BuildingCode: "CA200"},
		},
	})
	led.AppendRejected(models.RejectedRow{Source: models.SourceSystemB, RowNumber: 7, Reason: "missing invoice number"})
	return lines, led.Report()
}

func TestWriteRunWorkbook(t *testing.T) {
	lines, report := sampleRun()

	var buf bytes.Buffer
	require.NoError(t, WriteRunWorkbook(&buf, lines, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetResolved, SheetConflicts, SheetRejected, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetResolved)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, resolvedHeadings, rows[0])
	assert.Equal(t, "5001", rows[1][0])
	assert.Equal(t, "2024-03-04", rows[1][3])
	assert.Equal(t, "7.5", rows[1][8])
	assert.Equal(t, "CA100", rows[1][12])
	assert.Equal(t, "BU-West", rows[1][13])
	assert.Equal(t, "edi-match", rows[1][19])
	assert.Equal(t, "ambiguous-flagged (2 candidates)", rows[2][19])

	rows, err = f.GetRows(SheetConflicts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "multiple-candidates-no-emid", rows[1][0])
	assert.Equal(t, "CA200, CA201", rows[1][6])

	rows, err = f.GetRows(SheetRejected)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"B", "7", "", "missing invoice number"}, rows[1])

	rows, err = f.GetRows(SheetSummary)
	require.NoError(t, err)
	summary := make(map[string]string)
	for _, r := range rows[1:] {
		summary[r[0]] = r[1]
	}
	assert.Equal(t, "2", summary["Total lines"])
	assert.Equal(t, "1", summary["Ambiguous flagged"])
	assert.Equal(t, "1", summary["Rejected from source B"])
	assert.Equal(t, "1", summary["Conflicts multiple-candidates-no-emid"])
}

func TestSaveRunWorkbook_LocalPath(t *testing.T) {
	lines, report := sampleRun()
	p := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, SaveRunWorkbook(context.Background(), p, lines, report))

	f, err := excelize.OpenFile(p)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SheetResolved, "M2")
	require.NoError(t, err)
	assert.Equal(t, "CA100", v)
}

func TestExportConflictWorklist(t *testing.T) {
	_, report := sampleRun()

	var buf bytes.Buffer
	require.NoError(t, ExportConflictWorklist(&buf, report.Conflicts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetConflicts}, f.GetSheetList())
}
