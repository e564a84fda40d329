package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, grid := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range grid {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	if _, ok := sheets["Sheet1"]; !ok {
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	p := filepath.Join(t.TempDir(), "reference.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func referenceSheets() map[string][][]string {
	return map[string][][]string{
		"EDI": {
			{"Invoice Number", "EMID", "KP bldg", "GL_BU", "GL Location", "Paying Region"},
			{"5001", "E1", "CA100", "GL-BU-9", "L100", "PR-N"},
			{"7001", "E5", "", "GL-BU-5", "", "PR-S"},
		},
		"Buildings": {
			{"BUILDING_CODE", "EMID", "Business Unit", "XREF", "Notes"},
			{"CA100", "E1", "BU-West", "L100", "keep"},
			{"CA201", "E5", "BU-South", "", ""},
		},
		"EMID": {
			{"EMID", "Service Area", "Region", "Job Code"},
			{"E1", "SA1", "R-West", "JC-1"},
			{"E5", "SA5", "R-South", "n/a"},
		},
		"Location Lookup": {
			{"Location Number", "Building Code", "EMID"},
			{"LOC9", "CA200", "E4"},
			{"LOC9", "CA201", "E5"},
			{"", "", ""},
		},
	}
}

func source(p string) ReferenceSource {
	return ReferenceSource{Path: p, EdiSheet: "EDI", BuildingSheet: "Buildings", EmidSheet: "EMID", LocationSheet: "Location Lookup"}
}

func TestLoadReferenceTables_Workbook(t *testing.T) {
	p := writeWorkbook(t, referenceSheets())
	logger, _ := test.NewNullLogger()

	tables, err := LoadReferenceTables(context.Background(), source(p), logger)
	require.NoError(t, err)

	require.Len(t, tables.Edi, 2)
	assert.Equal(t, "5001", tables.Edi[0].InvoiceNumber)
	assert.Equal(t, "CA100", utils.DereferencePtr(tables.Edi[0].BuildingCode))
	assert.Equal(t, "GL-BU-9", utils.DereferencePtr(tables.Edi[0].GlBusinessUnit))
	assert.Nil(t, tables.Edi[1].BuildingCode)

	require.Len(t, tables.Buildings, 2)
	assert.Equal(t, "BU-West", utils.DereferencePtr(tables.Buildings[0].BusinessUnit))
	assert.Equal(t, "L100", utils.DereferencePtr(tables.Buildings[0].CrossReference))

	require.Len(t, tables.Emids, 2)
	assert.Nil(t, tables.Emids[1].JobCode)

	// the blank row is dropped
	require.Len(t, tables.Locations, 2)

	snap, err := reference.NewSnapshot(tables, reference.WithLogger(logger))
	require.NoError(t, err)
	_, match := snap.FindEdiEntry("5001")
	assert.True(t, match.Found())
}

func TestLoadReferenceTables_MissingSheetIsFatalAtSnapshot(t *testing.T) {
	sheets := referenceSheets()
	delete(sheets, "EMID")
	p := writeWorkbook(t, sheets)

	tables, err := LoadReferenceTables(context.Background(), source(p), nil)
	require.NoError(t, err)
	assert.Nil(t, tables.Emids)

	_, err = reference.NewSnapshot(tables)
	assert.True(t, errors.Is(err, utils.ErrMissingTable))
}

func TestLoadReferenceTables_MissingRequiredColumn(t *testing.T) {
	sheets := referenceSheets()
	sheets["Location Lookup"] = [][]string{
		{"Location Number", "EMID"},
		{"LOC9", "E4"},
	}
	p := writeWorkbook(t, sheets)

	_, err := LoadReferenceTables(context.Background(), source(p), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrMissingColumn))
	assert.True(t, reference.IsFatal(err))

	var te *reference.TableError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, reference.TableLocation, te.Table)
	assert.Equal(t, "building code", te.Column)
}

func TestLoadReferenceTables_StrictColumnsLogErrors(t *testing.T) {
	t.Setenv("STRICT_REFERENCE_COLUMNS", "true")
	p := writeWorkbook(t, referenceSheets())
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := LoadReferenceTables(context.Background(), source(p), logger)
	require.NoError(t, err)

	var unknown []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "unknown column ignored" {
			unknown = append(unknown, e.Data["column"].(string))
		}
	}
	assert.Contains(t, unknown, "notes")
}

func TestLoadReferenceTables_CSVDirectory(t *testing.T) {
	dir := t.TempDir()
	for name, grid := range referenceSheets() {
		var b strings.Builder
		for _, row := range grid {
			b.WriteString(strings.Join(row, ","))
			b.WriteString("\n")
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(b.String()), 0o644))
	}

	tables, err := LoadReferenceTables(context.Background(), source(dir), nil)
	require.NoError(t, err)
	assert.Len(t, tables.Edi, 2)
	assert.Len(t, tables.Buildings, 2)
	assert.Len(t, tables.Emids, 2)
	assert.Len(t, tables.Locations, 2)
}

func TestReadCSV_BOMAndRaggedRows(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("\ufeffInvoice Number,Location Number,Work Date\n5001,LOC1\n5002,LOC2,2024-03-04,extra\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, "5001", rows[0].Get("invoice number"))
	assert.Equal(t, "", rows[0].Get("work date"))
	assert.Equal(t, "2024-03-04", rows[1].Get("work_date"))
}

func TestReadTable(t *testing.T) {
	p := writeWorkbook(t, map[string][][]string{
		"Batch": {{"Invoice", "Job #"}, {"10023B", "JOB55"}},
	})

	rows, err := ReadTable(context.Background(), p, "Batch")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "JOB55", rows[0].Get("job #"))

	_, err = ReadTable(context.Background(), p, "Nope")
	assert.True(t, errors.Is(err, ErrSheetNotFound))

	_, err = ReadTable(context.Background(), filepath.Join(t.TempDir(), "x.json"), "")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = ReadTable(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "gs://bucket/ref/EDI.csv", Join("gs://bucket/ref/", "EDI.csv"))
	assert.Equal(t, filepath.Join("ref", "EDI.csv"), Join("ref", "EDI.csv"))
}
