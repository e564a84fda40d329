package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/dimension_resolver/appctx"
	"github.com/mmdatafocus/dimension_resolver/config"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/models/reports"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func saveWorkbook(t *testing.T, p string, sheets map[string][][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, grid := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range grid {
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, f.SetSheetRow(name, fmt.Sprintf("A%d", i+1), &values))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(p))
}

func fixtureConfig(t *testing.T) config.RunConfig {
	t.Helper()
	dir := t.TempDir()

	ref := filepath.Join(dir, "reference.xlsx")
	saveWorkbook(t, ref, map[string][][]string{
		"EDI": {
			{"Invoice Number", "EMID", "Building Code", "GL BU", "GL Location", "Paying Region"},
			{"5001", "E1", "CA100", "GL-BU-9", "L100", "PR-N"},
			{"10023", "E1", "CA100", "", "", "PR-N"},
			{"7001", "E5", "", "GL-BU-5", "", "PR-S"},
		},
		"Buildings": {
			{"Building Code", "EMID", "Business Unit", "Cross Reference"},
			{"CA100", "E1", "BU-West", "L100"},
			{"CA200", "E4", "BU-North", ""},
			{"CA201", "E5", "BU-South", ""},
		},
		"EMID": {
			{"EMID", "Service Area", "Region", "Job Code"},
			{"E1", "SA1", "R-West", "JC-1"},
			{"E4", "SA4", "R-North", "JC-4"},
			{"E5", "SA5", "R-South", ""},
		},
		"Location Lookup": {
			{"Location Number", "Building Code", "EMID"},
			{"LOC1", "CA200", "E4"},
			{"LOC9", "CA200", "E4"},
			{"LOC9", "CA201", "E5"},
			{"JOB55", "CA100", "E1"},
		},
	})

	sourceA := filepath.Join(dir, "source_a.xlsx")
	saveWorkbook(t, sourceA, map[string][][]string{
		"Sheet2": {
			{"Invoice Number", "Location Number", "Work Date", "Customer", "Hours"},
			{"5001", "LOC1", "2024-03-04", "Acme:KSP:NCL", "8"},
			{"7001", "LOC9", "2024-03-04", "Acme", "4"},
			{"9998", "LOC9", "2024-03-05", "Acme:ZZ", "2"},
			{"", "LOC1", "2024-03-05", "Acme", "1"},
		},
	})

	sourceB := filepath.Join(dir, "source_b.csv")
	require.NoError(t, os.WriteFile(sourceB, []byte(
		"Invoice,Job Number,Service Date,Units\n10023B,,03/04/2024,6\n9000,JOB55,03/05/2024,3\n9001,JOB55,not a date,3\n"), 0o644))

	return config.RunConfig{
		Workers:       3,
		MemoizeEdi:    true,
		ReferencePath: ref,
		EdiSheet:      "EDI",
		BuildingSheet: "Buildings",
		EmidSheet:     "EMID",
		LocationSheet: "Location Lookup",
		SourceAPath:   sourceA,
		SourceASheet:  "Sheet2",
		SourceBPath:   sourceB,
		OutputPath:    filepath.Join(dir, "resolved.xlsx"),
	}
}

func TestRunResolution_EndToEnd(t *testing.T) {
	cfg := fixtureConfig(t)
	logger, _ := test.NewNullLogger()
	ctx := appctx.SetRunId(context.Background(), "run-1")

	result, err := RunResolution(ctx, logger, cfg)
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunId)
	require.Len(t, result.Lines, 5)

	byInvoice := make(map[string]models.ResolvedDimensions)
	for _, l := range result.Lines {
		byInvoice[l.Line.InvoiceNumber] = l.Dimensions
	}
	assert.Equal(t, "CA100", *byInvoice["5001"].BuildingCode)
	assert.Equal(t, "CA100", *byInvoice["10023B"].BuildingCode)
	assert.Equal(t, "CA201", *byInvoice["7001"].BuildingCode)
	assert.Equal(t, "BU-South", *byInvoice["7001"].BuildingBusinessUnit)
	assert.Nil(t, byInvoice["9998"].BuildingCode)
	assert.Equal(t, "ZZ", *byInvoice["9998"].JobCode)
	assert.Equal(t, "CA100", *byInvoice["9000"].BuildingCode)

	s := result.Report.Summary
	assert.Equal(t, 3, s.LinesBySource[models.SourceSystemA])
	assert.Equal(t, 2, s.LinesBySource[models.SourceSystemB])
	assert.Equal(t, 3, s.EdiMatched)
	assert.Equal(t, 1, s.Ambiguous)
	assert.Equal(t, 2, s.Rejected)
	require.Len(t, result.Report.Conflicts, 1)
	assert.Equal(t, models.ConflictMultipleCandidatesNoEmid, result.Report.Conflicts[0].Kind)

	f, err := excelize.OpenFile(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(reports.SheetResolved)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestRunResolution_ReferenceErrorIsFatal(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.EmidSheet = "Missing"
	logger, _ := test.NewNullLogger()

	result, err := RunResolution(context.Background(), logger, cfg)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, reference.IsFatal(err))
	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunResolution_SkippedSource(t *testing.T) {
	t.Setenv("RESOLVER_SKIP_SOURCES", "b")
	cfg := fixtureConfig(t)
	cfg.OutputPath = ""
	logger, _ := test.NewNullLogger()

	result, err := RunResolution(context.Background(), logger, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Report.Summary.LinesBySource[models.SourceSystemB])
	assert.Empty(t, result.OutputPath)

	cfg.SourceAPath = ""
	_, err = RunResolution(context.Background(), logger, cfg)
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestRunReportMessage(t *testing.T) {
	cfg := fixtureConfig(t)
	logger, _ := test.NewNullLogger()
	result, err := RunResolution(context.Background(), logger, cfg)
	require.NoError(t, err)

	msg, err := RunReportMessage(result, true)
	require.NoError(t, err)
	assert.Equal(t, result.RunId, msg.RunId)
	assert.True(t, msg.Persisted)
	assert.Equal(t, 1, msg.ConflictCnt)

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(msg.Summary, &summary))
	assert.Equal(t, result.Report.Summary.TotalLines, summary.TotalLines)
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.True(t, isDuplicateKeyErr(&mysqlDriver.MySQLError{Number: 1062}))
	assert.True(t, isDuplicateKeyErr(fmt.Errorf("save: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, isDuplicateKeyErr(&mysqlDriver.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateKeyErr(nil))
}
