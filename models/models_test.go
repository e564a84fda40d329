package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "building code", NormalizeHeader("BUILDING_CODE"))
	assert.Equal(t, "kp bldg", NormalizeHeader("  KP   bldg "))
	assert.Equal(t, "", NormalizeHeader("   "))
}

func TestRawRow_GetUsesFirstNonBlankAlias(t *testing.T) {
	row := NewRawRow(3, []string{"Invoice #", "KP bldg", "BUILDING_CODE", "Extra"}, []string{"1001", "", "CA100"})

	assert.Equal(t, 3, row.RowNumber)
	assert.Equal(t, "1001", row.Get("invoice number", "invoice #"))
	assert.Equal(t, "CA100", row.Get("kp bldg", "building code"))
	assert.Equal(t, "", row.Get("extra"))
	assert.True(t, row.Has("extra"))
	assert.False(t, row.Has("missing"))
	assert.False(t, row.IsBlank())
	assert.True(t, NewRawRow(4, []string{"a", "b"}, []string{" ", ""}).IsBlank())
}

func TestParseSourceSystem(t *testing.T) {
	s, err := ParseSourceSystem(" b ")
	require.NoError(t, err)
	assert.Equal(t, SourceSystemB, s)
	assert.Equal(t, "job number", s.SecondaryKeyName())

	_, err = ParseSourceSystem("C")
	assert.Error(t, err)
}

func TestEnumScan(t *testing.T) {
	var s SourceSystem
	require.NoError(t, s.Scan([]byte("A")))
	assert.Equal(t, SourceSystemA, s)

	var k ConflictKind
	require.NoError(t, k.Scan("multiple-candidates-no-emid"))
	assert.Equal(t, ConflictMultipleCandidatesNoEmid, k)
	assert.Error(t, k.Scan("nope"))
	assert.Error(t, k.Scan(12))
}

func TestConflict_BuildingCodesAndClone(t *testing.T) {
	c := Conflict{
		Kind:          ConflictMultipleCandidatesNoEmid,
		InvoiceNumber: "5002",
		SecondaryKey:  "LOC9",
		Emid:          strPtr("E5"),
		Candidates: []LocationLookupEntry{
			{LocationNumber: "LOC9", BuildingCode: "CA201"},
			{LocationNumber: "LOC9", BuildingCode: "CA200"},
			{LocationNumber: "LOC9", BuildingCode: "CA201"},
		},
	}
	assert.Equal(t, []string{"CA200", "CA201"}, c.BuildingCodes())

	clone := c.Clone()
	clone.Candidates[0].BuildingCode = "XX"
	*clone.Emid = "E9"
	assert.Equal(t, "CA201", c.Candidates[0].BuildingCode)
	assert.Equal(t, "E5", *c.Emid)
}

func TestResolvedDimensions_Helpers(t *testing.T) {
	var d ResolvedDimensions
	assert.True(t, d.IsEmpty())
	assert.False(t, d.HasNote(NoteUsedFallback))

	d.JobCode = strPtr("KSP:NCL")
	d.Notes = []Note{{Kind: NoteJobCodeTextFallback, Step: "job-code-text"}}
	assert.False(t, d.IsEmpty())
	assert.True(t, d.HasNote(NoteJobCodeTextFallback))
	assert.Equal(t, []NoteKind{NoteJobCodeTextFallback}, d.NoteKinds())
}

func TestNewResolvedInvoiceLineRecord(t *testing.T) {
	line := ResolvedInvoiceLine{
		Line: CanonicalInvoiceLine{
			InvoiceNumber: "5001",
			Source:        SourceSystemA,
			SecondaryKey:  strPtr("LOC1"),
			WorkDate:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Hours:         decimal.RequireFromString("7.5"),
			SourceRow:     12,
		},
		Dimensions: ResolvedDimensions{
			BuildingCode:         strPtr("CA100"),
			BuildingBusinessUnit: strPtr("BU-West"),
			Emid:                 strPtr("E1"),
		},
	}

	rec, err := NewResolvedInvoiceLineRecord("run-1", line)
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.RunId)
	assert.Equal(t, "5001", rec.InvoiceNumber)
	assert.Equal(t, "CA100", *rec.BuildingCode)
	assert.Equal(t, "BU-West", *rec.BuildingBusinessUnit)
	assert.True(t, rec.Hours.Equal(decimal.RequireFromString("7.5")))
	assert.JSONEq(t, `[]`, string(rec.NotesJSON))
}

func TestNewResolutionRun(t *testing.T) {
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	summary := RunSummary{
		LinesBySource: map[SourceSystem]int{SourceSystemA: 4, SourceSystemB: 2},
		TotalLines:    6,
		EdiMatched:    3,
		Ambiguous:     1,
	}
	run, err := NewResolutionRun("run-2", "ops", start, start.Add(1500*time.Millisecond), summary)
	require.NoError(t, err)
	assert.Equal(t, 4, run.LinesSourceA)
	assert.Equal(t, 2, run.LinesSourceB)
	assert.Equal(t, int64(1500), run.DurationMs)
	assert.Equal(t, RunStatusSuccess, run.Status)

	var decoded RunSummary
	require.NoError(t, json.Unmarshal(run.SummaryJSON, &decoded))
	assert.Equal(t, 6, decoded.TotalLines)
}
