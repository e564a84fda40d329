package normalizer

import (
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowA(n int, values ...string) models.RawRow {
	headers := []string{"Invoice Number", "Location Number", "Work Date", "Start Time", "Customer", "Employee ID", "Hours", "Pay Rate", "Bill Rate", "Supervisor"}
	return models.NewRawRow(n, headers, values)
}

func rowB(n int, values ...string) models.RawRow {
	headers := []string{"Invoice No", "Job Number", "Service Date", "Clock In", "Client", "Units", "Rate"}
	return models.NewRawRow(n, headers, values)
}

func TestNormalize_SourceA(t *testing.T) {
	line, err := Normalize(rowA(2, "5001", "LOC9", "03/04/2024", "07:00", "Acme:KSP:NCL", "EMP-1", "7.5", "$22.10", "31", "Pat"), models.SourceSystemA)
	require.NoError(t, err)

	assert.Equal(t, "5001", line.InvoiceNumber)
	assert.Equal(t, models.SourceSystemA, line.Source)
	require.NotNil(t, line.SecondaryKey)
	assert.Equal(t, "LOC9", *line.SecondaryKey)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), line.WorkDate)
	require.NotNil(t, line.FallbackJobCode)
	assert.Equal(t, "KSP:NCL", *line.FallbackJobCode)
	assert.True(t, line.Hours.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, line.PayRate.Equal(decimal.RequireFromString("22.10")))
	assert.Equal(t, map[string]string{"supervisor": "Pat"}, line.Extra)
	assert.Equal(t, 2, line.SourceRow)
}

func TestNormalize_SourceB(t *testing.T) {
	line, err := Normalize(rowB(5, "8001B", "JOB55", "2024-03-05", "06:30", "Acme:KSP:NCL", "8", "19.00"), models.SourceSystemB)
	require.NoError(t, err)

	assert.Equal(t, models.SourceSystemB, line.Source)
	require.NotNil(t, line.SecondaryKey)
	assert.Equal(t, "JOB55", *line.SecondaryKey)
	assert.Equal(t, "06:30", *line.ShiftStart)
	// the customer-label fallback belongs to source A only
	assert.Nil(t, line.FallbackJobCode)
	assert.True(t, line.BillRate.Equal(decimal.RequireFromString("19")))
}

func TestNormalize_BothSourcesProduceSameShape(t *testing.T) {
	a, err := Normalize(rowA(2, "9001", "K1", "2024-01-02", "", "", "", "8", "", ""), models.SourceSystemA)
	require.NoError(t, err)
	b, err := Normalize(rowB(2, "9001", "K1", "2024-01-02", "", "", "8", ""), models.SourceSystemB)
	require.NoError(t, err)

	a.Source, b.Source = "", ""
	assert.Equal(t, a, b)
}

func TestNormalize_Rejections(t *testing.T) {
	_, err := Normalize(rowA(3, "", "LOC9", "2024-03-04"), models.SourceSystemA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrRejectedRow))

	var rej *RejectedRowError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, 3, rej.RowNumber)
	assert.Equal(t, "missing invoice number", rej.Reason)

	_, err = Normalize(rowA(4, "5001", "LOC9", ""), models.SourceSystemA)
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "missing work date", rej.Reason)
	assert.Equal(t, "5001", rej.InvoiceNumber)

	_, err = Normalize(rowA(5, "5001", "LOC9", "not a date"), models.SourceSystemA)
	assert.True(t, errors.Is(err, utils.ErrRejectedRow))
}

func TestNormalize_UnknownSource(t *testing.T) {
	_, err := Normalize(rowA(2, "5001", "LOC9", "2024-03-04"), models.SourceSystem("Z"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, utils.ErrRejectedRow))
}

func TestNormalize_UnparseablePayFieldIsCarried(t *testing.T) {
	line, err := Normalize(rowA(2, "5001", "LOC9", "2024-03-04", "", "", "", "eight"), models.SourceSystemA)
	require.NoError(t, err)
	assert.True(t, line.Hours.IsZero())
	assert.Equal(t, "eight", line.Extra["hours"])
}

func TestJobCodeFromCustomerLabel(t *testing.T) {
	assert.Equal(t, "KSP:NCL", *JobCodeFromCustomerLabel("Acme:KSP:NCL"))
	assert.Equal(t, "NCL", *JobCodeFromCustomerLabel("Acme: NCL "))
	assert.Nil(t, JobCodeFromCustomerLabel("Acme"))
	assert.Nil(t, JobCodeFromCustomerLabel("Acme:"))
}

func TestParseWorkDate(t *testing.T) {
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-04", "3/4/2024", "03/04/2024", "2024-03-04 13:45:00", "04-Mar-2024", "45355"} {
		got, err := parseWorkDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseWorkDate("99999999")
	assert.Error(t, err)
}

func TestNormalizeBatch(t *testing.T) {
	rows := []models.RawRow{
		rowA(2, "5001", "LOC9", "2024-03-04"),
		rowA(3, "", "LOC9", "2024-03-04"),
		rowA(4),
		rowA(5, "5002", "LOC1", "2024-03-04"),
	}
	lines, rejected, err := NormalizeBatch(rows, models.SourceSystemA)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "5002", lines[1].InvoiceNumber)
	require.Len(t, rejected, 1)
	assert.Equal(t, models.RejectedRow{Source: models.SourceSystemA, RowNumber: 3, Reason: "missing invoice number"}, rejected[0])
}
