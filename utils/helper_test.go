package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilIfBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "NaN", "nan", "NULL", "#N/A"} {
		assert.Nil(t, NilIfBlank(in), "input %q", in)
	}
	got := NilIfBlank("  CA100 ")
	require.NotNil(t, got)
	assert.Equal(t, "CA100", *got)
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 1,234.50 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.5")))

	_, err = ParseDecimal("")
	assert.Error(t, err)
	_, err = ParseDecimal("twelve")
	assert.Error(t, err)
}

func TestPtrEqual(t *testing.T) {
	a, b := "x", "x"
	assert.True(t, PtrEqual[string](nil, nil))
	assert.True(t, PtrEqual(&a, &b))
	assert.False(t, PtrEqual(&a, nil))
}

func TestSplitGCSPath(t *testing.T) {
	bucket, object, err := SplitGCSPath("gs://ref-data/2024/reference.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "ref-data", bucket)
	assert.Equal(t, "2024/reference.xlsx", object)

	_, _, err = SplitGCSPath("gs://only-bucket")
	assert.Error(t, err)
	_, _, err = SplitGCSPath("/tmp/file.xlsx")
	assert.Error(t, err)
}

func TestUniqueSlice(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, UniqueSlice([]string{"b", "a", "b"}))
}
