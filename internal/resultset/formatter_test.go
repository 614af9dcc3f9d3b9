package resultset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptql/internal/types"
)

func TestHumanPrinter(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatHuman, &buf, []string{"id", "name"})
	require.NoError(t, err)

	require.NoError(t, p.WriteRow([]types.Value{types.IntValue(1), types.TextValue("alice")}))
	require.NoError(t, p.WriteRow([]types.Value{types.IntValue(2), types.NullValue(types.Text)}))
	require.NoError(t, p.Close())

	assert.Equal(t, "id\tname\n1\talice\n2\tNULL\n", buf.String())
}

func TestJSONPrinterEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatJSON, &buf, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.Equal(t, "[]", buf.String())
}

func TestJSONPrinterRows(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatJSON, &buf, []string{"n"})
	require.NoError(t, err)
	require.NoError(t, p.WriteRow([]types.Value{types.BigIntValue(42)}))
	require.NoError(t, p.WriteRow([]types.Value{types.BigIntValue(43)}))
	require.NoError(t, p.Close())
	assert.JSONEq(t, `[{"n":42},{"n":43}]`, buf.String())
}

func TestSQLPrinterQuotesText(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatSQL, &buf, nil)
	require.NoError(t, err)
	require.NoError(t, p.WriteRow([]types.Value{types.TextValue("o'brien"), types.BoolValue(true)}))
	require.NoError(t, p.Close())
	assert.Equal(t, "('o''brien', true)\n", buf.String())
}

func TestSQLPrinterDateLiteral(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(FormatSQL, &buf, nil)
	require.NoError(t, err)
	require.NoError(t, p.WriteRow([]types.Value{types.DateValue(types.CivilDay(2021, 1, 29))}))
	require.NoError(t, p.Close())
	assert.Equal(t, "(DATE '2021-01-29')\n", buf.String())
}

func TestNewPrinterUnsupportedFormat(t *testing.T) {
	_, err := NewPrinter("xml", &bytes.Buffer{}, nil)
	assert.Error(t, err)
}
