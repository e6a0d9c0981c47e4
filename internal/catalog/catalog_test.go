package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedSchema(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Len(t, c.Tables(), 60)

	// Spot-check tables referenced by the relevance table lists
	for _, name := range []string{
		"abacus_3pl_daily_summary",
		"master",
		"ro_master",
		"store_info",
		"retail_calendar",
	} {
		assert.True(t, c.Has(name), "missing table %s", name)
	}

	master, ok := c.Lookup("master")
	require.True(t, ok)
	assert.Equal(t, []ColumnSpec{
		{Name: "sales_date", Type: "date"},
		{Name: "store_name", Type: "string"},
		{Name: "net_sales", Type: "decimal(9,2)"},
		{Name: "gross_sales", Type: "decimal(9,2)"},
		{Name: "txns", Type: "int"},
	}, master.Columns)
}

func TestParseMarkdownPrefixedHeader(t *testing.T) {
	c, err := Parse("###Table: sample\n  - id: int\n")
	require.NoError(t, err)

	spec, ok := c.Lookup("sample")
	require.True(t, ok)
	assert.Equal(t, "sample", spec.Name)
	assert.Equal(t, []ColumnSpec{{Name: "id", Type: "int"}}, spec.Columns)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		errorContains string
	}{
		{
			name:          "empty schema",
			input:         "\n\n",
			errorContains: "no tables",
		},
		{
			name:          "duplicate table",
			input:         "Table: a\n  - id: int\nTable: a\n  - id: int\n",
			errorContains: "duplicate table",
		},
		{
			name:          "column before header",
			input:         "  - id: int\n",
			errorContains: "before any table header",
		},
		{
			name:          "malformed column",
			input:         "Table: a\n  - broken line\n",
			errorContains: "malformed column",
		},
		{
			name:          "unrecognized line",
			input:         "Table: a\nnot a column\n",
			errorContains: "unrecognized schema line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestRenderStable(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	first := c.Render()
	second := c.Render()
	assert.Equal(t, first, second)

	// Render output round-trips through Parse
	reparsed, err := Parse(first)
	require.NoError(t, err)
	assert.Equal(t, c.TableNames(), reparsed.TableNames())
}

func TestSchemaLine(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Table: master", c.SchemaLine("master"))
	assert.Equal(t, "Table: abacus_3pl_daily_summary", c.SchemaLine("abacus_3pl_daily_summary"))
	assert.Empty(t, c.SchemaLine("not_a_table"))
}

func TestTableNamesOrder(t *testing.T) {
	c, err := Parse("Table: b\n  - id: int\nTable: a\n  - id: int\n")
	require.NoError(t, err)

	// Insertion order, not sorted
	assert.Equal(t, []string{"b", "a"}, c.TableNames())
}
