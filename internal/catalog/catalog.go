// Package catalog holds the warehouse schema the assistant reasons about.
// The schema is embedded as plain text and parsed once at startup; every
// downstream consumer (relevance analysis, prompt composition, the tables
// command) reads from the same parsed Catalog.
package catalog

import (
	"fmt"
	"strings"

	_ "embed"
)

//go:embed schema.txt
var schemaText string

// ColumnSpec describes a single column of a warehouse table.
type ColumnSpec struct {
	Name string
	Type string
}

// TableSpec describes a warehouse table and its columns.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// Catalog is an ordered collection of table specs. Order follows the schema
// text so rendered output is stable across calls.
type Catalog struct {
	tables []TableSpec
	byName map[string]int
}

const tableHeaderPrefix = "Table:"

// Load parses the embedded schema text into a Catalog.
func Load() (*Catalog, error) {
	return Parse(schemaText)
}

// Parse builds a Catalog from schema text. The expected format is stanzas of
//
//	Table: <name>
//	  - <column>: <type>
//
// separated by blank lines. Some stanza headers carry a leading "###" left
// over from markdown editing; the prefix is ignored.
func Parse(text string) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int)}

	var current *TableSpec

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		header := strings.TrimPrefix(line, "###")
		if strings.HasPrefix(header, tableHeaderPrefix) {
			name := strings.TrimSpace(strings.TrimPrefix(header, tableHeaderPrefix))
			if name == "" {
				return nil, fmt.Errorf("schema stanza with empty table name: %q", rawLine)
			}

			if _, exists := c.byName[name]; exists {
				return nil, fmt.Errorf("duplicate table in schema: %s", name)
			}

			c.tables = append(c.tables, TableSpec{Name: name})
			c.byName[name] = len(c.tables) - 1
			current = &c.tables[len(c.tables)-1]

			continue
		}

		if strings.HasPrefix(line, "-") {
			if current == nil {
				return nil, fmt.Errorf("column line before any table header: %q", rawLine)
			}

			body := strings.TrimSpace(strings.TrimPrefix(line, "-"))

			name, colType, found := strings.Cut(body, ":")
			if !found {
				return nil, fmt.Errorf("malformed column line in table %s: %q", current.Name, rawLine)
			}

			current.Columns = append(current.Columns, ColumnSpec{
				Name: strings.TrimSpace(name),
				Type: strings.TrimSpace(colType),
			})

			continue
		}

		return nil, fmt.Errorf("unrecognized schema line: %q", rawLine)
	}

	if len(c.tables) == 0 {
		return nil, fmt.Errorf("schema text contains no tables")
	}

	return c, nil
}

// Tables returns the table specs in schema order.
func (c *Catalog) Tables() []TableSpec {
	return c.tables
}

// TableNames returns all table names in schema order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}

	return names
}

// Lookup returns the spec for a table name, if present.
func (c *Catalog) Lookup(name string) (TableSpec, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return TableSpec{}, false
	}

	return c.tables[idx], true
}

// Has reports whether the catalog contains a table with the given name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// SchemaLine returns the canonical header line for a table, or "" when the
// table is not in the catalog.
func (c *Catalog) SchemaLine(name string) string {
	if !c.Has(name) {
		return ""
	}

	return tableHeaderPrefix + " " + name
}

// Render produces the canonical schema text. Output is deterministic: table
// and column order follow the source text and the "###" markers are dropped.
func (c *Catalog) Render() string {
	var b strings.Builder

	for i, t := range c.tables {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString(tableHeaderPrefix + " " + t.Name + "\n")

		for _, col := range t.Columns {
			b.WriteString("  - " + col.Name + ": " + col.Type + "\n")
		}
	}

	return b.String()
}
