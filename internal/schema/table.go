package schema

import "strings"

// Type is logical column type. Dialect maps it to an engine native type.
type Type int

// Logical column types used by the star schema.
const (
	Varchar Type = iota
	Integer
	BigInt
	Float
	Timestamp
)

// Reference is a foreign key target.
type Reference struct {
	Table  string
	Column string
}

// Column is definition of a table column. Columns are nullable except
// primary key.
type Column struct {
	Name       string
	Type       Type
	PrimaryKey bool
	// Surrogate column is filled by the engine (IDENTITY or sequence).
	Surrogate bool
	// DistKey and SortKey are physical hints, only Redshift renders them.
	DistKey    bool
	SortKey    bool
	References *Reference
}

// Table is definition of a staging, dimension or fact table.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns all column names in defined order.
func (x Table) ColumnNames() []string {
	names := make([]string, len(x.Columns))
	for i, c := range x.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name (case insensitive).
func (x Table) Column(name string) (Column, bool) {
	for _, c := range x.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Surrogate returns surrogate key column if the table has it.
func (x Table) Surrogate() (Column, bool) {
	for _, c := range x.Columns {
		if c.Surrogate {
			return c, true
		}
	}
	return Column{}, false
}
