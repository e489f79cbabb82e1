package schema

import (
	"fmt"
	"strings"
)

// Dialect renders table catalog into engine specific DDL.
type Dialect interface {
	Name() string
	ColumnType(t Type) string
	CreateTable(t Table) []string
	DropTable(t Table) []string
}

// Redshift is Dialect for Amazon Redshift. Surrogate key is IDENTITY column
// and DISTKEY/SORTKEY hints are rendered.
var Redshift Dialect = &redshiftDialect{}

// DuckDB is Dialect for embedded DuckDB. Surrogate key is backed by a sequence.
var DuckDB Dialect = &duckDBDialect{}

type redshiftDialect struct{}

func (x *redshiftDialect) Name() string { return "redshift" }

func (x *redshiftDialect) ColumnType(t Type) string {
	switch t {
	case Varchar:
		return "VARCHAR"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Float:
		return "FLOAT"
	case Timestamp:
		return "TIMESTAMP"
	default:
		panic(fmt.Sprintf("Unknown column type: %d", t))
	}
}

func (x *redshiftDialect) CreateTable(t Table) []string {
	return []string{renderCreateTable(t, func(c Column) string {
		def := c.Name + " " + x.ColumnType(c.Type)
		if c.Surrogate {
			def += " IDENTITY(0,1)"
		}
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		if c.SortKey {
			def += " SORTKEY"
		}
		if c.DistKey {
			def += " DISTKEY"
		}
		return def
	})}
}

func (x *redshiftDialect) DropTable(t Table) []string {
	return []string{fmt.Sprintf("DROP TABLE IF EXISTS %s;", t.Name)}
}

type duckDBDialect struct{}

func (x *duckDBDialect) Name() string { return "duckdb" }

func (x *duckDBDialect) ColumnType(t Type) string {
	switch t {
	case Varchar:
		return "VARCHAR"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Float:
		return "DOUBLE"
	case Timestamp:
		return "TIMESTAMP"
	default:
		panic(fmt.Sprintf("Unknown column type: %d", t))
	}
}

// SequenceName returns name of sequence backing surrogate column.
func SequenceName(t Table, c Column) string {
	return fmt.Sprintf("%s_%s_seq", t.Name, c.Name)
}

func (x *duckDBDialect) CreateTable(t Table) []string {
	var stmts []string
	if c, ok := t.Surrogate(); ok {
		stmts = append(stmts, fmt.Sprintf("CREATE SEQUENCE %s START 1;", SequenceName(t, c)))
	}

	stmts = append(stmts, renderCreateTable(t, func(c Column) string {
		def := c.Name + " " + x.ColumnType(c.Type)
		if c.Surrogate {
			def += fmt.Sprintf(" DEFAULT nextval('%s')", SequenceName(t, c))
		}
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		return def
	}))

	return stmts
}

func (x *duckDBDialect) DropTable(t Table) []string {
	stmts := []string{fmt.Sprintf("DROP TABLE IF EXISTS %s;", t.Name)}
	if c, ok := t.Surrogate(); ok {
		stmts = append(stmts, fmt.Sprintf("DROP SEQUENCE IF EXISTS %s;", SequenceName(t, c)))
	}
	return stmts
}

func renderCreateTable(t Table, renderColumn func(c Column) string) string {
	var lines []string
	for _, c := range t.Columns {
		lines = append(lines, "    "+renderColumn(c))
	}
	for _, c := range t.Columns {
		if c.References != nil {
			lines = append(lines, fmt.Sprintf("    FOREIGN KEY(%s) REFERENCES %s(%s)",
				c.Name, c.References.Table, c.References.Column))
		}
	}

	return fmt.Sprintf("CREATE TABLE %s(\n%s\n);", t.Name, strings.Join(lines, ",\n"))
}
