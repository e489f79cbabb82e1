package staging

import (
	"fmt"
	"strings"

	"github.com/sparkify/starschema/internal/schema"
)

// LakeSources is file globs of raw JSON read by DuckDB.
type LakeSources struct {
	LogGlob  string
	SongGlob string
}

// Default globs relative to input root
const (
	DefaultSongGlob = "song_data/**/*.json"
	DefaultLogGlob  = "log_data/*.json"
)

// lenientCast converts VARCHAR column read from JSON into column type. Blank
// strings and values which can not be converted become NULL.
func lenientCast(c schema.Column) string {
	v := fmt.Sprintf("NULLIF(%s, '')", c.Name)
	switch c.Type {
	case schema.Integer:
		return fmt.Sprintf("TRY_CAST(TRY_CAST(%s AS DOUBLE) AS INTEGER)", v)
	case schema.BigInt:
		return fmt.Sprintf("TRY_CAST(TRY_CAST(%s AS DOUBLE) AS BIGINT)", v)
	case schema.Float:
		return fmt.Sprintf("TRY_CAST(%s AS DOUBLE)", v)
	case schema.Timestamp:
		// epoch milliseconds
		return fmt.Sprintf("epoch_ms(TRY_CAST(TRY_CAST(%s AS DOUBLE) AS BIGINT))", v)
	default:
		return v
	}
}

// JSONInsertStatement loads JSON files matched by glob into table t.
func JSONInsertStatement(t schema.Table, glob string) string {
	var casts, columns []string
	for _, c := range t.Columns {
		casts = append(casts, "    "+lenientCast(c))
		columns = append(columns, fmt.Sprintf("'%s': 'VARCHAR'", c.Name))
	}

	return fmt.Sprintf("INSERT INTO %s (%s)\nSELECT\n%s\nFROM read_json(%s, format = 'auto', columns = {%s});",
		t.Name, strings.Join(t.ColumnNames(), ", "),
		strings.Join(casts, ",\n"),
		quote(glob), strings.Join(columns, ", "))
}

// JSONInsertStatements returns one INSERT per staging table.
func JSONInsertStatements(src LakeSources) []string {
	return []string{
		JSONInsertStatement(schema.StagingEvents, src.LogGlob),
		JSONInsertStatement(schema.StagingSongs, src.SongGlob),
	}
}
