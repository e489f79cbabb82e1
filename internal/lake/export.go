package lake

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sparkify/starschema/internal/rules"
)

// dataFileName is file name of a dataset without partition.
const dataFileName = "data.parquet"

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ExportStatement renders DuckDB COPY writing target table of r as parquet
// under dir. Partitioned datasets are written in hive style directories
// (e.g. songs/year=1994/artist_id=AR5KOSW1187FB35FF4/) and partition columns
// are not stored in files.
func ExportStatement(r rules.Rule, dir string) string {
	projection := append([]string{"*"}, r.Export.Derived...)
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(projection, ", "), r.Target)

	if len(r.Export.Partition) == 0 {
		dst := filepath.Join(dir, r.Export.Dataset, dataFileName)
		return fmt.Sprintf("COPY (%s) TO %s (FORMAT PARQUET);", query, quote(dst))
	}

	dst := filepath.Join(dir, r.Export.Dataset)
	return fmt.Sprintf("COPY (%s) TO %s (FORMAT PARQUET, PARTITION_BY (%s), OVERWRITE_OR_IGNORE true);",
		query, quote(dst), strings.Join(r.Export.Partition, ", "))
}
