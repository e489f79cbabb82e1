package staging

import (
	"fmt"
	"strings"

	"github.com/sparkify/starschema/internal/schema"
)

// FormatKind is source file format of COPY.
type FormatKind int

// Source file formats
const (
	JSON FormatKind = iota
	CSV
)

// Format describes source files of a staging table.
type Format struct {
	Kind FormatKind
	// JSONPaths is S3 path of jsonpaths manifest. Empty means 'auto'.
	JSONPaths string
	// Delimiter and IgnoreHeader are used by CSV.
	Delimiter    string
	IgnoreHeader int
	// TimeFormat is passed as TIMEFORMAT, e.g. epochmillisecs.
	TimeFormat string
}

// Source is a set of objects loaded into a staging table.
type Source struct {
	Table  string
	Path   string
	Format Format
}

// LoadConfig is parameters of bulk load into Redshift staging tables.
type LoadConfig struct {
	RoleARN     string
	Region      string
	LogData     string
	LogJSONPath string
	SongData    string
}

// Sources returns staging_events and staging_songs sources.
func (x LoadConfig) Sources() []Source {
	return []Source{
		{
			Table: schema.StagingEventsTable,
			Path:  x.LogData,
			Format: Format{
				Kind:       JSON,
				JSONPaths:  x.LogJSONPath,
				TimeFormat: "epochmillisecs",
			},
		},
		{
			Table:  schema.StagingSongsTable,
			Path:   x.SongData,
			Format: Format{Kind: JSON},
		},
	}
}

// Validate checks required fields.
func (x LoadConfig) Validate() error {
	var missing []string
	if x.RoleARN == "" {
		missing = append(missing, "RoleARN")
	}
	if x.Region == "" {
		missing = append(missing, "Region")
	}
	if x.LogData == "" {
		missing = append(missing, "LogData")
	}
	if x.SongData == "" {
		missing = append(missing, "SongData")
	}
	if len(missing) > 0 {
		return fmt.Errorf("Missing load parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}

// quote wraps s by single quotes. Quotes already around a value (as written
// in INI file) are removed first.
func quote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// CopyStatement renders a Redshift COPY command of src.
func CopyStatement(src Source, roleARN, region string) string {
	clauses := []string{
		fmt.Sprintf("COPY %s FROM %s", src.Table, quote(src.Path)),
		fmt.Sprintf("CREDENTIALS %s", quote("aws_iam_role="+roleARN)),
		fmt.Sprintf("REGION %s", quote(region)),
	}

	switch src.Format.Kind {
	case CSV:
		delimiter := src.Format.Delimiter
		if delimiter == "" {
			delimiter = ","
		}
		clauses = append(clauses, fmt.Sprintf("FORMAT AS CSV DELIMITER AS %s", quote(delimiter)))
		if src.Format.IgnoreHeader > 0 {
			clauses = append(clauses, fmt.Sprintf("IGNOREHEADER %d", src.Format.IgnoreHeader))
		}
	default:
		paths := "auto"
		if src.Format.JSONPaths != "" {
			paths = src.Format.JSONPaths
		}
		clauses = append(clauses, fmt.Sprintf("FORMAT AS JSON %s", quote(paths)))
	}

	if src.Format.TimeFormat != "" {
		clauses = append(clauses, fmt.Sprintf("TIMEFORMAT AS %s", quote(src.Format.TimeFormat)))
	}

	return strings.Join(clauses, "\n") + ";"
}

// CopyStatements returns one COPY per staging table.
func CopyStatements(cfg LoadConfig) []string {
	var stmts []string
	for _, src := range cfg.Sources() {
		stmts = append(stmts, CopyStatement(src, cfg.RoleARN, cfg.Region))
	}
	return stmts
}

// Truncate returns statements to empty staging tables before reload.
func Truncate() []string {
	var stmts []string
	for _, t := range schema.Staging() {
		stmts = append(stmts, fmt.Sprintf("TRUNCATE %s;", t.Name))
	}
	return stmts
}
