package lake

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sparkify/starschema/internal"
	"github.com/sparkify/starschema/internal/rules"
	"github.com/sparkify/starschema/internal/schema"
	"github.com/sparkify/starschema/internal/service"
	"github.com/sparkify/starschema/internal/staging"
	"github.com/sparkify/starschema/pkg/models"
)

var logger = internal.Logger

// Lake derives star schema tables from raw JSON with embedded DuckDB and
// writes them as parquet datasets.
type Lake struct {
	db      *sqlx.DB
	s3      *service.S3Service
	region  string
	sources staging.LakeSources
	profile *internal.Profile
}

// Report is result of Run.
type Report struct {
	RunID  string                         `json:"run_id"`
	Output string                         `json:"output"`
	Rows   map[string]int64               `json:"rows"`
	Files  []string                       `json:"files"`
	Steps  map[string]internal.StepResult `json:"steps"`
}

// Open creates in-memory DuckDB. s3 is used for s3:// input and output.
func Open(s3 *service.S3Service, region string) (*Lake, error) {
	db, err := sqlx.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, "Fail to open DuckDB")
	}

	return &Lake{
		db:     db,
		s3:     s3,
		region: region,
		sources: staging.LakeSources{
			LogGlob:  staging.DefaultLogGlob,
			SongGlob: staging.DefaultSongGlob,
		},
		profile: internal.NewProfile(),
	}, nil
}

// SetSources replaces globs of raw JSON, relative to input root.
func (x *Lake) SetSources(src staging.LakeSources) {
	x.sources = src
}

// Close closes DuckDB.
func (x *Lake) Close() error {
	return x.db.Close()
}

func (x *Lake) step(name string, f func() error) error {
	x.profile.Start(name)
	err := f()
	elapsed := x.profile.Stop(name)
	logger.WithFields(logrus.Fields{"step": name, "elapsed": elapsed.String()}).Debug("Step done")
	return err
}

// Run loads raw JSON under input, runs transform rules and writes parquet
// datasets to output. Both input and output can be a local directory or
// s3:// (s3a://) path. Output datasets are overwritten.
func (x *Lake) Run(ctx context.Context, input, output string) (*Report, error) {
	report := &Report{
		RunID:  uuid.New().String(),
		Output: output,
	}

	workDir, err := ioutil.TempDir("", "sparkify-"+report.RunID)
	if err != nil {
		return nil, errors.Wrap(err, "Fail to create work directory")
	}
	defer os.RemoveAll(workDir)

	logger.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"input":  input,
		"output": output,
	}).Info("Start lake ETL")

	inputDir, err := x.resolveInput(input, filepath.Join(workDir, "input"))
	if err != nil {
		return nil, err
	}

	if err := x.step("create_tables", func() error {
		return schema.Reset(ctx, x.db, schema.DuckDB)
	}); err != nil {
		return nil, err
	}

	if err := x.step("load", func() error {
		return x.load(ctx, inputDir)
	}); err != nil {
		return nil, err
	}

	if err := x.Transform(ctx); err != nil {
		return nil, err
	}

	outputDir := output
	if models.IsS3Path(output) {
		outputDir = filepath.Join(workDir, "output")
	}
	if err := x.step("export", func() error {
		return x.Export(ctx, outputDir)
	}); err != nil {
		return nil, err
	}

	if models.IsS3Path(output) {
		if err := x.step("upload", func() error {
			return x.upload(outputDir, output)
		}); err != nil {
			return nil, err
		}
	}

	if report.Rows, err = x.Count(ctx); err != nil {
		return nil, err
	}
	if report.Files, err = listFiles(outputDir); err != nil {
		return nil, err
	}
	report.Steps = x.profile.Pack()

	logger.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"files":  len(report.Files),
	}).WithFields(x.profile.Fields()).Info("Done lake ETL")

	return report, nil
}

func (x *Lake) resolveInput(input, dir string) (string, error) {
	if !models.IsS3Path(input) {
		return input, nil
	}

	root, err := models.ParseS3Path(x.region, input)
	if err != nil {
		return "", err
	}

	err = x.step("download", func() error {
		for _, prefix := range downloadPrefixes(x.sources) {
			src := *root
			if prefix != "" {
				src = root.AppendKey(prefix)
			}
			src.Key = src.Prefix()

			n, err := x.s3.DownloadPrefix(src, filepath.Join(dir, filepath.FromSlash(prefix)))
			if err != nil {
				return errors.Wrapf(err, "Fail to download %s", src.Path())
			}
			logger.WithFields(logrus.Fields{"prefix": src.Path(), "count": n}).Info("Downloaded raw data")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return dir, nil
}

// globRoot returns leading directories of glob having no wildcard, e.g.
// "song_data" of "song_data/**/*.json".
func globRoot(glob string) string {
	var dirs []string
	parts := strings.Split(path.Clean(filepath.ToSlash(glob)), "/")
	for _, p := range parts[:len(parts)-1] {
		if strings.ContainsAny(p, "*?[{") {
			break
		}
		dirs = append(dirs, p)
	}
	return strings.Join(dirs, "/")
}

// downloadPrefixes returns S3 key prefixes, relative to input root, covering
// both globs of src. Empty prefix means whole input root.
func downloadPrefixes(src staging.LakeSources) []string {
	var prefixes []string
	for _, glob := range []string{src.SongGlob, src.LogGlob} {
		root := globRoot(glob)

		covered := false
		for i, p := range prefixes {
			switch {
			case p == "" || p == root || strings.HasPrefix(root, p+"/"):
				covered = true
			case root == "" || strings.HasPrefix(p, root+"/"):
				prefixes[i] = root
				covered = true
			}
		}
		if !covered {
			prefixes = append(prefixes, root)
		}
	}
	return prefixes
}

func (x *Lake) load(ctx context.Context, dir string) error {
	stmts := staging.JSONInsertStatements(staging.LakeSources{
		LogGlob:  filepath.Join(dir, x.sources.LogGlob),
		SongGlob: filepath.Join(dir, x.sources.SongGlob),
	})
	if err := schema.Exec(ctx, x.db, stmts); err != nil {
		return errors.Wrapf(err, "Fail to load raw data from %s", dir)
	}
	return nil
}

// Transform empties derived tables and runs rules in dependency order on
// loaded staging tables.
func (x *Lake) Transform(ctx context.Context) error {
	ordered, err := rules.Ordered()
	if err != nil {
		return err
	}

	if err := x.step("transform/clear", func() error {
		return schema.Exec(ctx, x.db, rules.ClearStatements(ordered))
	}); err != nil {
		return errors.Wrap(err, "Fail to clear derived tables")
	}

	for _, r := range ordered {
		if err := x.step("transform/"+r.Name, func() error {
			_, err := x.db.ExecContext(ctx, rules.InsertStatement(r))
			return err
		}); err != nil {
			return errors.Wrapf(err, "Fail to run transform rule %s into %s", r.Name, r.Target)
		}
	}

	return nil
}

// Export writes every derived table under dir.
func (x *Lake) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "Fail to create %s", dir)
	}

	for _, r := range rules.All() {
		dst := filepath.Join(dir, r.Export.Dataset)
		if err := os.RemoveAll(dst); err != nil {
			return errors.Wrapf(err, "Fail to clean %s", dst)
		}
		if len(r.Export.Partition) == 0 {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return errors.Wrapf(err, "Fail to create %s", dst)
			}
		}

		if _, err := x.db.ExecContext(ctx, ExportStatement(r, dir)); err != nil {
			return errors.Wrapf(err, "Fail to export %s", r.Target)
		}
		logger.WithFields(logrus.Fields{"table": r.Target, "dataset": dst}).Info("Exported")
	}
	return nil
}

func (x *Lake) upload(dir, output string) error {
	dst, err := models.ParseS3Path(x.region, output)
	if err != nil {
		return err
	}

	for _, r := range rules.All() {
		prefix := dst.AppendKey(r.Export.Dataset)
		prefix.Key = prefix.Prefix()
		if err := x.s3.DeletePrefix(prefix); err != nil {
			return errors.Wrapf(err, "Fail to clean %s", prefix.Path())
		}
	}

	n, err := x.s3.UploadDir(dir, *dst)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"output": dst.Path(), "count": n}).Info("Uploaded datasets")
	return nil
}

// Count returns number of rows of each table.
func (x *Lake) Count(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, t := range schema.Tables() {
		var n int64
		if err := x.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Name)); err != nil {
			return nil, errors.Wrapf(err, "Fail to count rows of %s", t.Name)
		}
		counts[t.Name] = n
	}
	return counts, nil
}

func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to list files in %s", dir)
	}
	return files, nil
}
