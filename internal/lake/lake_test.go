package lake_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sparkify/starschema/internal/lake"
	"github.com/sparkify/starschema/internal/mock"
	"github.com/sparkify/starschema/internal/rules"
	"github.com/sparkify/starschema/internal/service"
	"github.com/sparkify/starschema/internal/staging"
	"github.com/sparkify/starschema/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLake(t *testing.T) *lake.Lake {
	lk, err := lake.Open(service.NewS3Service(mock.NewS3Client), "us-west-2")
	require.NoError(t, err)
	return lk
}

func hasFile(files []string, prefix string) bool {
	for _, f := range files {
		if strings.HasPrefix(f, prefix) && strings.HasSuffix(f, ".parquet") {
			return true
		}
	}
	return false
}

func TestExportStatement(t *testing.T) {
	t.Run("Dataset without partition is written as single file", func(tt *testing.T) {
		r, ok := rules.Lookup(rules.DimUser)
		require.True(tt, ok)
		assert.Equal(tt, "COPY (SELECT * FROM dim_user) TO '/out/users/data.parquet' (FORMAT PARQUET);",
			lake.ExportStatement(r, "/out"))
	})

	t.Run("Songplays are partitioned by derived year and month", func(tt *testing.T) {
		r, ok := rules.Lookup(rules.FactSongplay)
		require.True(tt, ok)
		assert.Equal(tt, "COPY (SELECT *, EXTRACT(year FROM start_time) AS year, EXTRACT(month FROM start_time) AS month FROM fact_songplays) "+
			"TO '/out/songplays' (FORMAT PARQUET, PARTITION_BY (year, month), OVERWRITE_OR_IGNORE true);",
			lake.ExportStatement(r, "/out"))
	})
}

func TestGlobRoot(t *testing.T) {
	assert.Equal(t, "song_data", lake.GlobRoot(staging.DefaultSongGlob))
	assert.Equal(t, "log_data", lake.GlobRoot(staging.DefaultLogGlob))
	assert.Equal(t, "v2/events/2018", lake.GlobRoot("v2/events/2018/*-events.json"))
	assert.Equal(t, "v2", lake.GlobRoot("v2/song?data/*.json"))
	assert.Equal(t, "", lake.GlobRoot("*.json"))
	assert.Equal(t, "", lake.GlobRoot("{a,b}/*.json"))
}

func TestDownloadPrefixes(t *testing.T) {
	t.Run("Default globs download two prefixes", func(tt *testing.T) {
		assert.Equal(tt, []string{"song_data", "log_data"}, lake.DownloadPrefixes(staging.LakeSources{
			SongGlob: staging.DefaultSongGlob,
			LogGlob:  staging.DefaultLogGlob,
		}))
	})

	t.Run("Same root is downloaded once", func(tt *testing.T) {
		assert.Equal(tt, []string{"raw"}, lake.DownloadPrefixes(staging.LakeSources{
			SongGlob: "raw/*/song-*.json",
			LogGlob:  "raw/*/event-*.json",
		}))
	})

	t.Run("Parent root covers nested root", func(tt *testing.T) {
		assert.Equal(tt, []string{"v2"}, lake.DownloadPrefixes(staging.LakeSources{
			SongGlob: "v2/songs/**/*.json",
			LogGlob:  "v2/*.json",
		}))
	})

	t.Run("Glob without fixed directory downloads whole input", func(tt *testing.T) {
		assert.Equal(tt, []string{""}, lake.DownloadPrefixes(staging.LakeSources{
			SongGlob: "song_data/**/*.json",
			LogGlob:  "**/events.json",
		}))
	})
}

func TestRunLocal(t *testing.T) {
	ctx := context.Background()
	input := t.TempDir()
	output := t.TempDir()
	testutil.WriteSampleDataset(t, input)

	lk := newLake(t)
	defer lk.Close()

	report, err := lk.Run(ctx, input, output)
	require.NoError(t, err)

	t.Run("Row counts of all tables", func(tt *testing.T) {
		assert.Equal(tt, testutil.SampleDatasetRows, report.Rows)
		assert.NotEmpty(tt, report.RunID)
		assert.Contains(tt, report.Steps, "transform/fact_songplay")
	})

	t.Run("Datasets are written in partitioned layout", func(tt *testing.T) {
		assert.Contains(tt, report.Files, "users/data.parquet")
		assert.Contains(tt, report.Files, "artists/data.parquet")
		assert.True(tt, hasFile(report.Files, "songs/year=1994/artist_id=AR5KOSW1187FB35FF4/"), report.Files)
		assert.True(tt, hasFile(report.Files, "time/year=2018/month=11/"), report.Files)
		assert.True(tt, hasFile(report.Files, "songplays/year=2018/month=11/"), report.Files)
	})

	t.Run("Written songplays can be read back", func(tt *testing.T) {
		db, err := sqlx.Open("duckdb", "")
		require.NoError(tt, err)
		defer db.Close()

		var n int64
		glob := filepath.Join(output, "songplays", "**", "*.parquet")
		require.NoError(tt, db.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s', hive_partitioning = true) WHERE song_id = 'SOBONKR12A58A7A7E0'", glob)))
		assert.Equal(tt, int64(2), n)
	})

	t.Run("Transform again keeps row counts", func(tt *testing.T) {
		require.NoError(tt, lk.Transform(ctx))
		counts, err := lk.Count(ctx)
		require.NoError(tt, err)
		assert.Equal(tt, testutil.SampleDatasetRows, counts)
	})

	t.Run("Second run overwrites datasets", func(tt *testing.T) {
		again, err := lk.Run(ctx, input, output)
		require.NoError(tt, err)
		assert.Equal(tt, testutil.SampleDatasetRows, again.Rows)
		assert.Equal(tt, report.Files, again.Files)
	})
}

func TestRunS3(t *testing.T) {
	ctx := context.Background()
	bucket := uuid.New().String()
	client := mock.NewS3Client("us-west-2")
	testutil.PutSampleDataset(t, client, bucket, "raw/")

	lk := newLake(t)
	defer lk.Close()

	report, err := lk.Run(ctx, "s3a://"+bucket+"/raw/", "s3://"+bucket+"/star")
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleDatasetRows, report.Rows)

	out, err := client.ListObjectsV2(&s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String("star/"),
	})
	require.NoError(t, err)

	var keys []string
	for _, obj := range out.Contents {
		keys = append(keys, strings.TrimPrefix(aws.StringValue(obj.Key), "star/"))
	}
	assert.Equal(t, len(report.Files), len(keys))
	assert.Contains(t, keys, "users/data.parquet")
	assert.True(t, hasFile(keys, "songplays/year=2018/month=11/"), keys)
}

func TestRunS3CustomGlobs(t *testing.T) {
	ctx := context.Background()
	bucket := uuid.New().String()
	client := mock.NewS3Client("us-west-2")
	testutil.PutSampleDataset(t, client, bucket, "raw/v2/")

	lk := newLake(t)
	defer lk.Close()

	t.Run("Raw data under globs is downloaded and loaded", func(tt *testing.T) {
		lk.SetSources(staging.LakeSources{
			SongGlob: "v2/" + staging.DefaultSongGlob,
			LogGlob:  "v2/" + staging.DefaultLogGlob,
		})
		report, err := lk.Run(ctx, "s3://"+bucket+"/raw/", filepath.Join(tt.TempDir(), "out"))
		require.NoError(tt, err)
		assert.Equal(tt, testutil.SampleDatasetRows, report.Rows)
	})

	t.Run("Glob matching nothing fails to load", func(tt *testing.T) {
		lk.SetSources(staging.LakeSources{
			SongGlob: "v3/" + staging.DefaultSongGlob,
			LogGlob:  "v3/" + staging.DefaultLogGlob,
		})
		_, err := lk.Run(ctx, "s3://"+bucket+"/raw/", filepath.Join(tt.TempDir(), "out"))
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "Fail to load raw data")
	})
}

func TestRunMissingInput(t *testing.T) {
	lk := newLake(t)
	defer lk.Close()

	_, err := lk.Run(context.Background(), filepath.Join(t.TempDir(), "nothing"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fail to load raw data")
}
