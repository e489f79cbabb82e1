package warehouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sparkify/starschema/internal/rules"
	"github.com/sparkify/starschema/internal/schema"
	"github.com/sparkify/starschema/internal/staging"
	"github.com/sparkify/starschema/internal/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*warehouse.Warehouse, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	return warehouse.New(sqlx.NewDb(db, "sqlmock")), mock
}

var loadConfig = staging.LoadConfig{
	RoleARN:     "arn:aws:iam::123456789012:role/dwhRole",
	Region:      "us-west-2",
	LogData:     "s3://udacity-dend/log_data",
	LogJSONPath: "s3://udacity-dend/log_json_path.json",
	SongData:    "s3://udacity-dend/song_data",
}

func TestCreateTables(t *testing.T) {
	ctx := context.Background()

	t.Run("Drop all then create all", func(tt *testing.T) {
		wh, mock := newMock(tt)
		for _, stmt := range append(schema.DropAll(schema.Redshift), schema.CreateAll(schema.Redshift)...) {
			mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(tt, wh.CreateTables(ctx))
		assert.NoError(tt, mock.ExpectationsWereMet())
		assert.Contains(tt, wh.Profile().Pack(), "create_tables")
	})

	t.Run("Rejected statement stops creation", func(tt *testing.T) {
		wh, mock := newMock(tt)
		drops := schema.DropAll(schema.Redshift)
		mock.ExpectExec(drops[0]).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(drops[1]).WillReturnError(errors.New("permission denied"))

		err := wh.CreateTables(ctx)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "permission denied")
		assert.NoError(tt, mock.ExpectationsWereMet())
	})
}

func TestETL(t *testing.T) {
	ctx := context.Background()

	t.Run("Copy staging tables then run rules in order", func(tt *testing.T) {
		wh, mock := newMock(tt)
		for _, stmt := range staging.CopyStatements(loadConfig) {
			mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		ordered, err := rules.Ordered()
		require.NoError(tt, err)
		for _, stmt := range rules.ClearStatements(ordered) {
			mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		for _, r := range ordered {
			mock.ExpectExec(rules.InsertStatement(r)).WillReturnResult(sqlmock.NewResult(0, 10))
		}

		require.NoError(tt, wh.ETL(ctx, loadConfig))
		assert.NoError(tt, mock.ExpectationsWereMet())

		steps := wh.Profile().Pack()
		assert.Contains(tt, steps, "load/staging_events")
		assert.Contains(tt, steps, "transform/fact_songplay")
	})

	t.Run("Failed rule aborts the batch", func(tt *testing.T) {
		wh, mock := newMock(tt)
		ordered, err := rules.Ordered()
		require.NoError(tt, err)
		for _, stmt := range rules.ClearStatements(ordered) {
			mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectExec(rules.InsertStatement(ordered[0])).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(rules.InsertStatement(ordered[1])).WillReturnError(errors.New("syntax error"))

		err = wh.Transform(ctx)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), ordered[1].Name)
		assert.NoError(tt, mock.ExpectationsWereMet())
	})

	t.Run("Second transform deletes derived rows before inserting again", func(tt *testing.T) {
		wh, mock := newMock(tt)
		ordered, err := rules.Ordered()
		require.NoError(tt, err)
		for i := 0; i < 2; i++ {
			mock.ExpectExec("DELETE FROM fact_songplays;").WillReturnResult(sqlmock.NewResult(0, int64(i)))
			mock.ExpectExec("DELETE FROM dim_song;").WillReturnResult(sqlmock.NewResult(0, int64(i)))
			mock.ExpectExec("DELETE FROM dim_time;").WillReturnResult(sqlmock.NewResult(0, int64(i)))
			mock.ExpectExec("DELETE FROM dim_artist;").WillReturnResult(sqlmock.NewResult(0, int64(i)))
			mock.ExpectExec("DELETE FROM dim_user;").WillReturnResult(sqlmock.NewResult(0, int64(i)))
			for _, r := range ordered {
				mock.ExpectExec(rules.InsertStatement(r)).WillReturnResult(sqlmock.NewResult(0, 1))
			}
		}

		require.NoError(tt, wh.Transform(ctx))
		require.NoError(tt, wh.Transform(ctx))
		assert.NoError(tt, mock.ExpectationsWereMet())
	})

	t.Run("Failed clear issues no insert", func(tt *testing.T) {
		wh, mock := newMock(tt)
		mock.ExpectExec("DELETE FROM fact_songplays;").WillReturnError(errors.New("permission denied"))

		err := wh.Transform(ctx)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "Fail to clear derived tables")
		assert.NoError(tt, mock.ExpectationsWereMet())
	})

	t.Run("Invalid load config issues no statement", func(tt *testing.T) {
		wh, mock := newMock(tt)
		err := wh.Load(ctx, staging.LoadConfig{Region: "us-west-2"})
		require.Error(tt, err)
		assert.NoError(tt, mock.ExpectationsWereMet())
	})
}

func TestTruncateAndCount(t *testing.T) {
	ctx := context.Background()
	wh, mock := newMock(t)

	for _, stmt := range staging.Truncate() {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for i, tbl := range schema.Tables() {
		mock.ExpectQuery("SELECT COUNT(*) FROM " + tbl.Name).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(i))
	}

	require.NoError(t, wh.Truncate(ctx))
	counts, err := wh.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts["staging_events"])
	assert.Equal(t, int64(6), counts["fact_songplays"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
