package schema_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/sparkify/starschema/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(stmt string) string {
	fields := strings.Fields(strings.TrimSuffix(stmt, ";"))
	name := fields[len(fields)-1]
	if strings.HasPrefix(stmt, "CREATE TABLE") {
		name = strings.SplitN(fields[2], "(", 2)[0]
	}
	return name
}

func TestCreateAll(t *testing.T) {
	t.Run("Staging, dimension and fact tables are created in order", func(tt *testing.T) {
		stmts := schema.CreateAll(schema.Redshift)
		require.Equal(tt, 7, len(stmts))

		var names []string
		for _, s := range stmts {
			names = append(names, tableOf(s))
		}
		assert.Equal(tt, []string{
			"staging_events", "staging_songs",
			"dim_artist", "dim_song", "dim_user", "dim_time",
			"fact_songplays",
		}, names)
	})

	t.Run("Redshift table has at most one DISTKEY", func(tt *testing.T) {
		for _, s := range schema.CreateAll(schema.Redshift) {
			assert.LessOrEqual(tt, strings.Count(s, "DISTKEY"), 1, s)
		}
	})

	t.Run("Redshift renders identity and physical hints", func(tt *testing.T) {
		stmts := schema.Redshift.CreateTable(schema.FactSongplays)
		require.Equal(tt, 1, len(stmts))
		assert.Contains(tt, stmts[0], "songplay_id BIGINT IDENTITY(0,1) PRIMARY KEY SORTKEY")

		stmts = schema.Redshift.CreateTable(schema.DimTime)
		assert.Contains(tt, stmts[0], "start_time TIMESTAMP PRIMARY KEY SORTKEY DISTKEY")
		stmts = schema.Redshift.CreateTable(schema.DimSong)
		assert.Contains(tt, stmts[0], "FOREIGN KEY(artist_id) REFERENCES dim_artist(artist_id)")
	})

	t.Run("DuckDB creates sequence before fact table", func(tt *testing.T) {
		stmts := schema.DuckDB.CreateTable(schema.FactSongplays)
		require.Equal(tt, 2, len(stmts))
		assert.Equal(tt, "CREATE SEQUENCE fact_songplays_songplay_id_seq START 1;", stmts[0])
		assert.Contains(tt, stmts[1], "DEFAULT nextval('fact_songplays_songplay_id_seq')")
		assert.NotContains(tt, stmts[1], "DISTKEY")
		assert.NotContains(tt, stmts[1], "FLOAT")
	})
}

func TestDropAll(t *testing.T) {
	t.Run("Children are dropped before parents", func(tt *testing.T) {
		stmts := schema.DropAll(schema.Redshift)
		assert.Equal(tt, []string{
			"DROP TABLE IF EXISTS fact_songplays;",
			"DROP TABLE IF EXISTS dim_song;",
			"DROP TABLE IF EXISTS dim_artist;",
			"DROP TABLE IF EXISTS dim_user;",
			"DROP TABLE IF EXISTS dim_time;",
			"DROP TABLE IF EXISTS staging_events;",
			"DROP TABLE IF EXISTS staging_songs;",
		}, stmts)
	})

	t.Run("DuckDB drops sequence after fact table", func(tt *testing.T) {
		stmts := schema.DropAll(schema.DuckDB)
		assert.Equal(tt, "DROP TABLE IF EXISTS fact_songplays;", stmts[0])
		assert.Equal(tt, "DROP SEQUENCE IF EXISTS fact_songplays_songplay_id_seq;", stmts[1])
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer db.Close()

	t.Run("Drop and create leaves empty staging tables", func(tt *testing.T) {
		require.NoError(tt, schema.Reset(ctx, db, schema.DuckDB))
		_, err := db.ExecContext(ctx, "INSERT INTO staging_events (artist, userId) VALUES ('a', 1)")
		require.NoError(tt, err)

		// Second reset works whatever the prior state is
		require.NoError(tt, schema.Reset(ctx, db, schema.DuckDB))

		for _, tbl := range schema.Tables() {
			var n int
			err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", tbl.Name)).Scan(&n)
			require.NoError(tt, err)
			assert.Equal(tt, 0, n, tbl.Name)
		}
	})

	t.Run("Foreign key of dim_song is enforced by DuckDB", func(tt *testing.T) {
		require.NoError(tt, schema.Reset(ctx, db, schema.DuckDB))
		_, err := db.ExecContext(ctx, "INSERT INTO dim_song (song_id, artist_id) VALUES ('S1', 'A-missing')")
		assert.Error(tt, err)
	})

	t.Run("Error names dialect of failed statements", func(tt *testing.T) {
		closed, err := sql.Open("duckdb", "")
		require.NoError(tt, err)
		require.NoError(tt, closed.Close())

		err = schema.Reset(ctx, closed, schema.DuckDB)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "Fail to drop duckdb tables")
	})
}

func TestDialectName(t *testing.T) {
	assert.Equal(t, "redshift", schema.Redshift.Name())
	assert.Equal(t, "duckdb", schema.DuckDB.Name())
}

func TestLookup(t *testing.T) {
	tbl, ok := schema.Lookup("dim_user")
	require.True(t, ok)
	c, ok := tbl.Column("USER_ID")
	require.True(t, ok)
	assert.True(t, c.PrimaryKey)

	_, ok = schema.Lookup("songs")
	assert.False(t, ok)
}
