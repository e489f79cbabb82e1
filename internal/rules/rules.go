package rules

import (
	"fmt"
	"strings"

	"github.com/sparkify/starschema/internal/schema"
)

// Rule is a derivation from staging tables into one dimension or fact table.
// Select is plain SQL accepted by both Redshift and DuckDB.
type Rule struct {
	Name   string
	Target string
	// Inputs are tables read by Select.
	Inputs []string
	// After are tables that must be populated before the rule runs (e.g.
	// foreign key parents). They are not read by Select.
	After []string
	// Columns are target columns filled by Select, in projection order.
	Columns []string
	Select  string
	// Surrogate is a target column assigned by the engine.
	Surrogate string
	Export    Export
}

// Export describes how the lake writes the target table as parquet.
type Export struct {
	Dataset   string
	Partition []string
	// Derived are additional projections available as partition columns.
	Derived []string
}

// Rule names
const (
	DimUser      = "dim_user"
	DimSong      = "dim_song"
	DimArtist    = "dim_artist"
	DimTime      = "dim_time"
	FactSongplay = "fact_songplay"
)

var dimUser = Rule{
	Name:    DimUser,
	Target:  schema.DimUserTable,
	Inputs:  []string{schema.StagingEventsTable},
	Columns: []string{"user_id", "first_name", "last_name", "gender", "level"},
	// Latest event of each user decides level.
	Select: `SELECT user_id, first_name, last_name, gender, level
FROM (
    SELECT
        userId    AS user_id,
        firstName AS first_name,
        lastName  AS last_name,
        gender    AS gender,
        level     AS level,
        ROW_NUMBER() OVER (PARTITION BY userId ORDER BY ts DESC NULLS LAST, level) AS seq
    FROM staging_events
    WHERE userId IS NOT NULL
) latest
WHERE seq = 1`,
	Export: Export{Dataset: "users"},
}

var dimSong = Rule{
	Name:    DimSong,
	Target:  schema.DimSongTable,
	Inputs:  []string{schema.StagingSongsTable},
	After:   []string{schema.DimArtistTable},
	Columns: []string{"song_id", "title", "artist_id", "year", "duration"},
	Select: `SELECT song_id, title, artist_id, year, duration
FROM (
    SELECT
        song_id, title, artist_id, year, duration,
        ROW_NUMBER() OVER (PARTITION BY song_id ORDER BY year DESC NULLS LAST, title) AS seq
    FROM staging_songs
    WHERE song_id IS NOT NULL
) uniq
WHERE seq = 1`,
	Export: Export{Dataset: "songs", Partition: []string{"year", "artist_id"}},
}

var dimArtist = Rule{
	Name:    DimArtist,
	Target:  schema.DimArtistTable,
	Inputs:  []string{schema.StagingSongsTable},
	Columns: []string{"artist_id", "name", "location", "latitude", "longitude"},
	Select: `SELECT artist_id, name, location, latitude, longitude
FROM (
    SELECT
        artist_id        AS artist_id,
        artist_name      AS name,
        artist_location  AS location,
        artist_latitude  AS latitude,
        artist_longitude AS longitude,
        ROW_NUMBER() OVER (PARTITION BY artist_id ORDER BY artist_name, artist_location) AS seq
    FROM staging_songs
    WHERE artist_id IS NOT NULL
) uniq
WHERE seq = 1`,
	Export: Export{Dataset: "artists"},
}

// week is ISO-8601 week number and weekday is 0 (Sunday) to 6 (Saturday) on
// both engines.
var dimTime = Rule{
	Name:    DimTime,
	Target:  schema.DimTimeTable,
	Inputs:  []string{schema.StagingEventsTable},
	Columns: []string{"start_time", "hour", "day", "week", "month", "year", "weekday"},
	Select: `SELECT
    ts                     AS start_time,
    EXTRACT(hour FROM ts)  AS hour,
    EXTRACT(day FROM ts)   AS day,
    EXTRACT(week FROM ts)  AS week,
    EXTRACT(month FROM ts) AS month,
    EXTRACT(year FROM ts)  AS year,
    EXTRACT(dow FROM ts)   AS weekday
FROM (
    SELECT DISTINCT ts FROM staging_events WHERE ts IS NOT NULL
) events`,
	Export: Export{Dataset: "time", Partition: []string{"year", "month"}},
}

// Title and artist name are matched exactly, unmatched plays are dropped.
var factSongplay = Rule{
	Name:      FactSongplay,
	Target:    schema.FactSongplaysTable,
	Inputs:    []string{schema.StagingEventsTable, schema.StagingSongsTable},
	After:     []string{schema.DimSongTable, schema.DimArtistTable},
	Columns:   []string{"start_time", "user_id", "level", "song_id", "artist_id", "session_id", "location", "user_agent"},
	Surrogate: "songplay_id",
	Select: `SELECT DISTINCT
    e.ts        AS start_time,
    e.userId    AS user_id,
    e.level     AS level,
    s.song_id   AS song_id,
    s.artist_id AS artist_id,
    e.sessionId AS session_id,
    e.location  AS location,
    e.userAgent AS user_agent
FROM staging_events e
JOIN staging_songs s ON (e.song = s.title AND e.artist = s.artist_name)
WHERE e.page = 'NextSong'`,
	Export: Export{
		Dataset:   "songplays",
		Partition: []string{"year", "month"},
		Derived: []string{
			"EXTRACT(year FROM start_time) AS year",
			"EXTRACT(month FROM start_time) AS month",
		},
	},
}

// All returns the five rules in definition order.
func All() []Rule {
	return []Rule{dimUser, dimSong, dimArtist, dimTime, factSongplay}
}

// Lookup finds a rule by name.
func Lookup(name string) (Rule, bool) {
	for _, r := range All() {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// InsertStatement renders INSERT INTO target (columns) SELECT ...
func InsertStatement(r Rule) string {
	return fmt.Sprintf("INSERT INTO %s (%s)\n%s;", r.Target, strings.Join(r.Columns, ", "), r.Select)
}

// ClearStatements renders DELETE of every target of rules in reverse order,
// so fact and child tables are emptied before their parents. rules should be
// in the order returned by Order.
func ClearStatements(rules []Rule) []string {
	stmts := make([]string, 0, len(rules))
	for i := len(rules) - 1; i >= 0; i-- {
		stmts = append(stmts, fmt.Sprintf("DELETE FROM %s;", rules[i].Target))
	}
	return stmts
}
