package schema

// Table names
const (
	StagingEventsTable = "staging_events"
	StagingSongsTable  = "staging_songs"
	DimUserTable       = "dim_user"
	DimSongTable       = "dim_song"
	DimArtistTable     = "dim_artist"
	DimTimeTable       = "dim_time"
	FactSongplaysTable = "fact_songplays"
)

// StagingEvents mirrors one line of activity log JSON.
var StagingEvents = Table{
	Name: StagingEventsTable,
	Columns: []Column{
		{Name: "artist", Type: Varchar},
		{Name: "auth", Type: Varchar},
		{Name: "firstName", Type: Varchar},
		{Name: "gender", Type: Varchar},
		{Name: "itemInSession", Type: Integer},
		{Name: "lastName", Type: Varchar},
		{Name: "length", Type: Float},
		{Name: "level", Type: Varchar},
		{Name: "location", Type: Varchar},
		{Name: "method", Type: Varchar},
		{Name: "page", Type: Varchar},
		{Name: "registration", Type: BigInt},
		{Name: "sessionId", Type: Integer},
		{Name: "song", Type: Varchar},
		{Name: "status", Type: Integer},
		{Name: "ts", Type: Timestamp},
		{Name: "userAgent", Type: Varchar},
		{Name: "userId", Type: Integer},
	},
}

// StagingSongs mirrors one song catalog JSON document.
var StagingSongs = Table{
	Name: StagingSongsTable,
	Columns: []Column{
		{Name: "song_id", Type: Varchar},
		{Name: "num_songs", Type: Integer},
		{Name: "title", Type: Varchar},
		{Name: "artist_name", Type: Varchar},
		{Name: "artist_latitude", Type: Float},
		{Name: "year", Type: Integer},
		{Name: "duration", Type: Float},
		{Name: "artist_id", Type: Varchar},
		{Name: "artist_longitude", Type: Float},
		{Name: "artist_location", Type: Varchar},
	},
}

// DimUser is user dimension.
var DimUser = Table{
	Name: DimUserTable,
	Columns: []Column{
		{Name: "user_id", Type: Integer, PrimaryKey: true},
		{Name: "first_name", Type: Varchar},
		{Name: "last_name", Type: Varchar},
		{Name: "gender", Type: Varchar},
		{Name: "level", Type: Varchar},
	},
}

// DimSong is song dimension. artist_id refers dim_artist.
var DimSong = Table{
	Name: DimSongTable,
	Columns: []Column{
		{Name: "song_id", Type: Varchar, PrimaryKey: true, DistKey: true},
		{Name: "title", Type: Varchar},
		{Name: "artist_id", Type: Varchar, References: &Reference{Table: DimArtistTable, Column: "artist_id"}},
		{Name: "year", Type: Integer},
		{Name: "duration", Type: Float},
	},
}

// DimArtist is artist dimension.
var DimArtist = Table{
	Name: DimArtistTable,
	Columns: []Column{
		{Name: "artist_id", Type: Varchar, PrimaryKey: true, DistKey: true},
		{Name: "name", Type: Varchar},
		{Name: "location", Type: Varchar},
		{Name: "latitude", Type: Float},
		{Name: "longitude", Type: Float},
	},
}

// DimTime is calendar decomposition of event timestamps.
var DimTime = Table{
	Name: DimTimeTable,
	Columns: []Column{
		{Name: "start_time", Type: Timestamp, PrimaryKey: true, SortKey: true, DistKey: true},
		{Name: "hour", Type: Integer},
		{Name: "day", Type: Integer},
		{Name: "week", Type: Integer},
		{Name: "month", Type: Integer},
		{Name: "year", Type: Integer},
		{Name: "weekday", Type: Integer},
	},
}

// FactSongplays has one row per matched NextSong event. It has no foreign
// key constraint.
var FactSongplays = Table{
	Name: FactSongplaysTable,
	Columns: []Column{
		{Name: "songplay_id", Type: BigInt, PrimaryKey: true, Surrogate: true, SortKey: true},
		{Name: "start_time", Type: Timestamp},
		{Name: "user_id", Type: Integer},
		{Name: "level", Type: Varchar},
		{Name: "song_id", Type: Varchar},
		{Name: "artist_id", Type: Varchar},
		{Name: "session_id", Type: Integer},
		{Name: "location", Type: Varchar},
		{Name: "user_agent", Type: Varchar},
	},
}

// Staging returns staging tables.
func Staging() []Table {
	return []Table{StagingEvents, StagingSongs}
}

// Tables returns all tables in creation order: staging, dimensions (artist
// before song) and fact.
func Tables() []Table {
	return []Table{
		StagingEvents,
		StagingSongs,
		DimArtist,
		DimSong,
		DimUser,
		DimTime,
		FactSongplays,
	}
}

// dropOrder is children before parents.
func dropOrder() []Table {
	return []Table{
		FactSongplays,
		DimSong,
		DimArtist,
		DimUser,
		DimTime,
		StagingEvents,
		StagingSongs,
	}
}

// Lookup finds a table by name.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
