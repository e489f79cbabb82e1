package models

// Record is interface of rows stored in lake output parquet files.
type Record interface{}

// Output parquet files of the lake do not contain partition columns because
// they are encoded in the hive style path (e.g. year=2018/month=11/). Then
// partition columns are not defined in records below.

// SongRecord is a row of songs/ parquet files, partitioned by year and artist_id.
type SongRecord struct {
	SongID   *string  `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"song_id"`
	Title    *string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"title"`
	Duration *float64 `parquet:"name=duration, type=DOUBLE, repetitiontype=OPTIONAL" json:"duration"`
}

// ArtistRecord is a row of artists/ parquet files.
type ArtistRecord struct {
	ArtistID  *string  `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"artist_id"`
	Name      *string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"name"`
	Location  *string  `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"location"`
	Latitude  *float64 `parquet:"name=latitude, type=DOUBLE, repetitiontype=OPTIONAL" json:"latitude"`
	Longitude *float64 `parquet:"name=longitude, type=DOUBLE, repetitiontype=OPTIONAL" json:"longitude"`
}

// UserRecord is a row of users/ parquet files.
type UserRecord struct {
	UserID    *int32  `parquet:"name=user_id, type=INT32, repetitiontype=OPTIONAL" json:"user_id"`
	FirstName *string `parquet:"name=first_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"first_name"`
	LastName  *string `parquet:"name=last_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"last_name"`
	Gender    *string `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"gender"`
	Level     *string `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"level"`
}

// TimeRecord is a row of time/ parquet files, partitioned by year and month.
type TimeRecord struct {
	// StartTime is microseconds since unix epoch.
	StartTime *int64 `parquet:"name=start_time, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL" json:"start_time"`
	Hour      *int32 `parquet:"name=hour, type=INT32, repetitiontype=OPTIONAL" json:"hour"`
	Day       *int32 `parquet:"name=day, type=INT32, repetitiontype=OPTIONAL" json:"day"`
	Week      *int32 `parquet:"name=week, type=INT32, repetitiontype=OPTIONAL" json:"week"`
	Weekday   *int32 `parquet:"name=weekday, type=INT32, repetitiontype=OPTIONAL" json:"weekday"`
}

// SongplayRecord is a row of songplays/ parquet files, partitioned by year and month.
type SongplayRecord struct {
	SongplayID *int64  `parquet:"name=songplay_id, type=INT64, repetitiontype=OPTIONAL" json:"songplay_id"`
	StartTime  *int64  `parquet:"name=start_time, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL" json:"start_time"`
	UserID     *int32  `parquet:"name=user_id, type=INT32, repetitiontype=OPTIONAL" json:"user_id"`
	Level      *string `parquet:"name=level, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"level"`
	SongID     *string `parquet:"name=song_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"song_id"`
	ArtistID   *string `parquet:"name=artist_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"artist_id"`
	SessionID  *int32  `parquet:"name=session_id, type=INT32, repetitiontype=OPTIONAL" json:"session_id"`
	Location   *string `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"location"`
	UserAgent  *string `parquet:"name=user_agent, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL" json:"user_agent"`
}

// NewRecord returns an empty record for output dataset name, or nil if the
// name is unknown.
func NewRecord(dataset string) Record {
	switch dataset {
	case "songs":
		return new(SongRecord)
	case "artists":
		return new(ArtistRecord)
	case "users":
		return new(UserRecord)
	case "time":
		return new(TimeRecord)
	case "songplays":
		return new(SongplayRecord)
	default:
		return nil
	}
}
