package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sparkify/starschema/internal/adaptor"
	"github.com/stretchr/testify/require"
)

// SampleDataset is a small copy of song_data and log_data. Keys are paths
// relative to input root.
//
// "You Gotta Be" by Des'ree is played twice and matches a song. "Der Kleine
// Dompfaff" is played with different case of title and does not match.
var SampleDataset = map[string]string{
	"song_data/A/A/A/TRAAAAW128F429D538.json": `{"num_songs": 1, "artist_id": "ARD7TVE1187B99BFB1", "artist_latitude": null, "artist_longitude": null, "artist_location": "California - LA", "artist_name": "Casual", "song_id": "SOMZWCG12A8C13C480", "title": "I Didn't Mean To", "duration": 218.93179, "year": 0}`,
	"song_data/A/B/C/TRABCEI128F424C983.json": `{"num_songs": 1, "artist_id": "ARJIE2Y1187B994AB7", "artist_latitude": 35.14968, "artist_longitude": -90.04892, "artist_location": "", "artist_name": "Line Renaud", "song_id": "SOUPIRU12A6D4FA1E1", "title": "Der Kleine Dompfaff", "duration": 152.92036, "year": 0}`,
	"song_data/A/B/D/TRABDAA12903CC2E3F.json": `{"num_songs": 1, "artist_id": "AR5KOSW1187FB35FF4", "artist_latitude": 49.80388, "artist_longitude": 15.47491, "artist_location": "Dubai UAE", "artist_name": "Des'ree", "song_id": "SOBONKR12A58A7A7E0", "title": "You Gotta Be", "duration": 246.30812, "year": 1994}`,
	"log_data/2018-11-01-events.json": strings.Join([]string{
		`{"artist":null,"auth":"Logged In","firstName":"Walter","gender":"M","itemInSession":0,"lastName":"Frye","length":null,"level":"free","location":"San Francisco-Oakland-Hayward, CA","method":"GET","page":"Home","registration":1540919166796.0,"sessionId":38,"song":null,"status":200,"ts":1541105830796,"userAgent":"Mozilla\/5.0","userId":"39"}`,
		`{"artist":"Des'ree","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":1,"lastName":"Summers","length":246.30812,"level":"free","location":"Phoenix-Mesa-Scottsdale, AZ","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"You Gotta Be","status":200,"ts":1541106106796,"userAgent":"Mozilla\/5.0","userId":"8"}`,
		`{"artist":"Line Renaud","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":2,"lastName":"Summers","length":152.92036,"level":"free","location":"Phoenix-Mesa-Scottsdale, AZ","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"Der kleine Dompfaff","status":200,"ts":1541106352796,"userAgent":"Mozilla\/5.0","userId":"8"}`,
	}, "\n"),
	"log_data/2018-11-02-events.json": strings.Join([]string{
		`{"artist":"Des'ree","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":0,"lastName":"Summers","length":246.30812,"level":"paid","location":"Phoenix-Mesa-Scottsdale, AZ","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":140,"song":"You Gotta Be","status":200,"ts":1541203200000,"userAgent":"Mozilla\/5.0","userId":"8"}`,
		`{"artist":null,"auth":"Logged Out","firstName":null,"gender":null,"itemInSession":1,"lastName":null,"length":null,"level":"free","location":null,"method":"PUT","page":"Login","registration":null,"sessionId":52,"song":null,"status":307,"ts":1541203300000,"userAgent":null,"userId":""}`,
	}, "\n"),
}

// Expected row counts of tables derived from SampleDataset.
var SampleDatasetRows = map[string]int64{
	"staging_events": 5,
	"staging_songs":  3,
	"dim_user":       2,
	"dim_song":       3,
	"dim_artist":     3,
	"dim_time":       5,
	"fact_songplays": 2,
}

// WriteSampleDataset writes SampleDataset under dir.
func WriteSampleDataset(t *testing.T, dir string) {
	for key, body := range SampleDataset {
		path := filepath.Join(dir, filepath.FromSlash(key))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
}

// PutSampleDataset saves SampleDataset under prefix of bucket.
func PutSampleDataset(t *testing.T, client adaptor.S3Client, bucket, prefix string) {
	for key, body := range SampleDataset {
		_, err := client.PutObject(&s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(prefix + key),
			Body:   strings.NewReader(body),
		})
		require.NoError(t, err)
	}
}
