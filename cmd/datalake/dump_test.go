package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sparkify/starschema/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

func strPtr(s string) *string { return &s }
func i32Ptr(v int32) *int32   { return &v }

func TestDumpParquetFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "users.parquet")

	fw, err := local.NewLocalFileWriter(fpath)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(models.UserRecord), 1)
	require.NoError(t, err)
	require.NoError(t, pw.Write(models.UserRecord{
		UserID: i32Ptr(8), FirstName: strPtr("Kaylee"), LastName: strPtr("Summers"),
		Gender: strPtr("F"), Level: strPtr("paid"),
	}))
	require.NoError(t, pw.Write(models.UserRecord{UserID: i32Ptr(39), FirstName: strPtr("Walter")}))
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())

	t.Run("Rows are printed as JSON lines", func(tt *testing.T) {
		var buf bytes.Buffer
		require.NoError(tt, dumpParquetFile(&buf, fpath, "users"))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Equal(tt, 2, len(lines))
		assert.Equal(tt, `{"user_id":8,"first_name":"Kaylee","last_name":"Summers","gender":"F","level":"paid"}`, lines[0])
		assert.Equal(tt, `{"user_id":39,"first_name":"Walter","last_name":null,"gender":null,"level":null}`, lines[1])
	})

	t.Run("Unknown dataset is error", func(tt *testing.T) {
		var buf bytes.Buffer
		assert.Error(tt, dumpParquetFile(&buf, fpath, "sessions"))
	})
}
