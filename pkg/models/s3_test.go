package models_test

import (
	"testing"

	"github.com/sparkify/starschema/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3Path(t *testing.T) {
	t.Run("Parse s3 path with key", func(tt *testing.T) {
		obj, err := models.ParseS3Path("us-west-2", "s3://udacity-dend/log_data")
		require.NoError(tt, err)
		assert.Equal(tt, "us-west-2", obj.Region)
		assert.Equal(tt, "udacity-dend", obj.Bucket)
		assert.Equal(tt, "log_data", obj.Key)
	})

	t.Run("Parse s3a path used by hadoop", func(tt *testing.T) {
		obj, err := models.ParseS3Path("r", "s3a://udacity-dend/")
		require.NoError(tt, err)
		assert.Equal(tt, "udacity-dend", obj.Bucket)
		assert.Equal(tt, "", obj.Key)
	})

	t.Run("Parse bucket only", func(tt *testing.T) {
		obj, err := models.ParseS3Path("r", "s3://my-bucket")
		require.NoError(tt, err)
		assert.Equal(tt, "my-bucket", obj.Bucket)
		assert.Equal(tt, "", obj.Key)
	})

	t.Run("Fail without scheme", func(tt *testing.T) {
		_, err := models.ParseS3Path("r", "/tmp/data")
		require.Error(tt, err)
		assert.False(tt, models.IsS3Path("/tmp/data"))
	})

	t.Run("Fail without bucket", func(tt *testing.T) {
		_, err := models.ParseS3Path("r", "s3:///key")
		require.Error(tt, err)
	})
}

func TestS3ObjectKey(t *testing.T) {
	base := models.NewS3Object("r", "b", "out")
	assert.Equal(t, "out/songs/a.parquet", base.AppendKey("songs/a.parquet").Key)
	assert.Equal(t, "out", base.Key)
	assert.Equal(t, "out/", base.Prefix())
	assert.Equal(t, "s3://b/out", base.Path())

	dir := models.NewS3Object("r", "b", "out/")
	assert.Equal(t, "out/x", dir.AppendKey("x").Key)
	assert.Equal(t, "out/", dir.Prefix())

	root := models.NewS3Object("r", "b", "")
	assert.Equal(t, "x", root.AppendKey("x").Key)
	assert.Equal(t, "", root.Prefix())
}
