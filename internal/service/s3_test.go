package service_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sparkify/starschema/internal/mock"
	"github.com/sparkify/starschema/internal/service"
	"github.com/sparkify/starschema/internal/testutil"
	"github.com/sparkify/starschema/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3PutObject(t *testing.T) {
	bucket := uuid.New().String()
	svc := service.NewS3Service(mock.NewS3Client)

	fd, err := ioutil.TempFile("", "*.txt")
	require.NoError(t, err)
	defer os.Remove(fd.Name())
	fd.Write([]byte("five timeless words"))

	filePath := fd.Name()
	dst := models.NewS3Object("us-west-2", bucket, "sowaka.txt")
	err = svc.UploadFileToS3(filePath, dst)
	require.NoError(t, err)

	mock := mock.NewS3Client("us-west-2")
	out, err := mock.GetObject(&s3.GetObjectInput{
		Bucket: &bucket,
		Key:    aws.String("sowaka.txt"),
	})
	require.NoError(t, err)
	raw, err := ioutil.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, "five timeless words", string(raw))
}

func TestDeleteObjects(t *testing.T) {
	bucket := uuid.New().String()
	svc := service.NewS3Service(mock.NewS3Client)

	mock := mock.NewS3Client("us-west-2")
	objects := []*models.S3Object{
		{Region: "us-west-2", Bucket: bucket, Key: "k1"},
		{Region: "us-west-2", Bucket: bucket, Key: "k2"},
		{Region: "us-west-2", Bucket: bucket, Key: "k3"},
	}

	for _, obj := range objects {
		_, err := mock.PutObject(&s3.PutObjectInput{
			Bucket: &obj.Bucket,
			Key:    &obj.Key,
			Body:   strings.NewReader("a"),
		})
		require.NoError(t, err)
	}

	err := svc.DeleteS3Objects(objects[:2])
	require.NoError(t, err)

	// Not found
	_, err = mock.GetObject(&s3.GetObjectInput{
		Bucket: &bucket,
		Key:    aws.String("k1"),
	})
	require.Error(t, err)
	_, err = mock.GetObject(&s3.GetObjectInput{
		Bucket: &bucket,
		Key:    aws.String("k2"),
	})
	require.Error(t, err)

	// Found
	_, err = mock.GetObject(&s3.GetObjectInput{
		Bucket: &bucket,
		Key:    aws.String("k3"),
	})
	require.NoError(t, err)
}

func TestMirrorPrefix(t *testing.T) {
	bucket := uuid.New().String()
	svc := service.NewS3Service(mock.NewS3Client)
	testutil.PutSampleDataset(t, mock.NewS3Client("us-west-2"), bucket, "input/")

	t.Run("Download keeps relative key path", func(tt *testing.T) {
		dir := tt.TempDir()
		n, err := svc.DownloadPrefix(models.NewS3Object("us-west-2", bucket, "input/song_data/"), dir)
		require.NoError(tt, err)
		assert.Equal(tt, 3, n)

		raw, err := ioutil.ReadFile(filepath.Join(dir, "A", "B", "D", "TRABDAA12903CC2E3F.json"))
		require.NoError(tt, err)
		assert.Contains(tt, string(raw), "You Gotta Be")
	})

	t.Run("Missing key is skipped on download", func(tt *testing.T) {
		ok, err := svc.DownloadS3Object(models.NewS3Object("us-west-2", bucket, "input/nothing.json"),
			filepath.Join(tt.TempDir(), "nothing.json"))
		require.NoError(tt, err)
		assert.False(tt, ok)
	})

	t.Run("Upload directory then delete prefix", func(tt *testing.T) {
		dir := tt.TempDir()
		testutil.WriteSampleDataset(tt, dir)

		dst := models.NewS3Object("us-west-2", bucket, "copy")
		n, err := svc.UploadDir(dir, dst)
		require.NoError(tt, err)
		assert.Equal(tt, len(testutil.SampleDataset), n)

		objects, err := svc.ListObjects(models.NewS3Object("us-west-2", bucket, dst.Prefix()))
		require.NoError(tt, err)
		assert.Equal(tt, len(testutil.SampleDataset), len(objects))
		assert.Equal(tt, "copy/log_data/2018-11-01-events.json", objects[0].Key)

		require.NoError(tt, svc.DeletePrefix(models.NewS3Object("us-west-2", bucket, dst.Prefix())))
		objects, err = svc.ListObjects(models.NewS3Object("us-west-2", bucket, dst.Prefix()))
		require.NoError(tt, err)
		assert.Empty(tt, objects)
	})
}
