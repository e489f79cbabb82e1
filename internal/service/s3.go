package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sparkify/starschema/internal"
	"github.com/sparkify/starschema/internal/adaptor"
	"github.com/sparkify/starschema/pkg/models"
)

var logger = internal.Logger

const (
	// DeleteObjects can have a list of up to 1000 keys
	// https://docs.aws.amazon.com/AmazonS3/latest/API/API_DeleteObjects.html
	maxNumberOfS3DeletableObject = 1000

	s3DownloadBufferSize = 2 * 1024 * 1024 // 2MB
)

// S3Service is accessor to S3
type S3Service struct {
	newS3 adaptor.S3ClientFactory
}

// NewS3Service is constructor of
func NewS3Service(newS3 adaptor.S3ClientFactory) *S3Service {
	return &S3Service{
		newS3: newS3,
	}
}

func wrapS3Error(err error, msg string, obj models.S3Object) error {
	if aerr, ok := err.(awserr.Error); ok {
		return errors.Wrapf(aerr, "%s in AWS (%s): %s/%s", msg, aerr.Code(), obj.Bucket, obj.Key)
	}
	return errors.Wrapf(err, "%s in https: %s/%s", msg, obj.Bucket, obj.Key)
}

// UploadFileToS3 upload a specified local file to S3
func (x *S3Service) UploadFileToS3(filePath string, dst models.S3Object) error {
	fd, err := os.Open(filePath)
	if err != nil {
		return errors.Wrapf(err, "Fail to open a file: %s", filePath)
	}
	defer fd.Close()

	client := x.newS3(dst.Region)
	input := &s3.PutObjectInput{
		Body:   fd,
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(dst.Key),
	}

	if _, err := client.PutObject(input); err != nil {
		return wrapS3Error(err, "Fail to upload a file", dst)
	}

	logger.WithFields(logrus.Fields{
		"bucket": dst.Bucket,
		"key":    dst.Key,
	}).Debug("Uploaded a file")

	return nil
}

// DownloadS3Object downloads a specified remote object to dst file path.
// It returns false without error if the object does not exist.
func (x *S3Service) DownloadS3Object(obj models.S3Object, dst string) (bool, error) {
	client := x.newS3(obj.Region)
	input := &s3.GetObjectInput{
		Bucket: &obj.Bucket,
		Key:    &obj.Key,
	}

	resp, err := client.GetObject(input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			logger.WithFields(logrus.Fields{
				"bucket": obj.Bucket,
				"key":    obj.Key,
			}).Warn("No such key, ignored")
			return false, nil
		}

		return false, wrapS3Error(err, "Fail to download an object", obj)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, errors.Wrapf(err, "Fail to create directory for %s", dst)
	}
	fd, err := os.Create(dst)
	if err != nil {
		return false, errors.Wrapf(err, "Fail to create a file: %s", dst)
	}
	defer fd.Close()

	buf := make([]byte, s3DownloadBufferSize)
	written, err := io.CopyBuffer(fd, resp.Body, buf)
	if err != nil {
		return false, errors.Wrapf(err, "Fail to write an object to %s", dst)
	}

	logger.WithFields(logrus.Fields{
		"write": written, "fpath": dst, "srckey": obj.Key,
	}).Trace("Downloaded S3 object")

	return true, nil
}

// ListObjects returns all objects under prefix of obj.Key.
func (x *S3Service) ListObjects(prefix models.S3Object) ([]models.S3Object, error) {
	client := x.newS3(prefix.Region)
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(prefix.Bucket),
		Prefix: aws.String(prefix.Key),
	}

	var objects []models.S3Object
	for {
		output, err := client.ListObjectsV2(input)
		if err != nil {
			return nil, wrapS3Error(err, "Fail to list objects", prefix)
		}

		for _, obj := range output.Contents {
			objects = append(objects, models.NewS3Object(prefix.Region, prefix.Bucket, aws.StringValue(obj.Key)))
		}

		if !aws.BoolValue(output.IsTruncated) {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}

	return objects, nil
}

// DownloadPrefix mirrors all objects under prefix into dir keeping relative
// key path. It returns number of downloaded objects.
func (x *S3Service) DownloadPrefix(prefix models.S3Object, dir string) (int, error) {
	objects, err := x.ListObjects(prefix)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, prefix.Key)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}

		ok, err := x.DownloadS3Object(obj, filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}

	logger.WithFields(logrus.Fields{
		"prefix": prefix.Path(),
		"dir":    dir,
		"count":  count,
	}).Debug("Mirrored S3 prefix")

	return count, nil
}

// UploadDir uploads all regular files under dir to dst prefix keeping
// relative path. It returns number of uploaded files.
func (x *S3Service) UploadDir(dir string, dst models.S3Object) (int, error) {
	count := 0
	err := filepath.Walk(dir, func(fpath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, fpath)
		if err != nil {
			return err
		}

		obj := dst.AppendKey(filepath.ToSlash(rel))
		if err := x.UploadFileToS3(fpath, obj); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, errors.Wrapf(err, "Fail to upload directory %s to %s", dir, dst.Path())
	}

	return count, nil
}

// DeletePrefix removes all objects under prefix.
func (x *S3Service) DeletePrefix(prefix models.S3Object) error {
	objects, err := x.ListObjects(prefix)
	if err != nil {
		return err
	}

	targets := make([]*models.S3Object, len(objects))
	for i := range objects {
		targets[i] = &objects[i]
	}
	return x.DeleteS3Objects(targets)
}

// DeleteS3Objects is warpper of s3.DeleteObjects
func (x *S3Service) DeleteS3Objects(objects []*models.S3Object) error {
	if len(objects) == 0 {
		logger.Debug("No target for DeleteObjects")
		return nil
	}

	logger.WithField("len(objects)", len(objects)).Debug("Try to delete objects")

	var objectIDs []*s3.ObjectIdentifier

	for i := range objects {
		if objects[i].Bucket != objects[0].Bucket {
			return fmt.Errorf("Multiple buckets are not allowed: %s and %s", objects[i].Bucket, objects[0].Bucket)
		}

		objectIDs = append(objectIDs, &s3.ObjectIdentifier{Key: aws.String(objects[i].Key)})
	}

	client := x.newS3(objects[0].Region)

	for s := 0; s < len(objectIDs); s += maxNumberOfS3DeletableObject {
		end := len(objectIDs)
		if s+maxNumberOfS3DeletableObject < len(objectIDs) {
			end = s + maxNumberOfS3DeletableObject
		}

		input := s3.DeleteObjectsInput{
			Bucket: aws.String(objects[0].Bucket),
			Delete: &s3.Delete{
				Objects: objectIDs[s:end],
			},
		}

		resp, err := client.DeleteObjects(&input)
		if err != nil {
			return errors.Wrapf(err, "Fail to delete objects: %v", resp)
		}
	}

	return nil
}
