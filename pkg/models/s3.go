package models

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// S3Object indicates an object or a prefix on S3.
type S3Object struct {
	Region string `json:"region"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NewS3Object is constructor of S3Object
func NewS3Object(region, bucket, key string) S3Object {
	return S3Object{
		Region: region,
		Bucket: bucket,
		Key:    key,
	}
}

var s3Schemes = []string{"s3://", "s3a://", "s3n://"}

// IsS3Path returns true if p has s3://, s3a:// or s3n:// scheme.
func IsS3Path(p string) bool {
	for _, s := range s3Schemes {
		if strings.HasPrefix(p, s) {
			return true
		}
	}
	return false
}

// ParseS3Path converts "s3://bucket/key" style path to S3Object. Hadoop
// style schemes (s3a, s3n) are accepted as same as s3.
func ParseS3Path(region, p string) (*S3Object, error) {
	var rest string
	for _, s := range s3Schemes {
		if strings.HasPrefix(p, s) {
			rest = p[len(s):]
			break
		}
	}
	if rest == "" {
		return nil, fmt.Errorf("Invalid S3 path, scheme is required: %s", p)
	}

	arr := strings.SplitN(rest, "/", 2)
	if arr[0] == "" {
		return nil, errors.Errorf("Invalid S3 path, bucket is required: %s", p)
	}

	obj := &S3Object{Region: region, Bucket: arr[0]}
	if len(arr) == 2 {
		obj.Key = arr[1]
	}
	return obj, nil
}

// AppendKey returns a new S3Object that has key joined with append.
func (x S3Object) AppendKey(append string) S3Object {
	newObj := x
	if x.Key == "" || strings.HasSuffix(x.Key, "/") {
		newObj.Key = x.Key + append
	} else {
		newObj.Key = x.Key + "/" + append
	}
	return newObj
}

// Path returns full S3 path with s3:// scheme.
func (x S3Object) Path() string {
	return "s3://" + path.Join(x.Bucket, x.Key)
}

// Prefix returns Key with trailing slash to be used as ListObjects prefix.
func (x S3Object) Prefix() string {
	if x.Key == "" || strings.HasSuffix(x.Key, "/") {
		return x.Key
	}
	return x.Key + "/"
}
