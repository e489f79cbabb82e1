package adaptor_test

import (
	"testing"

	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/redshift"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sparkify/starschema/internal/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFactory(t *testing.T) {
	cred := adaptor.Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"}

	t.Run("Static credentials are used by IAM client", func(tt *testing.T) {
		client, ok := adaptor.NewIAMClientFactory(cred)("us-west-2").(*iam.IAM)
		require.True(tt, ok)
		v, err := client.Config.Credentials.Get()
		require.NoError(tt, err)
		assert.Equal(tt, "AKIAEXAMPLE", v.AccessKeyID)
		assert.Equal(tt, "us-west-2", *client.Config.Region)
	})

	t.Run("Region is passed to Redshift and S3 client", func(tt *testing.T) {
		rs, ok := adaptor.NewRedshiftClientFactory(cred)("ap-northeast-1").(*redshift.Redshift)
		require.True(tt, ok)
		assert.Equal(tt, "ap-northeast-1", *rs.Config.Region)

		s3c, ok := adaptor.NewS3ClientFactory(cred)("eu-west-1").(*s3.S3)
		require.True(tt, ok)
		assert.Equal(tt, "eu-west-1", *s3c.Config.Region)
	})
}
