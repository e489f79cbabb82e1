package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// Credentials is static AWS access key. Empty key means default credential
// chain (env, shared config, instance role).
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

func (x Credentials) newSession(region string) *session.Session {
	cfg := &aws.Config{Region: aws.String(region)}
	if x.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(x.AccessKeyID, x.SecretAccessKey, "")
	}
	return session.Must(session.NewSession(cfg))
}
