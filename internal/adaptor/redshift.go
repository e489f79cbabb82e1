package adaptor

import "github.com/aws/aws-sdk-go/service/redshift"

// RedshiftClientFactory is interface RedshiftClient constructor
type RedshiftClientFactory func(region string) RedshiftClient

// RedshiftClient is interface of AWS Redshift SDK
type RedshiftClient interface {
	CreateCluster(input *redshift.CreateClusterInput) (*redshift.CreateClusterOutput, error)
	DescribeClusters(input *redshift.DescribeClustersInput) (*redshift.DescribeClustersOutput, error)
	DeleteCluster(input *redshift.DeleteClusterInput) (*redshift.DeleteClusterOutput, error)
}

// NewRedshiftClientFactory returns factory of actual AWS Redshift SDK client
func NewRedshiftClientFactory(cred Credentials) RedshiftClientFactory {
	return func(region string) RedshiftClient {
		return redshift.New(cred.newSession(region))
	}
}
