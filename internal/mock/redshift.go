package mock

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/redshift"
	"github.com/sparkify/starschema/internal/adaptor"
)

// RedshiftCreatingDescribes is number of DescribeClusters calls returning
// "creating" status before a new cluster becomes "available".
var RedshiftCreatingDescribes = 2

// NewRedshiftClient is constructor of Redshift Mock
func NewRedshiftClient(region string) adaptor.RedshiftClient {
	return &RedshiftClient{region: region, data: mockRedshiftClientDataStore}
}

// RedshiftClient is on memory RedshiftClient mock. Clusters are shared by all RedshiftClient.
type RedshiftClient struct {
	region string
	data   *redshiftStore
}

type redshiftCluster struct {
	cluster  redshift.Cluster
	creating int
}

type redshiftStore struct {
	lock     sync.Mutex
	clusters map[string]*redshiftCluster
}

var mockRedshiftClientDataStore = &redshiftStore{clusters: map[string]*redshiftCluster{}}

func clusterNotFound(id string) error {
	return awserr.New(redshift.ErrCodeClusterNotFoundFault, fmt.Sprintf("Cluster %s not found.", id), nil)
}

// CreateCluster saves a cluster with "creating" status.
func (x *RedshiftClient) CreateCluster(input *redshift.CreateClusterInput) (*redshift.CreateClusterOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	id := aws.StringValue(input.ClusterIdentifier)
	if _, ok := x.data.clusters[id]; ok {
		return nil, awserr.New(redshift.ErrCodeClusterAlreadyExistsFault, "Cluster already exists", nil)
	}

	nodes := aws.Int64Value(input.NumberOfNodes)
	if aws.StringValue(input.ClusterType) == "single-node" {
		nodes = 1
	}
	port := aws.Int64Value(input.Port)
	if port == 0 {
		port = 5439
	}

	var roles []*redshift.ClusterIamRole
	for _, arn := range input.IamRoles {
		roles = append(roles, &redshift.ClusterIamRole{
			IamRoleArn:  aws.String(aws.StringValue(arn)),
			ApplyStatus: aws.String("in-sync"),
		})
	}

	c := &redshiftCluster{
		cluster: redshift.Cluster{
			ClusterIdentifier: aws.String(id),
			NodeType:          input.NodeType,
			ClusterStatus:     aws.String("creating"),
			MasterUsername:    input.MasterUsername,
			DBName:            input.DBName,
			NumberOfNodes:     aws.Int64(nodes),
			VpcId:             aws.String("vpc-0mock"),
			IamRoles:          roles,
		},
		creating: RedshiftCreatingDescribes,
	}
	c.cluster.Endpoint = &redshift.Endpoint{
		Address: aws.String(fmt.Sprintf("%s.mock.%s.redshift.amazonaws.com", id, x.region)),
		Port:    aws.Int64(port),
	}
	if c.creating <= 0 {
		c.cluster.ClusterStatus = aws.String("available")
	}
	x.data.clusters[id] = c

	out := c.cluster
	return &redshift.CreateClusterOutput{Cluster: &out}, nil
}

// DescribeClusters returns a cluster specified by ClusterIdentifier. Endpoint is
// not available while creating.
func (x *RedshiftClient) DescribeClusters(input *redshift.DescribeClustersInput) (*redshift.DescribeClustersOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	id := aws.StringValue(input.ClusterIdentifier)
	c, ok := x.data.clusters[id]
	if !ok {
		return nil, clusterNotFound(id)
	}

	out := c.cluster
	if c.creating > 0 {
		c.creating--
		out.Endpoint = nil
	} else {
		c.cluster.ClusterStatus = aws.String("available")
		out.ClusterStatus = c.cluster.ClusterStatus
	}

	return &redshift.DescribeClustersOutput{Clusters: []*redshift.Cluster{&out}}, nil
}

// DeleteCluster removes a cluster. Deleting without a final snapshot
// requires SkipFinalClusterSnapshot.
func (x *RedshiftClient) DeleteCluster(input *redshift.DeleteClusterInput) (*redshift.DeleteClusterOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	id := aws.StringValue(input.ClusterIdentifier)
	c, ok := x.data.clusters[id]
	if !ok {
		return nil, clusterNotFound(id)
	}
	if !aws.BoolValue(input.SkipFinalClusterSnapshot) && input.FinalClusterSnapshotIdentifier == nil {
		return nil, awserr.New("InvalidParameterCombination",
			"FinalClusterSnapshotIdentifier is required unless SkipFinalClusterSnapshot is specified.", nil)
	}

	delete(x.data.clusters, id)
	out := c.cluster
	out.ClusterStatus = aws.String("deleting")
	return &redshift.DeleteClusterOutput{Cluster: &out}, nil
}
