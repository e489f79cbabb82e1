package provision

import (
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/redshift"
)

// ClusterProps is summary of a described cluster.
type ClusterProps struct {
	Identifier      string
	NodeType        string
	Status          string
	MasterUser      string
	DBName          string
	EndpointAddress string
	EndpointPort    int64
	NumberOfNodes   int64
	VpcID           string
	// RoleARN is the first IAM role associated to the cluster.
	RoleARN string
}

func newClusterProps(c *redshift.Cluster) *ClusterProps {
	props := &ClusterProps{
		Identifier:    aws.StringValue(c.ClusterIdentifier),
		NodeType:      aws.StringValue(c.NodeType),
		Status:        aws.StringValue(c.ClusterStatus),
		MasterUser:    aws.StringValue(c.MasterUsername),
		DBName:        aws.StringValue(c.DBName),
		NumberOfNodes: aws.Int64Value(c.NumberOfNodes),
		VpcID:         aws.StringValue(c.VpcId),
	}
	if c.Endpoint != nil {
		props.EndpointAddress = aws.StringValue(c.Endpoint.Address)
		props.EndpointPort = aws.Int64Value(c.Endpoint.Port)
	}
	if len(c.IamRoles) > 0 {
		props.RoleARN = aws.StringValue(c.IamRoles[0].IamRoleArn)
	}

	return props
}

// Rows returns key/value pairs for display.
func (x ClusterProps) Rows() [][]string {
	endpoint := ""
	if x.EndpointAddress != "" {
		endpoint = x.EndpointAddress + ":" + strconv.FormatInt(x.EndpointPort, 10)
	}

	return [][]string{
		{"ClusterIdentifier", x.Identifier},
		{"NodeType", x.NodeType},
		{"ClusterStatus", x.Status},
		{"MasterUsername", x.MasterUser},
		{"DBName", x.DBName},
		{"Endpoint", endpoint},
		{"NumberOfNodes", strconv.FormatInt(x.NumberOfNodes, 10)},
		{"VpcId", x.VpcID},
	}
}
