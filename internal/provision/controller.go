package provision

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/redshift"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sparkify/starschema/internal"
	"github.com/sparkify/starschema/internal/adaptor"
	"github.com/sparkify/starschema/internal/util"
)

var logger = internal.Logger

// S3ReadOnlyPolicyARN is attached to the warehouse role for COPY.
const S3ReadOnlyPolicyARN = "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess"

// ClusterStatusAvailable is ClusterStatus of a ready cluster.
const ClusterStatusAvailable = "available"

const roleDescription = "Allows Redshift clusters to call AWS services on your behalf."

type policyStatement struct {
	Action    string            `json:"Action"`
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
}

type policyDocument struct {
	Statement []policyStatement `json:"Statement"`
	Version   string            `json:"Version"`
}

// AssumeRolePolicyDocument returns trust policy allowing Redshift to assume the role.
func AssumeRolePolicyDocument() string {
	doc := policyDocument{
		Statement: []policyStatement{
			{
				Action:    "sts:AssumeRole",
				Effect:    "Allow",
				Principal: map[string]string{"Service": "redshift.amazonaws.com"},
			},
		},
		Version: "2012-10-17",
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		// Fixed structure always can be marshaled
		panic(err)
	}
	return string(raw)
}

// ClusterSpec is size, type and credentials of a new cluster.
type ClusterSpec struct {
	Identifier     string
	ClusterType    string
	NodeType       string
	NumNodes       int
	DBName         string
	MasterUser     string
	MasterPassword string
	Port           int
}

// Controller provisions the warehouse role and cluster.
type Controller struct {
	region      string
	newIAM      adaptor.IAMClientFactory
	newRedshift adaptor.RedshiftClientFactory
}

// New is constructor of Controller
func New(region string, newIAM adaptor.IAMClientFactory, newRedshift adaptor.RedshiftClientFactory) *Controller {
	return &Controller{
		region:      region,
		newIAM:      newIAM,
		newRedshift: newRedshift,
	}
}

// EnsureRole creates a role assumable by Redshift. Existing role results in AlreadyExists.
func (x *Controller) EnsureRole(name string) Outcome {
	client := x.newIAM(x.region)
	_, err := client.CreateRole(&iam.CreateRoleInput{
		Path:                     aws.String("/"),
		RoleName:                 aws.String(name),
		Description:              aws.String(roleDescription),
		AssumeRolePolicyDocument: aws.String(AssumeRolePolicyDocument()),
	})
	if err != nil {
		return classify(errors.Wrapf(err, "Fail to create role: %s", name), iam.ErrCodeEntityAlreadyExistsException)
	}

	return created()
}

// EnsurePolicy attaches S3 read only policy to role. IAM accepts attaching
// the same policy again.
func (x *Controller) EnsurePolicy(role string) Outcome {
	client := x.newIAM(x.region)
	_, err := client.AttachRolePolicy(&iam.AttachRolePolicyInput{
		RoleName:  aws.String(role),
		PolicyArn: aws.String(S3ReadOnlyPolicyARN),
	})
	if err != nil {
		return Outcome{Status: Failed, Err: errors.Wrapf(err, "Fail to attach policy to %s", role)}
	}

	return created()
}

// RoleARN resolves ARN of a role.
func (x *Controller) RoleARN(name string) (string, error) {
	client := x.newIAM(x.region)
	output, err := client.GetRole(&iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		return "", errors.Wrapf(err, "Fail to get role: %s", name)
	}
	if output.Role == nil || output.Role.Arn == nil {
		return "", fmt.Errorf("Role has no ARN: %s", name)
	}

	return *output.Role.Arn, nil
}

// EnsureCluster creates a cluster associated with roleARN. Existing cluster
// with the same identifier results in AlreadyExists.
func (x *Controller) EnsureCluster(spec ClusterSpec, roleARN string) Outcome {
	input := &redshift.CreateClusterInput{
		ClusterType:        aws.String(spec.ClusterType),
		NodeType:           aws.String(spec.NodeType),
		DBName:             aws.String(spec.DBName),
		ClusterIdentifier:  aws.String(spec.Identifier),
		MasterUsername:     aws.String(spec.MasterUser),
		MasterUserPassword: aws.String(spec.MasterPassword),
		IamRoles:           []*string{aws.String(roleARN)},
	}
	if spec.ClusterType != "single-node" {
		input.NumberOfNodes = aws.Int64(int64(spec.NumNodes))
	}
	if spec.Port > 0 {
		input.Port = aws.Int64(int64(spec.Port))
	}

	client := x.newRedshift(x.region)
	if _, err := client.CreateCluster(input); err != nil {
		return classify(errors.Wrapf(err, "Fail to create cluster: %s", spec.Identifier),
			redshift.ErrCodeClusterAlreadyExistsFault)
	}

	return created()
}

// DescribeCluster returns properties of a cluster.
func (x *Controller) DescribeCluster(id string) (*ClusterProps, error) {
	client := x.newRedshift(x.region)
	output, err := client.DescribeClusters(&redshift.DescribeClustersInput{
		ClusterIdentifier: aws.String(id),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to describe cluster: %s", id)
	}
	if len(output.Clusters) == 0 {
		return nil, fmt.Errorf("No cluster is found: %s", id)
	}

	return newClusterProps(output.Clusters[0]), nil
}

// WaitAvailable polls the cluster by timer until the status becomes available.
func (x *Controller) WaitAvailable(id string, timer util.RetryTimer) (*ClusterProps, error) {
	var props *ClusterProps
	err := timer.Run(func(seq int) (bool, error) {
		p, err := x.DescribeCluster(id)
		if err != nil {
			return false, err
		}

		logger.WithFields(logrus.Fields{
			"seq":     seq,
			"cluster": id,
			"status":  p.Status,
		}).Info("Waiting cluster")

		props = p
		return p.Status == ClusterStatusAvailable, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Fail to wait cluster: %s", id)
	}

	return props, nil
}

// TearDown deletes the cluster without final snapshot, then detaches policy
// and deletes the role. It stops at the first error.
func (x *Controller) TearDown(clusterID, roleName string) error {
	rs := x.newRedshift(x.region)
	if _, err := rs.DeleteCluster(&redshift.DeleteClusterInput{
		ClusterIdentifier:        aws.String(clusterID),
		SkipFinalClusterSnapshot: aws.Bool(true),
	}); err != nil {
		return errors.Wrapf(err, "Fail to delete cluster: %s (%s)", clusterID, errorCode(err))
	}

	client := x.newIAM(x.region)
	if _, err := client.DetachRolePolicy(&iam.DetachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(S3ReadOnlyPolicyARN),
	}); err != nil {
		return errors.Wrapf(err, "Fail to detach policy from %s (%s)", roleName, errorCode(err))
	}

	if _, err := client.DeleteRole(&iam.DeleteRoleInput{
		RoleName: aws.String(roleName),
	}); err != nil {
		return errors.Wrapf(err, "Fail to delete role: %s (%s)", roleName, errorCode(err))
	}

	return nil
}
