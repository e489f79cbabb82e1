package adaptor

import "github.com/aws/aws-sdk-go/service/iam"

// IAMClientFactory is interface IAMClient constructor
type IAMClientFactory func(region string) IAMClient

// IAMClient is interface of AWS IAM SDK
type IAMClient interface {
	CreateRole(input *iam.CreateRoleInput) (*iam.CreateRoleOutput, error)
	GetRole(input *iam.GetRoleInput) (*iam.GetRoleOutput, error)
	DeleteRole(input *iam.DeleteRoleInput) (*iam.DeleteRoleOutput, error)
	AttachRolePolicy(input *iam.AttachRolePolicyInput) (*iam.AttachRolePolicyOutput, error)
	DetachRolePolicy(input *iam.DetachRolePolicyInput) (*iam.DetachRolePolicyOutput, error)
}

// NewIAMClientFactory returns factory of actual AWS IAM SDK client
func NewIAMClientFactory(cred Credentials) IAMClientFactory {
	return func(region string) IAMClient {
		return iam.New(cred.newSession(region))
	}
}
