package mock

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/sparkify/starschema/internal/adaptor"
)

// MockAccountID is AWS account ID of roles created by IAMClient mock.
const MockAccountID = "123456789012"

// NewIAMClient is constructor of IAM Mock
func NewIAMClient(region string) adaptor.IAMClient {
	return &IAMClient{data: mockIAMClientDataStore}
}

// IAMClient is on memory IAMClient mock. Roles are shared by all IAMClient.
type IAMClient struct {
	data *iamStore
}

type iamRole struct {
	role     iam.Role
	policies map[string]bool
}

type iamStore struct {
	lock  sync.Mutex
	roles map[string]*iamRole
}

var mockIAMClientDataStore = &iamStore{roles: map[string]*iamRole{}}

func noSuchEntity(name string) error {
	return awserr.New(iam.ErrCodeNoSuchEntityException, fmt.Sprintf("The role with name %s cannot be found.", name), nil)
}

// CreateRole saves a role in memory. It fails with EntityAlreadyExists if the role exists.
func (x *IAMClient) CreateRole(input *iam.CreateRoleInput) (*iam.CreateRoleOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	name := aws.StringValue(input.RoleName)
	if _, ok := x.data.roles[name]; ok {
		return nil, awserr.New(iam.ErrCodeEntityAlreadyExistsException,
			fmt.Sprintf("Role with name %s already exists.", name), nil)
	}

	role := &iamRole{
		role: iam.Role{
			RoleName:                 aws.String(name),
			Path:                     input.Path,
			Description:              input.Description,
			AssumeRolePolicyDocument: input.AssumeRolePolicyDocument,
			Arn:                      aws.String(fmt.Sprintf("arn:aws:iam::%s:role/%s", MockAccountID, name)),
			RoleId:                   aws.String("AROA" + name),
		},
		policies: map[string]bool{},
	}
	x.data.roles[name] = role

	out := role.role
	return &iam.CreateRoleOutput{Role: &out}, nil
}

// GetRole returns a saved role.
func (x *IAMClient) GetRole(input *iam.GetRoleInput) (*iam.GetRoleOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	role, ok := x.data.roles[aws.StringValue(input.RoleName)]
	if !ok {
		return nil, noSuchEntity(aws.StringValue(input.RoleName))
	}

	out := role.role
	return &iam.GetRoleOutput{Role: &out}, nil
}

// DeleteRole removes a role. A role having attached policies can not be deleted.
func (x *IAMClient) DeleteRole(input *iam.DeleteRoleInput) (*iam.DeleteRoleOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	name := aws.StringValue(input.RoleName)
	role, ok := x.data.roles[name]
	if !ok {
		return nil, noSuchEntity(name)
	}
	if len(role.policies) > 0 {
		return nil, awserr.New(iam.ErrCodeDeleteConflictException,
			"Cannot delete entity, must detach all policies first.", nil)
	}

	delete(x.data.roles, name)
	return &iam.DeleteRoleOutput{}, nil
}

// AttachRolePolicy attaches a policy. Attaching the same policy again is not error.
func (x *IAMClient) AttachRolePolicy(input *iam.AttachRolePolicyInput) (*iam.AttachRolePolicyOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	role, ok := x.data.roles[aws.StringValue(input.RoleName)]
	if !ok {
		return nil, noSuchEntity(aws.StringValue(input.RoleName))
	}

	role.policies[aws.StringValue(input.PolicyArn)] = true
	return &iam.AttachRolePolicyOutput{}, nil
}

// DetachRolePolicy detaches a policy.
func (x *IAMClient) DetachRolePolicy(input *iam.DetachRolePolicyInput) (*iam.DetachRolePolicyOutput, error) {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	name := aws.StringValue(input.RoleName)
	role, ok := x.data.roles[name]
	if !ok {
		return nil, noSuchEntity(name)
	}
	policy := aws.StringValue(input.PolicyArn)
	if !role.policies[policy] {
		return nil, awserr.New(iam.ErrCodeNoSuchEntityException,
			fmt.Sprintf("Policy %s was not found.", policy), nil)
	}

	delete(role.policies, policy)
	return &iam.DetachRolePolicyOutput{}, nil
}

// AttachedPolicies returns policy ARNs of a role for test.
func (x *IAMClient) AttachedPolicies(roleName string) []string {
	x.data.lock.Lock()
	defer x.data.lock.Unlock()

	role, ok := x.data.roles[roleName]
	if !ok {
		return nil
	}
	var arns []string
	for arn := range role.policies {
		arns = append(arns, arn)
	}
	return arns
}
