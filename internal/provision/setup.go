package provision

import "github.com/sirupsen/logrus"

// SetupResult has outcomes of each step of Setup.
type SetupResult struct {
	Role    Outcome
	Policy  Outcome
	Cluster Outcome
	RoleARN string
}

// Setup ensures role, policy and cluster in this order. Every outcome is
// logged and returned. Cluster is not requested if role ARN can not be
// resolved.
func (x *Controller) Setup(roleName string, spec ClusterSpec) SetupResult {
	var result SetupResult

	result.Role = x.EnsureRole(roleName)
	logOutcome("role", roleName, result.Role)

	result.Policy = x.EnsurePolicy(roleName)
	logOutcome("policy", S3ReadOnlyPolicyARN, result.Policy)

	arn, err := x.RoleARN(roleName)
	if err != nil {
		result.Cluster = Outcome{Status: Failed, Err: err}
		logOutcome("cluster", spec.Identifier, result.Cluster)
		return result
	}
	result.RoleARN = arn
	logger.WithField("arn", arn).Info("Resolved role ARN")

	result.Cluster = x.EnsureCluster(spec, arn)
	logOutcome("cluster", spec.Identifier, result.Cluster)

	return result
}

func logOutcome(kind, name string, outcome Outcome) {
	entry := logger.WithFields(logrus.Fields{
		"resource": kind,
		"name":     name,
		"status":   outcome.Status.String(),
	})

	switch outcome.Status {
	case Created:
		entry.Info("Created")
	case AlreadyExists:
		entry.WithError(outcome.Err).Info("Already exists, ignored")
	default:
		entry.WithError(outcome.Err).Error("Failed")
	}
}
