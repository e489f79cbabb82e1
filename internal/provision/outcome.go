package provision

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/pkg/errors"
)

// Status is result kind of an ensure operation.
type Status int

// Outcome statuses
const (
	Created Status = iota
	AlreadyExists
	Failed
)

func (x Status) String() string {
	switch x {
	case Created:
		return "created"
	case AlreadyExists:
		return "already exists"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(x))
	}
}

// Outcome is result of an ensure operation. Err is set only when Status is
// AlreadyExists (the original AWS error) or Failed.
type Outcome struct {
	Status Status
	Err    error
}

// OK returns true if the resource is available after the operation.
func (x Outcome) OK() bool {
	return x.Status == Created || x.Status == AlreadyExists
}

func (x Outcome) String() string {
	if x.Err != nil && x.Status == Failed {
		return fmt.Sprintf("%s: %v", x.Status, x.Err)
	}
	return x.Status.String()
}

func created() Outcome { return Outcome{Status: Created} }

// classify returns AlreadyExists for errors having one of codes and Failed
// for others.
func classify(err error, codes ...string) Outcome {
	if aerr, ok := errors.Cause(err).(awserr.Error); ok {
		for _, code := range codes {
			if aerr.Code() == code {
				return Outcome{Status: AlreadyExists, Err: err}
			}
		}
	}
	return Outcome{Status: Failed, Err: err}
}

func errorCode(err error) string {
	if aerr, ok := errors.Cause(err).(awserr.Error); ok {
		return aerr.Code()
	}
	return ""
}
