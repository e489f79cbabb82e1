package internal

import (
	"time"

	"github.com/sirupsen/logrus"
)

type profileRecord struct {
	current *time.Time
	total   time.Duration
	count   int64
}

// StepResult is elapsed time of one pipeline step.
type StepResult struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// Profile measures elapsed time of pipeline steps such as "load" or
// "transform/dim_user". It is not goroutine safe.
type Profile struct {
	Records map[string]*profileRecord `json:"records"`
	now     func() time.Time
}

// NewProfile is constructor of Profile
func NewProfile() *Profile {
	return &Profile{
		Records: map[string]*profileRecord{},
		now:     time.Now,
	}
}

// Start begins measurement of step. Starting a running step restarts it.
func (x *Profile) Start(step string) {
	p, ok := x.Records[step]
	if !ok {
		p = &profileRecord{}
		x.Records[step] = p
	}

	if p.current != nil {
		Logger.WithField("step", step).Warn("step started twice for profile")
	}

	now := x.now()
	p.current = &now
	p.count++
}

// Stop finishes measurement of step and returns elapsed time.
func (x *Profile) Stop(step string) time.Duration {
	p, ok := x.Records[step]
	if !ok || p.current == nil {
		Logger.WithField("step", step).Warn("Not started for profile")
		return 0
	}

	sub := x.now().Sub(*p.current)
	p.total += sub
	p.current = nil

	return sub
}

// Pack returns results for all measured steps.
func (x *Profile) Pack() map[string]StepResult {
	v := map[string]StepResult{}
	for k, r := range x.Records {
		v[k] = StepResult{
			Total: r.total.Seconds(),
			Count: r.count,
		}
	}
	return v
}

// Fields converts results to logrus.Fields for summary logging.
func (x *Profile) Fields() logrus.Fields {
	fields := logrus.Fields{}
	for k, r := range x.Pack() {
		fields[k] = r.Total
	}
	return fields
}
