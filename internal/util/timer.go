package util

import (
	"fmt"
	"time"
)

// RetryTimer is interface retry
type RetryTimer interface {
	Run(RetryTimerCallback) error
}

// RetryTimerCallback is callback function type for RetryTimer
type RetryTimerCallback func(seq int) (exit bool, err error)

// ErrRetryLimitExceeded indicates error message for exceeding limit of RetryTimer
var ErrRetryLimitExceeded = fmt.Errorf("Limit of RetryTimer exceeded")

type pollTimer struct {
	limit    int
	interval time.Duration
	sleep    func(d time.Duration)
}

// NewPollTimer is constructor of fixed interval timer. Callback is invoked
// up to limit times and the timer waits interval between invocations.
func NewPollTimer(limit int, interval time.Duration) RetryTimer {
	return &pollTimer{limit: limit, interval: interval, sleep: time.Sleep}
}

func (x *pollTimer) Run(callback RetryTimerCallback) error {
	for i := 0; i < x.limit; i++ {
		exit, err := callback(i)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}

		if i+1 < x.limit {
			x.sleep(x.interval)
		}
	}
	return ErrRetryLimitExceeded
}
