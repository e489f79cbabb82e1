package internal

import (
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

var sentryEnabled = false

// InitErrorHandler enables sentry reporting if dsn is not empty.
func InitErrorHandler(dsn, env string) error {
	if dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
	})
	if err != nil {
		return errors.Wrap(err, "Fail to initialize sentry")
	}
	sentryEnabled = true

	return nil
}

// HandleError sends error to sentry if sentry configuration is available
func HandleError(err error) {
	r := Logger.WithError(err)

	if sentryEnabled {
		eventID := sentry.CaptureException(err)
		if eventID != nil {
			r = r.WithField("sentry eventID", *eventID)
		}
	}

	r.Error("Error")
}

// FlushError flushs error to sentry
func FlushError() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
