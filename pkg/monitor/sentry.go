// Package monitor reports unexpected errors to Sentry.
package monitor

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/config"
	"github.com/d60-Lab/journaly/pkg/logger"
)

var enabled bool

// Init enables Sentry when a DSN is configured. Without one every call here is a no-op.
func Init(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return err
	}
	enabled = true
	return nil
}

// CaptureError reports err with optional string tags.
func CaptureError(err error, tags map[string]string) {
	if err == nil || !enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// RecoverPanic reports a recovered panic value.
func RecoverPanic(v interface{}) {
	if !enabled {
		return
	}
	sentry.CurrentHub().Recover(v)
}

// Flush waits for buffered events before shutdown.
func Flush(timeout time.Duration) {
	if !enabled {
		return
	}
	if !sentry.Flush(timeout) {
		logger.Warn("sentry flush timed out", zap.Duration("timeout", timeout))
	}
}
