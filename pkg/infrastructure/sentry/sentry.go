package sentry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// LevelWarning is the level used for conditions that need a human but do not fail a run.
const LevelWarning = sentry.LevelWarning

type Config struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
}

// Init initializes Sentry. An empty DSN leaves error tracking disabled and
// every capture below becomes a no-op.
func Init(cfg Config, logger *slog.Logger) error {
	if cfg.DSN == "" {
		if logger != nil {
			logger.Warn("Sentry DSN not configured - error tracking disabled")
		}
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		ServerName:  cfg.ServerName,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Strava bearer tokens travel in these headers.
			if event.Request != nil && event.Request.Headers != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		if logger != nil {
			logger.Error("Failed to initialize Sentry", "error", err)
		}
		return fmt.Errorf("sentry init: %w", err)
	}

	if logger != nil {
		logger.Info("Sentry initialized", "environment", cfg.Environment, "release", cfg.Release)
	}
	return nil
}

// CaptureException reports err with tags and extra context scoped to this event.
func CaptureException(err error, tags map[string]string, extra map[string]interface{}, logger *slog.Logger) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if len(extra) > 0 {
			scope.SetContext("sync", sentry.Context(extra))
		}
		sentry.CaptureException(err)
	})

	if logger != nil {
		logger.Debug("Exception captured in Sentry", "error", err.Error())
	}
}

// CaptureMessage reports a non-fatal condition.
func CaptureMessage(message string, level sentry.Level, tags map[string]string, logger *slog.Logger) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTags(tags)
		sentry.CaptureMessage(message)
	})

	if logger != nil {
		logger.Debug("Message captured in Sentry", "message", message, "level", level)
	}
}

// Flush waits for all events to be sent to Sentry.
// Call this before function termination to ensure events are sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// RecoverAndCapture recovers from a panic, captures it and re-panics.
func RecoverAndCapture(logger *slog.Logger) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", r)
		}
		CaptureException(err, map[string]string{"panic": "true"}, nil, logger)
		Flush(2 * time.Second)
		panic(r)
	}
}
