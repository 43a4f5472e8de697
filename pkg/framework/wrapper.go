package framework

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"

	"github.com/marazt/strava-upload/pkg/bootstrap"
	"github.com/marazt/strava-upload/pkg/infrastructure/sentry"
)

const sentryFlushTimeout = 2 * time.Second

// PubSubMessage is the envelope Cloud Functions wraps Pub/Sub messages in.
type PubSubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// FrameworkContext contains dependencies injected by the framework
type FrameworkContext struct {
	Service *bootstrap.Service
	Logger  *slog.Logger
	RunID   string
}

// HandlerFunc is the signature for a cloud function handler
type HandlerFunc func(ctx context.Context, e event.Event, fwCtx *FrameworkContext) (interface{}, error)

// WrapCloudEvent wraps a handler with a run ID, a scoped logger and panic
// reporting. Handles both HTTP and Pub/Sub triggers.
func WrapCloudEvent(serviceName string, svc *bootstrap.Service, handler HandlerFunc) func(context.Context, event.Event) error {
	return func(ctx context.Context, e event.Event) error {
		runID := extractRunID(e)

		triggerType := "pubsub"
		if e.Type() == "google.cloud.functions.http" {
			triggerType = "http"
		}

		logger := svc.Logger
		if logger == nil {
			logger = bootstrap.NewLogger(serviceName, false)
		}
		logger = logger.With("run_id", runID, "trigger", triggerType)

		defer sentry.Flush(sentryFlushTimeout)
		defer sentry.RecoverAndCapture(logger)

		logger.Info("Function started", "event_id", e.ID())

		fwCtx := &FrameworkContext{
			Service: svc,
			Logger:  logger,
			RunID:   runID,
		}

		outputs, handlerErr := handler(ctx, e, fwCtx)
		if handlerErr != nil {
			logger.Error("Function failed", "error", handlerErr)
			return handlerErr
		}

		logger.Info("Function completed successfully", "outputs", outputs)
		return nil
	}
}

// DecodePayload unmarshals the JSON payload of e into v. Pub/Sub envelopes
// are unwrapped; an event without data leaves v untouched.
func DecodePayload(e event.Event, v interface{}) error {
	data := e.Data()
	if len(data) == 0 {
		return nil
	}

	var msg PubSubMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Message.Data != nil {
		data = msg.Message.Data
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// extractRunID reuses a run_id attribute or extension when the caller set
// one, otherwise generates a new ID.
func extractRunID(e event.Event) string {
	var msg PubSubMessage
	if err := e.DataAs(&msg); err == nil {
		if id := msg.Message.Attributes["run_id"]; id != "" {
			return id
		}
	}
	if id, ok := e.Extensions()["runid"].(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
