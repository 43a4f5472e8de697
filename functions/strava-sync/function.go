package stravasyncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/marazt/strava-upload/pkg/bootstrap"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/framework"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

const serviceName = "strava-sync"

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.CloudEvent("SyncToStrava", SyncToStrava)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		cfg, err := bootstrap.LoadConfig()
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			slog.Error("Invalid configuration", "error", err)
			svcErr = err
			return
		}
		baseSvc, err := bootstrap.NewService(ctx, cfg, bootstrap.NewLogger(serviceName, false))
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// SyncToStrava is the entry point, triggered by Cloud Scheduler through Pub/Sub.
func SyncToStrava(ctx context.Context, e event.Event) error {
	svc, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("service init failed: %v", err)
	}
	return framework.WrapCloudEvent(serviceName, svc, syncHandler(svc.Runner()))(ctx, e)
}

type runner interface {
	Run(ctx context.Context, src activity.Source, runID string) (*stravasync.Report, error)
}

// syncRequest is the optional message payload.
type syncRequest struct {
	Source string `json:"source"`
}

// syncHandler runs one sync of the configured source, or of the source named
// in the message.
func syncHandler(r runner) framework.HandlerFunc {
	return func(ctx context.Context, e event.Event, fwCtx *framework.FrameworkContext) (interface{}, error) {
		var req syncRequest
		if err := framework.DecodePayload(e, &req); err != nil {
			return nil, err
		}

		src := fwCtx.Service.Config.Source
		if req.Source != "" {
			parsed, ok := activity.ParseSource(req.Source)
			if !ok {
				return nil, fmt.Errorf("unknown source %q", req.Source)
			}
			src = parsed
		}

		fwCtx.Logger.Info("Starting sync", "source", src)
		report, err := r.Run(ctx, src, fwCtx.RunID)
		if err != nil {
			return nil, err
		}

		counts := make(map[string]int)
		for outcome, n := range report.Counts() {
			counts[string(outcome)] = n
		}
		return map[string]interface{}{
			"status": "success",
			"source": string(src),
			"items":  len(report.Items),
			"counts": counts,
		}, nil
	}
}
