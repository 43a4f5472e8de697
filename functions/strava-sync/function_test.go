package stravasyncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/marazt/strava-upload/pkg/bootstrap"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/framework"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

type fakeRunner struct {
	sources []activity.Source
	runIDs  []string
	err     error
}

func (f *fakeRunner) Run(_ context.Context, src activity.Source, runID string) (*stravasync.Report, error) {
	f.sources = append(f.sources, src)
	f.runIDs = append(f.runIDs, runID)
	if f.err != nil {
		return &stravasync.Report{}, f.err
	}
	return &stravasync.Report{Items: []*stravasync.ItemResult{
		{SourceID: "1", Outcome: stravasync.OutcomeUpdated},
	}}, nil
}

func testService() *bootstrap.Service {
	return &bootstrap.Service{
		Config: &bootstrap.Config{Source: activity.SourceMovescount},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func schedulerEvent(t *testing.T, payload string) event.Event {
	t.Helper()
	var msg framework.PubSubMessage
	msg.Message.Data = []byte(payload)

	e := event.New()
	e.SetID("scheduler-1")
	e.SetType("google.cloud.pubsub.topic.v1.messagePublished")
	e.SetSource("//pubsub.googleapis.com/projects/p/topics/strava-sync")
	if err := e.SetData(event.ApplicationJSON, msg); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	return e
}

func TestSyncToStrava(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    activity.Source
	}{
		{"configured source", "", activity.SourceMovescount},
		{"empty object", "{}", activity.SourceMovescount},
		{"payload override", `{"source": "garmin"}`, activity.SourceGarminConnect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			handler := framework.WrapCloudEvent(serviceName, testService(), syncHandler(r))

			if err := handler(context.Background(), schedulerEvent(t, tt.payload)); err != nil {
				t.Fatalf("SyncToStrava: %v", err)
			}
			if len(r.sources) != 1 || r.sources[0] != tt.want {
				t.Errorf("ran %v, want [%s]", r.sources, tt.want)
			}
			if r.runIDs[0] == "" {
				t.Error("run ID missing")
			}
		})
	}
}

func TestSyncToStrava_UnknownSource(t *testing.T) {
	r := &fakeRunner{}
	handler := framework.WrapCloudEvent(serviceName, testService(), syncHandler(r))

	if err := handler(context.Background(), schedulerEvent(t, `{"source": "polar"}`)); err == nil {
		t.Fatal("expected error for unknown source")
	}
	if len(r.sources) != 0 {
		t.Errorf("runner should not be called, got %v", r.sources)
	}
}

func TestSyncToStrava_RunFailure(t *testing.T) {
	r := &fakeRunner{err: errors.New("strava unavailable")}
	handler := framework.WrapCloudEvent(serviceName, testService(), syncHandler(r))

	err := handler(context.Background(), schedulerEvent(t, ""))
	if err == nil || err.Error() != "strava unavailable" {
		t.Fatalf("expected run error, got %v", err)
	}
}
