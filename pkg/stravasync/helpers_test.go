package stravasync

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
	"github.com/marazt/strava-upload/pkg/testing/mocks"
)

type updateCall struct {
	ID    int64
	Field strava.ActivityField
	Value string
}

// fakeStrava records every remote call made through its mock.
type fakeStrava struct {
	*mocks.MockStravaClient

	remote []strava.ActivitySummary

	listPages []int
	updates   []updateCall
	uploads   []strava.UploadParams
	creates   []strava.CreateActivityParams
	checks    []int64
}

func newFakeStrava(remote ...strava.ActivitySummary) *fakeStrava {
	f := &fakeStrava{remote: remote}
	f.MockStravaClient = &mocks.MockStravaClient{
		ListActivitiesFunc: func(_ context.Context, page, perPage int) ([]strava.ActivitySummary, error) {
			f.listPages = append(f.listPages, page)
			start := (page - 1) * perPage
			if start >= len(f.remote) {
				return nil, nil
			}
			return f.remote[start:min(start+perPage, len(f.remote))], nil
		},
		UpdateActivityFunc: func(_ context.Context, id int64, field strava.ActivityField, value string) error {
			f.updates = append(f.updates, updateCall{ID: id, Field: field, Value: value})
			return nil
		},
		CreateActivityFunc: func(_ context.Context, params strava.CreateActivityParams) (int64, error) {
			f.creates = append(f.creates, params)
			return 5000 + int64(len(f.creates)), nil
		},
		UploadActivityFunc: func(_ context.Context, params strava.UploadParams) (*strava.UploadStatus, error) {
			f.uploads = append(f.uploads, params)
			return &strava.UploadStatus{ID: 900 + int64(len(f.uploads)), Status: strava.StatusProcessing}, nil
		},
		CheckUploadStatusFunc: func(_ context.Context, uploadID int64) (*strava.UploadStatus, error) {
			f.checks = append(f.checks, uploadID)
			return &strava.UploadStatus{ID: uploadID, Status: strava.StatusReady, ActivityID: uploadID * 10}, nil
		},
	}
	return f
}

// remoteCalls counts mutating and status calls, ignoring the index listing.
func (f *fakeStrava) remoteCalls() int {
	return len(f.updates) + len(f.uploads) + len(f.creates) + len(f.checks)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func utc(year int, month time.Month, day, hour, minute, sec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func moveRecord(id string, start time.Time) *activity.Record {
	return &activity.Record{
		Source:          activity.SourceMovescount,
		SourceID:        id,
		Name:            "Run",
		TypeCode:        int(activity.MovescountRun),
		StartUTC:        ptr(start),
		DurationSeconds: 2700,
		DistanceMeters:  ptr(8400.0),
		Notes:           "Tempo",
	}
}

func itemFor(rec *activity.Record) Item {
	return Item{
		Record:  rec,
		GPSFile: "/backup/" + rec.SourceID + "/gps_data.tcx",
		Format:  activity.FormatTCX,
	}
}

func filesFor(items ...Item) *mocks.MockFileSystem {
	fs := &mocks.MockFileSystem{Files: map[string][]byte{}}
	for _, it := range items {
		fs.Files[it.GPSFile] = []byte("<TrainingCenterDatabase/>")
	}
	return fs
}
