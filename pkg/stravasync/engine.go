// Package stravasync reconciles local activity records with the athlete's
// Strava activities: matches update the description, everything else is
// uploaded and patched once Strava finishes processing the file.
package stravasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"
	"unicode"
	"unicode/utf8"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/description"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	httputil "github.com/marazt/strava-upload/pkg/infrastructure/http"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

// Item is one local activity to synchronize.
type Item struct {
	Record  *activity.Record
	GPSFile string
	Format  activity.DataFormat
}

// Options tune an Engine. The zero value is valid.
type Options struct {
	// PageSize of the remote activity listing; DefaultPageSize when zero.
	PageSize int
	// PollInterval between passes over pending uploads; zero polls back to back.
	PollInterval time.Duration
}

// Engine runs sync batches against one Strava account. Calls are sequential;
// callers serialize concurrent runs themselves.
type Engine struct {
	client       shared.StravaAPI
	fs           shared.FileSystem
	logger       *slog.Logger
	pageSize     int
	pollInterval time.Duration
}

func New(client shared.StravaAPI, fs shared.FileSystem, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{
		client:       client,
		fs:           fs,
		logger:       logger.With("component", "stravasync"),
		pageSize:     pageSize,
		pollInterval: opts.PollInterval,
	}
}

// Synchronize processes items in order against one snapshot of the remote
// index, then waits for every new upload to finish processing.
//
// Missing start times and missing GPS files skip the item. Duplicate and
// empty-file upload rejections are recovered. Any other remote failure aborts
// the run; the returned report still holds what was done up to that point.
func (e *Engine) Synchronize(ctx context.Context, items []Item) (*Report, error) {
	report := newReport()
	defer func() { report.FinishedAt = time.Now().UTC() }()

	if len(items) == 0 {
		e.logger.Info("No activities to synchronize")
		return report, nil
	}

	index, err := BuildIndex(ctx, e.client, e.pageSize, e.logger)
	if err != nil {
		return report, e.abort(err, "Failed to build remote activity index")
	}

	pending := make(pendingUploads)
	for i := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := e.syncItem(ctx, index, &items[i], report, pending); err != nil {
			return report, err
		}
	}

	if err := e.pollUploads(ctx, pending); err != nil {
		return report, err
	}

	e.logger.Info("Synchronization finished", "items", len(items), "synced", len(report.Synced()))
	return report, nil
}

func (e *Engine) syncItem(ctx context.Context, index Index, item *Item, report *Report, pending pendingUploads) error {
	rec := item.Record
	result := report.add(rec)
	log := e.logger.With("source", rec.Source, "source_id", rec.SourceID)

	start, ok := rec.EffectiveStart()
	if !ok {
		log.Error("Skipping activity without start time", "error", ErrMissingStartTime)
		result.Outcome = OutcomeSkippedNoStart
		result.Detail = ErrMissingStartTime.Error()
		return nil
	}

	key := KeyAt(start)
	desc := description.Compose(rec)

	if remote, found := index[key]; found {
		log.Info("Activity already on Strava, updating description", "activity_id", remote.ID, "key", key.String())
		if err := e.client.UpdateActivity(ctx, remote.ID, strava.FieldDescription, desc); err != nil {
			return e.abort(err, "Failed to update activity description", "source_id", rec.SourceID, "activity_id", remote.ID)
		}
		result.Outcome = OutcomeUpdated
		result.ActivityID = remote.ID
		return nil
	}

	return e.create(ctx, item, start, desc, result, pending, log)
}

func (e *Engine) create(ctx context.Context, item *Item, start time.Time, desc string, result *ItemResult, pending pendingUploads, log *slog.Logger) error {
	rec := item.Record

	if !e.fs.Exists(item.GPSFile) {
		log.Warn("GPS file not found, skipping activity", "file", item.GPSFile)
		result.Outcome = OutcomeSkippedNoFile
		result.Detail = "missing " + item.GPSFile
		return nil
	}

	data, err := e.fs.ReadFile(item.GPSFile)
	if err != nil {
		return e.abort(err, "Failed to read GPS file", "source_id", rec.SourceID, "file", item.GPSFile)
	}

	stravaType := activity.MapType(rec)
	log.Info("Uploading new activity", "file", item.GPSFile, "type", stravaType, "format", item.Format)

	status, err := e.client.UploadActivity(ctx, strava.UploadParams{
		FileName:     filepath.Base(item.GPSFile),
		Data:         data,
		DataType:     string(item.Format),
		ActivityType: string(stravaType),
		ExternalID:   fmt.Sprintf("%s-%s", rec.Source, rec.SourceID),
	})
	if err != nil {
		var rejected *strava.UploadError
		if !errors.As(err, &rejected) {
			return e.abort(err, "Upload failed", "source_id", rec.SourceID, "file", item.GPSFile)
		}

		kind := classifyUploadError(rejected.Message)
		log.Info("Upload rejected", "reason", kind.String(), "message", rejected.Message)

		switch kind {
		case uploadErrorDuplicate:
			return e.resolveDuplicate(ctx, rejected.Message, rec.Name, desc, result)
		case uploadErrorEmpty:
			return e.createFromMetadata(ctx, rec, start, stravaType, desc, result)
		default:
			return e.abort(err, "Upload rejected for an unknown reason", "source_id", rec.SourceID, "file", item.GPSFile)
		}
	}

	if status == nil || status.ID == 0 {
		log.Warn("Upload accepted without an upload id, dropping activity", "file", item.GPSFile)
		result.Outcome = OutcomeDroppedNoUploadID
		return nil
	}

	pending[status.ID] = &pendingUpload{
		description: desc,
		record:      rec,
		start:       start,
		stravaType:  stravaType,
		result:      result,
	}
	result.Outcome = OutcomePending
	result.UploadID = status.ID
	log.Info("Upload queued for processing", "upload_id", status.ID)
	return nil
}

// resolveDuplicate points the record at the activity Strava already has.
// Gear is not assigned.
func (e *Engine) resolveDuplicate(ctx context.Context, message, name, desc string, result *ItemResult) error {
	id, err := parseDuplicateID(message)
	if err != nil {
		return e.abort(err, "Failed to parse duplicate activity id", "source_id", result.SourceID)
	}

	e.logger.Info("Upload is a duplicate, updating existing activity", "source_id", result.SourceID, "activity_id", id)
	if err := e.client.UpdateActivity(ctx, id, strava.FieldDescription, desc); err != nil {
		return e.abort(err, "Failed to update duplicate activity description", "source_id", result.SourceID, "activity_id", id)
	}
	if name != "" {
		if err := e.client.UpdateActivity(ctx, id, strava.FieldName, name); err != nil {
			return e.abort(err, "Failed to update duplicate activity name", "source_id", result.SourceID, "activity_id", id)
		}
	}

	result.Outcome = OutcomeDuplicate
	result.ActivityID = id
	return nil
}

// createFromMetadata creates a manual activity for a file without track data.
func (e *Engine) createFromMetadata(ctx context.Context, rec *activity.Record, start time.Time, stravaType activity.StravaType, desc string, result *ItemResult) error {
	localStart := start
	if rec.StartLocal != nil {
		localStart = *rec.StartLocal
	}

	e.logger.Info("GPS file is empty, creating activity from metadata", "source_id", rec.SourceID, "type", stravaType)
	id, err := e.client.CreateActivity(ctx, strava.CreateActivityParams{
		Name:           rec.Name,
		Type:           string(stravaType),
		StartDateLocal: localStart,
		ElapsedSeconds: int(rec.DurationSeconds),
		Description:    desc,
		DistanceMeters: rec.Distance(),
	})
	if err != nil {
		return e.abort(err, "Failed to create activity from metadata", "source_id", rec.SourceID)
	}

	result.Outcome = OutcomeCreated
	result.ActivityID = id
	return nil
}

// AbortError is the failure that ended a sync run.
type AbortError struct {
	Op    string
	Err   error
	Stack string
}

func (e *AbortError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *AbortError) Unwrap() error { return e.Err }

// abort logs err with a stack trace and returns it as an *AbortError.
func (e *Engine) abort(err error, msg string, attrs ...any) error {
	stack := string(debug.Stack())
	attrs = append(attrs, "error", err, "stack", stack)
	if status := httputil.StatusCode(err); status != 0 {
		attrs = append(attrs, "http_status", status)
	}
	e.logger.Error(msg, attrs...)

	op := msg
	if r, size := utf8.DecodeRuneInString(msg); size > 0 {
		op = string(unicode.ToLower(r)) + msg[size:]
	}
	return &AbortError{Op: op, Err: err, Stack: stack}
}
