package stravasync

import (
	"context"
	"slices"
	"time"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

type pendingUpload struct {
	description string
	record      *activity.Record
	start       time.Time
	stravaType  activity.StravaType
	result      *ItemResult
}

// pendingUploads maps upload ids to the patch applied once Strava is done.
type pendingUploads map[int64]*pendingUpload

// outstanding snapshots the pending ids in ascending order.
func (p pendingUploads) outstanding() []int64 {
	ids := make([]int64, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// pollUploads checks every pending upload until none is left. Each pass runs
// over a snapshot of the ids; resolved entries are removed from the map and
// the next pass starts from what remains. There is no retry horizon: an upload
// that never becomes ready keeps the loop running until ctx is cancelled.
func (e *Engine) pollUploads(ctx context.Context, pending pendingUploads) error {
	for pass := 1; len(pending) > 0; pass++ {
		ids := pending.outstanding()
		e.logger.Debug("Polling pending uploads", "pass", pass, "pending", len(ids))

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			resolved, err := e.checkUpload(ctx, id, pending[id])
			if err != nil {
				return err
			}
			if resolved {
				delete(pending, id)
			}
		}

		if len(pending) == 0 || e.pollInterval <= 0 {
			continue
		}
		timer := time.NewTimer(e.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// checkUpload reports whether the upload left the pending set.
func (e *Engine) checkUpload(ctx context.Context, uploadID int64, entry *pendingUpload) (bool, error) {
	result := entry.result
	status, err := e.client.CheckUploadStatus(ctx, uploadID)
	if err != nil {
		return false, e.abort(err, "Failed to check upload status", "source_id", result.SourceID, "upload_id", uploadID)
	}

	switch {
	case status.Failed():
		return true, e.uploadFailed(ctx, uploadID, status, entry)

	case status.IsReady():
		if status.ActivityID == 0 {
			e.logger.Warn("Upload ready without an activity id, dropping", "source_id", result.SourceID, "upload_id", uploadID)
			result.Outcome = OutcomeDroppedNoUploadID
			return true, nil
		}
		if err := e.client.UpdateActivity(ctx, status.ActivityID, strava.FieldDescription, entry.description); err != nil {
			return false, e.abort(err, "Failed to patch uploaded activity description",
				"source_id", result.SourceID, "upload_id", uploadID, "activity_id", status.ActivityID)
		}
		e.logger.Info("Upload processed, description patched",
			"source_id", result.SourceID, "upload_id", uploadID, "activity_id", status.ActivityID)
		result.Outcome = OutcomePatched
		result.ActivityID = status.ActivityID
		return true, nil

	default:
		e.logger.Debug("Upload still processing", "upload_id", uploadID, "status", status.Status)
		return false, nil
	}
}

// uploadFailed handles an upload whose processing ended in an error. A
// duplicate is resolved against the existing activity and an empty file falls
// back to a manual activity; anything else drops the entry.
func (e *Engine) uploadFailed(ctx context.Context, uploadID int64, status *strava.UploadStatus, entry *pendingUpload) error {
	result := entry.result
	switch classifyUploadError(status.Error) {
	case uploadErrorDuplicate:
		e.logger.Info("Upload processed as duplicate", "source_id", result.SourceID, "upload_id", uploadID, "message", status.Error)
		return e.resolveDuplicate(ctx, status.Error, entry.record.Name, entry.description, result)
	case uploadErrorEmpty:
		e.logger.Info("Upload processed as empty", "source_id", result.SourceID, "upload_id", uploadID, "message", status.Error)
		return e.createFromMetadata(ctx, entry.record, entry.start, entry.stravaType, entry.description, result)
	}

	e.logger.Error("Upload processing failed, dropping activity",
		"source_id", result.SourceID, "upload_id", uploadID, "error", status.Error)
	result.Outcome = OutcomeFailedProcessing
	result.Detail = status.Error
	return nil
}
