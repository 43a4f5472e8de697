package stravasync

import (
	"time"

	"github.com/marazt/strava-upload/pkg/domain/activity"
)

// Outcome is the final state of one item of a sync run.
type Outcome string

const (
	OutcomeUpdated           Outcome = "updated"
	OutcomePending           Outcome = "pending"
	OutcomePatched           Outcome = "patched"
	OutcomeDuplicate         Outcome = "duplicate"
	OutcomeCreated           Outcome = "created_from_metadata"
	OutcomeSkippedNoStart    Outcome = "skipped_no_start"
	OutcomeSkippedNoFile     Outcome = "skipped_no_file"
	OutcomeDroppedNoUploadID Outcome = "dropped_no_upload_id"
	OutcomeFailedProcessing  Outcome = "failed_processing"
)

// Outcomes lists every outcome in reporting order.
var Outcomes = []Outcome{
	OutcomeUpdated,
	OutcomePending,
	OutcomePatched,
	OutcomeDuplicate,
	OutcomeCreated,
	OutcomeSkippedNoStart,
	OutcomeSkippedNoFile,
	OutcomeDroppedNoUploadID,
	OutcomeFailedProcessing,
}

// Synced reports whether the outcome left the record on Strava.
func (o Outcome) Synced() bool {
	switch o {
	case OutcomeUpdated, OutcomePatched, OutcomeDuplicate, OutcomeCreated:
		return true
	default:
		return false
	}
}

// ItemResult records what happened to one input item.
type ItemResult struct {
	Source     activity.Source `json:"source"`
	SourceID   string          `json:"source_id"`
	Name       string          `json:"name"`
	SourceURL  string          `json:"source_url"`
	Outcome    Outcome         `json:"outcome"`
	ActivityID int64           `json:"activity_id,omitempty"`
	UploadID   int64           `json:"upload_id,omitempty"`
	Detail     string          `json:"detail,omitempty"`
}

// Report collects per-item results of one Synchronize call, in input order.
type Report struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Items      []*ItemResult `json:"items"`
}

func newReport() *Report {
	return &Report{StartedAt: time.Now().UTC()}
}

func (r *Report) add(rec *activity.Record) *ItemResult {
	result := &ItemResult{
		Source:    rec.Source,
		SourceID:  rec.SourceID,
		Name:      rec.Name,
		SourceURL: rec.SourceURL(),
	}
	r.Items = append(r.Items, result)
	return result
}

// Count returns the number of items with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == o {
			n++
		}
	}
	return n
}

// Counts returns the number of items per outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, item := range r.Items {
		counts[item.Outcome]++
	}
	return counts
}

// Synced returns the items that reached Strava.
func (r *Report) Synced() []*ItemResult {
	var synced []*ItemResult
	for _, item := range r.Items {
		if item.Outcome.Synced() {
			synced = append(synced, item)
		}
	}
	return synced
}
