// Package syncrun drives one complete sync run: stage the backup, synchronize
// it to Strava, then record and announce the result.
package syncrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"runtime/debug"
	"time"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/backup"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/infrastructure/metrics"
	infrapubsub "github.com/marazt/strava-upload/pkg/infrastructure/pubsub"
	"github.com/marazt/strava-upload/pkg/infrastructure/sentry"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

// Config holds the run settings that do not change between runs.
type Config struct {
	Bucket string
	// Prefixes maps each source to its object prefix in Bucket.
	Prefixes map[activity.Source]string
	// LocalDir is the parent of the per-run staging directories.
	LocalDir       string
	Lookback       time.Duration
	PushgatewayURL string
	Topic          string
	// ReportPrefix is where run reports are archived in Bucket; empty disables archiving.
	ReportPrefix string
}

// Deps are the collaborators of a Runner. Store, Ledger, Publisher and Notifier may be nil.
type Deps struct {
	Engine    *stravasync.Engine
	Stager    *backup.Stager
	Store     shared.BlobStore
	Ledger    shared.Database
	Publisher shared.Publisher
	Notifier  shared.Notifier
	Logger    *slog.Logger
}

// Runner executes sync runs. Runs against the same Strava account must not overlap.
type Runner struct {
	engine    *stravasync.Engine
	stager    *backup.Stager
	store     shared.BlobStore
	ledger    shared.Database
	publisher shared.Publisher
	notifier  shared.Notifier
	logger    *slog.Logger
	cfg       Config
}

func NewRunner(deps Deps, cfg Config) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		engine:    deps.Engine,
		stager:    deps.Stager,
		store:     deps.Store,
		ledger:    deps.Ledger,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		logger:    logger.With("component", "syncrun"),
		cfg:       cfg,
	}
}

// RunSummary is the payload of the sync-completed event.
type RunSummary struct {
	RunID  string                     `json:"run_id"`
	Source activity.Source            `json:"source"`
	Counts map[stravasync.Outcome]int `json:"counts"`
	Report *stravasync.Report         `json:"report"`
}

// Run synchronizes one source from the backup bucket. The staging directory
// is removed whatever the outcome. A failed run is reported by email and to
// Sentry before the error is returned.
func (r *Runner) Run(ctx context.Context, src activity.Source, runID string) (*stravasync.Report, error) {
	prefix, ok := r.cfg.Prefixes[src]
	if !ok {
		return nil, fmt.Errorf("no backup prefix configured for source %q", src)
	}
	localDir := filepath.Join(r.cfg.LocalDir, runID)
	defer func() {
		if err := r.stager.Cleanup(localDir); err != nil {
			r.logger.Warn("Staging directory could not be removed", "dir", localDir, "run_id", runID, "error", err)
		}
	}()

	return r.execute(ctx, src, runID, func(ctx context.Context) ([]stravasync.Item, error) {
		return r.stager.Stage(ctx, src, backup.Config{
			Bucket:   r.cfg.Bucket,
			Prefix:   prefix,
			LocalDir: localDir,
			Lookback: r.cfg.Lookback,
		})
	})
}

// RunDir synchronizes an export that already sits on local disk. dir is left
// untouched.
func (r *Runner) RunDir(ctx context.Context, src activity.Source, runID, dir string) (*stravasync.Report, error) {
	return r.execute(ctx, src, runID, func(ctx context.Context) ([]stravasync.Item, error) {
		return r.stager.StageDir(ctx, src, dir, r.cfg.Lookback)
	})
}

func (r *Runner) execute(ctx context.Context, src activity.Source, runID string, stage func(context.Context) ([]stravasync.Item, error)) (*stravasync.Report, error) {
	started := time.Now()
	logger := r.logger.With("source", src, "run_id", runID)
	logger.Info("Sync run started")

	report, err := r.synchronize(ctx, stage)

	if report != nil {
		r.markSynced(ctx, logger, src, runID, report)
		metrics.RecordItems(string(src), outcomeCounts(report))
	}
	metrics.RecordRun(string(src), started, err)
	if pushErr := metrics.Push(ctx, r.cfg.PushgatewayURL, runID); pushErr != nil {
		logger.Warn("Metrics push failed", "error", pushErr)
	}

	if err != nil {
		r.fail(ctx, logger, src, runID, err)
		return report, err
	}

	summary := RunSummary{RunID: runID, Source: src, Counts: report.Counts(), Report: report}
	r.archive(ctx, logger, summary)
	r.notifySuccess(ctx, logger, src, report)
	r.publish(ctx, logger, summary)

	logger.Info("Sync run finished", "items", len(report.Items), "synced", len(report.Synced()), "duration", time.Since(started).String())
	return report, nil
}

func (r *Runner) synchronize(ctx context.Context, stage func(context.Context) ([]stravasync.Item, error)) (*stravasync.Report, error) {
	items, err := stage(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage backup: %w", err)
	}
	return r.engine.Synchronize(ctx, items)
}

func (r *Runner) markSynced(ctx context.Context, logger *slog.Logger, src activity.Source, runID string, report *stravasync.Report) {
	if r.ledger == nil {
		return
	}
	now := time.Now().UTC()
	for _, item := range report.Synced() {
		entry := &shared.SyncedActivity{
			Source:     string(src),
			SourceID:   item.SourceID,
			Outcome:    string(item.Outcome),
			ActivityID: item.ActivityID,
			UploadID:   item.UploadID,
			RunID:      runID,
			SyncedAt:   now,
		}
		if err := r.ledger.SetSyncedActivity(ctx, entry); err != nil {
			logger.Warn("Sync ledger write failed", "source_id", item.SourceID, "error", err)
		}
	}
}

func (r *Runner) notifySuccess(ctx context.Context, logger *slog.Logger, src activity.Source, report *stravasync.Report) {
	if r.notifier == nil {
		return
	}
	body, err := SuccessBody(src, report)
	if err != nil {
		logger.Error("Summary email could not be rendered", "error", err)
		return
	}
	if err := r.notifier.SendEmail(ctx, EmailSubject(src), body); err != nil {
		logger.Warn("Summary email could not be sent", "error", err)
	}
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, src activity.Source, runID string, runErr error) {
	stack := string(debug.Stack())
	var abortErr *stravasync.AbortError
	if errors.As(runErr, &abortErr) {
		stack = abortErr.Stack
	}
	logger.Error("Sync run failed", "error", runErr)

	sentry.CaptureException(runErr, map[string]string{"source": string(src), "run_id": runID}, nil, logger)

	if r.notifier == nil {
		return
	}
	body, err := FailureBody(src, runErr, stack)
	if err != nil {
		logger.Error("Failure email could not be rendered", "error", err)
		return
	}
	// The run context may already be cancelled; the failure still gets reported.
	if err := r.notifier.SendEmail(context.WithoutCancel(ctx), EmailSubject(src), body); err != nil {
		logger.Warn("Failure email could not be sent", "error", err)
	}
}

// archive writes the run summary to <ReportPrefix>/<source>/<run id>.json.
func (r *Runner) archive(ctx context.Context, logger *slog.Logger, summary RunSummary) {
	if r.store == nil || r.cfg.ReportPrefix == "" {
		return
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Error("Run report could not be encoded", "error", err)
		return
	}
	object := path.Join(r.cfg.ReportPrefix, string(summary.Source), summary.RunID+".json")
	if err := r.store.Write(ctx, r.cfg.Bucket, object, data); err != nil {
		logger.Warn("Run report could not be archived", "object", object, "error", err)
		return
	}
	logger.Debug("Run report archived", "object", object)
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, summary RunSummary) {
	if r.publisher == nil || r.cfg.Topic == "" {
		return
	}
	event, err := infrapubsub.NewCloudEvent(shared.EventSource, shared.EventTypeSyncCompleted, summary)
	if err != nil {
		logger.Error("Run event could not be built", "error", err)
		return
	}
	msgID, err := r.publisher.PublishCloudEvent(ctx, r.cfg.Topic, event)
	if err != nil {
		logger.Warn("Run event could not be published", "topic", r.cfg.Topic, "error", err)
		return
	}
	logger.Debug("Run event published", "topic", r.cfg.Topic, "message_id", msgID)
}

// FixTypes runs the activity type fix-up over the whole Strava account.
func (r *Runner) FixTypes(ctx context.Context) (*stravasync.FixReport, error) {
	report, err := r.engine.FixActivityTypes(ctx)
	if report != nil {
		metrics.RecordTypeFixes(len(report.Fixed), len(report.Manual), len(report.Unparsed))
		if len(report.Manual) > 0 {
			sentry.CaptureMessage(fmt.Sprintf("%d Strava activities need their type set manually", len(report.Manual)),
				sentry.LevelWarning, map[string]string{"operation": "fix_types"}, r.logger)
		}
	}
	if err != nil {
		sentry.CaptureException(err, map[string]string{"operation": "fix_types"}, nil, r.logger)
	}
	return report, err
}

func outcomeCounts(report *stravasync.Report) map[string]int {
	counts := make(map[string]int)
	for outcome, n := range report.Counts() {
		counts[string(outcome)] = n
	}
	return counts
}
