// Package backup stages exported activities from the backup bucket onto local
// disk, where the sync engine expects <dir>/<id>/gps_data.<format>.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/domain/gpsfile"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

// Disk is the local side of staging.
type Disk interface {
	shared.FileSystem
	WriteFile(path string, data []byte) error
	RemoveAll(path string) error
}

// Config locates one source's backup.
type Config struct {
	Bucket string
	// Prefix is the object prefix of the source, e.g. "movescount".
	Prefix string
	// LocalDir receives the staged GPS files.
	LocalDir string
	// Lookback drops records that started earlier than now minus Lookback. Zero keeps everything.
	Lookback time.Duration
}

// Stager copies metadata and GPS files of one source out of blob storage.
type Stager struct {
	store  shared.BlobStore
	disk   Disk
	ledger shared.Database
	logger *slog.Logger
	now    func() time.Time
}

// NewStager creates a Stager. ledger may be nil, in which case previously
// synced records are staged again.
func NewStager(store shared.BlobStore, disk Disk, ledger shared.Database, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{
		store:  store,
		disk:   disk,
		ledger: ledger,
		logger: logger.With("component", "backup"),
		now:    time.Now,
	}
}

// Stage lists the source's metadata documents, keeps the ones worth syncing
// and copies their GPS files to cfg.LocalDir. A record whose GPS blob is
// missing is still returned; the engine decides what to do without a file.
func (s *Stager) Stage(ctx context.Context, src activity.Source, cfg Config) ([]stravasync.Item, error) {
	metaFile := activity.MetadataFile(src)
	format := activity.DefaultFormat(src)
	prefix := strings.TrimSuffix(cfg.Prefix, "/") + "/"

	objects, err := s.store.List(ctx, cfg.Bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("list backup objects: %w", err)
	}

	var metaObjects []string
	for _, name := range objects {
		if path.Base(name) == metaFile {
			metaObjects = append(metaObjects, name)
		}
	}
	sort.Strings(metaObjects)
	s.logger.Info("Backup listed", "bucket", cfg.Bucket, "prefix", prefix, "objects", len(objects), "activities", len(metaObjects))

	cutoff := s.cutoff(cfg.Lookback)
	var items []stravasync.Item
	for _, name := range metaObjects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := s.loadRecord(ctx, src, cfg.Bucket, name)
		if err != nil {
			s.logger.Error("Metadata could not be loaded", "object", name, "error", err)
			continue
		}

		if !s.wanted(ctx, rec, cutoff) {
			continue
		}

		item := stravasync.Item{
			Record:  rec,
			GPSFile: filepath.Join(cfg.LocalDir, path.Base(path.Dir(name)), activity.GpsFileName(format)),
			Format:  format,
		}
		s.copyGPS(ctx, cfg.Bucket, path.Join(path.Dir(name), activity.GpsFileName(format)), item)
		items = append(items, item)
	}

	s.logger.Info("Backup staged", "source", src, "items", len(items), "dir", cfg.LocalDir)
	return items, nil
}

// StageDir builds items from an export that is already on local disk, laid
// out as <dir>/<id>/<metadata file> next to gps_data.<format>. Nothing is
// copied and Cleanup must not be called on dir.
func (s *Stager) StageDir(ctx context.Context, src activity.Source, dir string, lookback time.Duration) ([]stravasync.Item, error) {
	records, err := activity.LoadFromDir(dir, src, s.logger)
	if err != nil {
		return nil, err
	}

	format := activity.DefaultFormat(src)
	cutoff := s.cutoff(lookback)
	var items []stravasync.Item
	for _, stored := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.wanted(ctx, stored.Record, cutoff) {
			continue
		}
		items = append(items, stravasync.Item{
			Record:  stored.Record,
			GPSFile: filepath.Join(stored.Dir, activity.GpsFileName(format)),
			Format:  format,
		})
	}

	s.logger.Info("Local export loaded", "source", src, "records", len(records), "items", len(items), "dir", dir)
	return items, nil
}

func (s *Stager) cutoff(lookback time.Duration) time.Time {
	if lookback <= 0 {
		return time.Time{}
	}
	return s.now().Add(-lookback)
}

// wanted drops records older than cutoff and records the ledger has already
// synced. Records without a start time are kept.
func (s *Stager) wanted(ctx context.Context, rec *activity.Record, cutoff time.Time) bool {
	if start, ok := rec.EffectiveStart(); ok && !cutoff.IsZero() && start.Before(cutoff) {
		s.logger.Debug("Outside lookback window", "source_id", rec.SourceID, "start", start)
		return false
	}
	return !s.alreadySynced(ctx, rec)
}

func (s *Stager) loadRecord(ctx context.Context, src activity.Source, bucket, name string) (*activity.Record, error) {
	data, err := s.store.Read(ctx, bucket, name)
	if err != nil {
		return nil, err
	}
	return activity.DecodeRecord(src, data)
}

func (s *Stager) alreadySynced(ctx context.Context, rec *activity.Record) bool {
	if s.ledger == nil {
		return false
	}
	entry, err := s.ledger.GetSyncedActivity(ctx, string(rec.Source), rec.SourceID)
	if err != nil {
		s.logger.Warn("Sync ledger lookup failed, staging anyway", "source_id", rec.SourceID, "error", err)
		return false
	}
	if entry == nil {
		return false
	}
	s.logger.Debug("Already synced", "source_id", rec.SourceID, "activity_id", entry.ActivityID, "synced_at", entry.SyncedAt)
	return true
}

func (s *Stager) copyGPS(ctx context.Context, bucket, object string, item stravasync.Item) {
	if s.disk.Exists(item.GPSFile) {
		return
	}

	data, err := s.store.Read(ctx, bucket, object)
	if err != nil {
		s.logger.Warn("GPS file not in backup", "source_id", item.Record.SourceID, "object", object, "error", err)
		return
	}
	if err := s.disk.WriteFile(item.GPSFile, data); err != nil {
		s.logger.Warn("GPS file could not be staged", "source_id", item.Record.SourceID, "file", item.GPSFile, "error", err)
		return
	}

	summary, err := gpsfile.Inspect(data, item.Format)
	switch {
	case errors.Is(err, gpsfile.ErrEmptyFile):
		s.logger.Warn("GPS file is empty", "source_id", item.Record.SourceID, "file", item.GPSFile)
	case err != nil:
		s.logger.Warn("GPS file could not be inspected", "source_id", item.Record.SourceID, "file", item.GPSFile, "error", err)
	case summary.Empty():
		s.logger.Warn("GPS file has no track points", "source_id", item.Record.SourceID, "file", item.GPSFile)
	default:
		s.logger.Debug("GPS file staged", "source_id", item.Record.SourceID, "file", item.GPSFile, "points", summary.Points)
	}
}

// Cleanup removes the staging directory.
func (s *Stager) Cleanup(dir string) error {
	if dir == "" {
		return nil
	}
	if err := s.disk.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove staging dir: %w", err)
	}
	return nil
}
