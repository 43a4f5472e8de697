package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/infrastructure/storage"
	"github.com/marazt/strava-upload/pkg/testing/mocks"
)

const bucket = "backups"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func moveJSON(id int64, start string) []byte {
	return []byte(fmt.Sprintf(`{"MoveID": %d, "ActivityID": 3, "UTCStartTime": %q, "Duration": 1800, "Distance": 5000}`, id, start))
}

// memoryBucket serves objects from a map through the BlobStore mock.
func memoryBucket(objects map[string][]byte) *mocks.MockBlobStore {
	return &mocks.MockBlobStore{
		ListFunc: func(_ context.Context, b, prefix string) ([]string, error) {
			if b != bucket {
				return nil, fmt.Errorf("unexpected bucket %s", b)
			}
			var names []string
			for name := range objects {
				if strings.HasPrefix(name, prefix) {
					names = append(names, name)
				}
			}
			return names, nil
		},
		ReadFunc: func(_ context.Context, _ string, object string) ([]byte, error) {
			data, ok := objects[object]
			if !ok {
				return nil, storage.ErrObjectNotExist
			}
			return data, nil
		},
	}
}

func newTestStager(objects map[string][]byte, ledger shared.Database) *Stager {
	s := NewStager(memoryBucket(objects), storage.LocalFileSystem{}, ledger, discardLogger())
	s.now = func() time.Time { return time.Date(2019, 6, 30, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestStage_CopiesGPSFiles(t *testing.T) {
	objects := map[string][]byte{
		"movescount/200/move_data.json": moveJSON(200, "2019-06-02T07:00:00"),
		"movescount/200/gps_data.tcx":   []byte("<TrainingCenterDatabase/>"),
		"movescount/100/move_data.json": moveJSON(100, "2019-06-01T07:00:00"),
		"movescount/100/gps_data.tcx":   []byte("<TrainingCenterDatabase/>"),
		"garmin/1/activity_data.json":   []byte(`{"activityId": 1}`),
	}
	dir := t.TempDir()

	items, err := newTestStager(objects, nil).Stage(t.Context(), activity.SourceMovescount, Config{
		Bucket:   bucket,
		Prefix:   "movescount",
		LocalDir: dir,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "100", items[0].Record.SourceID)
	assert.Equal(t, "200", items[1].Record.SourceID)
	assert.Equal(t, filepath.Join(dir, "100", "gps_data.tcx"), items[0].GPSFile)
	assert.Equal(t, activity.FormatTCX, items[0].Format)
	assert.FileExists(t, items[0].GPSFile)
	assert.FileExists(t, items[1].GPSFile)
}

func TestStage_MissingGPSBlobKeepsItem(t *testing.T) {
	objects := map[string][]byte{
		"garmin/7/activity_data.json": []byte(`{"activityId": 7, "activityName": "Ride", "activityType": {"typeKey": "cycling"}, "summaryDTO": {"startTimeGMT": "2019-06-10T05:00:00.0", "duration": 3600}}`),
	}
	dir := t.TempDir()

	items, err := newTestStager(objects, nil).Stage(t.Context(), activity.SourceGarminConnect, Config{
		Bucket:   bucket,
		Prefix:   "garmin/",
		LocalDir: dir,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, activity.FormatGPX, items[0].Format)
	assert.NoFileExists(t, items[0].GPSFile)
}

func TestStage_Filters(t *testing.T) {
	objects := map[string][]byte{
		"movescount/1/move_data.json": moveJSON(1, "2019-01-01T07:00:00"),
		"movescount/2/move_data.json": moveJSON(2, "2019-06-20T07:00:00"),
		"movescount/3/move_data.json": moveJSON(3, "2019-06-21T07:00:00"),
		"movescount/4/move_data.json": []byte("null"),
		"movescount/5/move_data.json": []byte(`{"MoveID": 5, "ActivityID": 3, "Duration": 60}`),
	}
	ledger := &mocks.MockDatabase{
		GetSyncedActivityFunc: func(_ context.Context, source, sourceID string) (*shared.SyncedActivity, error) {
			if sourceID == "3" {
				return &shared.SyncedActivity{Source: source, SourceID: sourceID, ActivityID: 33}, nil
			}
			return nil, nil
		},
	}

	items, err := newTestStager(objects, ledger).Stage(t.Context(), activity.SourceMovescount, Config{
		Bucket:   bucket,
		Prefix:   "movescount",
		LocalDir: t.TempDir(),
		Lookback: 30 * 24 * time.Hour,
	})
	require.NoError(t, err)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.Record.SourceID)
	}
	// 1 is too old, 3 is in the ledger, 4 is null; 5 has no start and is left to the engine.
	assert.Equal(t, []string{"2", "5"}, ids)
}

func TestStage_LedgerErrorStagesAnyway(t *testing.T) {
	objects := map[string][]byte{
		"movescount/1/move_data.json": moveJSON(1, "2019-06-20T07:00:00"),
	}
	ledger := &mocks.MockDatabase{
		GetSyncedActivityFunc: func(context.Context, string, string) (*shared.SyncedActivity, error) {
			return nil, errors.New("firestore unavailable")
		},
	}

	items, err := newTestStager(objects, ledger).Stage(t.Context(), activity.SourceMovescount, Config{
		Bucket: bucket, Prefix: "movescount", LocalDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStage_ListError(t *testing.T) {
	store := &mocks.MockBlobStore{
		ListFunc: func(context.Context, string, string) ([]string, error) {
			return nil, errors.New("permission denied")
		},
	}
	s := NewStager(store, storage.LocalFileSystem{}, nil, discardLogger())

	_, err := s.Stage(t.Context(), activity.SourceMovescount, Config{Bucket: bucket, Prefix: "movescount"})
	assert.ErrorContains(t, err, "permission denied")
}

func TestCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	objects := map[string][]byte{
		"movescount/1/move_data.json": moveJSON(1, "2019-06-20T07:00:00"),
		"movescount/1/gps_data.tcx":   []byte("<TrainingCenterDatabase/>"),
	}
	s := newTestStager(objects, nil)

	items, err := s.Stage(t.Context(), activity.SourceMovescount, Config{Bucket: bucket, Prefix: "movescount", LocalDir: dir})
	require.NoError(t, err)
	require.FileExists(t, items[0].GPSFile)

	require.NoError(t, s.Cleanup(dir))
	assert.NoDirExists(t, dir)
	assert.NoError(t, s.Cleanup(""))
}

func TestStageDir(t *testing.T) {
	dir := t.TempDir()
	disk := storage.LocalFileSystem{}
	require.NoError(t, disk.WriteFile(filepath.Join(dir, "old", "move_data.json"), moveJSON(1, "2019-01-01T07:00:00")))
	require.NoError(t, disk.WriteFile(filepath.Join(dir, "recent", "move_data.json"), moveJSON(2, "2019-06-20T07:00:00")))
	require.NoError(t, disk.WriteFile(filepath.Join(dir, "recent", "gps_data.tcx"), []byte("<TrainingCenterDatabase/>")))

	s := newTestStager(nil, nil)
	items, err := s.StageDir(t.Context(), activity.SourceMovescount, dir, 30*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].Record.SourceID)
	assert.Equal(t, filepath.Join(dir, "recent", "gps_data.tcx"), items[0].GPSFile)
	assert.Equal(t, activity.FormatTCX, items[0].Format)

	_, err = s.StageDir(t.Context(), activity.SourceMovescount, filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)
}
