package stravasync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

// DefaultPageSize is the number of remote activities requested per page.
const DefaultPageSize = 30

// RemoteActivity is the projection of a Strava activity used for matching.
type RemoteActivity struct {
	ID    int64
	Name  string
	Type  string
	Start time.Time
}

// Index maps RangeKeys to the first remote activity seen for that key.
type Index map[RangeKey]RemoteActivity

// BuildIndex snapshots all remote activities. Any page failure is returned.
func BuildIndex(ctx context.Context, lister shared.ActivityLister, pageSize int, logger *slog.Logger) (Index, error) {
	index := make(Index)
	total := 0
	err := forEachPage(ctx, lister, pageSize, func(page []strava.ActivitySummary) error {
		for _, a := range page {
			total++
			key := KeyAt(a.StartDate)
			if existing, ok := index[key]; ok {
				logger.Debug("Remote activity shares a start minute, keeping first",
					"key", key.String(), "kept_id", existing.ID, "ignored_id", a.ID)
				continue
			}
			index[key] = RemoteActivity{ID: a.ID, Name: a.Name, Type: a.Type, Start: a.StartDate}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Built remote activity index", "activities", total, "keys", len(index))
	return index, nil
}

// forEachPage requests pages starting at 1 until one comes back empty.
func forEachPage(ctx context.Context, lister shared.ActivityLister, pageSize int, fn func([]strava.ActivitySummary) error) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		activities, err := lister.ListActivities(ctx, page, pageSize)
		if err != nil {
			return fmt.Errorf("list remote activities: %w", err)
		}
		if len(activities) == 0 {
			return nil
		}
		if err := fn(activities); err != nil {
			return err
		}
	}
}
