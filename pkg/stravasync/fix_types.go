package stravasync

import (
	"context"
	"errors"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

// FixReport summarizes a FixActivityTypes pass.
type FixReport struct {
	Checked  int     `json:"checked"`
	Fixed    []int64 `json:"fixed"`
	Manual   []int64 `json:"manual"`
	Unparsed []int64 `json:"unparsed"`
}

// FixActivityTypes walks all remote activities and retypes generic Workout
// activities whose name is a Movescount activity name, e.g. a "Cycling"
// workout becomes a Ride. Names that map back to Workout are left for manual
// resolution. An update failure aborts the pass.
func (e *Engine) FixActivityTypes(ctx context.Context) (*FixReport, error) {
	report := &FixReport{}
	workout := string(activity.StravaWorkout)

	err := forEachPage(ctx, e.client, e.pageSize, func(page []strava.ActivitySummary) error {
		for _, a := range page {
			report.Checked++
			if a.Type != workout {
				continue
			}

			code, ok := activity.ParseMovescountActivity(a.Name)
			if !ok {
				e.logger.Warn("Workout name is not a Movescount activity, skipping", "activity_id", a.ID, "name", a.Name)
				report.Unparsed = append(report.Unparsed, a.ID)
				continue
			}

			mapped := activity.MapMovescountType(code)
			if mapped == activity.StravaWorkout {
				e.logger.Warn("Activity type must be resolved manually", "activity_id", a.ID, "name", a.Name)
				report.Manual = append(report.Manual, a.ID)
				continue
			}

			if err := e.client.UpdateActivity(ctx, a.ID, strava.FieldType, string(mapped)); err != nil {
				return e.abort(err, "Failed to update activity type", "activity_id", a.ID, "type", mapped)
			}
			e.logger.Info("Activity type fixed", "activity_id", a.ID, "name", a.Name, "type", mapped)
			report.Fixed = append(report.Fixed, a.ID)
		}
		return nil
	})
	if err != nil {
		var aborted *AbortError
		if errors.As(err, &aborted) {
			return report, err
		}
		return report, e.abort(err, "Failed to list remote activities")
	}

	e.logger.Info("Activity type fix finished", "checked", report.Checked, "fixed", len(report.Fixed),
		"manual", len(report.Manual), "unparsed", len(report.Unparsed))
	return report, nil
}
