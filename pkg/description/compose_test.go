package description

import (
	"strings"
	"testing"

	"github.com/marazt/strava-upload/pkg/domain/activity"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCompose_Movescount(t *testing.T) {
	record := &activity.Record{
		Source:          activity.SourceMovescount,
		SourceID:        "123",
		Notes:           "Intervals on the track",
		Feeling:         intPtr(int(activity.FeelingVeryGood)),
		Weather:         intPtr(int(activity.WeatherCloudy)),
		Tags:            "track,speed",
		RecoverySeconds: floatPtr(5400),
	}

	got := Compose(record)
	want := "Intervals on the track\n\n" +
		"Movescount data:\n" +
		"Move: http://www.movescount.com/moves/move123\n" +
		"Feeling: VeryGood\n" +
		"Weather: Cloudy\n" +
		"Tags: track,speed\n" +
		"RecoveryTime: 1.5h"
	if got != want {
		t.Errorf("Compose() =\n%q\nwant\n%q", got, want)
	}
}

func TestCompose_MovescountAbsentFields(t *testing.T) {
	record := &activity.Record{Source: activity.SourceMovescount, SourceID: "7"}

	got := Compose(record)
	for _, line := range []string{"Feeling: -", "Weather: -", "Tags: -", "RecoveryTime: -"} {
		if !strings.Contains(got, line) {
			t.Errorf("expected %q in %q", line, got)
		}
	}
	if !strings.HasPrefix(got, MovescountHeader) {
		t.Errorf("empty notes should start with the block, got %q", got)
	}
}

func TestCompose_Garmin(t *testing.T) {
	record := &activity.Record{
		Source:             activity.SourceGarminConnect,
		SourceID:           "555",
		Notes:              "Warm-up + 5k",
		TrainingEffect:     floatPtr(3.26),
		AverageHR:          floatPtr(151.44),
		AverageTemperature: floatPtr(12.44),
		Location:           "Prague",
	}

	got := Compose(record)
	want := "Warm-up plus 5k\n\n" +
		"Garmin Connect data:\n" +
		"Activity: https://connect.garmin.com/modern/activity/555\n" +
		"Training effect: 3.3\n" +
		"Average HR: 151.4 bps\n" +
		"Location: Prague\n" +
		"Average temperature: 12.4 °C"
	if got != want {
		t.Errorf("Compose() =\n%q\nwant\n%q", got, want)
	}
}

func TestCompose_GarminAbsentFields(t *testing.T) {
	got := Compose(&activity.Record{Source: activity.SourceGarminConnect, SourceID: "1"})
	for _, line := range []string{"Training effect: -", "Average HR: - bps", "Location: -", "Average temperature: - °C"} {
		if !strings.Contains(got, line) {
			t.Errorf("expected %q in %q", line, got)
		}
	}
}

func TestCompose_IsDeterministicAndIdempotent(t *testing.T) {
	record := &activity.Record{Source: activity.SourceMovescount, SourceID: "9", Notes: "Hills"}
	first := Compose(record)
	if second := Compose(record); first != second {
		t.Errorf("Compose not deterministic:\n%q\n%q", first, second)
	}

	// Notes that already carry a block get it replaced, not duplicated.
	record.Notes = first
	if again := Compose(record); again != first {
		t.Errorf("re-composing duplicated the block:\n%q", again)
	}
}
