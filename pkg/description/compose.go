package description

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/marazt/strava-upload/pkg/domain/activity"
)

const (
	MovescountHeader = "Movescount data:"
	GarminHeader     = "Garmin Connect data:"

	placeholder = "-"
)

// Compose returns the record's notes followed by the source annotation block.
// It never fails; absent values render as "-".
func Compose(r *activity.Record) string {
	switch r.Source {
	case activity.SourceGarminConnect:
		notes := strings.ReplaceAll(r.Notes, " + ", " plus ")
		return ReplaceSection(notes, GarminHeader, garminBlock(r))
	default:
		return ReplaceSection(r.Notes, MovescountHeader, movescountBlock(r))
	}
}

func movescountBlock(r *activity.Record) string {
	p := message.NewPrinter(language.English)

	feeling := placeholder
	if r.Feeling != nil {
		feeling = activity.Feeling(*r.Feeling).String()
	}
	weather := placeholder
	if r.Weather != nil {
		weather = activity.Weather(*r.Weather).String()
	}
	recovery := placeholder
	if r.RecoverySeconds != nil {
		recovery = p.Sprintf("%.1fh", *r.RecoverySeconds/3600)
	}

	lines := []string{
		MovescountHeader,
		"Move: " + r.SourceURL(),
		"Feeling: " + feeling,
		"Weather: " + weather,
		"Tags: " + orPlaceholder(r.Tags),
		"RecoveryTime: " + recovery,
	}
	return strings.Join(lines, "\n")
}

func garminBlock(r *activity.Record) string {
	p := message.NewPrinter(language.English)

	lines := []string{
		GarminHeader,
		"Activity: " + r.SourceURL(),
		"Training effect: " + oneDecimal(p, r.TrainingEffect),
		"Average HR: " + oneDecimal(p, r.AverageHR) + " bps",
		"Location: " + orPlaceholder(r.Location),
		"Average temperature: " + oneDecimal(p, r.AverageTemperature) + " °C",
	}
	return strings.Join(lines, "\n")
}

func oneDecimal(p *message.Printer, v *float64) string {
	if v == nil {
		return placeholder
	}
	return p.Sprintf("%.1f", *v)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
