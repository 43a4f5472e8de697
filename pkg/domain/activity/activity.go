// Package activity holds the locally downloaded activity records that are
// synchronized to Strava, together with the source-to-Strava type mapping.
package activity

import (
	"strings"
	"time"
)

// Source identifies the platform a local activity was exported from.
type Source string

const (
	SourceMovescount    Source = "movescount"
	SourceGarminConnect Source = "garmin"
)

// ParseSource accepts the canonical names plus a couple of informal aliases.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movescount", "suunto":
		return SourceMovescount, true
	case "garmin", "garminconnect", "garmin-connect", "garmin_connect":
		return SourceGarminConnect, true
	default:
		return "", false
	}
}

// DataFormat is the GPS payload format accepted by the Strava upload endpoint.
type DataFormat string

const (
	FormatFIT DataFormat = "fit"
	FormatTCX DataFormat = "tcx"
	FormatGPX DataFormat = "gpx"
)

// DefaultFormat returns the format the backup tooling exports for a source.
func DefaultFormat(src Source) DataFormat {
	if src == SourceGarminConnect {
		return FormatGPX
	}
	return FormatTCX
}

// Record is the normalized view of one completed exercise session.
// Optional values are pointers; a nil pointer means the source did not report it.
type Record struct {
	Source   Source
	SourceID string
	Name     string

	// TypeCode is the Movescount ActivityID; TypeKey is the Garmin Connect typeKey.
	TypeCode int
	TypeKey  string

	StartUTC   *time.Time
	StartLocal *time.Time

	DurationSeconds float64
	DistanceMeters  *float64
	Notes           string

	// Movescount context
	Feeling         *int
	Weather         *int
	Tags            string
	RecoverySeconds *float64

	// Garmin Connect context
	TrainingEffect     *float64
	AverageHR          *float64
	AverageTemperature *float64
	Location           string
}

// EffectiveStart prefers the UTC start time and falls back to the local one.
// The second return value is false when neither was reported.
func (r *Record) EffectiveStart() (time.Time, bool) {
	if r.StartUTC != nil && !r.StartUTC.IsZero() {
		return r.StartUTC.UTC(), true
	}
	if r.StartLocal != nil && !r.StartLocal.IsZero() {
		return r.StartLocal.UTC(), true
	}
	return time.Time{}, false
}

// Distance returns the distance in meters, zero when absent.
func (r *Record) Distance() float64 {
	if r.DistanceMeters == nil {
		return 0
	}
	return *r.DistanceMeters
}

// SourceURL links back to the record on the source platform.
func (r *Record) SourceURL() string {
	switch r.Source {
	case SourceGarminConnect:
		return "https://connect.garmin.com/modern/activity/" + r.SourceID
	default:
		return "http://www.movescount.com/moves/move" + r.SourceID
	}
}
