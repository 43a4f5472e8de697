// Package gpsfile reads just enough of a FIT, TCX or GPX file to tell whether
// it carries a track and when that track starts.
package gpsfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/marazt/strava-upload/pkg/domain/activity"
)

// ErrEmptyFile is returned for zero-length input.
var ErrEmptyFile = errors.New("gps file is empty")

// Summary describes the track of one GPS file.
type Summary struct {
	Format activity.DataFormat
	Points int
	Start  *time.Time
	End    *time.Time
}

// Empty reports whether the file has no track points. Strava rejects such
// uploads as empty.
func (s *Summary) Empty() bool {
	return s.Points == 0
}

func (s *Summary) observe(t time.Time) {
	s.Points++
	if t.IsZero() {
		return
	}
	t = t.UTC()
	if s.Start == nil || t.Before(*s.Start) {
		s.Start = &t
	}
	if s.End == nil || t.After(*s.End) {
		s.End = &t
	}
}

// Inspect summarizes data of the given format.
func Inspect(data []byte, format activity.DataFormat) (*Summary, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	switch format {
	case activity.FormatFIT:
		return inspectFIT(data)
	case activity.FormatTCX:
		return inspectTCX(data)
	case activity.FormatGPX:
		return inspectGPX(data)
	default:
		return nil, fmt.Errorf("unsupported gps format %q", format)
	}
}

func inspectFIT(data []byte) (*Summary, error) {
	summary := &Summary{Format: activity.FormatFIT}

	dec := decoder.New(bytes.NewReader(data))
	for dec.Next() {
		fit, err := dec.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode fit: %w", err)
		}
		for i := range fit.Messages {
			if fit.Messages[i].Num != typedef.MesgNumRecord {
				continue
			}
			record := mesgdef.NewRecord(&fit.Messages[i])
			summary.observe(record.Timestamp)
		}
	}
	return summary, nil
}

type tcxDocument struct {
	Activities []struct {
		Laps []struct {
			Tracks []struct {
				Points []struct {
					Time string `xml:"Time"`
				} `xml:"Trackpoint"`
			} `xml:"Track"`
		} `xml:"Lap"`
	} `xml:"Activities>Activity"`
}

func inspectTCX(data []byte) (*Summary, error) {
	var doc tcxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tcx: %w", err)
	}

	summary := &Summary{Format: activity.FormatTCX}
	for _, a := range doc.Activities {
		for _, lap := range a.Laps {
			for _, track := range lap.Tracks {
				for _, p := range track.Points {
					summary.observe(parseTime(p.Time))
				}
			}
		}
	}
	return summary, nil
}

type gpxDocument struct {
	Tracks []struct {
		Segments []struct {
			Points []struct {
				Time string `xml:"time"`
			} `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

func inspectGPX(data []byte) (*Summary, error) {
	var doc gpxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode gpx: %w", err)
	}

	summary := &Summary{Format: activity.FormatGPX}
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				summary.observe(parseTime(p.Time))
			}
		}
	}
	return summary, nil
}

// parseTime accepts RFC 3339 with or without fractional seconds. Unparseable
// values count as a point without a time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
