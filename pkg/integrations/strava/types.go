package strava

import (
	"fmt"
	"strings"
	"time"
)

// ActivitySummary is the subset of a Strava activity the sync needs.
type ActivitySummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	SportType   string    `json:"sport_type,omitempty"`
	StartDate   time.Time `json:"start_date"`
	ElapsedTime int       `json:"elapsed_time,omitempty"`
	Distance    float64   `json:"distance,omitempty"`
}

// ActivityField names an updatable activity attribute.
type ActivityField string

const (
	FieldName        ActivityField = "name"
	FieldDescription ActivityField = "description"
	FieldType        ActivityField = "type"
	FieldGearID      ActivityField = "gear_id"
)

// CreateActivityParams describes a manual activity.
type CreateActivityParams struct {
	Name           string
	Type           string
	StartDateLocal time.Time
	ElapsedSeconds int
	Description    string
	DistanceMeters float64
}

// UploadParams describes a GPS file upload.
type UploadParams struct {
	FileName     string
	Data         []byte
	DataType     string // fit, tcx or gpx
	ActivityType string
	ExternalID   string
}

const (
	StatusProcessing = "Your activity is still being processed."
	StatusReady      = "Your activity is ready."
	StatusError      = "There was an error processing your activity."
	StatusDeleted    = "The created activity has been deleted."
)

// UploadStatus is the processing state of an upload.
type UploadStatus struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
	Status     string `json:"status"`
	ActivityID int64  `json:"activity_id,omitempty"`
}

// IsReady reports whether processing finished and produced an activity.
func (s *UploadStatus) IsReady() bool {
	return s.Error == "" && strings.EqualFold(strings.TrimSpace(s.Status), StatusReady)
}

// Failed reports whether processing ended with an error.
func (s *UploadStatus) Failed() bool {
	return s.Error != ""
}

// UploadError is an upload rejected by Strava with a message.
type UploadError struct {
	Message    string
	Status     *UploadStatus
	HTTPStatus int
}

func (e *UploadError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("strava rejected upload (status %d): %s", e.HTTPStatus, e.Message)
	}
	return "strava rejected upload: " + e.Message
}
