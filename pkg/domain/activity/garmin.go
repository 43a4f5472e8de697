package activity

import "strconv"

// GarminActivityType is the activityType object of a Garmin Connect activity.
type GarminActivityType struct {
	TypeID  int    `json:"typeId"`
	TypeKey string `json:"typeKey"`
}

// GarminSummary is the summaryDTO block of a Garmin Connect activity.
type GarminSummary struct {
	StartTimeGMT       *Timestamp `json:"startTimeGMT,omitempty"`
	StartTimeLocal     *Timestamp `json:"startTimeLocal,omitempty"`
	Duration           float64    `json:"duration"`
	Distance           *float64   `json:"distance,omitempty"`
	TrainingEffect     *float64   `json:"trainingEffect,omitempty"`
	AverageHR          *float64   `json:"averageHR,omitempty"`
	AverageTemperature *float64   `json:"averageTemperature,omitempty"`
}

// GarminActivity is a Garmin Connect activity as written by the backup tooling.
type GarminActivity struct {
	ActivityID   int64              `json:"activityId"`
	ActivityName string             `json:"activityName"`
	Description  string             `json:"description,omitempty"`
	ActivityType GarminActivityType `json:"activityType"`
	LocationName string             `json:"locationName,omitempty"`
	Summary      GarminSummary      `json:"summaryDTO"`
}

func (g *GarminActivity) ToRecord() *Record {
	return &Record{
		Source:             SourceGarminConnect,
		SourceID:           strconv.FormatInt(g.ActivityID, 10),
		Name:               g.ActivityName,
		TypeCode:           g.ActivityType.TypeID,
		TypeKey:            g.ActivityType.TypeKey,
		StartUTC:           g.Summary.StartTimeGMT.ptr(),
		StartLocal:         g.Summary.StartTimeLocal.ptr(),
		DurationSeconds:    g.Summary.Duration,
		DistanceMeters:     g.Summary.Distance,
		Notes:              g.Description,
		TrainingEffect:     g.Summary.TrainingEffect,
		AverageHR:          g.Summary.AverageHR,
		AverageTemperature: g.Summary.AverageTemperature,
		Location:           g.LocationName,
	}
}
