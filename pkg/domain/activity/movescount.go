package activity

import (
	"strconv"
	"strings"
)

// MovescountActivity is the Movescount ActivityID vocabulary.
type MovescountActivity int

const (
	MovescountNotSpecifiedSport  MovescountActivity = 1
	MovescountMultiSport         MovescountActivity = 2
	MovescountRun                MovescountActivity = 3
	MovescountCycling            MovescountActivity = 4
	MovescountMountainBiking     MovescountActivity = 5
	MovescountSwimming           MovescountActivity = 6
	MovescountSkating            MovescountActivity = 8
	MovescountAerobics           MovescountActivity = 9
	MovescountYogaPilates        MovescountActivity = 10
	MovescountTrekking           MovescountActivity = 11
	MovescountWalking            MovescountActivity = 12
	MovescountSailing            MovescountActivity = 13
	MovescountKayaking           MovescountActivity = 14
	MovescountRowing             MovescountActivity = 15
	MovescountClimbing           MovescountActivity = 16
	MovescountIndoorCycling      MovescountActivity = 17
	MovescountCircuitTraining    MovescountActivity = 18
	MovescountTriathlon          MovescountActivity = 19
	MovescountAlpineSkiing       MovescountActivity = 20
	MovescountSnowboarding       MovescountActivity = 21
	MovescountCrosscountrySkiing MovescountActivity = 22
	MovescountWeightTraining     MovescountActivity = 23
	MovescountIceSkating         MovescountActivity = 70
	MovescountTrailRunning       MovescountActivity = 82
	MovescountOpenWaterSwimming  MovescountActivity = 83
	MovescountNordicWalking      MovescountActivity = 84
	MovescountCrossFit           MovescountActivity = 90
	MovescountIndoorTraining     MovescountActivity = 95
)

var movescountActivityNames = map[MovescountActivity]string{
	MovescountNotSpecifiedSport:  "NotSpecifiedSport",
	MovescountMultiSport:         "MultiSport",
	MovescountRun:                "Run",
	MovescountCycling:            "Cycling",
	MovescountMountainBiking:     "MountainBiking",
	MovescountSwimming:           "Swimming",
	MovescountSkating:            "Skating",
	MovescountAerobics:           "Aerobics",
	MovescountYogaPilates:        "YogaPilates",
	MovescountTrekking:           "Trekking",
	MovescountWalking:            "Walking",
	MovescountSailing:            "Sailing",
	MovescountKayaking:           "Kayaking",
	MovescountRowing:             "Rowing",
	MovescountClimbing:           "Climbing",
	MovescountIndoorCycling:      "IndoorCycling",
	MovescountCircuitTraining:    "CircuitTraining",
	MovescountTriathlon:          "Triathlon",
	MovescountAlpineSkiing:       "AlpineSkiing",
	MovescountSnowboarding:       "Snowboarding",
	MovescountCrosscountrySkiing: "CrosscountrySkiing",
	MovescountWeightTraining:     "WeightTraining",
	MovescountIceSkating:         "IceSkating",
	MovescountTrailRunning:       "TrailRunning",
	MovescountOpenWaterSwimming:  "OpenWaterSwimming",
	MovescountNordicWalking:      "NordicWalking",
	MovescountCrossFit:           "CrossFit",
	MovescountIndoorTraining:     "IndoorTraining",
}

// String returns the enum name, or the numeric code for unknown values.
func (a MovescountActivity) String() string {
	if name, ok := movescountActivityNames[a]; ok {
		return name
	}
	return strconv.Itoa(int(a))
}

// ParseMovescountActivity is the inverse of String for known names.
func ParseMovescountActivity(name string) (MovescountActivity, bool) {
	name = strings.TrimSpace(name)
	for code, n := range movescountActivityNames {
		if strings.EqualFold(n, name) {
			return code, true
		}
	}
	return 0, false
}

// Feeling is the Movescount post-session feeling rating.
type Feeling int

const (
	FeelingPoor      Feeling = 1
	FeelingAverage   Feeling = 2
	FeelingGood      Feeling = 3
	FeelingVeryGood  Feeling = 4
	FeelingExcellent Feeling = 5
)

func (f Feeling) String() string {
	switch f {
	case FeelingPoor:
		return "Poor"
	case FeelingAverage:
		return "Average"
	case FeelingGood:
		return "Good"
	case FeelingVeryGood:
		return "VeryGood"
	case FeelingExcellent:
		return "Excellent"
	default:
		return strconv.Itoa(int(f))
	}
}

// Weather is the Movescount weather code.
type Weather int

const (
	WeatherSunny        Weather = 1
	WeatherPartlyCloudy Weather = 2
	WeatherCloudy       Weather = 3
	WeatherRain         Weather = 4
	WeatherSnow         Weather = 5
	WeatherWindy        Weather = 6
	WeatherFog          Weather = 7
)

func (w Weather) String() string {
	switch w {
	case WeatherSunny:
		return "Sunny"
	case WeatherPartlyCloudy:
		return "PartlyCloudy"
	case WeatherCloudy:
		return "Cloudy"
	case WeatherRain:
		return "Rain"
	case WeatherSnow:
		return "Snow"
	case WeatherWindy:
		return "Windy"
	case WeatherFog:
		return "Fog"
	default:
		return strconv.Itoa(int(w))
	}
}

// Move is a Movescount move as written by the backup tooling (move_data.json).
type Move struct {
	MoveID         int64              `json:"MoveID"`
	ActivityID     MovescountActivity `json:"ActivityID"`
	LocalStartTime *Timestamp         `json:"LocalStartTime,omitempty"`
	UTCStartTime   *Timestamp         `json:"UTCStartTime,omitempty"`
	Duration       float64            `json:"Duration"`
	Distance       *float64           `json:"Distance,omitempty"`
	Notes          string             `json:"Notes,omitempty"`
	Feeling        *int               `json:"Feeling,omitempty"`
	Weather        *int               `json:"Weather,omitempty"`
	Tags           string             `json:"Tags,omitempty"`
	RecoveryTime   *float64           `json:"RecoveryTime,omitempty"`
	HrAvg          *float64           `json:"HrAvg,omitempty"`
	AvgTemp        *float64           `json:"AvgTemp,omitempty"`
}

// ToRecord normalizes the move. The name is the activity enum name so that
// activities created from it can later be re-typed by name.
func (m *Move) ToRecord() *Record {
	return &Record{
		Source:             SourceMovescount,
		SourceID:           strconv.FormatInt(m.MoveID, 10),
		Name:               m.ActivityID.String(),
		TypeCode:           int(m.ActivityID),
		StartUTC:           m.UTCStartTime.ptr(),
		StartLocal:         m.LocalStartTime.ptr(),
		DurationSeconds:    m.Duration,
		DistanceMeters:     m.Distance,
		Notes:              m.Notes,
		Feeling:            m.Feeling,
		Weather:            m.Weather,
		Tags:               m.Tags,
		RecoverySeconds:    m.RecoveryTime,
		AverageHR:          m.HrAvg,
		AverageTemperature: m.AvgTemp,
	}
}
