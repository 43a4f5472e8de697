package activity

import "strings"

// StravaType is the Strava activity type string.
type StravaType string

const (
	StravaWorkout     StravaType = "Workout"
	StravaRun         StravaType = "Run"
	StravaRide        StravaType = "Ride"
	StravaWalk        StravaType = "Walk"
	StravaHike        StravaType = "Hike"
	StravaSwim        StravaType = "Swim"
	StravaCrossfit    StravaType = "Crossfit"
	StravaInlineSkate StravaType = "InlineSkate"
	StravaIceSkate    StravaType = "IceSkate"
	StravaNordicSki   StravaType = "NordicSki"
	StravaAlpineSki   StravaType = "AlpineSki"
)

var movescountToStrava = map[MovescountActivity]StravaType{
	MovescountCircuitTraining:    StravaCrossfit,
	MovescountClimbing:           StravaHike,
	MovescountCrossFit:           StravaCrossfit,
	MovescountCycling:            StravaRide,
	MovescountMultiSport:         StravaRun,
	MovescountNotSpecifiedSport:  StravaWorkout,
	MovescountRun:                StravaRun,
	MovescountWalking:            StravaWalk,
	MovescountNordicWalking:      StravaHike,
	MovescountTrekking:           StravaHike,
	MovescountSwimming:           StravaSwim,
	MovescountOpenWaterSwimming:  StravaSwim,
	MovescountSkating:            StravaInlineSkate,
	MovescountIceSkating:         StravaIceSkate,
	MovescountCrosscountrySkiing: StravaNordicSki,
	MovescountAlpineSkiing:       StravaAlpineSki,
	MovescountIndoorTraining:     StravaCrossfit,
	MovescountTrailRunning:       StravaRun,
}

// Garmin Connect typeKeys; "_ws" variants are the winter-sports category keys.
var garminToStrava = map[string]StravaType{
	"indoor_cardio":                      StravaCrossfit,
	"hiking":                             StravaHike,
	"strength_training":                  StravaCrossfit,
	"cycling":                            StravaRide,
	"multi_sport":                        StravaRun,
	"uncategorized":                      StravaWorkout,
	"running":                            StravaRun,
	"walking":                            StravaWalk,
	"open_water_swimming":                StravaSwim,
	"lap_swimming":                       StravaSwim,
	"swimming":                           StravaSwim,
	"inline_skating":                     StravaInlineSkate,
	"skating":                            StravaIceSkate,
	"cross_country_skiing":               StravaNordicSki,
	"cross_country_skiing_ws":            StravaNordicSki,
	"backcountry_skiing_snowboarding":    StravaAlpineSki,
	"backcountry_skiing_snowboarding_ws": StravaAlpineSki,
	"track_running":                      StravaRun,
	"trail_running":                      StravaRun,
}

// MapMovescountType returns the Strava type for a Movescount ActivityID.
// Unmapped codes fall back to Workout.
func MapMovescountType(code MovescountActivity) StravaType {
	if t, ok := movescountToStrava[code]; ok {
		return t
	}
	return StravaWorkout
}

// MapGarminType returns the Strava type for a Garmin Connect typeKey.
func MapGarminType(typeKey string) StravaType {
	if t, ok := garminToStrava[strings.ToLower(strings.TrimSpace(typeKey))]; ok {
		return t
	}
	return StravaWorkout
}

// MapType dispatches on the record's source vocabulary.
func MapType(r *Record) StravaType {
	switch r.Source {
	case SourceGarminConnect:
		return MapGarminType(r.TypeKey)
	case SourceMovescount:
		return MapMovescountType(MovescountActivity(r.TypeCode))
	default:
		return StravaWorkout
	}
}
