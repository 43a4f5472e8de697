package activity

import "testing"

func TestMapMovescountType(t *testing.T) {
	tests := []struct {
		name     string
		code     MovescountActivity
		expected StravaType
	}{
		{"Run", MovescountRun, StravaRun},
		{"Trail running", MovescountTrailRunning, StravaRun},
		{"Multisport maps to run", MovescountMultiSport, StravaRun},
		{"Cycling", MovescountCycling, StravaRide},
		{"Circuit training", MovescountCircuitTraining, StravaCrossfit},
		{"Indoor training", MovescountIndoorTraining, StravaCrossfit},
		{"Climbing is a hike", MovescountClimbing, StravaHike},
		{"Nordic walking is a hike", MovescountNordicWalking, StravaHike},
		{"Open water swimming", MovescountOpenWaterSwimming, StravaSwim},
		{"Skating", MovescountSkating, StravaInlineSkate},
		{"Ice skating", MovescountIceSkating, StravaIceSkate},
		{"Crosscountry skiing", MovescountCrosscountrySkiing, StravaNordicSki},
		{"Alpine skiing", MovescountAlpineSkiing, StravaAlpineSki},
		{"Not specified", MovescountNotSpecifiedSport, StravaWorkout},
		{"Known but unmapped", MovescountSailing, StravaWorkout},
		{"Unknown code", MovescountActivity(9999), StravaWorkout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapMovescountType(tt.code); got != tt.expected {
				t.Errorf("MapMovescountType(%d) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestMapGarminType(t *testing.T) {
	tests := []struct {
		typeKey  string
		expected StravaType
	}{
		{"running", StravaRun},
		{"trail_running", StravaRun},
		{"track_running", StravaRun},
		{"cycling", StravaRide},
		{"strength_training", StravaCrossfit},
		{"indoor_cardio", StravaCrossfit},
		{"hiking", StravaHike},
		{"walking", StravaWalk},
		{"lap_swimming", StravaSwim},
		{"open_water_swimming", StravaSwim},
		{"inline_skating", StravaInlineSkate},
		{"skating", StravaIceSkate},
		{"cross_country_skiing_ws", StravaNordicSki},
		{"backcountry_skiing_snowboarding_ws", StravaAlpineSki},
		{" Running ", StravaRun},
		{"yoga", StravaWorkout},
		{"", StravaWorkout},
	}

	for _, tt := range tests {
		t.Run(tt.typeKey, func(t *testing.T) {
			if got := MapGarminType(tt.typeKey); got != tt.expected {
				t.Errorf("MapGarminType(%q) = %q, want %q", tt.typeKey, got, tt.expected)
			}
		})
	}
}

func TestMapType_DispatchesOnSource(t *testing.T) {
	move := &Record{Source: SourceMovescount, TypeCode: int(MovescountCycling), TypeKey: "running"}
	if got := MapType(move); got != StravaRide {
		t.Errorf("movescount record mapped to %q, want Ride", got)
	}

	garmin := &Record{Source: SourceGarminConnect, TypeCode: int(MovescountCycling), TypeKey: "running"}
	if got := MapType(garmin); got != StravaRun {
		t.Errorf("garmin record mapped to %q, want Run", got)
	}

	if got := MapType(&Record{Source: "unknown"}); got != StravaWorkout {
		t.Errorf("unknown source mapped to %q, want Workout", got)
	}
}

func TestParseMovescountActivity(t *testing.T) {
	code, ok := ParseMovescountActivity("TrailRunning")
	if !ok || code != MovescountTrailRunning {
		t.Fatalf("ParseMovescountActivity(TrailRunning) = %d, %v", code, ok)
	}

	code, ok = ParseMovescountActivity("crosscountryskiing")
	if !ok || code != MovescountCrosscountrySkiing {
		t.Errorf("case-insensitive parse failed: %d, %v", code, ok)
	}

	if _, ok := ParseMovescountActivity("Morning Run"); ok {
		t.Error("expected free-text name not to parse")
	}

	for code, name := range movescountActivityNames {
		parsed, ok := ParseMovescountActivity(code.String())
		if !ok || parsed != code {
			t.Errorf("round trip of %s failed: got %d", name, parsed)
		}
	}
}
