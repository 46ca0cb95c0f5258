package activity

import (
	"slices"
	"strings"
)

// Other is the sport given to anything unrecognised.
const Other = "Other"

var sportNames = map[string]string{
	"running":       "Run",
	"cycling":       "Ride",
	"run":           "Run",
	"ride":          "Ride",
	"biking":        "Ride",
	"hiking":        "Walk",
	"alpine_skiing": "Ski",
	"swimming":      "Swim",
	"rowing":        "Row",
	// FIT sport numbers.
	"1":  "Ride",
	"9":  "Run",
	"16": "Swim",
}

// inferOrder is the order in which names are searched for sport keywords.
var inferOrder = []string{"running", "cycling", "run", "ride", "hiking", "alpine_skiing", "swimming", "rowing"}

// ConvertSport maps a file's raw activity type to a sport. Generic types are
// inferred from the activity name.
func ConvertSport(raw, name string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "unknown" || raw == "generic" || raw == "" {
		lower := strings.ToLower(name)
		for _, keyword := range inferOrder {
			if strings.Contains(lower, keyword) {
				return sportNames[keyword]
			}
		}
		return Other
	}
	if sport, ok := sportNames[raw]; ok {
		return sport
	}
	return Other
}

// specialDistances are the distances, in metres, whose best efforts are
// shown for a sport.
var specialDistances = map[string][]float64{
	"Run":  {400, 800, 1000, 1609.344, 5000, 10000, 21097.5, 42195},
	"Ride": {1000, 5000, 10000, 20000, 40000, 100000, 160934.4},
	"Swim": {50, 100, 200, 400, 800, 1500},
	"Walk": {1000, 5000, 10000},
	"":     {100, 1000, 5000, 10000},
}

// speedZones are zone boundaries in display speed units (km/h or mph).
var speedZones = map[string][]float64{
	"Run":  {0, 6, 8, 10, 12, 14, 16, 18},
	"Ride": {0, 10, 15, 20, 25, 30, 35, 40},
	"Walk": {0, 2, 3, 4, 5, 6},
	"":     {0, 5, 10, 15, 20, 25, 30},
}

// SpecialDistances returns the record distances of a sport.
func SpecialDistances(sport string) []float64 {
	if d, ok := specialDistances[sport]; ok {
		return slices.Clone(d)
	}
	return slices.Clone(specialDistances[""])
}

// SpeedZones returns the default speed zone boundaries of a sport in
// display units.
func SpeedZones(sport string) []float64 {
	if z, ok := speedZones[sport]; ok {
		return slices.Clone(z)
	}
	return slices.Clone(speedZones[""])
}
