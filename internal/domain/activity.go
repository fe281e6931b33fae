package domain

import "time"

// Sport enumerates the activity categories supported by the platform.
type Sport string

const (
	SportBadminton   Sport = "Badminton"
	SportBasketball  Sport = "Basketball"
	SportCycling     Sport = "Cycling"
	SportFootball    Sport = "Football"
	SportRunning     Sport = "Running"
	SportTableTennis Sport = "Table Tennis"
	SportTennis      Sport = "Tennis"
	SportVolleyball  Sport = "Volleyball"
)

// AllSports returns every supported sport in display order.
func AllSports() []Sport {
	return []Sport{
		SportBadminton,
		SportBasketball,
		SportCycling,
		SportFootball,
		SportRunning,
		SportTableTennis,
		SportTennis,
		SportVolleyball,
	}
}

// Valid reports whether the sport is a known category.
func (s Sport) Valid() bool {
	for _, known := range AllSports() {
		if s == known {
			return true
		}
	}
	return false
}

// Level enumerates the skill levels an organizer can target.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
	LevelAll    Level = "All"
)

// Valid reports whether the level is a known value.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelAll:
		return true
	}
	return false
}

// Location is the venue of an activity: a postal address plus coordinates.
type Location struct {
	Address   string
	Latitude  float64
	Longitude float64
}

// Activity represents one organized sporting event. Participation is not
// recorded here; the user records are the source of truth for who joined.
type Activity struct {
	ID                string
	Sport             Sport
	StartDate         time.Time
	EndDate           *time.Time
	Location          Location
	Level             Level
	SpotCount         int
	PricePerPerson    float64
	AdditionalDetails string
	OrganizerID       string
	IsCanceled        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
