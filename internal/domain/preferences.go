package domain

// Preferences are the per-user feed filter settings: which sports to show and
// how far away an activity may be. RadiusUnlimited disables the distance cut
// entirely; RadiusKm is only meaningful when it is false.
type Preferences struct {
	Sports          []Sport
	RadiusKm        float64
	RadiusUnlimited bool
}

// DefaultPreferences returns the unrestricted defaults applied when a user has
// never saved filters: every sport, no radius limit.
func DefaultPreferences() Preferences {
	return Preferences{
		Sports:          AllSports(),
		RadiusUnlimited: true,
	}
}

// AllowsSport reports whether the sport passes the selection.
func (p Preferences) AllowsSport(sport Sport) bool {
	for _, selected := range p.Sports {
		if selected == sport {
			return true
		}
	}
	return false
}
