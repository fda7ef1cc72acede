package timezone

import "time"

// DefaultTimezone is the shop's local zone. Every "today"/"tomorrow"
// decision is made here, never on the server clock.
const DefaultTimezone = "Europe/Berlin"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Shop returns the location of the shop.
func Shop() *time.Location {
	return Location(DefaultTimezone)
}

func Now() time.Time {
	return time.Now().In(Shop())
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}
