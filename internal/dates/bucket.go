package dates

import (
	"fmt"
	"time"
)

// ExplicitDateTolerance is how far an explicitly supplied local date may
// deviate from the server's view of "today" in the user's zone. One day in
// either direction: a client sitting just across a midnight or DST boundary
// legitimately computes a different day than the server.
const ExplicitDateTolerance = 1

// LoadZone resolves an IANA timezone identifier. A malformed or unknown
// identifier is a caller input error, not an infrastructure failure.
func LoadZone(iana string) (*time.Location, error) {
	if iana == "" {
		return nil, fmt.Errorf("empty timezone identifier")
	}
	loc, err := time.LoadLocation(iana)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", iana, err)
	}
	return loc, nil
}

// LocalToday returns the calendar date that the instant now falls on in the
// given zone. This is the bucket key for every completion write: computed
// once per write from the owning user's stored timezone.
func LocalToday(now time.Time, loc *time.Location) Date {
	return FromTime(now.In(loc))
}

// CheckExplicitDate validates a caller-supplied local date against today in
// the user's zone. Dates more than ExplicitDateTolerance days away are
// rejected; this guards against clock skew and backdating without breaking
// clients near a day boundary.
func CheckExplicitDate(d, today Date) error {
	diff := today.DaysUntil(d)
	if diff < -ExplicitDateTolerance || diff > ExplicitDateTolerance {
		return fmt.Errorf("date %s is outside the allowed window around %s", d, today)
	}
	return nil
}
