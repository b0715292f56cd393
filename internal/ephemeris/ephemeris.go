// Package ephemeris provides the astronomical positions the Ekadashi engine
// needs: apparent ecliptic longitudes of the Sun and Moon, and local sunrise
// and sunset.
package ephemeris

import (
	"errors"
	"fmt"
	"time"
)

// Provider is the capability the calendar engine requires from its
// environment. Implementations must be pure functions of their inputs.
type Provider interface {
	// SunMoonLongitudes returns the apparent geocentric ecliptic longitudes
	// of the Sun and the Moon at instant t, in degrees within [0, 360).
	SunMoonLongitudes(t time.Time) (sunDeg, moonDeg float64, err error)

	// SunriseSunset returns sunrise and sunset for the civil date of date,
	// interpreted in date.Location(), at the given coordinates.
	// It returns ErrNoSunrise when the Sun does not rise or set that day.
	SunriseSunset(date time.Time, latitude, longitude float64) (rise, set time.Time, err error)
}

// ErrNoSunrise is returned when the Sun stays above or below the horizon for
// the whole day (polar day or polar night).
var ErrNoSunrise = errors.New("sun does not rise or set on this date")

// ComputationError reports that a position could not be resolved for an instant.
type ComputationError struct {
	Instant time.Time
	Reason  string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("ephemeris: cannot compute position at %s: %s",
		e.Instant.UTC().Format(time.RFC3339), e.Reason)
}
