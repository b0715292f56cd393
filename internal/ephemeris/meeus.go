package ephemeris

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
)

// Supported instant range. The Delta T fits degrade quickly outside it.
const (
	MinYear = 1600
	MaxYear = 2400
)

// Meeus computes positions with the algorithms from Jean Meeus,
// "Astronomical Algorithms", and sunrise/sunset with the sunrise equation.
// The zero value is ready to use.
type Meeus struct{}

var _ Provider = Meeus{}

// SunMoonLongitudes implements Provider.
func (Meeus) SunMoonLongitudes(t time.Time) (float64, float64, error) {
	if t.IsZero() {
		return 0, 0, &ComputationError{Instant: t, Reason: "zero instant"}
	}
	if y := t.UTC().Year(); y < MinYear || y > MaxYear {
		return 0, 0, &ComputationError{Instant: t, Reason: "instant outside supported range"}
	}

	jde := julian.TimeToJD(t.UTC()) + deltaT(t)/86400
	sun := solar.ApparentLongitude(base.J2000Century(jde)).Deg()

	// Position is referenced to the mean equinox of date; nutation in
	// longitude makes it apparent like the solar longitude.
	lon, _, _ := moonposition.Position(jde)
	dpsi, _ := nutation.Nutation(jde)
	moon := (lon + dpsi).Deg()

	if !finite(sun) || !finite(moon) {
		return 0, 0, &ComputationError{Instant: t, Reason: "non-finite longitude"}
	}
	return Normalize(sun), Normalize(moon), nil
}

// SunriseSunset implements Provider.
//
// The sunrise equation is solved around local mean solar noon of a UTC date,
// which can land on a neighbouring civil day for zones far from their
// meridian, so the neighbouring days are tried until the sunrise falls on
// the requested civil date.
func (Meeus) SunriseSunset(date time.Time, latitude, longitude float64) (time.Time, time.Time, error) {
	loc := date.Location()
	y, m, d := date.Date()

	for _, offset := range []int{0, 1, -1} {
		day := time.Date(y, m, d+offset, 0, 0, 0, 0, time.UTC)
		rise, set := sunrise.SunriseSunset(latitude, longitude, day.Year(), day.Month(), day.Day())
		if rise.IsZero() || set.IsZero() {
			if offset == 0 {
				return time.Time{}, time.Time{}, ErrNoSunrise
			}
			continue
		}
		ry, rm, rd := rise.In(loc).Date()
		if ry == y && rm == m && rd == d {
			return rise.UTC(), set.UTC(), nil
		}
	}
	return time.Time{}, time.Time{}, ErrNoSunrise
}

// Normalize maps an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
