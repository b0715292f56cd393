package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
)

// Fixed offsets from sunrise.
const (
	// BrahmaMuhurtaOffset is two muhurtas (2 x 48 min) before sunrise.
	BrahmaMuhurtaOffset = 96 * time.Minute
	// brahmaMuhurtaEndOffset closes the Brahma Muhurta window one muhurta before sunrise.
	brahmaMuhurtaEndOffset = 48 * time.Minute
	// pratahkalaLength is the morning period preferred for parana.
	pratahkalaLength = 3 * time.Hour
)

// SolarTimes holds sunrise and sunset for one civil date at one location.
type SolarTimes struct {
	Date    time.Time `json:"date" yaml:"date"`
	Sunrise time.Time `json:"sunrise" yaml:"sunrise"`
	Sunset  time.Time `json:"sunset" yaml:"sunset"`
}

// BrahmaMuhurta returns the classification reference instant of the day.
func (s SolarTimes) BrahmaMuhurta() time.Time {
	return BrahmaMuhurtaFor(s.Sunrise)
}

// SolarNoon approximates local apparent noon as the midpoint of daylight.
func (s SolarTimes) SolarNoon() time.Time {
	return s.Sunrise.Add(s.Sunset.Sub(s.Sunrise) / 2)
}

// DayLength returns the time between sunrise and sunset.
func (s SolarTimes) DayLength() time.Duration {
	return s.Sunset.Sub(s.Sunrise)
}

// BrahmaMuhurtaFor returns the instant 96 minutes before sunrise.
func BrahmaMuhurtaFor(sunrise time.Time) time.Time {
	return sunrise.Add(-BrahmaMuhurtaOffset)
}

// Interval is a closed span of time.
type Interval struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// DailyTimes are the solar reference periods of a single day.
type DailyTimes struct {
	SolarTimes `yaml:",inline"`
	Noon       time.Time     `json:"solar_noon" yaml:"solar_noon"`
	Daylight   time.Duration `json:"day_length" yaml:"day_length"`
	Night      time.Duration `json:"night_length" yaml:"night_length"`
	BrahmaSpan Interval      `json:"brahma_muhurta" yaml:"brahma_muhurta"`
	Pratahkala Interval      `json:"pratahkala" yaml:"pratahkala"`
}

// SunResolver wraps the ephemeris provider's rise/set computation.
type SunResolver struct {
	provider ephemeris.Provider
}

// NewSunResolver creates a resolver over provider.
func NewSunResolver(provider ephemeris.Provider) *SunResolver {
	return &SunResolver{provider: provider}
}

// SolarTimesFor returns sunrise and sunset for the civil date of date in the
// location's zone. Polar conditions yield a *NoSunriseError.
func (r *SunResolver) SolarTimesFor(date time.Time, loc GeoLocation) (SolarTimes, error) {
	day := CivilDate(date, loc.Zone())
	rise, set, err := r.provider.SunriseSunset(day, loc.Latitude, loc.Longitude)
	if err != nil {
		if errors.Is(err, ephemeris.ErrNoSunrise) {
			return SolarTimes{}, &NoSunriseError{Date: day, Location: loc}
		}
		return SolarTimes{}, fmt.Errorf("solar times for %s: %w", FormatDate(day), err)
	}
	return SolarTimes{Date: day, Sunrise: rise, Sunset: set}, nil
}

// DailyTimesFor expands SolarTimesFor into the day's reference periods.
func (r *SunResolver) DailyTimesFor(date time.Time, loc GeoLocation) (DailyTimes, error) {
	st, err := r.SolarTimesFor(date, loc)
	if err != nil {
		return DailyTimes{}, err
	}
	day := st.DayLength()
	return DailyTimes{
		SolarTimes: st,
		Noon:       st.SolarNoon(),
		Daylight:   day,
		Night:      24*time.Hour - day,
		BrahmaSpan: Interval{
			Start: st.BrahmaMuhurta(),
			End:   st.Sunrise.Add(-brahmaMuhurtaEndOffset),
		},
		Pratahkala: Interval{
			Start: st.Sunrise,
			End:   st.Sunrise.Add(pratahkalaLength),
		},
	}, nil
}
