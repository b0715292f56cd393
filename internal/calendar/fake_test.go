package calendar

import (
	"sort"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
)

// utc is a location on the prime meridian with civil dates in UTC, used with
// fakeProvider so that sunrise is always 06:00 and Brahma Muhurta 04:24.
var utc = GeoLocation{Name: "test", Latitude: 0, Longitude: 0, TimezoneID: "UTC"}

type elongPoint struct {
	at  time.Time
	deg float64
}

// fakeProvider interpolates the elongation linearly between scripted tithi
// starts and extrapolates past the ends with the slope of the outer segments.
type fakeProvider struct {
	points  []elongPoint
	sunrise time.Duration
	sunset  time.Duration
	polar   map[string]bool
	failAt  func(time.Time) bool
}

var _ ephemeris.Provider = (*fakeProvider)(nil)

// newFakeProvider scripts consecutive tithis: starts[0] begins the tithi with
// absolute index firstIndex, starts[1] the next one, and so on.
func newFakeProvider(firstIndex int, starts ...time.Time) *fakeProvider {
	points := make([]elongPoint, len(starts))
	for i, s := range starts {
		points[i] = elongPoint{at: s, deg: float64(firstIndex-1+i) * TithiDegrees}
	}
	return &fakeProvider{
		points:  points,
		sunrise: 6 * time.Hour,
		sunset:  18 * time.Hour,
		polar:   map[string]bool{},
	}
}

func (f *fakeProvider) elongation(t time.Time) float64 {
	p := f.points
	i := sort.Search(len(p), func(i int) bool { return p[i].at.After(t) })

	var a, b elongPoint
	switch {
	case i == 0:
		a, b = p[0], p[1]
	case i == len(p):
		a, b = p[len(p)-2], p[len(p)-1]
	default:
		a, b = p[i-1], p[i]
	}
	frac := float64(t.Sub(a.at)) / float64(b.at.Sub(a.at))
	return a.deg + frac*(b.deg-a.deg)
}

func (f *fakeProvider) SunMoonLongitudes(t time.Time) (float64, float64, error) {
	if f.failAt != nil && f.failAt(t) {
		return 0, 0, &ephemeris.ComputationError{Instant: t, Reason: "scripted failure"}
	}
	return 0, ephemeris.Normalize(f.elongation(t)), nil
}

func (f *fakeProvider) SunriseSunset(date time.Time, _, _ float64) (time.Time, time.Time, error) {
	if f.polar[FormatDate(date)] {
		return time.Time{}, time.Time{}, ephemeris.ErrNoSunrise
	}
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return midnight.Add(f.sunrise), midnight.Add(f.sunset), nil
}

func at(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2030, month, day, hour, minute, 0, 0, time.UTC)
}

func day(month time.Month, d int) time.Time {
	return time.Date(2030, month, d, 0, 0, 0, 0, time.UTC)
}

// mahadvadashiProvider scripts a shukla Ekadashi lasting 14 hours overnight:
// Dashami at Brahma Muhurta of June 9, Ekadashi at its sunset, Dvadashi at
// Brahma Muhurta of June 10.
func mahadvadashiProvider() *fakeProvider {
	return newFakeProvider(9,
		at(time.June, 7, 12, 0), // 9
		at(time.June, 8, 12, 0), // 10
		at(time.June, 9, 12, 0), // 11
		at(time.June, 10, 2, 0), // 12
		at(time.June, 11, 2, 0), // 13
		at(time.June, 12, 2, 0), // 14
	)
}

// shuddhaProvider scripts a shukla Ekadashi active at Brahma Muhurta of both
// June 19 and June 20.
func shuddhaProvider() *fakeProvider {
	return newFakeProvider(9,
		at(time.June, 17, 0, 0),  // 9
		at(time.June, 18, 2, 0),  // 10
		at(time.June, 19, 3, 0),  // 11
		at(time.June, 20, 5, 0),  // 12
		at(time.June, 21, 8, 0),  // 13
		at(time.June, 22, 10, 0), // 14
	)
}
