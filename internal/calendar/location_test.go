package calendar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoLocation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		tz      string
		wantErr []string
	}{
		{name: "kyiv", lat: 50.4501, lon: 30.5234, tz: "Europe/Kyiv"},
		{name: "poles are valid", lat: -90, lon: 180, tz: "Antarctica/McMurdo"},
		{name: "latitude out of range", lat: 91, lon: 0, tz: "UTC", wantErr: []string{"latitude"}},
		{name: "longitude out of range", lat: 0, lon: -180.5, tz: "UTC", wantErr: []string{"longitude"}},
		{name: "nan latitude", lat: math.NaN(), lon: 0, tz: "UTC", wantErr: []string{"latitude"}},
		{name: "missing zone", lat: 0, lon: 0, tz: "", wantErr: []string{"timezone"}},
		{name: "unknown zone", lat: 0, lon: 0, tz: "Mars/Olympus", wantErr: []string{"timezone"}},
		{name: "everything wrong", lat: 100, lon: 200, tz: "nope", wantErr: []string{"latitude", "longitude", "timezone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewGeoLocation(tt.name, tt.lat, tt.lon, tt.tz)
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.tz, loc.Zone().String())
				return
			}

			require.Error(t, err)
			var le *InvalidLocationError
			require.True(t, errors.As(err, &le))
			for _, field := range tt.wantErr {
				assert.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestGeoLocationString(t *testing.T) {
	assert.Equal(t, "kyiv", kyiv.String())
	anon := GeoLocation{Latitude: 1.5, Longitude: -2.25, TimezoneID: "UTC"}
	assert.Equal(t, "1.5000,-2.2500 (UTC)", anon.String())
}

func TestCivilDate(t *testing.T) {
	zone := kyiv.Zone()

	// 22:30 UTC on Mar 14 is already Mar 15 in Kyiv.
	got := CivilDate(time.Date(2026, time.March, 14, 22, 30, 0, 0, time.UTC), zone)
	assert.Equal(t, "2026-03-15", FormatDate(got))
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, zone, got.Location())
}

func TestAddDaysAcrossDST(t *testing.T) {
	zone := kyiv.Zone()
	start := DateIn(2026, time.March, 28, zone)

	next := AddDays(start, 1)
	afterSwitch := AddDays(start, 2)
	assert.Equal(t, "2026-03-29", FormatDate(next))
	assert.Equal(t, "2026-03-30", FormatDate(afterSwitch))
	assert.Equal(t, 0, afterSwitch.Hour())
	assert.Equal(t, 23*time.Hour, afterSwitch.Sub(next))
}

func TestParseDateString(t *testing.T) {
	zone := wurzburg.Zone()

	d, err := ParseDateString("2026-05-26", zone)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-26", FormatDate(d))
	assert.Equal(t, zone, d.Location())

	_, err = ParseDateString("26.05.2026", zone)
	assert.Error(t, err)
}

func TestDiffByDate(t *testing.T) {
	mk := func(dates ...string) []EkadashiEvent {
		out := make([]EkadashiEvent, len(dates))
		for i, d := range dates {
			date, err := ParseDateString(d, time.UTC)
			require.NoError(t, err)
			out[i] = EkadashiEvent{Date: date}
		}
		return out
	}

	diff := DiffByDate(mk("2026-01-14", "2026-03-15", "2026-01-29"), mk("2026-01-29", "2026-03-14", "2026-01-14"))
	assert.Equal(t, []string{"2026-01-14", "2026-01-29"}, diff.Both)
	assert.Equal(t, []string{"2026-03-15"}, diff.OnlyA)
	assert.Equal(t, []string{"2026-03-14"}, diff.OnlyB)

	empty := DiffByDate(nil, nil)
	assert.NotNil(t, empty.Both)
	assert.Empty(t, empty.Both)
}
