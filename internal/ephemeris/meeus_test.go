package ephemeris

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// angleDiff returns the signed difference a-b folded into (-180, 180].
func angleDiff(a, b float64) float64 {
	d := Normalize(a - b)
	if d > 180 {
		d -= 360
	}
	return d
}

func TestMeeus_ElongationAtKnownPhases(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"full moon 2026-01-03", time.Date(2026, 1, 3, 10, 3, 0, 0, time.UTC), 180},
		{"new moon 2026-01-18", time.Date(2026, 1, 18, 19, 52, 0, 0, time.UTC), 0},
		{"eclipse new moon 2024-04-08", time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun, moon, err := Meeus{}.SunMoonLongitudes(tt.at)
			require.NoError(t, err)
			assert.InDelta(t, 0, angleDiff(moon-sun, tt.want), 0.1)
		})
	}
}

func TestMeeus_SunAtEquinox(t *testing.T) {
	sun, _, err := Meeus{}.SunMoonLongitudes(time.Date(2026, 3, 20, 14, 46, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 0, angleDiff(sun, 0), 0.05)
}

func TestMeeus_RejectsBadInstants(t *testing.T) {
	for _, at := range []time.Time{
		{},
		time.Date(1200, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, _, err := Meeus{}.SunMoonLongitudes(at)
		var ce *ComputationError
		require.ErrorAs(t, err, &ce, "instant %v", at)
		assert.NotEmpty(t, ce.Reason)
	}
}

func TestMeeus_SunriseSunsetKyiv(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)

	date := time.Date(2026, 6, 21, 0, 0, 0, 0, kyiv)
	rise, set, err := Meeus{}.SunriseSunset(date, 50.4501, 30.5234)
	require.NoError(t, err)

	// Published times are 04:46 and 21:13 local (UTC+3).
	assert.WithinDuration(t, time.Date(2026, 6, 21, 1, 46, 0, 0, time.UTC), rise, 3*time.Minute)
	assert.WithinDuration(t, time.Date(2026, 6, 21, 18, 13, 0, 0, time.UTC), set, 3*time.Minute)
	assert.True(t, rise.Before(set))
}

func TestMeeus_SunriseOnRequestedCivilDate(t *testing.T) {
	// Far east of its zone meridian, so the UTC date differs from the civil date.
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	for day := 1; day <= 10; day++ {
		date := time.Date(2026, 2, day, 0, 0, 0, 0, auckland)
		rise, _, err := Meeus{}.SunriseSunset(date, -36.8485, 174.7633)
		require.NoError(t, err)
		_, _, d := rise.In(auckland).Date()
		assert.Equal(t, day, d)
	}
}

func TestMeeus_PolarConditions(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	for _, date := range []time.Time{
		time.Date(2026, 6, 21, 0, 0, 0, 0, oslo),  // midnight sun
		time.Date(2026, 12, 21, 0, 0, 0, 0, oslo), // polar night
	} {
		_, _, err := Meeus{}.SunriseSunset(date, 69.6492, 18.9553)
		assert.True(t, errors.Is(err, ErrNoSunrise), "date %s: %v", date.Format("2006-01-02"), err)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(360))
	assert.Equal(t, 350.0, Normalize(-10))
	assert.Equal(t, 10.0, Normalize(730))
	assert.False(t, Normalize(-1e-14) >= 360)
	assert.False(t, math.IsNaN(Normalize(0)))
}
