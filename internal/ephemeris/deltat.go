package ephemeris

import "time"

// deltaT returns an estimate of TT-UT in seconds for the given instant using
// the Espenak & Meeus polynomial fits.
func deltaT(t time.Time) float64 {
	y := decimalYear(t)
	switch {
	case y >= 1986 && y < 2005:
		u := y - 2000
		return 63.86 + 0.3345*u - 0.060374*u*u + 0.0017275*u*u*u +
			0.000651814*u*u*u*u + 0.00002373599*u*u*u*u*u
	case y >= 2005 && y < 2050:
		u := y - 2000
		return 62.92 + 0.32217*u + 0.005589*u*u
	case y >= 2050 && y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	case y >= 1961 && y < 1986:
		u := y - 1975
		return 45.45 + 1.067*u - u*u/260 - u*u*u/718
	case y >= 1941 && y < 1961:
		u := y - 1950
		return 29.07 + 0.407*u - u*u/233 + u*u*u/2547
	case y >= 1920 && y < 1941:
		u := y - 1920
		return 21.20 + 0.84493*u - 0.076100*u*u + 0.0020936*u*u*u
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

func decimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}
