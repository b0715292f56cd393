package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	// maxTithiLength bounds the longest tithi (about 26h47m) with margin.
	maxTithiLength = 28 * time.Hour

	// boundaryTolerance is the bisection stopping width.
	boundaryTolerance = time.Second
)

// ErrBoundaryNotBracketed is returned when a search window does not contain
// the requested elongation crossing.
var ErrBoundaryNotBracketed = errors.New("elongation boundary not within search window")

// Boundary returns the instant within [lo, hi] at which the elongation
// crosses targetDeg. Elongation increases monotonically, so a sign change of
// the folded difference brackets exactly one crossing as long as the window
// is shorter than half a lunar month.
func (c *TithiCalculator) Boundary(targetDeg float64, lo, hi time.Time) (time.Time, error) {
	flo, err := c.offsetFrom(targetDeg, lo)
	if err != nil {
		return time.Time{}, err
	}
	fhi, err := c.offsetFrom(targetDeg, hi)
	if err != nil {
		return time.Time{}, err
	}
	if flo >= 0 || fhi < 0 {
		return time.Time{}, fmt.Errorf("%w: %.2f° in [%s, %s]", ErrBoundaryNotBracketed,
			targetDeg, lo.UTC().Format(time.RFC3339), hi.UTC().Format(time.RFC3339))
	}

	for hi.Sub(lo) > boundaryTolerance {
		mid := lo.Add(hi.Sub(lo) / 2)
		f, err := c.offsetFrom(targetDeg, mid)
		if err != nil {
			return time.Time{}, err
		}
		if f < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}

// offsetFrom returns elongation(t) - targetDeg folded into (-180, 180].
func (c *TithiCalculator) offsetFrom(targetDeg float64, t time.Time) (float64, error) {
	e, err := c.Elongation(t)
	if err != nil {
		return 0, err
	}
	d := e - targetDeg
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d, nil
}
