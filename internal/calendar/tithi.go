package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
)

// Paksha is the waxing or waning half of the lunar month.
type Paksha string

const (
	Shukla  Paksha = "shukla"
	Krishna Paksha = "krishna"
)

// Tithi numbering.
const (
	TithiDegrees   = 12.0
	TithisPerMonth = 30
	TithisPerHalf  = 15

	Dashami  = 10
	Ekadashi = 11
	Dvadashi = 12
)

// Tithi is the lunar day active at a single instant.
type Tithi struct {
	Index    int    `json:"index" yaml:"index"`         // 1..30 within the lunar month
	InPaksha int    `json:"in_paksha" yaml:"in_paksha"` // 1..15 within the half
	Paksha   Paksha `json:"paksha" yaml:"paksha"`
}

func (t Tithi) String() string {
	return fmt.Sprintf("%s %d", t.Paksha, t.InPaksha)
}

// TithiFromIndex maps an absolute index (1..30) to its paksha form.
func TithiFromIndex(index int) Tithi {
	index = min(max(index, 1), TithisPerMonth)
	if index <= TithisPerHalf {
		return Tithi{Index: index, InPaksha: index, Paksha: Shukla}
	}
	return Tithi{Index: index, InPaksha: index - TithisPerHalf, Paksha: Krishna}
}

// AbsoluteIndex returns the month index of the given tithi of a paksha.
func AbsoluteIndex(paksha Paksha, inPaksha int) int {
	if paksha == Krishna {
		return inPaksha + TithisPerHalf
	}
	return inPaksha
}

// TithiFromLongitudes computes the tithi from apparent Sun and Moon longitudes.
func TithiFromLongitudes(sunDeg, moonDeg float64) Tithi {
	elongation := ephemeris.Normalize(moonDeg - sunDeg)
	return TithiFromIndex(int(math.Floor(elongation/TithiDegrees)) + 1)
}

// TithiCalculator resolves tithis from an ephemeris provider. Every call
// recomputes from the provider; two nearby instants may straddle a boundary.
type TithiCalculator struct {
	provider ephemeris.Provider
}

// NewTithiCalculator creates a calculator over provider.
func NewTithiCalculator(provider ephemeris.Provider) *TithiCalculator {
	return &TithiCalculator{provider: provider}
}

// Elongation returns the Moon-Sun elongation at t in [0, 360).
func (c *TithiCalculator) Elongation(t time.Time) (float64, error) {
	sun, moon, err := c.provider.SunMoonLongitudes(t)
	if err != nil {
		return 0, fmt.Errorf("elongation: %w", err)
	}
	return ephemeris.Normalize(moon - sun), nil
}

// TithiAt returns the tithi active at instant t.
func (c *TithiCalculator) TithiAt(t time.Time) (Tithi, error) {
	sun, moon, err := c.provider.SunMoonLongitudes(t)
	if err != nil {
		return Tithi{}, fmt.Errorf("tithi at %s: %w", t.UTC().Format(time.RFC3339), err)
	}
	return TithiFromLongitudes(sun, moon), nil
}

// Span is the interval during which one tithi is active.
type Span struct {
	Tithi Tithi     `json:"tithi" yaml:"tithi"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Duration returns the length of the span.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// SpanOf locates the start and end of the tithi with the given absolute
// index whose start lies within window of around.
func (c *TithiCalculator) SpanOf(index int, around time.Time, window time.Duration) (Span, error) {
	tithi := TithiFromIndex(index)
	startDeg := float64(index-1) * TithiDegrees

	start, err := c.Boundary(startDeg, around.Add(-window), around.Add(window))
	if err != nil {
		return Span{}, fmt.Errorf("start of tithi %d: %w", index, err)
	}
	end, err := c.Boundary(ephemeris.Normalize(startDeg+TithiDegrees), start, start.Add(maxTithiLength))
	if err != nil {
		return Span{}, fmt.Errorf("end of tithi %d: %w", index, err)
	}
	return Span{Tithi: tithi, Start: start, End: end}, nil
}

// SpanAt returns the span of the tithi active at t.
func (c *TithiCalculator) SpanAt(t time.Time) (Span, error) {
	tithi, err := c.TithiAt(t)
	if err != nil {
		return Span{}, err
	}
	return c.SpanOf(tithi.Index, t, maxTithiLength)
}
