package calendar

import (
	"fmt"
	"time"
)

const (
	// dvadashiSearchWindow brackets the Ekadashi/Dvadashi boundary around
	// the event's Brahma Muhurta. It covers both an Ekadashi that begins
	// after dawn and one that ended overnight.
	dvadashiSearchWindow = 48 * time.Hour

	// fallbackParanaLength is used when Dvadashi ends before sunrise of the
	// parana day.
	fallbackParanaLength = 30 * time.Minute
)

// ParanaWindow is the permitted interval to break the fast.
type ParanaWindow struct {
	Date          time.Time `json:"date" yaml:"date"`
	Start         time.Time `json:"start" yaml:"start"`
	End           time.Time `json:"end" yaml:"end"`
	Sunrise       time.Time `json:"sunrise" yaml:"sunrise"`
	DvadashiStart time.Time `json:"dvadashi_start" yaml:"dvadashi_start"`
	DvadashiEnd   time.Time `json:"dvadashi_end" yaml:"dvadashi_end"`
	HariVasaraEnd time.Time `json:"hari_vasara_end" yaml:"hari_vasara_end"`
	// Fallback is set when Dvadashi was already over at sunrise and the
	// window is a fixed period after sunrise.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// ParanaCalculator computes parana windows.
type ParanaCalculator struct {
	tithis *TithiCalculator
	sun    *SunResolver
}

// NewParanaCalculator creates a calculator.
func NewParanaCalculator(tithis *TithiCalculator, sun *SunResolver) *ParanaCalculator {
	return &ParanaCalculator{tithis: tithis, sun: sun}
}

// ParanaWindowFor returns the window on the day after ekadashiDate.
//
// The window opens at the later of sunrise and the end of Hari Vasara (the
// first quarter of Dvadashi) and closes at the earlier of the end of Dvadashi
// and solar noon. The noon cutoff is dropped when it would close the window
// before it opens.
func (p *ParanaCalculator) ParanaWindowFor(ekadashiDate time.Time, paksha Paksha, loc GeoLocation) (ParanaWindow, error) {
	eka, err := p.sun.SolarTimesFor(ekadashiDate, loc)
	if err != nil {
		return ParanaWindow{}, err
	}
	next, err := p.sun.SolarTimesFor(AddDays(eka.Date, 1), loc)
	if err != nil {
		return ParanaWindow{}, err
	}

	dvadashi, err := p.tithis.SpanOf(AbsoluteIndex(paksha, Dvadashi), eka.BrahmaMuhurta(), dvadashiSearchWindow)
	if err != nil {
		return ParanaWindow{}, fmt.Errorf("dvadashi after %s: %w", FormatDate(eka.Date), err)
	}

	hariVasaraEnd := dvadashi.Start.Add(dvadashi.Duration() / 4)

	w := ParanaWindow{
		Date:          next.Date,
		Sunrise:       next.Sunrise,
		DvadashiStart: dvadashi.Start,
		DvadashiEnd:   dvadashi.End,
		HariVasaraEnd: hariVasaraEnd,
	}

	w.Start = laterOf(next.Sunrise, hariVasaraEnd)
	w.End = earlierOf(dvadashi.End, next.SolarNoon())
	if !w.End.After(w.Start) {
		w.End = dvadashi.End
	}
	if !w.End.After(w.Start) {
		w.Start = next.Sunrise
		w.End = next.Sunrise.Add(fallbackParanaLength)
		w.Fallback = true
	}
	return w, nil
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
