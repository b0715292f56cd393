package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/iter"
)

// LocationEvents is the scan result for a single location.
type LocationEvents struct {
	Location GeoLocation     `json:"location" yaml:"location"`
	Events   []EkadashiEvent `json:"events" yaml:"events"`
}

// Compare scans year for every location concurrently. Results keep the
// order of locs.
func (e *Engine) Compare(ctx context.Context, year int, locs []GeoLocation) ([]LocationEvents, error) {
	if len(locs) == 0 {
		return nil, errors.New("compare: no locations")
	}
	for _, loc := range locs {
		if err := loc.Validate(); err != nil {
			return nil, err
		}
	}

	return iter.MapErr(locs, func(loc *GeoLocation) (LocationEvents, error) {
		events, err := e.FindEkadashisForYear(ctx, year, *loc)
		if err != nil {
			return LocationEvents{}, fmt.Errorf("%s: %w", loc, err)
		}
		return LocationEvents{Location: *loc, Events: events}, nil
	})
}

// DateDiff splits the event dates of two scans.
type DateDiff struct {
	Both  []string `json:"both" yaml:"both"`
	OnlyA []string `json:"only_a" yaml:"only_a"`
	OnlyB []string `json:"only_b" yaml:"only_b"`
}

// DiffByDate compares two event lists by civil date.
func DiffByDate(a, b []EkadashiEvent) DateDiff {
	inA := make(map[string]bool, len(a))
	for _, e := range a {
		inA[e.DateString()] = true
	}
	inB := make(map[string]bool, len(b))
	for _, e := range b {
		inB[e.DateString()] = true
	}

	diff := DateDiff{Both: []string{}, OnlyA: []string{}, OnlyB: []string{}}
	for d := range inA {
		if inB[d] {
			diff.Both = append(diff.Both, d)
		} else {
			diff.OnlyA = append(diff.OnlyA, d)
		}
	}
	for d := range inB {
		if !inA[d] {
			diff.OnlyB = append(diff.OnlyB, d)
		}
	}
	sort.Strings(diff.Both)
	sort.Strings(diff.OnlyA)
	sort.Strings(diff.OnlyB)
	return diff
}
