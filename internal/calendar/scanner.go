package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/metrics"
)

// nextEkadashiHorizon bounds the search for the next event. Ekadashis are at
// most about 16 days apart, a dropped day or polar gap included.
const nextEkadashiHorizon = 40

// scanState is carried from one iteration of the scan to the next.
type scanState int

const (
	stateNormal scanState = iota
	// stateSkipOneDay follows a Mahadvadashi: the next date was consumed by
	// the overnight recovery and is passed without classification.
	stateSkipOneDay
)

func (s scanState) String() string {
	switch s {
	case stateNormal:
		return "normal"
	case stateSkipOneDay:
		return "skip_one_day"
	default:
		return fmt.Sprintf("scanState(%d)", int(s))
	}
}

// Scanner walks dates in order and selects the observed Ekadashi days.
// A scan is sequential; independent scans can run concurrently.
type Scanner struct {
	classifier DayClassifier
	builder    EventBuilder
	logger     *slog.Logger
}

// NewScanner creates a scanner. A nil logger uses slog.Default().
func NewScanner(classifier DayClassifier, builder EventBuilder, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{classifier: classifier, builder: builder, logger: logger}
}

// FindEkadashisForYear returns the observed Ekadashis from January 1 to
// December 31 of year, in date order.
func (s *Scanner) FindEkadashisForYear(ctx context.Context, year int, loc GeoLocation) ([]EkadashiEvent, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	zone := loc.Zone()
	return s.FindEkadashisInRange(ctx, DateIn(year, time.January, 1, zone), DateIn(year, time.December, 31, zone), loc)
}

// FindEkadashisInRange scans the civil dates from..to inclusive.
func (s *Scanner) FindEkadashisInRange(ctx context.Context, from, to time.Time, loc GeoLocation) ([]EkadashiEvent, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	zone := loc.Zone()
	from, to = CivilDate(from, zone), CivilDate(to, zone)
	if to.Before(from) {
		return nil, fmt.Errorf("scan range ends (%s) before it starts (%s)", FormatDate(to), FormatDate(from))
	}

	start := time.Now()
	events, err := s.scan(ctx, from, to, loc)
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ScansTotal.WithLabelValues("ok").Inc()

	s.logger.Debug("scan complete",
		slog.String("location", loc.String()),
		slog.String("from", FormatDate(from)),
		slog.String("to", FormatDate(to)),
		slog.Int("events", len(events)),
		slog.Duration("duration", time.Since(start)),
	)
	return events, nil
}

// NextEkadashi returns the first observed Ekadashi on or after from.
func (s *Scanner) NextEkadashi(ctx context.Context, from time.Time, loc GeoLocation) (EkadashiEvent, error) {
	if err := loc.Validate(); err != nil {
		return EkadashiEvent{}, err
	}
	from = CivilDate(from, loc.Zone())

	// Start a day early so a Mahadvadashi on the eve carries its skip.
	events, err := s.FindEkadashisInRange(ctx, AddDays(from, -1), AddDays(from, nextEkadashiHorizon), loc)
	if err != nil {
		return EkadashiEvent{}, err
	}
	for _, e := range events {
		if !e.Date.Before(from) {
			return e, nil
		}
	}
	return EkadashiEvent{}, fmt.Errorf("no ekadashi within %d days of %s at %s", nextEkadashiHorizon, FormatDate(from), loc)
}

func (s *Scanner) scan(ctx context.Context, from, to time.Time, loc GeoLocation) ([]EkadashiEvent, error) {
	var (
		events []EkadashiEvent
		state  = stateNormal
		peeked *CheckResult
	)

	for day := from; !day.After(to); day = AddDays(day, 1) {
		if err := ctx.Err(); err != nil {
			return nil, &ScanError{Date: day, Err: err}
		}

		if state == stateSkipOneDay {
			state = stateNormal
			peeked = nil
			s.logger.Debug("skipping day after mahadvadashi", slog.String("date", FormatDate(day)))
			continue
		}

		var current CheckResult
		if peeked != nil {
			current, peeked = *peeked, nil
		} else {
			res, err := s.classifier.Classify(day, loc)
			if err != nil {
				if IsNoSunrise(err) {
					s.exclude(day, loc, err)
					continue
				}
				return nil, &ScanError{Date: day, Err: err}
			}
			current = res
		}

		if !current.IsEkadashi {
			continue
		}

		// A Mahadvadashi is never superseded, and its following day is
		// skipped without being classified.
		if current.CheckType == CheckBrahmaMuhurta {
			next, ok, err := s.peek(AddDays(day, 1), loc)
			if err != nil {
				return nil, &ScanError{Date: AddDays(day, 1), Err: err}
			}
			if ok {
				peeked = &next
				if supersedes(current, next) {
					metrics.DaysSupersededTotal.Inc()
					s.logger.Debug("ekadashi moved to following day",
						slog.String("date", FormatDate(day)),
						slog.String("paksha", string(current.Paksha)),
					)
					continue
				}
			}
		}

		event, err := s.builder.BuildEvent(current, loc)
		if err != nil {
			if IsNoSunrise(err) {
				s.exclude(day, loc, err)
				continue
			}
			return nil, &ScanError{Date: day, Err: err}
		}
		events = append(events, event)
		metrics.EventsEmittedTotal.WithLabelValues(string(current.CheckType)).Inc()

		if current.CheckType == CheckMahadvadashi {
			state = stateSkipOneDay
		}
	}

	return events, nil
}

// peek classifies the following date. A date without sunrise is reported as
// not available rather than as an error; the main loop excludes it when it
// gets there.
func (s *Scanner) peek(day time.Time, loc GeoLocation) (CheckResult, bool, error) {
	res, err := s.classifier.Classify(day, loc)
	if err != nil {
		if IsNoSunrise(err) {
			return CheckResult{}, false, nil
		}
		return CheckResult{}, false, err
	}
	return res, true, nil
}

func (s *Scanner) exclude(day time.Time, loc GeoLocation, err error) {
	metrics.DaysExcludedTotal.Inc()
	s.logger.Warn("date excluded from scan",
		slog.String("date", FormatDate(day)),
		slog.String("location", loc.String()),
		slog.Any("error", err),
	)
}

// supersedes reports whether next replaces current: the Ekadashi tithi spans
// dawn on both days and the later day is observed.
func supersedes(current, next CheckResult) bool {
	return next.IsEkadashi &&
		next.Paksha == current.Paksha &&
		next.CheckType == CheckBrahmaMuhurta
}

// IsCanceled reports whether a scan stopped because its context ended.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
