package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
)

// Engine wires the calendar components over one ephemeris provider.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	tithis     *TithiCalculator
	sun        *SunResolver
	classifier *Classifier
	parana     *ParanaCalculator
	scanner    *Scanner
	logger     *slog.Logger
}

var _ EventBuilder = (*Engine)(nil)

// New builds an engine over provider. A nil logger uses slog.Default().
func New(provider ephemeris.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	tithis := NewTithiCalculator(provider)
	sun := NewSunResolver(provider)

	e := &Engine{
		tithis:     tithis,
		sun:        sun,
		classifier: NewClassifier(tithis, sun),
		parana:     NewParanaCalculator(tithis, sun),
		logger:     logger,
	}
	e.scanner = NewScanner(e.classifier, e, logger)
	return e
}

// NewDefault builds an engine over the Meeus ephemeris.
func NewDefault(logger *slog.Logger) *Engine {
	return New(ephemeris.Meeus{}, logger)
}

// BuildEvent implements EventBuilder.
func (e *Engine) BuildEvent(result CheckResult, loc GeoLocation) (EkadashiEvent, error) {
	st, err := e.sun.SolarTimesFor(result.Date, loc)
	if err != nil {
		return EkadashiEvent{}, err
	}
	atSunrise, err := e.tithis.TithiAt(st.Sunrise)
	if err != nil {
		return EkadashiEvent{}, err
	}
	w, err := e.parana.ParanaWindowFor(result.Date, result.Paksha, loc)
	if err != nil {
		return EkadashiEvent{}, fmt.Errorf("parana for %s: %w", FormatDate(result.Date), err)
	}

	return EkadashiEvent{
		Date:           st.Date,
		Paksha:         result.Paksha,
		TithiAtSunrise: atSunrise.InPaksha,
		CheckType:      result.CheckType,
		Sunrise:        st.Sunrise,
		Sunset:         st.Sunset,
		ParanaStart:    w.Start,
		ParanaEnd:      w.End,
		HariVasaraEnd:  w.HariVasaraEnd,
		DvadashiEnd:    w.DvadashiEnd,
		ParanaFallback: w.Fallback,
	}, nil
}

// FindEkadashisForYear returns the observed Ekadashis of year at loc.
func (e *Engine) FindEkadashisForYear(ctx context.Context, year int, loc GeoLocation) ([]EkadashiEvent, error) {
	return e.scanner.FindEkadashisForYear(ctx, year, loc)
}

// FindEkadashisInRange returns the observed Ekadashis between two civil dates.
func (e *Engine) FindEkadashisInRange(ctx context.Context, from, to time.Time, loc GeoLocation) ([]EkadashiEvent, error) {
	return e.scanner.FindEkadashisInRange(ctx, from, to, loc)
}

// NextEkadashi returns the first observed Ekadashi on or after from.
func (e *Engine) NextEkadashi(ctx context.Context, from time.Time, loc GeoLocation) (EkadashiEvent, error) {
	return e.scanner.NextEkadashi(ctx, from, loc)
}

// Classify classifies a single civil date.
func (e *Engine) Classify(date time.Time, loc GeoLocation) (CheckResult, error) {
	if err := loc.Validate(); err != nil {
		return CheckResult{}, err
	}
	return e.classifier.Classify(date, loc)
}

// TithiAt returns the tithi active at t.
func (e *Engine) TithiAt(t time.Time) (Tithi, error) {
	return e.tithis.TithiAt(t)
}

// TithiSpanAt returns the tithi active at t with its start and end.
func (e *Engine) TithiSpanAt(t time.Time) (Span, error) {
	return e.tithis.SpanAt(t)
}

// DailyTimes returns the solar reference periods for a civil date.
func (e *Engine) DailyTimes(date time.Time, loc GeoLocation) (DailyTimes, error) {
	if err := loc.Validate(); err != nil {
		return DailyTimes{}, err
	}
	return e.sun.DailyTimesFor(date, loc)
}

// ParanaWindowFor returns the parana window following an Ekadashi of paksha
// observed on ekadashiDate.
func (e *Engine) ParanaWindowFor(ekadashiDate time.Time, paksha Paksha, loc GeoLocation) (ParanaWindow, error) {
	if err := loc.Validate(); err != nil {
		return ParanaWindow{}, err
	}
	return e.parana.ParanaWindowFor(ekadashiDate, paksha, loc)
}
