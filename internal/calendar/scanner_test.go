package calendar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// scriptedClassifier returns canned results by date; unscripted dates are
// plain non-Ekadashi days.
type scriptedClassifier struct {
	results   map[string]CheckResult
	noSunrise map[string]bool
	failOn    map[string]error
	calls     map[string]int
}

func newScriptedClassifier() *scriptedClassifier {
	return &scriptedClassifier{
		results:   map[string]CheckResult{},
		noSunrise: map[string]bool{},
		failOn:    map[string]error{},
		calls:     map[string]int{},
	}
}

func (s *scriptedClassifier) ekadashi(date string, paksha Paksha, check CheckType) {
	s.results[date] = CheckResult{IsEkadashi: true, Tithi: Ekadashi, Paksha: paksha, CheckType: check}
}

func (s *scriptedClassifier) Classify(date time.Time, loc GeoLocation) (CheckResult, error) {
	key := FormatDate(date)
	s.calls[key]++

	if s.noSunrise[key] {
		return CheckResult{}, &NoSunriseError{Date: date, Location: loc}
	}
	if err := s.failOn[key]; err != nil {
		return CheckResult{}, err
	}
	res, ok := s.results[key]
	if !ok {
		res = CheckResult{Tithi: 5, Paksha: Shukla}
	}
	res.Date = date
	return res, nil
}

type echoBuilder struct {
	noSunrise map[string]bool
}

func (b echoBuilder) BuildEvent(res CheckResult, loc GeoLocation) (EkadashiEvent, error) {
	if b.noSunrise[FormatDate(res.Date)] {
		return EkadashiEvent{}, &NoSunriseError{Date: AddDays(res.Date, 1), Location: loc}
	}
	return EkadashiEvent{Date: res.Date, Paksha: res.Paksha, CheckType: res.CheckType}, nil
}

func eventDates(events []EkadashiEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.DateString()
	}
	return out
}

func scanMarch(t *testing.T, c *scriptedClassifier, b EventBuilder) ([]EkadashiEvent, error) {
	t.Helper()
	s := NewScanner(c, b, quietLogger)
	return s.FindEkadashisInRange(context.Background(), day(time.March, 1), day(time.March, 31), utc)
}

func TestScan_SingleDay(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-05", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-20", Krishna, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-05", "2030-03-20"}, eventDates(events))
	assert.Equal(t, Krishna, events[1].Paksha)
}

func TestScan_LaterDaySupersedes(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-10", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-11", Shukla, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-11"}, eventDates(events))

	for date, n := range c.calls {
		assert.Equal(t, 1, n, "%s classified %d times", date, n)
	}

	again, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, events, again)
}

func TestScan_NoSupersedeAcrossPaksha(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-10", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-11", Krishna, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-10", "2030-03-11"}, eventDates(events))
}

func TestScan_MahadvadashiSkipsNextDay(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-20", Shukla, CheckMahadvadashi)
	c.ekadashi("2030-03-22", Shukla, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-20", "2030-03-22"}, eventDates(events))
	assert.Equal(t, CheckMahadvadashi, events[0].CheckType)
	assert.Zero(t, c.calls["2030-03-21"])
}

func TestScan_SkippedDayIsNotEmitted(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-20", Shukla, CheckMahadvadashi)
	c.ekadashi("2030-03-21", Krishna, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-20"}, eventDates(events))
}

func TestScan_NextDayMahadvadashiDoesNotSupersede(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-10", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-11", Shukla, CheckMahadvadashi)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-10", "2030-03-11"}, eventDates(events))
}

func TestScan_ExcludesDaysWithoutSunrise(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-05", Shukla, CheckBrahmaMuhurta)
	c.noSunrise["2030-03-06"] = true
	c.noSunrise["2030-03-12"] = true
	c.ekadashi("2030-03-20", Krishna, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-05", "2030-03-20"}, eventDates(events))
	assert.Equal(t, 1, c.calls["2030-03-31"])
}

func TestScan_ExcludesEventWithoutParanaDay(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-05", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-20", Krishna, CheckBrahmaMuhurta)

	events, err := scanMarch(t, c, echoBuilder{noSunrise: map[string]bool{"2030-03-05": true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-03-20"}, eventDates(events))
}

func TestScan_ComputationErrorAborts(t *testing.T) {
	c := newScriptedClassifier()
	c.failOn["2030-03-14"] = &ComputationError{Instant: at(time.March, 14, 4, 24), Reason: "scripted"}

	events, err := scanMarch(t, c, echoBuilder{})
	assert.Nil(t, events)

	var se *ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "2030-03-14", FormatDate(se.Date))

	var ce *ComputationError
	assert.ErrorAs(t, err, &ce)
	assert.Zero(t, c.calls["2030-03-15"])
}

func TestScan_PeekErrorCarriesPeekedDate(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-10", Shukla, CheckBrahmaMuhurta)
	c.failOn["2030-03-11"] = errors.New("boom")

	_, err := scanMarch(t, c, echoBuilder{})
	var se *ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "2030-03-11", FormatDate(se.Date))
}

func TestScan_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(newScriptedClassifier(), echoBuilder{}, quietLogger)
	_, err := s.FindEkadashisInRange(ctx, day(time.March, 1), day(time.March, 31), utc)
	assert.True(t, IsCanceled(err))
}

func TestScan_InvalidLocation(t *testing.T) {
	c := newScriptedClassifier()
	s := NewScanner(c, echoBuilder{}, quietLogger)

	bad := GeoLocation{Latitude: 95, Longitude: 0, TimezoneID: "UTC"}
	_, err := s.FindEkadashisForYear(context.Background(), 2030, bad)

	var le *InvalidLocationError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "latitude", le.Field)
	assert.Empty(t, c.calls)
}

func TestScan_ReversedRange(t *testing.T) {
	s := NewScanner(newScriptedClassifier(), echoBuilder{}, quietLogger)
	_, err := s.FindEkadashisInRange(context.Background(), day(time.March, 2), day(time.March, 1), utc)
	assert.Error(t, err)
}

func TestNextEkadashi(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-04", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-19", Krishna, CheckBrahmaMuhurta)
	s := NewScanner(c, echoBuilder{}, quietLogger)

	got, err := s.NextEkadashi(context.Background(), day(time.March, 4), utc)
	require.NoError(t, err)
	assert.Equal(t, "2030-03-04", got.DateString())

	got, err = s.NextEkadashi(context.Background(), day(time.March, 5), utc)
	require.NoError(t, err)
	assert.Equal(t, "2030-03-19", got.DateString())
}

func TestNextEkadashi_DayAfterMahadvadashi(t *testing.T) {
	c := newScriptedClassifier()
	c.ekadashi("2030-03-04", Shukla, CheckMahadvadashi)
	c.ekadashi("2030-03-05", Shukla, CheckBrahmaMuhurta)
	c.ekadashi("2030-03-19", Krishna, CheckBrahmaMuhurta)
	s := NewScanner(c, echoBuilder{}, quietLogger)

	got, err := s.NextEkadashi(context.Background(), day(time.March, 5), utc)
	require.NoError(t, err)
	assert.Equal(t, "2030-03-19", got.DateString())
}

func TestNextEkadashi_NoneWithinHorizon(t *testing.T) {
	s := NewScanner(newScriptedClassifier(), echoBuilder{}, quietLogger)
	_, err := s.NextEkadashi(context.Background(), day(time.March, 1), utc)
	assert.Error(t, err)
}

func TestScanState_String(t *testing.T) {
	assert.Equal(t, "normal", stateNormal.String())
	assert.Equal(t, "skip_one_day", stateSkipOneDay.String())
	assert.Equal(t, "scanState(7)", scanState(7).String())
}

func TestEngineScan_Mahadvadashi(t *testing.T) {
	e := New(mahadvadashiProvider(), quietLogger)

	events, err := e.FindEkadashisInRange(context.Background(), day(time.June, 5), day(time.June, 15), utc)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "2030-06-10", ev.DateString())
	assert.Equal(t, CheckMahadvadashi, ev.CheckType)
	assert.Equal(t, Shukla, ev.Paksha)
	assert.Equal(t, Dvadashi, ev.TithiAtSunrise)
	assert.Equal(t, at(time.June, 11, 6, 0), ev.ParanaStart)
	assert.Equal(t, at(time.June, 11, 6, 30), ev.ParanaEnd)
	assert.True(t, ev.ParanaFallback)
}

func TestEngineScan_Shuddha(t *testing.T) {
	e := New(shuddhaProvider(), quietLogger)

	events, err := e.FindEkadashisInRange(context.Background(), day(time.June, 15), day(time.June, 25), utc)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "2030-06-20", ev.DateString())
	assert.Equal(t, CheckBrahmaMuhurta, ev.CheckType)
	assert.Equal(t, Dvadashi, ev.TithiAtSunrise)
	assert.WithinDuration(t, at(time.June, 21, 8, 0), ev.ParanaEnd, 3*time.Second)

	again, err := e.FindEkadashisInRange(context.Background(), day(time.June, 15), day(time.June, 25), utc)
	require.NoError(t, err)
	assert.Equal(t, events, again)
}

func TestEngineScan_PolarDayExcluded(t *testing.T) {
	p := shuddhaProvider()
	p.polar["2030-06-17"] = true

	e := New(p, quietLogger)
	events, err := e.FindEkadashisInRange(context.Background(), day(time.June, 15), day(time.June, 25), utc)
	require.NoError(t, err)
	assert.Equal(t, []string{"2030-06-20"}, eventDates(events))
}
