package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
	"github.com/zapponejosh/ekadashi-api/internal/config"
	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
	"github.com/zapponejosh/ekadashi-api/internal/export"
	"github.com/zapponejosh/ekadashi-api/internal/locations"
	"github.com/zapponejosh/ekadashi-api/internal/logger"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	engine    *calendar.Engine
	locations *locations.Registry
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *calendar.Engine, registry *locations.Registry, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		engine:    engine,
		locations: registry,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// Check the ephemeris answers for the current instant
	if _, err := h.engine.TithiAt(h.now()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Ephemeris unavailable", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// GetYear handles GET /api/v1/ekadashi/{year} and /api/v1/ekadashi/{year}.ics
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	yearStr, asICS := strings.CutSuffix(chi.URLParam(r, "year"), ".ics")
	if r.URL.Query().Get("format") == string(export.FormatICS) {
		asICS = true
	}

	year, err := parseYear(yearStr)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	events, err := h.engine.FindEkadashisForYear(ctx, year, loc)
	if err != nil {
		h.writeEngineError(w, r, "failed to scan year", err)
		return
	}

	if asICS {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ekadashi-%d.ics"`, year))
		if err := export.WriteICS(w, loc, events, h.now()); err != nil {
			logger.Error(ctx, "failed to write ics", err)
		}
		return
	}

	WriteSuccess(w, export.NewCalendar(loc, events))
}

// GetRange handles GET /api/v1/ekadashi?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handlers) GetRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		WriteBadRequest(w, "Both from and to date parameters are required")
		return
	}

	from, err := calendar.ParseDateString(fromStr, loc.Zone())
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid from date format: %s. Use YYYY-MM-DD", fromStr))
		return
	}
	to, err := calendar.ParseDateString(toStr, loc.Zone())
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid to date format: %s. Use YYYY-MM-DD", toStr))
		return
	}

	if from.After(to) {
		WriteBadRequest(w, "from date must be before or equal to to date")
		return
	}

	// Limit range to prevent abuse
	days := int(to.Sub(from).Hours()/24+0.5) + 1
	if days > h.cfg.MaxRangeDays {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", h.cfg.MaxRangeDays))
		return
	}

	events, err := h.engine.FindEkadashisInRange(ctx, from, to, loc)
	if err != nil {
		h.writeEngineError(w, r, "failed to scan range", err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"from":     fromStr,
		"to":       toStr,
		"calendar": export.NewCalendar(loc, events),
	})
}

// GetNext handles GET /api/v1/ekadashi/next?from=YYYY-MM-DD
func (h *Handlers) GetNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	from, ok := h.dateParam(w, r.URL.Query().Get("from"), loc)
	if !ok {
		return
	}

	event, err := h.engine.NextEkadashi(ctx, from, loc)
	if err != nil {
		h.writeEngineError(w, r, "failed to find next ekadashi", err)
		return
	}

	WriteSuccess(w, export.NewRecord(event, loc))
}

// dayResponse is the payload of GET /api/v1/day/{date}.
type dayResponse struct {
	Date           string                `json:"date"`
	Location       calendar.GeoLocation  `json:"location"`
	Classification calendar.CheckResult  `json:"classification"`
	Times          calendar.DailyTimes   `json:"times"`
	Checkpoints    []calendar.Checkpoint `json:"checkpoints"`
}

// GetDay handles GET /api/v1/day/{YYYY-MM-DD}
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	date, ok := h.dateParam(w, chi.URLParam(r, "date"), loc)
	if !ok {
		return
	}

	inspection, err := h.engine.Inspect(date, loc)
	if err != nil {
		h.writeEngineError(w, r, "failed to inspect day", err)
		return
	}
	times, err := h.engine.DailyTimes(date, loc)
	if err != nil {
		h.writeEngineError(w, r, "failed to resolve solar times", err)
		return
	}

	WriteSuccess(w, dayResponse{
		Date:           calendar.FormatDate(inspection.Date),
		Location:       loc,
		Classification: inspection.Result,
		Times:          times,
		Checkpoints:    inspection.Checkpoints,
	})
}

// GetParana handles GET /api/v1/parana/{YYYY-MM-DD}?paksha=shukla|krishna
//
// Without paksha, the date is classified first and must be an Ekadashi.
func (h *Handlers) GetParana(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.requestLocation(w, r)
	if !ok {
		return
	}

	date, ok := h.dateParam(w, chi.URLParam(r, "date"), loc)
	if !ok {
		return
	}

	var paksha calendar.Paksha
	switch p := strings.ToLower(r.URL.Query().Get("paksha")); p {
	case string(calendar.Shukla), string(calendar.Krishna):
		paksha = calendar.Paksha(p)
	case "":
		res, err := h.engine.Classify(date, loc)
		if err != nil {
			h.writeEngineError(w, r, "failed to classify day", err)
			return
		}
		if !res.IsEkadashi {
			WriteError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("%s is not an Ekadashi at %s; pass paksha to compute anyway", calendar.FormatDate(date), loc), "NOT_EKADASHI")
			return
		}
		paksha = res.Paksha
	default:
		WriteBadRequest(w, fmt.Sprintf("Invalid paksha: %s. Use shukla or krishna", p))
		return
	}

	window, err := h.engine.ParanaWindowFor(date, paksha, loc)
	if err != nil {
		if errors.Is(err, calendar.ErrBoundaryNotBracketed) {
			WriteError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("No %s Dvadashi follows %s", paksha, calendar.FormatDate(date)), "NO_DVADASHI")
			return
		}
		h.writeEngineError(w, r, "failed to compute parana window", err)
		return
	}

	WriteSuccess(w, window)
}

// GetTithi handles GET /api/v1/tithi?at=RFC3339
func (h *Handlers) GetTithi(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	if s := r.URL.Query().Get("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid at: %s. Use RFC 3339, e.g. 2026-03-15T04:00:00Z", s))
			return
		}
		at = t
	}

	span, err := h.engine.TithiSpanAt(at)
	if err != nil {
		h.writeEngineError(w, r, "failed to compute tithi", err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"at":   at,
		"span": span,
	})
}

// comparePayload is the payload of GET /api/v1/compare/{year}.
type comparePayload struct {
	Year      int                `json:"year"`
	Calendars []export.Calendar  `json:"calendars"`
	Diff      *calendar.DateDiff `json:"diff,omitempty"`
}

// GetCompare handles GET /api/v1/compare/{year}?location=a&location=b
func (h *Handlers) GetCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	names := r.URL.Query()["location"]
	if len(names) < 2 {
		WriteBadRequest(w, "At least two location parameters are required")
		return
	}
	if len(names) > h.cfg.CompareMaxLocations {
		WriteBadRequest(w, fmt.Sprintf("At most %d locations can be compared", h.cfg.CompareMaxLocations))
		return
	}

	locs := make([]calendar.GeoLocation, 0, len(names))
	for _, name := range names {
		loc, err := h.locations.Lookup(name)
		if err != nil {
			WriteInvalidLocation(w, err.Error())
			return
		}
		locs = append(locs, loc)
	}

	results, err := h.engine.Compare(ctx, year, locs)
	if err != nil {
		h.writeEngineError(w, r, "failed to compare locations", err)
		return
	}

	payload := comparePayload{Year: year}
	for _, res := range results {
		payload.Calendars = append(payload.Calendars, export.NewCalendar(res.Location, res.Events))
	}
	if len(results) == 2 {
		diff := calendar.DiffByDate(results[0].Events, results[1].Events)
		payload.Diff = &diff
	}

	WriteSuccess(w, payload)
}

// ListLocations handles GET /api/v1/admin/locations
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]interface{}{
		"default":   h.cfg.DefaultLocation(),
		"locations": h.locations.All(),
	})
}

// requestLocation resolves the observer from the query. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handlers) requestLocation(w http.ResponseWriter, r *http.Request) (calendar.GeoLocation, bool) {
	q := r.URL.Query()

	if name := q.Get("location"); name != "" {
		loc, err := h.locations.Lookup(name)
		if err != nil {
			WriteInvalidLocation(w, err.Error())
			return calendar.GeoLocation{}, false
		}
		return loc, true
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return h.cfg.DefaultLocation(), true
	}
	if latStr == "" || lonStr == "" {
		WriteInvalidLocation(w, "Both lat and lon are required")
		return calendar.GeoLocation{}, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		WriteInvalidLocation(w, fmt.Sprintf("Invalid lat: %s", latStr))
		return calendar.GeoLocation{}, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		WriteInvalidLocation(w, fmt.Sprintf("Invalid lon: %s", lonStr))
		return calendar.GeoLocation{}, false
	}
	tz := q.Get("tz")
	if tz == "" {
		tz = h.cfg.DefaultTimezone
	}

	loc, err := calendar.NewGeoLocation("", lat, lon, tz)
	if err != nil {
		WriteInvalidLocation(w, err.Error())
		return calendar.GeoLocation{}, false
	}
	return loc, true
}

// dateParam parses a YYYY-MM-DD civil date in loc's zone. An empty string
// means today.
func (h *Handlers) dateParam(w http.ResponseWriter, s string, loc calendar.GeoLocation) (time.Time, bool) {
	if s == "" {
		return calendar.CivilDate(h.now(), loc.Zone()), true
	}
	date, err := calendar.ParseDateString(s, loc.Zone())
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", s))
		return time.Time{}, false
	}
	return date, true
}

// writeEngineError maps calendar errors to responses.
func (h *Handlers) writeEngineError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()

	var locErr *calendar.InvalidLocationError
	var compErr *calendar.ComputationError
	switch {
	case errors.As(err, &locErr):
		WriteInvalidLocation(w, err.Error())
	case calendar.IsNoSunrise(err):
		WriteNoSunrise(w, err.Error())
	case calendar.IsCanceled(err):
		logger.Warn(ctx, msg, slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Request canceled", "CANCELED")
	case errors.As(err, &compErr):
		logger.Error(ctx, msg, err)
		WriteComputationFailed(w, compErr.Error())
	default:
		logger.Error(ctx, msg, err)
		WriteComputationFailed(w, "Calendar computation failed")
	}
}

// parseYear validates a year within the ephemeris range. The first and last
// supported years are excluded because a scan touches neighbouring days.
func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year: %s", s)
	}
	if year <= ephemeris.MinYear || year >= ephemeris.MaxYear {
		return 0, fmt.Errorf("year must be between %d and %d", ephemeris.MinYear+1, ephemeris.MaxYear-1)
	}
	return year, nil
}
