// Package calendar implements the Ekadashi determination engine: the lunar
// day (tithi) at a reference instant, sunrise-based day classification, the
// year scan that selects the observed fasting days, and the window for
// breaking the fast.
package calendar

import (
	"errors"
	"fmt"
	"math"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a tz database
)

// GeoLocation is an observer position and the IANA zone whose civil dates
// the calendar is computed for.
type GeoLocation struct {
	Name       string  `json:"name,omitempty" yaml:"name"`
	Latitude   float64 `json:"latitude" yaml:"latitude"`
	Longitude  float64 `json:"longitude" yaml:"longitude"`
	TimezoneID string  `json:"timezone" yaml:"timezone"`

	zone *time.Location
}

// NewGeoLocation validates the coordinates and resolves the zone.
func NewGeoLocation(name string, latitude, longitude float64, timezoneID string) (GeoLocation, error) {
	loc := GeoLocation{
		Name:       name,
		Latitude:   latitude,
		Longitude:  longitude,
		TimezoneID: timezoneID,
	}
	if err := loc.Validate(); err != nil {
		return GeoLocation{}, err
	}
	zone, _ := time.LoadLocation(timezoneID)
	loc.zone = zone
	return loc, nil
}

// Validate checks coordinate ranges and that the timezone id resolves.
func (g GeoLocation) Validate() error {
	var errs []error

	if math.IsNaN(g.Latitude) || g.Latitude < -90 || g.Latitude > 90 {
		errs = append(errs, &InvalidLocationError{Field: "latitude", Value: fmt.Sprint(g.Latitude), Reason: "must be within [-90, 90]"})
	}
	if math.IsNaN(g.Longitude) || g.Longitude < -180 || g.Longitude > 180 {
		errs = append(errs, &InvalidLocationError{Field: "longitude", Value: fmt.Sprint(g.Longitude), Reason: "must be within [-180, 180]"})
	}
	if g.TimezoneID == "" {
		errs = append(errs, &InvalidLocationError{Field: "timezone", Reason: "is required"})
	} else if _, err := time.LoadLocation(g.TimezoneID); err != nil {
		errs = append(errs, &InvalidLocationError{Field: "timezone", Value: g.TimezoneID, Reason: "unknown IANA zone"})
	}

	return errors.Join(errs...)
}

// Zone returns the location's time zone. Locations built as struct literals
// resolve it lazily; an unresolvable id falls back to UTC, which Validate
// would have rejected.
func (g GeoLocation) Zone() *time.Location {
	if g.zone != nil {
		return g.zone
	}
	zone, err := time.LoadLocation(g.TimezoneID)
	if err != nil {
		return time.UTC
	}
	return zone
}

// String returns the name when set, otherwise the coordinates.
func (g GeoLocation) String() string {
	if g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("%.4f,%.4f (%s)", g.Latitude, g.Longitude, g.TimezoneID)
}

// DateIn returns local midnight of the given civil date in zone.
func DateIn(year int, month time.Month, day int, zone *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, zone)
}

// CivilDate truncates t to local midnight of its civil date in zone.
func CivilDate(t time.Time, zone *time.Location) time.Time {
	y, m, d := t.In(zone).Date()
	return DateIn(y, m, d, zone)
}

// AddDays moves a civil date by n days, staying at local midnight across
// DST changes.
func AddDays(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, date.Location())
}

// ParseDateString parses a date string in YYYY-MM-DD format as a civil date
// in zone.
func ParseDateString(dateStr string, zone *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, zone)
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
