package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
)

// ComputationError is the ephemeris failure type. It is propagated as is and
// never replaced with a default value.
type ComputationError = ephemeris.ComputationError

// InvalidLocationError reports a location rejected before any computation.
type InvalidLocationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidLocationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid location: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid location: %s %q %s", e.Field, e.Value, e.Reason)
}

// NoSunriseError reports a civil date with no sunrise or sunset at the
// location. The year scan excludes such dates and continues.
type NoSunriseError struct {
	Date     time.Time
	Location GeoLocation
}

func (e *NoSunriseError) Error() string {
	return fmt.Sprintf("no sunrise/sunset on %s at %s", FormatDate(e.Date), e.Location)
}

func (e *NoSunriseError) Unwrap() error { return ephemeris.ErrNoSunrise }

// ScanError carries the date on which a scan was aborted.
type ScanError struct {
	Date time.Time
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan aborted on %s: %v", FormatDate(e.Date), e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// IsNoSunrise reports whether err is, or wraps, a NoSunriseError.
func IsNoSunrise(err error) bool {
	var ns *NoSunriseError
	return errors.As(err, &ns)
}
