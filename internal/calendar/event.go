package calendar

import "time"

// EkadashiEvent is one observed Ekadashi. It is produced by the year scan and
// not modified afterwards.
type EkadashiEvent struct {
	Date           time.Time `json:"date" yaml:"date"`
	Paksha         Paksha    `json:"paksha" yaml:"paksha"`
	TithiAtSunrise int       `json:"tithi_at_sunrise" yaml:"tithi_at_sunrise"`
	CheckType      CheckType `json:"check_type" yaml:"check_type"`
	Sunrise        time.Time `json:"sunrise" yaml:"sunrise"`
	Sunset         time.Time `json:"sunset" yaml:"sunset"`
	ParanaStart    time.Time `json:"parana_start" yaml:"parana_start"`
	ParanaEnd      time.Time `json:"parana_end" yaml:"parana_end"`
	HariVasaraEnd  time.Time `json:"hari_vasara_end" yaml:"hari_vasara_end"`
	DvadashiEnd    time.Time `json:"dvadashi_end" yaml:"dvadashi_end"`
	// ParanaFallback marks a window fixed after sunrise because Dvadashi
	// ended before the parana day began.
	ParanaFallback bool `json:"parana_fallback,omitempty" yaml:"parana_fallback,omitempty"`
}

// DateString returns the civil date as YYYY-MM-DD.
func (e EkadashiEvent) DateString() string {
	return FormatDate(e.Date)
}

// EventBuilder turns a qualifying classification into an event.
type EventBuilder interface {
	BuildEvent(result CheckResult, loc GeoLocation) (EkadashiEvent, error)
}
