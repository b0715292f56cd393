// Package export renders event lists for API responses, CLI output and
// calendar subscriptions.
package export

import (
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
)

// Record is the flat, local-time view of one Ekadashi.
type Record struct {
	Date           string `json:"date" yaml:"date"`
	Paksha         string `json:"paksha" yaml:"paksha"`
	CheckType      string `json:"check_type" yaml:"check_type"`
	TithiAtSunrise int    `json:"tithi_at_sunrise" yaml:"tithi_at_sunrise"`
	Sunrise        string `json:"sunrise" yaml:"sunrise"`
	Sunset         string `json:"sunset" yaml:"sunset"`
	ParanaStart    string `json:"parana_start" yaml:"parana_start"`
	ParanaEnd      string `json:"parana_end" yaml:"parana_end"`
	HariVasaraEnd  string `json:"hari_vasara_end" yaml:"hari_vasara_end"`
	DvadashiEnd    string `json:"dvadashi_end" yaml:"dvadashi_end"`
	ParanaFallback bool   `json:"parana_fallback,omitempty" yaml:"parana_fallback,omitempty"`
}

// Calendar is a year or range of events for one location.
type Calendar struct {
	Location calendar.GeoLocation `json:"location" yaml:"location"`
	Count    int                  `json:"count" yaml:"count"`
	Events   []Record             `json:"events" yaml:"events"`
}

// NewRecord converts an event, rendering instants in loc's zone.
func NewRecord(e calendar.EkadashiEvent, loc calendar.GeoLocation) Record {
	zone := loc.Zone()
	return Record{
		Date:           e.DateString(),
		Paksha:         string(e.Paksha),
		CheckType:      string(e.CheckType),
		TithiAtSunrise: e.TithiAtSunrise,
		Sunrise:        localTime(e.Sunrise, zone),
		Sunset:         localTime(e.Sunset, zone),
		ParanaStart:    localTime(e.ParanaStart, zone),
		ParanaEnd:      localTime(e.ParanaEnd, zone),
		HariVasaraEnd:  localTime(e.HariVasaraEnd, zone),
		DvadashiEnd:    localTime(e.DvadashiEnd, zone),
		ParanaFallback: e.ParanaFallback,
	}
}

// NewCalendar converts a scan result.
func NewCalendar(loc calendar.GeoLocation, events []calendar.EkadashiEvent) Calendar {
	records := make([]Record, 0, len(events))
	for _, e := range events {
		records = append(records, NewRecord(e, loc))
	}
	return Calendar{Location: loc, Count: len(records), Events: records}
}

// localTime formats t in zone, truncated to the second.
func localTime(t time.Time, zone *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(zone).Truncate(time.Second).Format(time.RFC3339)
}
