package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
)

const productID = "-//zapponejosh//ekadashi-api//EN"

// uidNamespace scopes the deterministic event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/zapponejosh/ekadashi-api"))

// ICS renders events as an iCalendar document with one all-day VEVENT per
// Ekadashi. The parana window goes into the description.
//
// UIDs derive from the location and date, so a re-export of the same year
// updates subscribed calendars instead of duplicating entries.
func ICS(loc calendar.GeoLocation, events []calendar.EkadashiEvent, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("Ekadashi - " + loc.String())
	cal.SetXWRCalName("Ekadashi - " + loc.String())
	cal.SetXWRTimezone(loc.TimezoneID)

	zone := loc.Zone()
	for _, e := range events {
		vevent := cal.AddEvent(EventUID(loc, e))
		vevent.SetDtStampTime(stamp.UTC())
		vevent.SetAllDayStartAt(e.Date)
		vevent.SetAllDayEndAt(calendar.AddDays(e.Date, 1))
		vevent.SetSummary(summary(e))
		vevent.SetDescription(description(e, zone))
		vevent.SetLocation(loc.String())
		vevent.AddProperty(ics.ComponentProperty("X-EKADASHI-CHECK"), string(e.CheckType))
	}
	return cal.Serialize()
}

// WriteICS writes the ICS document to w.
func WriteICS(w io.Writer, loc calendar.GeoLocation, events []calendar.EkadashiEvent, stamp time.Time) error {
	_, err := io.WriteString(w, ICS(loc, events, stamp))
	return err
}

// EventUID returns the stable UID of an event.
func EventUID(loc calendar.GeoLocation, e calendar.EkadashiEvent) string {
	key := fmt.Sprintf("%.4f,%.4f,%s,%s", loc.Latitude, loc.Longitude, loc.TimezoneID, e.DateString())
	return uuid.NewSHA1(uidNamespace, []byte(key)).String()
}

func summary(e calendar.EkadashiEvent) string {
	name := "Ekadashi"
	if p := string(e.Paksha); p != "" {
		name = strings.ToUpper(p[:1]) + p[1:] + " Ekadashi"
	}
	if e.CheckType == calendar.CheckMahadvadashi {
		return name + " (Mahadvadashi)"
	}
	return name
}

func description(e calendar.EkadashiEvent, zone *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sunrise %s.", e.Sunrise.In(zone).Format("15:04"))
	if !e.ParanaStart.IsZero() {
		fmt.Fprintf(&b, " Break fast on %s between %s and %s",
			e.ParanaStart.In(zone).Format("2006-01-02"),
			e.ParanaStart.In(zone).Format("15:04"),
			e.ParanaEnd.In(zone).Format("15:04"))
		if e.ParanaFallback {
			b.WriteString(" (Dvadashi ends before sunrise)")
		}
		b.WriteString(".")
	}
	return b.String()
}
