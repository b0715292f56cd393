package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
	"github.com/zapponejosh/ekadashi-api/internal/export"
)

type dayPayload struct {
	Date           string               `json:"date" yaml:"date"`
	Location       calendar.GeoLocation `json:"location" yaml:"location"`
	Classification calendar.CheckResult `json:"classification" yaml:"classification"`
	Times          calendar.DailyTimes  `json:"times" yaml:"times"`
}

type comparePayload struct {
	Year      int                `json:"year" yaml:"year"`
	Calendars []export.Calendar  `json:"calendars" yaml:"calendars"`
	Diff      *calendar.DateDiff `json:"diff,omitempty" yaml:"diff,omitempty"`
}

const clock = "15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeEventTable(w io.Writer, loc calendar.GeoLocation, events []calendar.EkadashiEvent) error {
	fmt.Fprintf(w, "Ekadashi at %s\n\n", loc)

	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tPAKSHA\tCHECK\tSUNRISE\tPARANA")
	zone := loc.Zone()
	for _, e := range events {
		parana := fmt.Sprintf("%s %s-%s",
			e.ParanaStart.In(zone).Format("Jan 02"),
			e.ParanaStart.In(zone).Format(clock),
			e.ParanaEnd.In(zone).Format(clock))
		if e.ParanaFallback {
			parana += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.DateString(), e.Paksha, e.CheckType, e.Sunrise.In(zone).Format(clock), parana)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d event(s)\n", len(events))
	for _, e := range events {
		if e.ParanaFallback {
			fmt.Fprintln(w, "* Dvadashi ends before sunrise; break the fast soon after sunrise")
			break
		}
	}
	return nil
}

func writeDayTable(w io.Writer, loc calendar.GeoLocation, p dayPayload) error {
	zone := loc.Zone()
	c := p.Classification
	t := p.Times

	status := "not Ekadashi"
	if c.IsEkadashi {
		status = fmt.Sprintf("Ekadashi (%s)", c.CheckType)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Date\t%s\n", p.Date)
	fmt.Fprintf(tw, "Location\t%s\n", loc)
	fmt.Fprintf(tw, "Status\t%s\n", status)
	fmt.Fprintf(tw, "Tithi at Brahma Muhurta\t%s %d\n", c.Paksha, c.Tithi)
	fmt.Fprintf(tw, "Brahma Muhurta\t%s-%s\n", t.BrahmaSpan.Start.In(zone).Format(clock), t.BrahmaSpan.End.In(zone).Format(clock))
	fmt.Fprintf(tw, "Sunrise\t%s\n", t.Sunrise.In(zone).Format(clock))
	fmt.Fprintf(tw, "Pratahkala\t%s-%s\n", t.Pratahkala.Start.In(zone).Format(clock), t.Pratahkala.End.In(zone).Format(clock))
	fmt.Fprintf(tw, "Solar noon\t%s\n", t.Noon.In(zone).Format(clock))
	fmt.Fprintf(tw, "Sunset\t%s\n", t.Sunset.In(zone).Format(clock))
	fmt.Fprintf(tw, "Day length\t%s\n", t.Daylight.Round(time.Minute))
	return tw.Flush()
}

func writeInspectionTable(w io.Writer, loc calendar.GeoLocation, in calendar.Inspection) error {
	zone := loc.Zone()

	fmt.Fprintf(w, "%s at %s: ", calendar.FormatDate(in.Date), loc)
	if in.Result.IsEkadashi {
		fmt.Fprintf(w, "Ekadashi (%s, %s)\n\n", in.Result.Paksha, in.Result.CheckType)
	} else {
		fmt.Fprintf(w, "not Ekadashi\n\n")
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "CHECKPOINT\tTIME\tTITHI\tINDEX")
	for _, cp := range in.Checkpoints {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			cp.Name, cp.At.In(zone).Format("Jan 02 15:04"), cp.Tithi, cp.Tithi.Index)
	}
	return tw.Flush()
}

func writeCompareTable(w io.Writer, results []calendar.LocationEvents) error {
	// Rows are the union of dates; a cell is marked when that location
	// observes the date.
	seen := make(map[string]bool)
	var dates []string
	observed := make([]map[string]calendar.EkadashiEvent, len(results))
	for i, res := range results {
		observed[i] = make(map[string]calendar.EkadashiEvent, len(res.Events))
		for _, e := range res.Events {
			d := e.DateString()
			observed[i][d] = e
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Strings(dates)

	tw := newTable(w)
	header := []string{"DATE"}
	for _, res := range results {
		header = append(header, strings.ToUpper(res.Location.String()))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, d := range dates {
		row := []string{d}
		for i := range results {
			cell := "-"
			if e, ok := observed[i][d]; ok {
				cell = string(e.Paksha)
				if e.CheckType == calendar.CheckMahadvadashi {
					cell += " (maha)"
				}
			}
			row = append(row, cell)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeLocationsTable(w io.Writer, locs []calendar.GeoLocation) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tLATITUDE\tLONGITUDE\tTIMEZONE")
	for _, loc := range locs {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%s\n", loc.Name, loc.Latitude, loc.Longitude, loc.TimezoneID)
	}
	return tw.Flush()
}
