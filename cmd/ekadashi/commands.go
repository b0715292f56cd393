package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
	"github.com/zapponejosh/ekadashi-api/internal/ephemeris"
	"github.com/zapponejosh/ekadashi-api/internal/export"
)

func newYearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "year [YEAR]",
		Short: "List the Ekadashis of a Gregorian year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.observer(cmd)
			if err != nil {
				return err
			}
			format, err := a.outputFormat(true)
			if err != nil {
				return err
			}
			year, err := a.yearArg(args, loc)
			if err != nil {
				return err
			}

			events, err := a.engine.FindEkadashisForYear(cmd.Context(), year, loc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case export.FormatICS:
				return export.WriteICS(out, loc, events, a.now())
			case export.FormatJSON:
				return export.WriteJSON(out, export.NewCalendar(loc, events))
			case export.FormatYAML:
				return export.WriteYAML(out, export.NewCalendar(loc, events))
			default:
				return writeEventTable(out, loc, events)
			}
		},
	}
}

func newDayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Classify one civil date and show its solar times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.observer(cmd)
			if err != nil {
				return err
			}
			format, err := a.outputFormat(false)
			if err != nil {
				return err
			}
			date, err := a.dateArg(args, loc)
			if err != nil {
				return err
			}

			result, err := a.engine.Classify(date, loc)
			if err != nil {
				return err
			}
			times, err := a.engine.DailyTimes(date, loc)
			if err != nil {
				return err
			}

			payload := dayPayload{
				Date:           calendar.FormatDate(date),
				Location:       loc,
				Classification: result,
				Times:          times,
			}
			out := cmd.OutOrStdout()
			switch format {
			case export.FormatJSON:
				return export.WriteJSON(out, payload)
			case export.FormatYAML:
				return export.WriteYAML(out, payload)
			default:
				return writeDayTable(out, loc, payload)
			}
		},
	}
}

func newNextCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next Ekadashi on or after a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.observer(cmd)
			if err != nil {
				return err
			}
			format, err := a.outputFormat(false)
			if err != nil {
				return err
			}
			date, err := a.dateArg([]string{from}, loc)
			if err != nil {
				return err
			}

			event, err := a.engine.NextEkadashi(cmd.Context(), date, loc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case export.FormatJSON:
				return export.WriteJSON(out, export.NewRecord(event, loc))
			case export.FormatYAML:
				return export.WriteYAML(out, export.NewRecord(event, loc))
			default:
				return writeEventTable(out, loc, []calendar.EkadashiEvent{event})
			}
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date to consider, YYYY-MM-DD (default today)")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare YEAR LOCATION LOCATION...",
		Short: "Compare the Ekadashi dates of several location presets",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat(false)
			if err != nil {
				return err
			}
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			names := args[1:]
			if len(names) > a.cfg.CompareMaxLocations {
				return fmt.Errorf("at most %d locations can be compared", a.cfg.CompareMaxLocations)
			}

			locs := make([]calendar.GeoLocation, 0, len(names))
			for _, name := range names {
				loc, err := a.registry.Lookup(name)
				if err != nil {
					return err
				}
				locs = append(locs, loc)
			}

			results, err := a.engine.Compare(cmd.Context(), year, locs)
			if err != nil {
				return err
			}

			payload := comparePayload{Year: year}
			for _, res := range results {
				payload.Calendars = append(payload.Calendars, export.NewCalendar(res.Location, res.Events))
			}
			if len(results) == 2 {
				diff := calendar.DiffByDate(results[0].Events, results[1].Events)
				payload.Diff = &diff
			}

			out := cmd.OutOrStdout()
			switch format {
			case export.FormatJSON:
				return export.WriteJSON(out, payload)
			case export.FormatYAML:
				return export.WriteYAML(out, payload)
			default:
				return writeCompareTable(out, results)
			}
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [YYYY-MM-DD]",
		Short: "Show the tithi at each checkpoint around a date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.observer(cmd)
			if err != nil {
				return err
			}
			format, err := a.outputFormat(false)
			if err != nil {
				return err
			}
			date, err := a.dateArg(args, loc)
			if err != nil {
				return err
			}

			inspection, err := a.engine.Inspect(date, loc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case export.FormatJSON:
				return export.WriteJSON(out, inspection)
			case export.FormatYAML:
				return export.WriteYAML(out, inspection)
			default:
				return writeInspectionTable(out, loc, inspection)
			}
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [YEAR]",
		Short: "Write a year of Ekadashis as an iCalendar file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.observer(cmd)
			if err != nil {
				return err
			}
			year, err := a.yearArg(args, loc)
			if err != nil {
				return err
			}

			events, err := a.engine.FindEkadashisForYear(cmd.Context(), year, loc)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.WriteICS(cmd.OutOrStdout(), loc, events, a.now())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.WriteICS(f, loc, events, a.now()); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}

			a.log.Info("calendar exported",
				"path", output,
				"location", loc.String(),
				"year", year,
				"events", len(events),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func newLocationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List the known location presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat(false)
			if err != nil {
				return err
			}

			all := a.registry.All()
			out := cmd.OutOrStdout()
			switch format {
			case export.FormatJSON:
				return export.WriteJSON(out, all)
			case export.FormatYAML:
				return export.WriteYAML(out, all)
			default:
				return writeLocationsTable(out, all)
			}
		},
	}
}

// yearArg parses an optional year argument. No argument means the current
// year at loc.
func (a *app) yearArg(args []string, loc calendar.GeoLocation) (int, error) {
	if len(args) == 0 {
		return a.now().In(loc.Zone()).Year(), nil
	}
	return parseYear(args[0])
}

// parseYear validates a year within the ephemeris range, excluding the first
// and last supported years.
func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	if year <= ephemeris.MinYear || year >= ephemeris.MaxYear {
		return 0, fmt.Errorf("year must be between %d and %d", ephemeris.MinYear+1, ephemeris.MaxYear-1)
	}
	return year, nil
}
