package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
	"github.com/zapponejosh/ekadashi-api/internal/config"
	"github.com/zapponejosh/ekadashi-api/internal/export"
	"github.com/zapponejosh/ekadashi-api/internal/locations"
	"github.com/zapponejosh/ekadashi-api/internal/logger"
)

// app carries the state shared by every subcommand once the root
// PersistentPreRunE has run.
type app struct {
	location      string
	lat, lon      float64
	tz            string
	format        string
	locationsFile string
	logLevel      string

	cfg      *config.Config
	log      *slog.Logger
	engine   *calendar.Engine
	registry *locations.Registry
	now      func() time.Time
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "ekadashi",
		Short: "Compute Ekadashi fasting days for an observer",
		Long: "ekadashi determines the Ekadashi fasting days and their parana (fast-breaking)\n" +
			"windows for a location from the tithi at Brahma Muhurta.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.location, "location", "l", "", "named location preset (see 'ekadashi locations')")
	flags.Float64Var(&a.lat, "lat", 0, "observer latitude in degrees, north positive")
	flags.Float64Var(&a.lon, "lon", 0, "observer longitude in degrees, east positive")
	flags.StringVar(&a.tz, "tz", "", "IANA timezone of the observer (default from DEFAULT_TIMEZONE)")
	flags.StringVarP(&a.format, "format", "f", string(export.FormatTable), "output format: table, json or yaml")
	flags.StringVar(&a.locationsFile, "locations-file", "", "YAML file of location presets (default from LOCATIONS_FILE)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newYearCmd(a),
		newDayCmd(a),
		newNextCmd(a),
		newCompareCmd(a),
		newInspectCmd(a),
		newExportCmd(a),
		newLocationsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	// Results go to stdout, so logs stay on stderr
	a.log = logger.New(stderr, level, cfg.LogFormat)

	file := cfg.LocationsFile
	if a.locationsFile != "" {
		file = a.locationsFile
	}
	a.registry, err = locations.Load(file)
	if err != nil {
		return fmt.Errorf("failed to load locations: %w", err)
	}

	a.engine = calendar.NewDefault(a.log)
	return nil
}

// observer resolves --location, or --lat/--lon/--tz, or the configured
// default, in that order.
func (a *app) observer(cmd *cobra.Command) (calendar.GeoLocation, error) {
	flags := cmd.Flags()

	if a.location != "" {
		return a.registry.Lookup(a.location)
	}

	latSet, lonSet := flags.Changed("lat"), flags.Changed("lon")
	if !latSet && !lonSet {
		loc := a.cfg.DefaultLocation()
		if a.tz != "" {
			return calendar.NewGeoLocation(loc.Name, loc.Latitude, loc.Longitude, a.tz)
		}
		return loc, nil
	}
	if latSet != lonSet {
		return calendar.GeoLocation{}, fmt.Errorf("--lat and --lon must be given together")
	}

	tz := a.tz
	if tz == "" {
		tz = a.cfg.DefaultTimezone
	}
	return calendar.NewGeoLocation("", a.lat, a.lon, tz)
}

// outputFormat parses --format; allowICS admits the ics format for
// commands that produce an event calendar.
func (a *app) outputFormat(allowICS bool) (export.Format, error) {
	f, err := export.ParseFormat(a.format)
	if err != nil {
		return "", err
	}
	if f == export.FormatICS && !allowICS {
		return "", fmt.Errorf("format ics is only available for year and export")
	}
	return f, nil
}

// dateArg parses an optional YYYY-MM-DD argument in loc's zone. No argument
// means today.
func (a *app) dateArg(args []string, loc calendar.GeoLocation) (time.Time, error) {
	if len(args) == 0 || args[0] == "" {
		return calendar.CivilDate(a.now(), loc.Zone()), nil
	}
	date, err := calendar.ParseDateString(args[0], loc.Zone())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", args[0])
	}
	return date, nil
}
