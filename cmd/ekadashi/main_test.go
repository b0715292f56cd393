package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
	"github.com/zapponejosh/ekadashi-api/internal/export"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestLocationsCommand(t *testing.T) {
	out, err := execute(t, "locations")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "kyiv")
	assert.Contains(t, out, "Europe/Berlin")

	file := filepath.Join(t.TempDir(), "locations.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"locations:\n  - name: Mayapur\n    latitude: 23.4231\n    longitude: 88.3884\n    timezone: Asia/Kolkata\n"), 0o600))

	out, err = execute(t, "locations", "--locations-file", file, "--format", "json")
	require.NoError(t, err)
	var locs []calendar.GeoLocation
	require.NoError(t, json.Unmarshal([]byte(out), &locs))
	require.Len(t, locs, 3)
	assert.Equal(t, "mayapur", locs[1].Name)
}

func TestDayCommand(t *testing.T) {
	out, err := execute(t, "day", "2026-07-11", "--location", "kyiv", "--format", "json")
	require.NoError(t, err)

	var p struct {
		Date           string `json:"date"`
		Classification struct {
			IsEkadashi bool   `json:"is_ekadashi"`
			CheckType  string `json:"check_type"`
			Paksha     string `json:"paksha"`
		} `json:"classification"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "2026-07-11", p.Date)
	assert.True(t, p.Classification.IsEkadashi)
	assert.Equal(t, "mahadvadashi", p.Classification.CheckType)
	assert.Equal(t, "krishna", p.Classification.Paksha)

	out, err = execute(t, "day", "2026-07-10", "--location", "kyiv")
	require.NoError(t, err)
	assert.Contains(t, out, "not Ekadashi")
	assert.Contains(t, out, "Sunrise")
}

func TestNextCommandYAML(t *testing.T) {
	out, err := execute(t, "next", "--from", "2026-07-01", "-l", "kyiv", "-f", "yaml")
	require.NoError(t, err)

	var rec export.Record
	require.NoError(t, yaml.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "2026-07-11", rec.Date)
	assert.Equal(t, "mahadvadashi", rec.CheckType)
	assert.True(t, strings.HasSuffix(rec.Sunrise, "+03:00"), rec.Sunrise)
}

func TestInspectCommand(t *testing.T) {
	out, err := execute(t, "inspect", "2026-03-15", "--lat", "50.4501", "--lon", "30.5234", "--tz", "Europe/Kyiv")
	require.NoError(t, err)
	assert.Contains(t, out, "Ekadashi (krishna, brahma_muhurta)")
	assert.Contains(t, out, "CHECKPOINT")
}

func TestYearAndExportCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("full-year scan")
	}

	out, err := execute(t, "year", "2026", "-l", "kyiv")
	require.NoError(t, err)
	assert.Contains(t, out, "24 event(s)")
	assert.Contains(t, out, "2026-07-11")

	path := filepath.Join(t.TempDir(), "wurzburg.ics")
	_, err = execute(t, "export", "2026", "-l", "wurzburg", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 24, strings.Count(string(data), "BEGIN:VEVENT"))
	assert.Contains(t, string(data), "DTSTART;VALUE=DATE:20260314")
}

func TestCompareCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("full-year scans")
	}

	out, err := execute(t, "compare", "2026", "kyiv", "wurzburg", "-f", "json")
	require.NoError(t, err)

	var p comparePayload
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.NotNil(t, p.Diff)
	assert.Equal(t, []string{"2026-03-15", "2026-03-29", "2026-05-27"}, p.Diff.OnlyA)
	assert.Equal(t, []string{"2026-03-14", "2026-03-28", "2026-05-26"}, p.Diff.OnlyB)
	assert.Len(t, p.Calendars, 2)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown location", []string{"day", "-l", "atlantis"}, "unknown location"},
		{"lat without lon", []string{"day", "--lat", "50"}, "--lat and --lon"},
		{"bad latitude", []string{"day", "--lat", "95", "--lon", "0", "--tz", "UTC"}, "latitude"},
		{"bad timezone", []string{"day", "--lat", "50", "--lon", "30", "--tz", "Mars/Olympus"}, "timezone"},
		{"bad date", []string{"day", "2026-02-30", "-l", "kyiv"}, "invalid date"},
		{"ics for day", []string{"day", "-l", "kyiv", "-f", "ics"}, "only available"},
		{"unknown format", []string{"year", "2026", "-f", "xml"}, "unknown format"},
		{"year out of range", []string{"year", "1600"}, "year must be between"},
		{"compare needs two", []string{"compare", "2026", "kyiv"}, "requires at least 3 arg"},
		{"compare unknown", []string{"compare", "2026", "kyiv", "atlantis"}, "unknown location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
