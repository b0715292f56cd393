// Package locations manages the named observer presets that API and CLI
// requests can refer to instead of passing coordinates.
package locations

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/ekadashi-api/internal/calendar"
)

// File is the YAML layout of a locations file.
type File struct {
	Locations []calendar.GeoLocation `yaml:"locations"`
}

// Builtin returns the presets available without a locations file.
func Builtin() []calendar.GeoLocation {
	return []calendar.GeoLocation{
		{Name: "kyiv", Latitude: 50.4501, Longitude: 30.5234, TimezoneID: "Europe/Kyiv"},
		{Name: "wurzburg", Latitude: 49.7913, Longitude: 9.9534, TimezoneID: "Europe/Berlin"},
	}
}

// ErrUnknownLocation is returned by Lookup for a name with no preset.
var ErrUnknownLocation = errors.New("unknown location")

// Registry is a read-only set of presets keyed by lower-case name.
type Registry struct {
	byName map[string]calendar.GeoLocation
}

// NewRegistry validates locs and indexes them by name. Later entries with
// the same name replace earlier ones.
func NewRegistry(locs ...calendar.GeoLocation) (*Registry, error) {
	r := &Registry{byName: make(map[string]calendar.GeoLocation, len(locs))}

	var errs []error
	for i, loc := range locs {
		key := normalizeName(loc.Name)
		if key == "" {
			errs = append(errs, fmt.Errorf("location #%d: name is required", i+1))
			continue
		}
		built, err := calendar.NewGeoLocation(key, loc.Latitude, loc.Longitude, loc.TimezoneID)
		if err != nil {
			errs = append(errs, fmt.Errorf("location %q: %w", key, err))
			continue
		}
		r.byName[key] = built
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Load builds a registry from the built-in presets plus the file at path, if
// path is not empty. File entries override built-ins of the same name.
func Load(path string) (*Registry, error) {
	locs := Builtin()
	if path != "" {
		fromFile, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		locs = append(locs, fromFile...)
	}
	return NewRegistry(locs...)
}

// ReadFile parses a locations YAML file.
func ReadFile(path string) ([]calendar.GeoLocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse locations file %s: %w", path, err)
	}
	return f.Locations, nil
}

// Lookup returns the preset with the given name, case-insensitively.
func (r *Registry) Lookup(name string) (calendar.GeoLocation, error) {
	loc, ok := r.byName[normalizeName(name)]
	if !ok {
		return calendar.GeoLocation{}, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return loc, nil
}

// All returns every preset sorted by name.
func (r *Registry) All() []calendar.GeoLocation {
	out := make([]calendar.GeoLocation, 0, len(r.byName))
	for _, loc := range r.byName {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of presets.
func (r *Registry) Len() int {
	return len(r.byName)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
