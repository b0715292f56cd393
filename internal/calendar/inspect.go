package calendar

import "time"

// Checkpoint is the tithi sampled at a named instant.
type Checkpoint struct {
	Name  string    `json:"name" yaml:"name"`
	At    time.Time `json:"at" yaml:"at"`
	Tithi Tithi     `json:"tithi" yaml:"tithi"`
}

// Inspection is the tithi progression around one civil date, used to
// diagnose why a date was or was not classified as Ekadashi.
type Inspection struct {
	Date        time.Time    `json:"date" yaml:"date"`
	Location    GeoLocation  `json:"location" yaml:"location"`
	Result      CheckResult  `json:"result" yaml:"result"`
	Checkpoints []Checkpoint `json:"checkpoints" yaml:"checkpoints"`
}

// Inspect samples the tithi from the previous sunset to the next sunrise.
func (e *Engine) Inspect(date time.Time, loc GeoLocation) (Inspection, error) {
	if err := loc.Validate(); err != nil {
		return Inspection{}, err
	}

	today, err := e.sun.SolarTimesFor(date, loc)
	if err != nil {
		return Inspection{}, err
	}
	prev, err := e.sun.SolarTimesFor(AddDays(today.Date, -1), loc)
	if err != nil {
		return Inspection{}, err
	}
	next, err := e.sun.SolarTimesFor(AddDays(today.Date, 1), loc)
	if err != nil {
		return Inspection{}, err
	}

	points := []struct {
		name string
		at   time.Time
	}{
		{"prev_brahma_muhurta", prev.BrahmaMuhurta()},
		{"prev_sunset", prev.Sunset},
		{"midnight", today.Date},
		{"brahma_muhurta", today.BrahmaMuhurta()},
		{"sunrise", today.Sunrise},
		{"pratahkala_end", today.Sunrise.Add(pratahkalaLength)},
		{"solar_noon", today.SolarNoon()},
		{"sunset", today.Sunset},
		{"next_sunrise", next.Sunrise},
	}

	out := Inspection{Date: today.Date, Location: loc}
	for _, p := range points {
		tithi, err := e.tithis.TithiAt(p.at)
		if err != nil {
			return Inspection{}, err
		}
		out.Checkpoints = append(out.Checkpoints, Checkpoint{Name: p.name, At: p.at, Tithi: tithi})
	}

	out.Result, err = e.classifier.Classify(today.Date, loc)
	if err != nil {
		return Inspection{}, err
	}
	return out, nil
}
