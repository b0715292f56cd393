package calendar

import (
	"fmt"
	"time"
)

// CheckType records which rule qualified a day as Ekadashi.
type CheckType string

const (
	CheckNone          CheckType = ""
	CheckBrahmaMuhurta CheckType = "brahma_muhurta"
	CheckMahadvadashi  CheckType = "mahadvadashi"
)

// CheckResult is the classification of one civil date.
type CheckResult struct {
	Date       time.Time `json:"date" yaml:"date"`
	IsEkadashi bool      `json:"is_ekadashi" yaml:"is_ekadashi"`
	Tithi      int       `json:"tithi" yaml:"tithi"`
	Paksha     Paksha    `json:"paksha" yaml:"paksha"`
	Sunrise    time.Time `json:"sunrise" yaml:"sunrise"`
	CheckType  CheckType `json:"check_type,omitempty" yaml:"check_type,omitempty"`
}

// DayClassifier decides whether a civil date is observed as Ekadashi.
type DayClassifier interface {
	Classify(date time.Time, loc GeoLocation) (CheckResult, error)
}

// Classifier applies the Brahma Muhurta rule and the Mahadvadashi recovery.
type Classifier struct {
	tithis *TithiCalculator
	sun    *SunResolver
}

var _ DayClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier.
func NewClassifier(tithis *TithiCalculator, sun *SunResolver) *Classifier {
	return &Classifier{tithis: tithis, sun: sun}
}

// Classify evaluates date at its Brahma Muhurta.
//
// A day is Ekadashi when the 11th tithi is active at Brahma Muhurta. When the
// 12th is already active, the previous day is inspected: Ekadashi at its
// sunset but Dashami at its Brahma Muhurta means the whole Ekadashi fell
// overnight, and it is observed today (Mahadvadashi).
func (c *Classifier) Classify(date time.Time, loc GeoLocation) (CheckResult, error) {
	today, err := c.sun.SolarTimesFor(date, loc)
	if err != nil {
		return CheckResult{}, err
	}

	atBrahma, err := c.tithis.TithiAt(today.BrahmaMuhurta())
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{
		Date:    today.Date,
		Tithi:   atBrahma.InPaksha,
		Paksha:  atBrahma.Paksha,
		Sunrise: today.Sunrise,
	}

	switch atBrahma.InPaksha {
	case Ekadashi:
		result.IsEkadashi = true
		result.CheckType = CheckBrahmaMuhurta
		return result, nil

	case Dvadashi:
		prev, err := c.sun.SolarTimesFor(AddDays(today.Date, -1), loc)
		if err != nil {
			return CheckResult{}, fmt.Errorf("previous day of %s: %w", FormatDate(today.Date), err)
		}
		atPrevSunset, err := c.tithis.TithiAt(prev.Sunset)
		if err != nil {
			return CheckResult{}, err
		}
		atPrevBrahma, err := c.tithis.TithiAt(prev.BrahmaMuhurta())
		if err != nil {
			return CheckResult{}, err
		}
		if atPrevSunset.InPaksha == Ekadashi && atPrevBrahma.InPaksha == Dashami {
			result.IsEkadashi = true
			result.Tithi = Ekadashi
			result.Paksha = atPrevSunset.Paksha
			result.CheckType = CheckMahadvadashi
		}
	}

	return result, nil
}
