package alarm

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Weekdays lists the canonical day names in display order, Monday first.
// Stored alarms must use exactly these names.
//
//nolint:gochecknoglobals // Fixed vocabulary shared by validation and sorting.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

const (
	// ClockLayout is the 24-hour wall-clock layout used by alarm times.
	ClockLayout = "15:04"

	// DefaultLabel is assigned when an alarm is created without a label.
	DefaultLabel = "Alarm"

	// SoundExtension is the only playable sound file extension.
	SoundExtension = ".wav"
)

// ErrInvalid is the base error wrapped by all alarm field validation failures.
var ErrInvalid = errors.New("invalid alarm")

// Alarm is a weekly-recurring wake-up entry.
type Alarm struct {
	// ID uniquely identifies the alarm; assigned by the store on creation.
	ID string `json:"id"`
	// Day is one of the seven canonical weekday names.
	Day string `json:"day"`
	// Time is the 24-hour wall-clock trigger time, HH:MM.
	Time string `json:"time"`
	// Label is free text shown in listings.
	Label string `json:"label"`
	// Sound is the bare .wav file name inside the audio directory.
	Sound string `json:"sound"`
}

// Clone returns a copy of the alarm.
func (a *Alarm) Clone() Alarm {
	return *a
}

// Key returns the dedup key used by the scheduler: alarms sharing
// day, time and sound ring at most once per matching minute.
func (a *Alarm) Key() string {
	return a.Day + "|" + a.Time + "|" + a.Sound
}

// Normalize fills optional fields in place.
func (a *Alarm) Normalize() {
	a.Day = strings.TrimSpace(a.Day)
	a.Time = strings.TrimSpace(a.Time)
	a.Sound = strings.TrimSpace(a.Sound)

	if strings.TrimSpace(a.Label) == "" {
		a.Label = DefaultLabel
	}
}

// Validate checks day, time and sound reference formats.
// Existence of the sound file is a resource concern checked by the caller.
func (a *Alarm) Validate() error {
	if _, ok := DayIndex(a.Day); !ok {
		return fmt.Errorf("%w: unknown day %q", ErrInvalid, a.Day)
	}

	if _, err := time.Parse(ClockLayout, a.Time); err != nil {
		return fmt.Errorf("%w: time %q is not HH:MM", ErrInvalid, a.Time)
	}

	if a.Sound == "" {
		return fmt.Errorf("%w: sound is required", ErrInvalid)
	}

	if filepath.Base(a.Sound) != a.Sound {
		return fmt.Errorf("%w: sound %q must be a bare file name", ErrInvalid, a.Sound)
	}

	if !strings.EqualFold(filepath.Ext(a.Sound), SoundExtension) {
		return fmt.Errorf("%w: sound %q is not a %s file", ErrInvalid, a.Sound, SoundExtension)
	}

	return nil
}

// Due reports whether the alarm matches the provided weekday name and HH:MM.
func (a *Alarm) Due(day, clock string) bool {
	return a.Day == day && a.Time == clock
}

// NextOccurrence returns the first instant at or after now when the alarm
// triggers, in now's location.
func (a *Alarm) NextOccurrence(now time.Time) (time.Time, error) {
	dayIdx, ok := DayIndex(a.Day)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown day %q", ErrInvalid, a.Day)
	}

	clock, err := time.Parse(ClockLayout, a.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalid, a.Time)
	}

	// Weekdays is Monday-first while time.Weekday is Sunday-first.
	target := time.Weekday((dayIdx + 1) % 7)

	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7

	candidate := time.Date(
		now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		now.Location(),
	).AddDate(0, 0, daysAhead)

	if candidate.Before(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate, nil
}

// DayIndex returns the Monday-first index of a canonical weekday name.
func DayIndex(day string) (int, bool) {
	for i, name := range Weekdays {
		if name == day {
			return i, true
		}
	}

	return 0, false
}

// Sort orders alarms for display: day order, then time, then label.
// Insertion order carries no meaning, so listings re-sort every time.
func Sort(alarms []Alarm) {
	sort.SliceStable(alarms, func(i, j int) bool {
		di, _ := DayIndex(alarms[i].Day)
		dj, _ := DayIndex(alarms[j].Day)

		if di != dj {
			return di < dj
		}

		if alarms[i].Time != alarms[j].Time {
			return alarms[i].Time < alarms[j].Time
		}

		return alarms[i].Label < alarms[j].Label
	})
}
