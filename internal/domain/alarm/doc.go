// Package alarm defines the Alarm domain model: a weekly-recurring entry
// with a weekday, a 24-hour wall-clock time, a label and a sound reference.
// It carries validation, display ordering and next-occurrence computation.
package alarm
