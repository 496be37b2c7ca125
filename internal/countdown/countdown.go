// Package countdown turns a target calendar date into a signed day count and its Spanish label.
package countdown

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the only accepted target date format.
	DateLayout = "2006-01-02"

	// SentinelDate is shown when the tracked row cannot be read, so the widget
	// displays a distant future instead of a misleading elapsed count.
	SentinelDate = "2099-12-31"

	TodayLabel = "¡Hoy!"
)

// ErrInvalidDate is returned when the target is not a YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// Result is the outcome of a countdown computation.
type Result struct {
	Target time.Time `json:"target"`
	Days   int       `json:"days"`
	Label  string    `json:"label"`
}

// Compute returns the number of days from today to dateText and its label.
// Both dates are taken at local midnight in today's location.
func Compute(dateText string, today time.Time) (Result, error) {
	today = Midnight(today)
	target, err := ParseDate(dateText, today.Location())
	if err != nil {
		return Result{}, err
	}

	days := DaysBetween(today, target)

	return Result{
		Target: target,
		Days:   days,
		Label:  Label(days),
	}, nil
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(dateText string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateText, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateText)
	}
	return t, nil
}

// Midnight strips the time of day from t, keeping its location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from the day of from to the day of to.
// A DST shift inside the range neither adds nor drops a day.
func DaysBetween(from, to time.Time) int {
	// Re-anchor both dates at UTC midnight, where every day is 86400 seconds.
	// Seconds rather than time.Duration, which saturates past ~292 years.
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// Label renders a day count the way the widget shows it.
func Label(days int) string {
	switch {
	case days > 0:
		return fmt.Sprintf("%d %s", days, dayWord(days))
	case days == 0:
		return TodayLabel
	default:
		return fmt.Sprintf("Pasó hace %d %s", -days, dayWord(-days))
	}
}

func dayWord(n int) string {
	if n == 1 {
		return "Día"
	}
	return "Días"
}
