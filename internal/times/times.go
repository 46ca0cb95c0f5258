// Package times implements the calendar arithmetic used to group activities
// into years, months and weeks.
package times

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownPeriod is returned for a period name that is not recognised.
var ErrUnknownPeriod = errors.New("unknown time period")

// Period is a calendar period.
type Period string

const (
	AllTime Period = "all time"
	Year    Period = "year"
	Month   Period = "month"
	Week    Period = "week"
	Day     Period = "day"
)

const (
	OneDay  = 24 * time.Hour
	OneWeek = 7 * OneDay
)

// Epoch is the common origin onto which periods are shifted so that they can
// be overlaid. It starts a year, a month and an ISO week at the same time.
var Epoch = time.Date(1973, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParsePeriod parses a period name case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case AllTime, Year, Month, Week, Day:
		return p, nil
	case "":
		return AllTime, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// weekday returns the day of the week with Monday as 0.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring the clock.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / OneDay)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// PeriodDifference returns how many periods other lies before base: 0 when
// they share the period, 1 when other is in the previous one, and so on.
// other is interpreted in base's location.
func PeriodDifference(base, other time.Time, period Period) (int, error) {
	other = other.In(base.Location())
	switch period {
	case Year:
		return base.Year() - other.Year(), nil
	case Month:
		return int(base.Month()) - int(other.Month()) + (base.Year()-other.Year())*12, nil
	case Week:
		value := floorDiv(daysBetween(other, base), 7)
		if weekday(other) > weekday(base) {
			value++
		}
		return value, nil
	case Day:
		return daysBetween(other, base), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// StartOf returns the start of the period containing base.
func StartOf(base time.Time, period Period) (time.Time, error) {
	switch period {
	case Year:
		return time.Date(base.Year(), time.January, 1, 0, 0, 0, 0, base.Location()), nil
	case Month:
		return time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, base.Location()), nil
	case Week:
		return date(base).AddDate(0, 0, -weekday(base)), nil
	case Day:
		return date(base), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// EndOf returns the start of the period after the one containing base.
func EndOf(base time.Time, period Period) (time.Time, error) {
	start, err := StartOf(base, period)
	if err != nil {
		return time.Time{}, err
	}
	switch period {
	case Year:
		return start.AddDate(1, 0, 0), nil
	case Month:
		return start.AddDate(0, 1, 0), nil
	case Week:
		return start.AddDate(0, 0, 7), nil
	}
	return start.AddDate(0, 0, 1), nil
}

// SinceStart returns how far base is into its period.
func SinceStart(base time.Time, period Period) (time.Duration, error) {
	start, err := StartOf(base, period)
	if err != nil {
		return 0, err
	}
	return base.Sub(start), nil
}

// BackName names the period number periods before base, e.g. "2023",
// "March" or "w/c 06 Mar".
func BackName(base time.Time, period Period, number int) (string, error) {
	switch period {
	case Year:
		return fmt.Sprint(base.Year() - number), nil
	case Month:
		m := ((int(base.Month())-1-number)%12 + 12) % 12
		return time.Month(m + 1).String(), nil
	case Week:
		start := date(base).AddDate(0, 0, -weekday(base)-7*number)
		return "w/c " + start.Format("02 Jan"), nil
	case Day:
		return fmt.Sprint(base.AddDate(0, 0, -number).Day()), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
}

// FormatDuration renders a duration as "1 d 02:03:04", "02:03:04", "03:04"
// or "4 s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	d = d.Round(time.Second)
	days := d / OneDay
	d -= days * OneDay
	h, m, s := d/time.Hour, (d%time.Hour)/time.Minute, (d%time.Minute)/time.Second
	switch {
	case days > 0:
		return fmt.Sprintf("%d d %02d:%02d:%02d", days, h, m, s)
	case h > 0:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	case m > 0:
		return fmt.Sprintf("%d:%02d", m, s)
	}
	return fmt.Sprintf("%d s", s)
}
