package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/tweeklike/internal/constants"
	"github.com/julianstephens/tweeklike/internal/models"
)

// ToDateString formats t as YYYY-MM-DD using t's own calendar day.
func ToDateString(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC. Day arithmetic on
// the result is free of DST shifts.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// AddDays moves t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) models.Date {
	if loc == nil {
		loc = time.Local
	}
	return models.Date(ToDateString(now.In(loc)))
}

// IsPastDate reports whether date is strictly before today's calendar day.
// Dates in YYYY-MM-DD form order lexically, so no parsing is needed once the
// format is known to be valid.
func IsPastDate(date models.Date, today models.Date) bool {
	if date.IsSomeday() {
		return false
	}
	return string(date) < string(today)
}

// WeekDates returns the Monday..Sunday days of the week containing t.
func WeekDates(t time.Time) []models.Date {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	monday := AddDays(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), -offset)

	days := make([]models.Date, 7)
	for i := range days {
		days[i] = models.Date(ToDateString(AddDays(monday, i)))
	}
	return days
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
