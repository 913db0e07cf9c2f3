// Package recurrence expands a recurrence rule into the concrete future dates
// on which instances of a template task should exist.
package recurrence

import (
	"slices"
	"time"

	"github.com/julianstephens/tweeklike/internal/constants"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
)

// Expand returns the dates after anchor (YYYY-MM-DD) on which rule produces
// an occurrence, in ascending order. horizonDays <= 0 selects the default
// horizon. Count limits are applied by the caller.
func Expand(anchor string, rule models.Recurrence, horizonDays int) ([]string, error) {
	start, err := utils.ParseDate(anchor)
	if err != nil {
		return nil, err
	}

	dates := Dates(start, rule, horizonDays)
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = utils.ToDateString(d)
	}
	return out, nil
}

// Dates is Expand over time values. start should be midnight UTC, as returned
// by utils.ParseDate.
func Dates(start time.Time, rule models.Recurrence, horizonDays int) []time.Time {
	if horizonDays <= 0 {
		horizonDays = constants.DefaultHorizonDays
	}
	end := utils.AddDays(start, horizonDays)

	switch rule.Type {
	case models.RecurrenceDaily:
		return every(start, end, 1)
	case models.RecurrenceWeekly:
		return every(start, end, 7)
	case models.RecurrenceMonthly:
		return monthly(start)
	case models.RecurrenceCustom:
		if len(rule.DaysOfWeek) > 0 {
			return onWeekdays(start, end, rule.DaysOfWeek)
		}
		interval := rule.Interval
		if interval < 1 {
			interval = 1
		}
		return every(start, end, interval)
	default:
		return nil
	}
}

// every steps from start+step while the date is on or before end.
func every(start, end time.Time, step int) []time.Time {
	var dates []time.Time
	for d := utils.AddDays(start, step); !d.After(end); d = utils.AddDays(d, step) {
		dates = append(dates, d)
	}
	return dates
}

// monthly keeps the anchor's day of month over the next few months. A month
// without that day (the 31st in April, the 30th in February) is skipped rather
// than clamped, so the task never drifts to a different day.
func monthly(start time.Time) []time.Time {
	day := start.Day()

	var dates []time.Time
	for m := 1; m <= constants.MonthlyLookahead; m++ {
		// time.Date normalizes overflow, so a missing day rolls into the next month
		d := time.Date(start.Year(), start.Month()+time.Month(m), day, 0, 0, 0, 0, start.Location())
		if d.Day() != day {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

func onWeekdays(start, end time.Time, days []time.Weekday) []time.Time {
	var dates []time.Time
	for d := utils.AddDays(start, 1); !d.After(end); d = utils.AddDays(d, 1) {
		if slices.Contains(days, d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}
