package validation

import (
	"regexp"
	"strings"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Title rejects empty or whitespace-only titles.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Invalid("title cannot be empty")
	}
	return nil
}

// Category parses a category name.
func Category(s string) (models.Category, error) {
	c := models.Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", apperrors.Invalid("unknown category %q (expected academic or personal)", s)
	}
	return c, nil
}

// Date parses a YYYY-MM-DD day. An empty string or "someday" selects the undated pool.
func Date(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "someday") {
		return models.Someday, nil
	}
	if _, err := utils.ParseDate(s); err != nil {
		return "", apperrors.Invalid("%v", err)
	}
	return models.Date(s), nil
}

// Color accepts a preset palette name or a #rgb / #rrggbb custom value.
func Color(s string) (models.Color, error) {
	c := models.Color(strings.TrimSpace(s))
	if c.IsPreset() || hexColor.MatchString(string(c)) {
		return c, nil
	}
	return "", apperrors.Invalid("unknown color %q (expected a preset or #rrggbb)", s)
}

// Recurrence checks a rule before it is attached to a template.
func Recurrence(rule models.Recurrence) error {
	switch rule.Type {
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	case models.RecurrenceCustom:
		if len(rule.DaysOfWeek) == 0 && rule.Interval < 1 {
			return apperrors.Invalid("custom recurrence needs days of week or an interval of at least 1")
		}
	default:
		return apperrors.Invalid("unknown recurrence type %q", rule.Type)
	}

	if rule.Interval < 0 {
		return apperrors.Invalid("interval cannot be negative")
	}
	if rule.Count < 0 {
		return apperrors.Invalid("count cannot be negative")
	}
	for _, wd := range rule.DaysOfWeek {
		if wd < 0 || wd > 6 {
			return apperrors.Invalid("day of week %d out of range 0-6", wd)
		}
	}
	return nil
}

// Patch checks every field a partial update sets.
func Patch(p models.Patch) error {
	if p.IsEmpty() {
		return apperrors.Invalid("no fields to update")
	}
	if p.Title != nil {
		if err := Title(*p.Title); err != nil {
			return err
		}
	}
	if p.Category != nil && !p.Category.Valid() {
		return apperrors.Invalid("unknown category %q", *p.Category)
	}
	if p.Date != nil && !p.Date.IsSomeday() {
		if _, err := utils.ParseDate(string(*p.Date)); err != nil {
			return apperrors.Invalid("%v", err)
		}
	}
	if p.Color != nil {
		if _, err := Color(string(*p.Color)); err != nil {
			return err
		}
	}
	if p.IsLabel != nil && *p.IsLabel && p.Date != nil && p.Date.IsSomeday() {
		return apperrors.Invalid("a label needs a date")
	}
	return nil
}
