package models

import (
	"slices"
	"strings"
	"time"
)

type Category string

const (
	CategoryAcademic Category = "academic"
	CategoryPersonal Category = "personal"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryAcademic, CategoryPersonal}

func (c Category) Valid() bool {
	return c == CategoryAcademic || c == CategoryPersonal
}

type Color string

const (
	ColorNone   Color = "none"
	ColorPink   Color = "pink"
	ColorPurple Color = "purple"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
)

var PresetColors = []Color{ColorNone, ColorPink, ColorPurple, ColorYellow, ColorGreen, ColorBlue, ColorOrange}

// IsPreset reports whether the color is part of the fixed palette rather than a custom value.
func (c Color) IsPreset() bool {
	return slices.Contains(PresetColors, c)
}

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

type Recurrence struct {
	Type       RecurrenceType `json:"type" yaml:"type"`
	Interval   int            `json:"interval,omitempty" yaml:"interval,omitempty"`
	DaysOfWeek []time.Weekday `json:"daysOfWeek,omitempty" yaml:"daysOfWeek,omitempty"`
	Count      int            `json:"count,omitempty" yaml:"count,omitempty"`
}

func (r *Recurrence) Clone() *Recurrence {
	if r == nil {
		return nil
	}
	c := *r
	c.DaysOfWeek = slices.Clone(r.DaysOfWeek)
	return &c
}

type Subtask struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

type Task struct {
	ID                string      `json:"id" yaml:"id"`
	Title             string      `json:"title" yaml:"title"`
	Completed         bool        `json:"completed" yaml:"completed"`
	Date              Date        `json:"date" yaml:"date"`
	Category          Category    `json:"category" yaml:"category"`
	IsLabel           bool        `json:"isLabel" yaml:"isLabel"`
	Color             Color       `json:"color" yaml:"color"`
	Notes             string      `json:"notes" yaml:"notes"`
	Subtasks          []Subtask   `json:"subtasks" yaml:"subtasks"`
	Recurrence        *Recurrence `json:"recurrence" yaml:"recurrence"`
	RecurringParentID string      `json:"recurringParentId,omitempty" yaml:"recurringParentId,omitempty"`
	Order             int         `json:"order" yaml:"order"`
}

// IsTemplate reports whether the task anchors a recurrence rule.
func (t Task) IsTemplate() bool {
	return t.Recurrence != nil
}

// IsInstance reports whether the task was generated from a template.
func (t Task) IsInstance() bool {
	return t.RecurringParentID != ""
}

// LineageRoot returns the template id the task traces back to, or its own id.
func (t Task) LineageRoot() string {
	if t.RecurringParentID != "" {
		return t.RecurringParentID
	}
	return t.ID
}

// Clone returns a deep copy so the subtask slice and rule are not shared.
func (t Task) Clone() Task {
	c := t
	if t.Subtasks != nil {
		c.Subtasks = slices.Clone(t.Subtasks)
	}
	c.Recurrence = t.Recurrence.Clone()
	return c
}

// IsTemporaryID reports whether id was assigned locally and is still waiting
// for its authoritative replacement.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, "-")
}

// MigrateTasks fills in fields that older saved collections do not carry.
func MigrateTasks(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Category == "" {
			t.Category = CategoryPersonal
		}
		if t.Color == "" {
			t.Color = ColorNone
		}
		if t.Subtasks == nil {
			t.Subtasks = []Subtask{}
		}
		out = append(out, t)
	}
	return out
}
