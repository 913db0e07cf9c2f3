package validation

import (
	"testing"
	"time"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Category
		wantErr bool
	}{
		{in: "academic", want: models.CategoryAcademic},
		{in: " Personal ", want: models.CategoryPersonal},
		{in: "work", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Category(tt.in)
			if tt.wantErr {
				if !apperrors.IsValidation(err) {
					t.Errorf("Category(%q) error = %v, want validation error", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Category(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	if d, err := Date("someday"); err != nil || d != models.Someday {
		t.Errorf("Date(someday) = %q, %v", d, err)
	}
	if d, err := Date(""); err != nil || d != models.Someday {
		t.Errorf("Date(\"\") = %q, %v", d, err)
	}
	if d, err := Date("2026-02-20"); err != nil || d != "2026-02-20" {
		t.Errorf("Date(2026-02-20) = %q, %v", d, err)
	}
	if _, err := Date("2026-02-30"); !apperrors.IsValidation(err) {
		t.Errorf("Date(2026-02-30) error = %v, want validation error", err)
	}
}

func TestColor(t *testing.T) {
	for _, ok := range []string{"none", "pink", "#fff", "#FF9900"} {
		if _, err := Color(ok); err != nil {
			t.Errorf("Color(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "magenta", "#12345", "ff9900"} {
		if _, err := Color(bad); err == nil {
			t.Errorf("Color(%q) expected error", bad)
		}
	}
}

func TestRecurrence(t *testing.T) {
	tests := []struct {
		name    string
		rule    models.Recurrence
		wantErr bool
	}{
		{name: "daily", rule: models.Recurrence{Type: models.RecurrenceDaily}},
		{name: "monthly with count", rule: models.Recurrence{Type: models.RecurrenceMonthly, Count: 2}},
		{name: "custom weekdays", rule: models.Recurrence{Type: models.RecurrenceCustom, DaysOfWeek: []time.Weekday{time.Friday}}},
		{name: "custom interval", rule: models.Recurrence{Type: models.RecurrenceCustom, Interval: 3}},
		{name: "custom empty", rule: models.Recurrence{Type: models.RecurrenceCustom}, wantErr: true},
		{name: "unknown type", rule: models.Recurrence{Type: "yearly"}, wantErr: true},
		{name: "negative count", rule: models.Recurrence{Type: models.RecurrenceDaily, Count: -1}, wantErr: true},
		{name: "weekday out of range", rule: models.Recurrence{Type: models.RecurrenceCustom, DaysOfWeek: []time.Weekday{7}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Recurrence(tt.rule)
			if (err != nil) != tt.wantErr {
				t.Errorf("Recurrence() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatch(t *testing.T) {
	empty := ""
	someday := models.Someday
	yes := true
	bad := models.Category("work")

	if err := Patch(models.Patch{}); err == nil {
		t.Error("Patch() accepted an empty patch")
	}
	if err := Patch(models.Patch{Title: &empty}); err == nil {
		t.Error("Patch() accepted an empty title")
	}
	if err := Patch(models.Patch{Category: &bad}); err == nil {
		t.Error("Patch() accepted an unknown category")
	}
	if err := Patch(models.Patch{IsLabel: &yes, Date: &someday}); err == nil {
		t.Error("Patch() accepted a dateless label")
	}
	if err := Patch(models.Patch{Date: &someday}); err != nil {
		t.Errorf("Patch() rejected a move to someday: %v", err)
	}
}

func TestValidateTasks(t *testing.T) {
	v := New()

	clean := []models.Task{
		{ID: "a", Title: "A", Date: "2026-02-20", Category: models.CategoryAcademic, Order: 0},
		{ID: "b", Title: "B", Date: "2026-02-20", Category: models.CategoryAcademic, Order: 1},
		{ID: "c", Title: "C", Date: "2026-02-20", Category: models.CategoryPersonal, Order: 0},
		{ID: "l", Title: "Exam week", Date: "2026-02-20", Category: models.CategoryPersonal, IsLabel: true, Order: 0},
		{ID: "s", Title: "S", Category: models.CategoryAcademic, Order: 0},
		{ID: "t", Title: "T", Category: models.CategoryPersonal, Order: 1},
	}
	if result := v.ValidateTasks(clean); result.HasConflicts() {
		t.Fatalf("ValidateTasks() reported conflicts on a clean collection:\n%s", result.FormatReport())
	}

	broken := []models.Task{
		{ID: "a", Title: "A", Date: "2026-02-20", Category: models.CategoryAcademic, Order: 0},
		{ID: "b", Title: "B", Date: "2026-02-20", Category: models.CategoryAcademic, Order: 0},
		{ID: "g", Title: "G", Date: "2026-02-21", Category: models.CategoryAcademic, Order: 2},
		{ID: "x", Title: "X", Date: "2026-02-22", Category: models.CategoryAcademic,
			Recurrence: &models.Recurrence{Type: models.RecurrenceDaily}, RecurringParentID: "missing"},
		{ID: "l", Title: "L", Category: models.CategoryPersonal, IsLabel: true},
	}
	result := v.ValidateTasks(broken)

	seen := make(map[ConflictType]bool)
	for _, c := range result.Conflicts {
		seen[c.Type] = true
	}
	for _, want := range []ConflictType{
		ConflictDuplicateOrder, ConflictOrderGap, ConflictRuleAndParent,
		ConflictOrphanInstance, ConflictLabelWithoutDate,
	} {
		if !seen[want] {
			t.Errorf("ValidateTasks() missing conflict %s; got %+v", want, result.Conflicts)
		}
	}
}
