package taskstore

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/validation"
)

var fixedNow = time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithIDGenerator(TempIDs()),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}
	return New(nil, append(base, opts...)...)
}

func mustAdd(t *testing.T, s *Store, title string, date models.Date, category models.Category) models.Task {
	t.Helper()
	task, err := s.Add(title, date, category)
	if err != nil {
		t.Fatalf("Add(%q) failed: %v", title, err)
	}
	return task
}

// assertInvariants fails when any bucket has a gap or duplicate position, or
// a task carries both a rule and a parent.
func assertInvariants(t *testing.T, s *Store) {
	t.Helper()
	result := validation.New().ValidateTasks(s.All())
	for _, c := range result.Conflicts {
		switch c.Type {
		case validation.ConflictOrderGap, validation.ConflictDuplicateOrder, validation.ConflictRuleAndParent:
			t.Errorf("invariant violated: %s", c.Description)
		}
	}
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

type recordingPersister struct {
	saves int
	last  []models.Task
	err   error
}

func (p *recordingPersister) SaveTasks(tasks []models.Task) error {
	if p.err != nil {
		return p.err
	}
	p.saves++
	p.last = tasks
	return nil
}

func TestAdd(t *testing.T) {
	s := newTestStore(t)

	a := mustAdd(t, s, "Read chapter 3", "2026-02-20", models.CategoryAcademic)
	b := mustAdd(t, s, "Problem set", "2026-02-20", models.CategoryAcademic)
	c := mustAdd(t, s, "Groceries", "2026-02-20", models.CategoryPersonal)
	d := mustAdd(t, s, "Someday idea", models.Someday, models.CategoryAcademic)

	if a.Order != 0 || b.Order != 1 {
		t.Errorf("academic orders = %d, %d; want 0, 1", a.Order, b.Order)
	}
	if c.Order != 0 {
		t.Errorf("personal order = %d, want 0 (separate bucket)", c.Order)
	}
	if d.Order != 0 || !d.Date.IsSomeday() {
		t.Errorf("someday task = %+v", d)
	}
	if a.ID != "-1" || b.ID != "-2" {
		t.Errorf("ids = %s, %s; want temporary ids -1, -2", a.ID, b.ID)
	}
	if a.Color != models.ColorNone || a.Subtasks == nil {
		t.Errorf("defaults not applied: %+v", a)
	}

	got := titles(s.TasksFor("2026-02-20", models.CategoryAcademic))
	if !slices.Equal(got, []string{"Read chapter 3", "Problem set"}) {
		t.Errorf("TasksFor() = %v", got)
	}
	assertInvariants(t, s)
}

func TestAdd_Rejects(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name     string
		title    string
		date     models.Date
		category models.Category
	}{
		{name: "empty title", title: "  ", date: "2026-02-20", category: models.CategoryAcademic},
		{name: "unknown category", title: "x", date: "2026-02-20", category: "work"},
		{name: "malformed date", title: "x", date: "20-02-2026", category: models.CategoryAcademic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(tt.title, tt.date, tt.category)
			if !apperrors.IsValidation(err) {
				t.Errorf("Add() error = %v, want validation error", err)
			}
		})
	}
	if s.Len() != 0 {
		t.Errorf("rejected adds left %d tasks", s.Len())
	}
}

func TestAddLabel(t *testing.T) {
	s := newTestStore(t)

	mustAdd(t, s, "Task", "2026-02-20", models.CategoryPersonal)
	label, err := s.AddLabel("Exam week", "2026-02-20")
	if err != nil {
		t.Fatalf("AddLabel() failed: %v", err)
	}
	if label.Order != 0 {
		t.Errorf("label order = %d, want 0 (label bucket is separate)", label.Order)
	}
	if got := s.TasksFor("2026-02-20", models.CategoryPersonal); len(got) != 1 {
		t.Errorf("TasksFor() returned %d tasks, labels must be excluded", len(got))
	}
	if got := s.LabelsFor("2026-02-20"); len(got) != 1 || got[0].ID != label.ID {
		t.Errorf("LabelsFor() = %+v", got)
	}

	if _, err := s.AddLabel("Floating", models.Someday); !apperrors.IsValidation(err) {
		t.Errorf("AddLabel(someday) error = %v, want validation error", err)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)
	mustAdd(t, s, "B", "2026-02-20", models.CategoryAcademic)
	mustAdd(t, s, "C", "2026-02-21", models.CategoryAcademic)

	title := "A renamed"
	got, err := s.Update(a.ID, models.Patch{Title: &title})
	if err != nil {
		t.Fatalf("Update(title) failed: %v", err)
	}
	if got.Title != title || got.Order != 0 {
		t.Errorf("Update(title) = %+v", got)
	}

	date := models.Date("2026-02-21")
	got, err = s.Update(a.ID, models.Patch{Date: &date})
	if err != nil {
		t.Fatalf("Update(date) failed: %v", err)
	}
	if got.Order != 1 {
		t.Errorf("moved task order = %d, want appended at 1", got.Order)
	}
	if src := s.TasksFor("2026-02-20", models.CategoryAcademic); len(src) != 1 || src[0].Order != 0 {
		t.Errorf("source bucket not re-densified: %+v", src)
	}

	someday := models.Someday
	if _, err := s.Update(a.ID, models.Patch{Date: &someday}); err != nil {
		t.Fatalf("Update(someday) failed: %v", err)
	}
	if len(s.Someday()) != 1 {
		t.Errorf("Someday() = %+v", s.Someday())
	}
	assertInvariants(t, s)
}

func TestUpdate_Rejects(t *testing.T) {
	s := newTestStore(t)
	undated := mustAdd(t, s, "Idea", models.Someday, models.CategoryPersonal)

	yes := true
	if _, err := s.Update(undated.ID, models.Patch{IsLabel: &yes}); !apperrors.IsValidation(err) {
		t.Errorf("making a dateless task a label: error = %v, want validation error", err)
	}

	title := "x"
	if _, err := s.Update("missing", models.Patch{Title: &title}); !apperrors.IsNotFound(err) {
		t.Errorf("Update(missing) error = %v, want not found", err)
	}

	got, _ := s.Get(undated.ID)
	if got.IsLabel {
		t.Error("rejected update was applied")
	}
}

func TestToggleComplete(t *testing.T) {
	s := newTestStore(t)
	task := mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)
	if _, err := s.AddSubtask(task.ID, "step"); err != nil {
		t.Fatal(err)
	}

	got, err := s.ToggleComplete(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed {
		t.Error("ToggleComplete() did not complete the task")
	}
	if got.Subtasks[0].Completed {
		t.Error("ToggleComplete() cascaded to subtasks")
	}

	got, _ = s.ToggleComplete(task.ID)
	if got.Completed {
		t.Error("second ToggleComplete() did not reopen the task")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)
	b := mustAdd(t, s, "B", "2026-02-20", models.CategoryAcademic)
	mustAdd(t, s, "C", "2026-02-20", models.CategoryAcademic)

	if err := s.Delete(b.ID); err != nil {
		t.Fatal(err)
	}
	got := s.TasksFor("2026-02-20", models.CategoryAcademic)
	if !slices.Equal(titles(got), []string{"A", "C"}) || got[1].Order != 1 {
		t.Errorf("after Delete() bucket = %+v", got)
	}

	if err := s.Delete(b.ID); !apperrors.IsNotFound(err) {
		t.Errorf("Delete(deleted) error = %v, want not found", err)
	}
	if _, err := s.Get(a.ID); err != nil {
		t.Errorf("unrelated task lost: %v", err)
	}
	assertInvariants(t, s)
}

func TestDelete_KeepsInstances(t *testing.T) {
	s := newTestStore(t)
	tmpl := mustAdd(t, s, "Standup", "2026-02-16", models.CategoryAcademic)
	created, err := s.SetRecurrence(tmpl.ID, &models.Recurrence{Type: models.RecurrenceWeekly})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(tmpl.ID); err != nil {
		t.Fatal(err)
	}
	if s.Len() != len(created) {
		t.Errorf("Len() = %d, want the %d instances to survive", s.Len(), len(created))
	}
}

func TestDeleteAndFuture(t *testing.T) {
	setup := func(t *testing.T) (*Store, models.Task, []models.Task) {
		s := newTestStore(t)
		tmpl := mustAdd(t, s, "Standup", "2026-02-16", models.CategoryAcademic)
		created, err := s.SetRecurrence(tmpl.ID, &models.Recurrence{Type: models.RecurrenceWeekly})
		if err != nil {
			t.Fatal(err)
		}
		if len(created) != 4 {
			t.Fatalf("SetRecurrence() created %d instances, want 4", len(created))
		}
		mustAdd(t, s, "Other", "2026-03-09", models.CategoryAcademic)
		return s, tmpl, created
	}

	t.Run("from an instance", func(t *testing.T) {
		s, tmpl, created := setup(t)
		// created[1] is 2026-03-02
		removed, err := s.DeleteAndFuture(created[1].ID)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{created[1].ID, created[2].ID, created[3].ID}
		slices.Sort(want)
		if !slices.Equal(removed, want) {
			t.Errorf("removed = %v, want %v", removed, want)
		}
		if _, err := s.Get(tmpl.ID); err != nil {
			t.Error("template removed although it was not the target")
		}
		if _, err := s.Get(created[0].ID); err != nil {
			t.Error("instance dated before the target was removed")
		}
		if got := s.TasksFor("2026-03-09", models.CategoryAcademic); len(got) != 1 || got[0].Order != 0 {
			t.Errorf("unrelated task bucket = %+v", got)
		}
		assertInvariants(t, s)
	})

	t.Run("from the template", func(t *testing.T) {
		s, tmpl, _ := setup(t)
		removed, err := s.DeleteAndFuture(tmpl.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(removed) != 5 {
			t.Errorf("removed %d tasks, want template plus 4 instances", len(removed))
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want only the unrelated task", s.Len())
		}
	})

	t.Run("undated target removes only itself", func(t *testing.T) {
		s := newTestStore(t)
		task := mustAdd(t, s, "Idea", models.Someday, models.CategoryPersonal)
		removed, err := s.DeleteAndFuture(task.ID)
		if err != nil || !slices.Equal(removed, []string{task.ID}) {
			t.Errorf("DeleteAndFuture() = %v, %v", removed, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		s, _, _ := setup(t)
		before := s.Len()
		if _, err := s.DeleteAndFuture("nope"); !apperrors.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
		if s.Len() != before {
			t.Error("collection changed on not found")
		}
	})
}

func TestMove(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)
	mustAdd(t, s, "B", "2026-02-20", models.CategoryAcademic)
	c := mustAdd(t, s, "C", "2026-02-20", models.CategoryAcademic)
	mustAdd(t, s, "X", "2026-02-21", models.CategoryPersonal)

	got, err := s.Move(c.ID, "2026-02-20", models.CategoryAcademic, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(titles(got), []string{"C", "A", "B"}) {
		t.Errorf("reorder = %v", titles(got))
	}

	got, err = s.Move(a.ID, "2026-02-21", models.CategoryPersonal, 99)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(titles(got), []string{"X", "A"}) {
		t.Errorf("move across buckets = %v", titles(got))
	}
	if src := s.TasksFor("2026-02-20", models.CategoryAcademic); !slices.Equal(titles(src), []string{"C", "B"}) {
		t.Errorf("source bucket = %v", titles(src))
	}

	got, err = s.Move(a.ID, models.Someday, "", -5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Category != models.CategoryPersonal {
		t.Errorf("move to someday = %+v", got)
	}
	assertInvariants(t, s)

	if _, err := s.Move("missing", "2026-02-20", models.CategoryAcademic, 0); !apperrors.IsNotFound(err) {
		t.Errorf("Move(missing) error = %v, want not found", err)
	}
}

func TestMove_Idempotent(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 4; i++ {
		mustAdd(t, s, fmt.Sprintf("T%d", i), "2026-02-20", models.CategoryAcademic)
	}

	for _, task := range s.TasksFor("2026-02-20", models.CategoryAcademic) {
		before := s.All()
		if _, err := s.Move(task.ID, task.Date, task.Category, task.Order); err != nil {
			t.Fatal(err)
		}
		after := s.All()
		if !slices.EqualFunc(before, after, func(a, b models.Task) bool {
			return a.ID == b.ID && a.Order == b.Order && a.Date == b.Date
		}) {
			t.Errorf("Move(%s) to its own position changed the collection", task.Title)
		}
	}
}

func TestDenseAfterMixedSequence(t *testing.T) {
	s := newTestStore(t)
	dates := []models.Date{"2026-02-20", "2026-02-21", models.Someday}

	var ids []string
	for i := 0; i < 12; i++ {
		task := mustAdd(t, s, fmt.Sprintf("T%d", i), dates[i%3], models.Categories[i%2])
		ids = append(ids, task.ID)
	}
	for i, id := range ids {
		switch i % 4 {
		case 0:
			if _, err := s.Move(id, dates[(i+1)%3], models.CategoryAcademic, i%3); err != nil {
				t.Fatal(err)
			}
		case 1:
			if err := s.Delete(id); err != nil {
				t.Fatal(err)
			}
		case 2:
			date := dates[(i+2)%3]
			if _, err := s.Update(id, models.Patch{Date: &date}); err != nil {
				t.Fatal(err)
			}
		}
		assertInvariants(t, s)
	}
}

func TestSubtasks(t *testing.T) {
	s := newTestStore(t)
	task := mustAdd(t, s, "Essay", "2026-02-20", models.CategoryAcademic)

	first, err := s.AddSubtask(task.ID, "Outline")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := s.AddSubtask(task.ID, "Draft")
	third, _ := s.AddSubtask(task.ID, "Edit")

	toggled, err := s.ToggleSubtask(task.ID, second.ID)
	if err != nil || !toggled.Completed {
		t.Errorf("ToggleSubtask() = %+v, %v", toggled, err)
	}
	if err := s.DeleteSubtask(task.ID, first.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(task.ID)
	if len(got.Subtasks) != 2 || got.Subtasks[0].ID != second.ID || got.Subtasks[1].ID != third.ID {
		t.Errorf("subtasks = %+v", got.Subtasks)
	}

	if _, err := s.ToggleSubtask(task.ID, "missing"); !apperrors.IsNotFound(err) {
		t.Errorf("ToggleSubtask(missing) error = %v, want not found", err)
	}
	if _, err := s.AddSubtask("missing", "x"); !apperrors.IsNotFound(err) {
		t.Errorf("AddSubtask(missing task) error = %v, want not found", err)
	}
}

func TestSetColor(t *testing.T) {
	s := newTestStore(t)
	task := mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)

	got, err := s.SetColor(task.ID, "#ff9900")
	if err != nil || got.Color != "#ff9900" {
		t.Errorf("SetColor() = %q, %v", got.Color, err)
	}
	got, _ = s.SetColor(task.ID, models.ColorPink)
	if got.Color != models.ColorPink {
		t.Errorf("SetColor(pink) = %q", got.Color)
	}
}

func TestRollover(t *testing.T) {
	s := newTestStore(t)
	overdue := mustAdd(t, s, "Overdue", "2026-02-18", models.CategoryAcademic)
	mustAdd(t, s, "Also overdue", "2026-02-19", models.CategoryAcademic)
	done := mustAdd(t, s, "Done", "2026-02-18", models.CategoryAcademic)
	if _, err := s.ToggleComplete(done.ID); err != nil {
		t.Fatal(err)
	}
	label, _ := s.AddLabel("Old label", "2026-02-18")
	mustAdd(t, s, "Today", "2026-02-20", models.CategoryAcademic)
	mustAdd(t, s, "Tomorrow", "2026-02-21", models.CategoryAcademic)
	mustAdd(t, s, "Someday", models.Someday, models.CategoryAcademic)

	tmpl := mustAdd(t, s, "Daily", "2026-02-17", models.CategoryPersonal)
	if _, err := s.SetRecurrence(tmpl.ID, &models.Recurrence{Type: models.RecurrenceDaily, Count: 2}); err != nil {
		t.Fatal(err)
	}

	moved, err := s.Rollover()
	if err != nil {
		t.Fatal(err)
	}
	// Overdue, Also overdue, and the template itself
	if moved != 3 {
		t.Errorf("Rollover() moved %d, want 3", moved)
	}

	today := titles(s.TasksFor("2026-02-20", models.CategoryAcademic))
	if !slices.Equal(today, []string{"Today", "Overdue", "Also overdue"}) {
		t.Errorf("today's bucket = %v", today)
	}
	if got, _ := s.Get(overdue.ID); got.Date != "2026-02-20" {
		t.Errorf("overdue task date = %s", got.Date)
	}
	if got, _ := s.Get(done.ID); got.Date != "2026-02-18" {
		t.Error("completed task rolled over")
	}
	if got, _ := s.Get(label.ID); got.Date != "2026-02-18" {
		t.Error("label rolled over")
	}
	for _, task := range s.All() {
		if task.IsInstance() && task.Date == "2026-02-20" {
			t.Errorf("instance %s rolled over", task.ID)
		}
	}
	assertInvariants(t, s)

	again, err := s.Rollover()
	if err != nil || again != 0 {
		t.Errorf("second Rollover() = %d, %v; want 0", again, err)
	}
}

func TestRange(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "Before", "2026-02-15", models.CategoryAcademic)
	mustAdd(t, s, "From", "2026-02-16", models.CategoryAcademic)
	mustAdd(t, s, "To", "2026-02-22", models.CategoryPersonal)
	mustAdd(t, s, "After", "2026-02-23", models.CategoryAcademic)
	mustAdd(t, s, "Idea", models.Someday, models.CategoryAcademic)

	got := titles(s.Range("2026-02-16", "2026-02-22"))
	if !slices.Equal(got, []string{"From", "To", "Idea"}) {
		t.Errorf("Range() = %v", got)
	}
	if n := len(s.Range(models.Someday, models.Someday)); n != 5 {
		t.Errorf("open Range() returned %d tasks, want 5", n)
	}
}

func TestReplaceAndRekey(t *testing.T) {
	s := newTestStore(t)
	tmpl := mustAdd(t, s, "Template", "2026-02-16", models.CategoryAcademic)
	if _, err := s.SetRecurrence(tmpl.ID, &models.Recurrence{Type: models.RecurrenceWeekly, Count: 1}); err != nil {
		t.Fatal(err)
	}

	if err := s.Rekey(tmpl.ID, "real-id"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(tmpl.ID); !apperrors.IsNotFound(err) {
		t.Error("old id still present after Rekey()")
	}
	for _, task := range s.All() {
		if task.IsInstance() && task.RecurringParentID != "real-id" {
			t.Errorf("instance %s still points at %s", task.ID, task.RecurringParentID)
		}
	}

	err := s.Replace([]models.Task{{ID: "a", Title: "Loaded", Date: "2026-02-20"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || got.Category != models.CategoryPersonal || got.Color != models.ColorNone {
		t.Errorf("Replace() did not migrate: %+v", got)
	}
}

func TestPersistence(t *testing.T) {
	p := &recordingPersister{}
	s := newTestStore(t, WithPersister(p))

	mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)
	if p.saves != 1 || len(p.last) != 1 {
		t.Errorf("persister saw %d saves, %d tasks", p.saves, len(p.last))
	}

	p.err = errors.New("disk full")
	if _, err := s.Add("B", "2026-02-20", models.CategoryAcademic); err == nil {
		t.Fatal("Add() succeeded despite a failed save")
	}
	if s.Len() != 1 {
		t.Errorf("failed save was applied: Len() = %d", s.Len())
	}

	p.err = nil
	if _, err := s.Rollover(); err != nil {
		t.Fatal(err)
	}
	if p.saves != 1 {
		t.Errorf("no-op Rollover() persisted (%d saves)", p.saves)
	}
}

func TestQueriesReturnCopies(t *testing.T) {
	s := newTestStore(t)
	task := mustAdd(t, s, "A", "2026-02-20", models.CategoryAcademic)
	if _, err := s.AddSubtask(task.ID, "step"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(task.ID)
	got.Subtasks[0].Title = "mutated"

	again, _ := s.Get(task.ID)
	if again.Subtasks[0].Title != "step" {
		t.Error("Get() exposed the stored subtask slice")
	}
}
