package taskstore

import (
	"slices"
	"sort"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
	"github.com/julianstephens/tweeklike/internal/validation"
)

// Add creates a task at the end of its bucket.
func (s *Store) Add(title string, date models.Date, category models.Category) (models.Task, error) {
	return s.Create(models.Task{Title: title, Date: date, Category: category})
}

// AddLabel pins a label to date.
func (s *Store) AddLabel(title string, date models.Date) (models.Task, error) {
	return s.Create(models.Task{Title: title, Date: date, Category: models.CategoryPersonal, IsLabel: true})
}

// Create inserts a new task built from draft. The id, order, subtasks and
// lineage fields of draft are ignored.
func (s *Store) Create(draft models.Task) (models.Task, error) {
	if draft.Category == "" {
		draft.Category = models.CategoryPersonal
	}
	if draft.Color == "" {
		draft.Color = models.ColorNone
	}
	if err := checkTask(draft); err != nil {
		return models.Task{}, err
	}

	var created models.Task
	err := s.mutate(func(next Collection) error {
		created = next.appendTo(models.Task{
			ID:        s.newID(),
			Title:     draft.Title,
			Completed: draft.Completed,
			Date:      draft.Date,
			Category:  draft.Category,
			IsLabel:   draft.IsLabel,
			Color:     draft.Color,
			Notes:     draft.Notes,
			Subtasks:  []models.Subtask{},
		})
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return created.Clone(), nil
}

// Update merges patch into the task. A task whose bucket changes is appended
// to the destination and its old bucket is closed up.
func (s *Store) Update(id string, patch models.Patch) (models.Task, error) {
	if err := validation.Patch(patch); err != nil {
		return models.Task{}, err
	}

	var updated models.Task
	err := s.mutate(func(next Collection) error {
		old, err := lookup(next, id)
		if err != nil {
			return err
		}
		t := patch.Apply(old)
		if err := checkTask(t); err != nil {
			return err
		}
		if t.IsLabel && t.IsTemplate() {
			return apperrors.Invalid("a recurring task cannot become a label")
		}

		from, to := KeyOf(old), KeyOf(t)
		if from == to {
			next[id] = t
			updated = t
			return nil
		}
		delete(next, id)
		next.densify(from)
		updated = next.appendTo(t)
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated.Clone(), nil
}

// ToggleComplete flips the completed flag of one task. Subtasks are not touched.
func (s *Store) ToggleComplete(id string) (models.Task, error) {
	var updated models.Task
	err := s.mutate(func(next Collection) error {
		t, err := lookup(next, id)
		if err != nil {
			return err
		}
		t.Completed = !t.Completed
		next[id] = t
		updated = t
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated.Clone(), nil
}

// SetColor replaces the task's color. Any string is accepted.
func (s *Store) SetColor(id string, color models.Color) (models.Task, error) {
	if color == "" {
		color = models.ColorNone
	}

	var updated models.Task
	err := s.mutate(func(next Collection) error {
		t, err := lookup(next, id)
		if err != nil {
			return err
		}
		t.Color = color
		next[id] = t
		updated = t
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated.Clone(), nil
}

// Delete removes one task. Instances of a deleted template are kept.
func (s *Store) Delete(id string) error {
	return s.mutate(func(next Collection) error {
		if _, err := lookup(next, id); err != nil {
			return err
		}
		next.remove(id)
		return nil
	})
}

// DeleteAndFuture removes the task and every dated member of its lineage on
// or after its date. The template survives unless it is the target itself.
// It returns the removed ids in ascending order.
func (s *Store) DeleteAndFuture(id string) ([]string, error) {
	var removed []string
	err := s.mutate(func(next Collection) error {
		target, err := lookup(next, id)
		if err != nil {
			return err
		}

		removed = []string{id}
		if !target.Date.IsSomeday() {
			root := target.LineageRoot()
			for _, t := range next {
				if t.ID == id || t.RecurringParentID != root || t.Date.IsSomeday() {
					continue
				}
				if t.Date >= target.Date {
					removed = append(removed, t.ID)
				}
			}
		}
		sort.Strings(removed)
		next.remove(removed...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Move places the task at index within the bucket for (date, category),
// clamping index to the bucket bounds. It returns the destination bucket in
// position order. An empty category keeps the task's current one.
func (s *Store) Move(id string, date models.Date, category models.Category, index int) ([]models.Task, error) {
	var dest []models.Task
	err := s.mutate(func(next Collection) error {
		t, err := lookup(next, id)
		if err != nil {
			return err
		}
		if category != "" {
			t.Category = category
		}
		t.Date = date
		if err := checkTask(t); err != nil {
			return err
		}

		from := KeyOf(next[id])
		delete(next, id)
		if from != KeyOf(t) {
			next.densify(from)
		}

		bucket := next.Bucket(KeyOf(t))
		index = max(0, min(index, len(bucket)))
		bucket = slices.Insert(bucket, index, t)
		next[id] = t
		next.renumber(bucket)

		dest = next.Bucket(KeyOf(t))
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range dest {
		dest[i] = dest[i].Clone()
	}
	return dest, nil
}

// Rollover moves every overdue, incomplete, non-label task that is not a
// recurrence instance to today, appending it to today's bucket. It returns
// how many tasks moved.
func (s *Store) Rollover() (int, error) {
	today := s.Today()

	var moved int
	err := s.mutate(func(next Collection) error {
		var overdue []models.Task
		for _, t := range next {
			if t.Completed || t.IsLabel || t.IsInstance() || t.Date.IsSomeday() {
				continue
			}
			if t.Date < today {
				overdue = append(overdue, t)
			}
		}
		if len(overdue) == 0 {
			return errUnchanged
		}
		sortTasks(overdue)

		touched := make(map[BucketKey]struct{})
		for _, t := range overdue {
			touched[KeyOf(t)] = struct{}{}
			delete(next, t.ID)
		}
		for key := range touched {
			next.densify(key)
		}
		for _, t := range overdue {
			t.Date = today
			next.appendTo(t)
		}
		moved = len(overdue)
		return nil
	})
	return moved, err
}

// Replace swaps in a whole new collection, as loaded from a snapshot or a
// remote listing.
func (s *Store) Replace(tasks []models.Task) error {
	return s.mutate(func(next Collection) error {
		clear(next)
		for id, t := range NewCollection(models.MigrateTasks(tasks)) {
			next[id] = t
		}
		return nil
	})
}

// Rekey renames a task, typically from a temporary id to the one assigned by
// the system of record, and repoints instances that reference it.
func (s *Store) Rekey(oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	return s.mutate(func(next Collection) error {
		t, err := lookup(next, oldID)
		if err != nil {
			return err
		}
		if _, taken := next[newID]; taken {
			return apperrors.Invalid("task id %s already exists", newID)
		}
		delete(next, oldID)
		t.ID = newID
		next[newID] = t
		for id, other := range next {
			if other.RecurringParentID == oldID {
				other.RecurringParentID = newID
				next[id] = other
			}
		}
		return nil
	})
}

// checkTask repeats the boundary checks for a task about to be stored.
func checkTask(t models.Task) error {
	if err := validation.Title(t.Title); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return apperrors.Invalid("unknown category %q", t.Category)
	}
	if !t.Date.IsSomeday() {
		if _, err := utils.ParseDate(string(t.Date)); err != nil {
			return apperrors.Invalid("%v", err)
		}
	}
	if t.IsLabel && t.Date.IsSomeday() {
		return apperrors.Invalid("a label needs a date")
	}
	return nil
}
