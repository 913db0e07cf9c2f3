package taskstore

import (
	"github.com/julianstephens/tweeklike/internal/models"
)

// Get returns a copy of one task.
func (s *Store) Get(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := lookup(s.tasks, id)
	if err != nil {
		return models.Task{}, err
	}
	return t.Clone(), nil
}

// All returns every task, labels included, in display order.
func (s *Store) All() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Tasks()
}

// TasksFor returns the non-label tasks of one day and category in position
// order. A Someday date returns the someday pool.
func (s *Store) TasksFor(date models.Date, category models.Category) []models.Task {
	return s.bucket(bucketFor(false, date, category))
}

// LabelsFor returns the labels pinned to date in position order.
func (s *Store) LabelsFor(date models.Date) []models.Task {
	if date.IsSomeday() {
		return nil
	}
	return s.bucket(bucketFor(true, date, ""))
}

// Someday returns the undated pool in position order.
func (s *Store) Someday() []models.Task {
	return s.bucket(BucketKey{})
}

// Range returns the tasks dated within [from, to] plus every someday task.
// An empty bound is open.
func (s *Store) Range(from, to models.Date) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Task
	for _, t := range s.tasks {
		if inRange(t.Date, from, to) {
			out = append(out, t.Clone())
		}
	}
	sortTasks(out)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) bucket(key BucketKey) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := s.tasks.Bucket(key)
	for i := range tasks {
		tasks[i] = tasks[i].Clone()
	}
	return tasks
}

func inRange(date, from, to models.Date) bool {
	if date.IsSomeday() {
		return true
	}
	if !from.IsSomeday() && date < from {
		return false
	}
	if !to.IsSomeday() && date > to {
		return false
	}
	return true
}
