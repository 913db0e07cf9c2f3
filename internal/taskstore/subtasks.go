package taskstore

import (
	"slices"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/validation"
)

// AddSubtask appends a subtask to the task's list.
func (s *Store) AddSubtask(taskID, title string) (models.Subtask, error) {
	if err := validation.Title(title); err != nil {
		return models.Subtask{}, err
	}

	var created models.Subtask
	err := s.mutate(func(next Collection) error {
		t, err := lookup(next, taskID)
		if err != nil {
			return err
		}
		created = models.Subtask{ID: s.newID(), Title: title}
		t.Subtasks = append(t.Subtasks, created)
		next[taskID] = t
		return nil
	})
	return created, err
}

// ToggleSubtask flips one subtask's completed flag.
func (s *Store) ToggleSubtask(taskID, subtaskID string) (models.Subtask, error) {
	var updated models.Subtask
	err := s.editSubtask(taskID, subtaskID, func(st *models.Subtask) {
		st.Completed = !st.Completed
		updated = *st
	})
	return updated, err
}

// SetSubtaskCompleted sets one subtask's completed flag.
func (s *Store) SetSubtaskCompleted(taskID, subtaskID string, completed bool) (models.Subtask, error) {
	var updated models.Subtask
	err := s.editSubtask(taskID, subtaskID, func(st *models.Subtask) {
		st.Completed = completed
		updated = *st
	})
	return updated, err
}

// DeleteSubtask removes one subtask, keeping the order of the rest.
func (s *Store) DeleteSubtask(taskID, subtaskID string) error {
	return s.mutate(func(next Collection) error {
		t, err := lookup(next, taskID)
		if err != nil {
			return err
		}
		i := subtaskIndex(t, subtaskID)
		if i < 0 {
			return apperrors.NotFound("subtask", subtaskID)
		}
		t.Subtasks = slices.Delete(t.Subtasks, i, i+1)
		next[taskID] = t
		return nil
	})
}

// RekeySubtask renames a subtask, typically from a temporary id to the one
// assigned by the system of record.
func (s *Store) RekeySubtask(taskID, oldID, newID string) error {
	return s.editSubtask(taskID, oldID, func(st *models.Subtask) {
		st.ID = newID
	})
}

func (s *Store) editSubtask(taskID, subtaskID string, edit func(*models.Subtask)) error {
	return s.mutate(func(next Collection) error {
		t, err := lookup(next, taskID)
		if err != nil {
			return err
		}
		i := subtaskIndex(t, subtaskID)
		if i < 0 {
			return apperrors.NotFound("subtask", subtaskID)
		}
		edit(&t.Subtasks[i])
		next[taskID] = t
		return nil
	})
}

func subtaskIndex(t models.Task, id string) int {
	return slices.IndexFunc(t.Subtasks, func(st models.Subtask) bool {
		return st.ID == id
	})
}
