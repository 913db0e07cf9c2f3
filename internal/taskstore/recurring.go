package taskstore

import (
	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/recurrence"
	"github.com/julianstephens/tweeklike/internal/validation"
)

// SetRecurrence attaches rule to a template task and generates its instances
// up to the store's horizon, or clears the rule when rule is nil. Clearing
// keeps existing instances. Setting a rule first drops the template's
// incomplete instances, then creates one instance per expanded date not
// already held by a remaining instance. It returns the created instances.
func (s *Store) SetRecurrence(id string, rule *models.Recurrence) ([]models.Task, error) {
	if rule != nil {
		if err := validation.Recurrence(*rule); err != nil {
			return nil, err
		}
	}

	var created []models.Task
	err := s.mutate(func(next Collection) error {
		t, err := lookup(next, id)
		if err != nil {
			return err
		}
		if t.IsInstance() {
			return apperrors.Invalid("task %s is a recurrence instance; set the rule on its template %s", id, t.RecurringParentID)
		}
		if t.IsLabel {
			return apperrors.Invalid("labels cannot recur")
		}

		if rule == nil {
			t.Recurrence = nil
			next[id] = t
			return nil
		}

		var stale []string
		held := make(map[models.Date]bool)
		for _, other := range next {
			if other.RecurringParentID != id {
				continue
			}
			if other.Completed {
				held[other.Date] = true
			} else {
				stale = append(stale, other.ID)
			}
		}
		next.remove(stale...)

		t.Recurrence = rule.Clone()
		next[id] = t
		if t.Date.IsSomeday() {
			return nil
		}

		dates, err := recurrence.Expand(string(t.Date), *rule, s.horizon)
		if err != nil {
			return apperrors.Invalid("%v", err)
		}
		if rule.Count > 0 && len(dates) > rule.Count {
			dates = dates[:rule.Count]
		}

		for _, d := range dates {
			date := models.Date(d)
			if held[date] {
				continue
			}
			created = append(created, next.appendTo(models.Task{
				ID:                s.newID(),
				Title:             t.Title,
				Date:              date,
				Category:          t.Category,
				Color:             t.Color,
				Notes:             t.Notes,
				Subtasks:          []models.Subtask{},
				RecurringParentID: id,
			}))
		}
		logger.Debug("Expanded recurrence", "task", id, "type", rule.Type, "instances", len(created))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
