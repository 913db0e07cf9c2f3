package syncer

import (
	"context"
	"fmt"

	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/remote"
)

// current maps a temporary id the caller may still hold to the id the local
// view now uses. Must be called with mu held.
func (a *Adapter) current(id string) string {
	if mapped, ok := a.ids[id]; ok {
		return mapped
	}
	return id
}

// resolve translates an id for a remote call. A temporary id that never got
// an authoritative replacement cannot be sent.
func (a *Adapter) resolve(id string) (string, error) {
	if !models.IsTemporaryID(id) {
		return id, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if mapped, ok := a.ids[id]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("temporary id %s has no remote counterpart", id)
}

// rekey records the authoritative id and renames the local record. When the
// local record is already gone, deleted or swept away by a refresh, the
// local view no longer matches the remote and a refresh is owed.
func (a *Adapter) rekey(tempID, realID string, rename func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ids[tempID] = realID
	if err := rename(); err != nil {
		a.dirty = true
		a.log.Warn("Local record not rekeyed, refresh scheduled", "temp", tempID, "id", realID, "error", err)
	}
}

func (a *Adapter) Add(title string, date models.Date, category models.Category) (models.Task, error) {
	return a.create(models.Task{Title: title, Date: date, Category: category})
}

func (a *Adapter) AddLabel(title string, date models.Date) (models.Task, error) {
	return a.create(models.Task{Title: title, Date: date, Category: models.CategoryPersonal, IsLabel: true})
}

func (a *Adapter) Create(draft models.Task) (models.Task, error) {
	return a.create(draft)
}

func (a *Adapter) create(draft models.Task) (models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := a.local.Create(draft)
	if err != nil {
		return models.Task{}, err
	}

	req := remote.CreateRequest{Title: task.Title, Date: task.Date, Category: task.Category, IsLabel: task.IsLabel}
	rest := createExtras(task)
	a.enqueue(newPending("create", false, func(ctx context.Context) error {
		created, err := a.api.Create(ctx, req)
		if err != nil {
			return err
		}
		a.rekey(task.ID, created.ID, func() error { return a.local.Rekey(task.ID, created.ID) })
		if rest.IsEmpty() {
			return nil
		}
		_, err = a.api.Patch(ctx, created.ID, rest)
		return err
	}))
	return task, nil
}

// createExtras collects the fields a create request cannot carry.
func createExtras(task models.Task) models.Patch {
	var p models.Patch
	if task.Completed {
		completed := true
		p.Completed = &completed
	}
	if task.Color != "" && task.Color != models.ColorNone {
		color := task.Color
		p.Color = &color
	}
	if task.Notes != "" {
		notes := task.Notes
		p.Notes = &notes
	}
	return p
}

func (a *Adapter) Update(id string, patch models.Patch) (models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := a.local.Update(a.current(id), patch)
	if err != nil {
		return models.Task{}, err
	}
	a.enqueuePatch("update", task.ID, patch)
	return task, nil
}

func (a *Adapter) ToggleComplete(id string) (models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := a.local.ToggleComplete(a.current(id))
	if err != nil {
		return models.Task{}, err
	}
	completed := task.Completed
	a.enqueuePatch("toggle complete", task.ID, models.Patch{Completed: &completed})
	return task, nil
}

func (a *Adapter) SetColor(id string, color models.Color) (models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := a.local.SetColor(a.current(id), color)
	if err != nil {
		return models.Task{}, err
	}
	c := task.Color
	a.enqueuePatch("set color", task.ID, models.Patch{Color: &c})
	return task, nil
}

func (a *Adapter) enqueuePatch(name, id string, patch models.Patch) {
	a.enqueue(newPending(name, false, func(ctx context.Context) error {
		remoteID, err := a.resolve(id)
		if err != nil {
			return err
		}
		_, err = a.api.Patch(ctx, remoteID, patch)
		return err
	}))
}

func (a *Adapter) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = a.current(id)
	if err := a.local.Delete(id); err != nil {
		return err
	}
	a.enqueue(newPending("delete", false, func(ctx context.Context) error {
		remoteID, err := a.resolve(id)
		if err != nil {
			return err
		}
		return a.api.Delete(ctx, remoteID)
	}))
	return nil
}

// DeleteAndFuture always refreshes after the remote call.
func (a *Adapter) DeleteAndFuture(id string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = a.current(id)
	removed, err := a.local.DeleteAndFuture(id)
	if err != nil {
		return nil, err
	}
	a.enqueue(newPending("delete and future", true, func(ctx context.Context) error {
		remoteID, err := a.resolve(id)
		if err != nil {
			return err
		}
		_, err = a.api.DeleteAndFuture(ctx, remoteID)
		return err
	}))
	return removed, nil
}

func (a *Adapter) Move(id string, date models.Date, category models.Category, index int) ([]models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = a.current(id)
	bucket, err := a.local.Move(id, date, category, index)
	if err != nil {
		return nil, err
	}
	moved, err := a.local.Get(id)
	if err != nil {
		return nil, err
	}

	a.enqueue(newPending("move", false, func(ctx context.Context) error {
		remoteID, err := a.resolve(id)
		if err != nil {
			return err
		}
		_, err = a.api.Move(ctx, remote.MoveRequest{
			TaskID:      remoteID,
			NewDate:     moved.Date,
			NewCategory: moved.Category,
			NewIndex:    moved.Order,
		})
		return err
	}))
	return bucket, nil
}

// Rollover always refreshes after the remote call.
func (a *Adapter) Rollover() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, err := a.local.Rollover()
	if err != nil {
		return 0, err
	}
	a.enqueue(newPending("rollover", true, func(ctx context.Context) error {
		_, err := a.api.Rollover(ctx)
		return err
	}))
	return n, nil
}

// SetRecurrence always refreshes after the remote call; the locally
// generated instances carry temporary ids that are never mapped.
func (a *Adapter) SetRecurrence(id string, rule *models.Recurrence) ([]models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id = a.current(id)
	created, err := a.local.SetRecurrence(id, rule)
	if err != nil {
		return nil, err
	}

	var sent *models.Recurrence
	if rule != nil {
		sent = rule.Clone()
	}
	a.enqueue(newPending("set recurrence", true, func(ctx context.Context) error {
		remoteID, err := a.resolve(id)
		if err != nil {
			return err
		}
		if sent == nil {
			return a.api.ClearRecurrence(ctx, remoteID)
		}
		_, err = a.api.SetRecurrence(ctx, remoteID, *sent)
		return err
	}))
	return created, nil
}

func (a *Adapter) AddSubtask(taskID, title string) (models.Subtask, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	taskID = a.current(taskID)
	st, err := a.local.AddSubtask(taskID, title)
	if err != nil {
		return models.Subtask{}, err
	}

	a.enqueue(newPending("add subtask", false, func(ctx context.Context) error {
		remoteTaskID, err := a.resolve(taskID)
		if err != nil {
			return err
		}
		created, err := a.api.AddSubtask(ctx, remoteTaskID, title)
		if err != nil {
			return err
		}
		a.rekey(st.ID, created.ID, func() error { return a.local.RekeySubtask(remoteTaskID, st.ID, created.ID) })
		return nil
	}))
	return st, nil
}

func (a *Adapter) ToggleSubtask(taskID, subtaskID string) (models.Subtask, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	taskID, subtaskID = a.current(taskID), a.current(subtaskID)
	st, err := a.local.ToggleSubtask(taskID, subtaskID)
	if err != nil {
		return models.Subtask{}, err
	}

	completed := st.Completed
	a.enqueue(newPending("toggle subtask", false, func(ctx context.Context) error {
		remoteTaskID, err := a.resolve(taskID)
		if err != nil {
			return err
		}
		remoteSubtaskID, err := a.resolve(subtaskID)
		if err != nil {
			return err
		}
		_, err = a.api.SetSubtaskCompleted(ctx, remoteTaskID, remoteSubtaskID, completed)
		return err
	}))
	return st, nil
}

func (a *Adapter) DeleteSubtask(taskID, subtaskID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	taskID, subtaskID = a.current(taskID), a.current(subtaskID)
	if err := a.local.DeleteSubtask(taskID, subtaskID); err != nil {
		return err
	}

	a.enqueue(newPending("delete subtask", false, func(ctx context.Context) error {
		remoteTaskID, err := a.resolve(taskID)
		if err != nil {
			return err
		}
		remoteSubtaskID, err := a.resolve(subtaskID)
		if err != nil {
			return err
		}
		return a.api.DeleteSubtask(ctx, remoteTaskID, remoteSubtaskID)
	}))
	return nil
}

// Queries read the optimistic local view.

func (a *Adapter) Get(id string) (models.Task, error) {
	a.mu.Lock()
	id = a.current(id)
	a.mu.Unlock()
	return a.local.Get(id)
}

func (a *Adapter) All() []models.Task {
	return a.local.All()
}

func (a *Adapter) TasksFor(date models.Date, category models.Category) []models.Task {
	return a.local.TasksFor(date, category)
}

func (a *Adapter) LabelsFor(date models.Date) []models.Task {
	return a.local.LabelsFor(date)
}

func (a *Adapter) Someday() []models.Task {
	return a.local.Someday()
}

func (a *Adapter) Range(from, to models.Date) []models.Task {
	return a.local.Range(from, to)
}

func (a *Adapter) Today() models.Date {
	return a.local.Today()
}
