package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/remote"
	"github.com/julianstephens/tweeklike/internal/taskstore"
)

var testNow = func() time.Time { return time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC) }

// fakeAPI serves the remote operation set from an authoritative store.
type fakeAPI struct {
	store *taskstore.Store

	mu       sync.Mutex
	calls    []string
	failures map[string]error
	block    chan struct{}
	onList   func()
}

func newFakeAPI(seed ...models.Task) *fakeAPI {
	n := 0
	return &fakeAPI{
		store: taskstore.New(seed,
			taskstore.WithIDGenerator(func() string {
				n++
				return fmt.Sprintf("r-%d", n)
			}),
			taskstore.WithClock(testNow),
			taskstore.WithLocation(time.UTC),
		),
		failures: make(map[string]error),
	}
}

func (f *fakeAPI) enter(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	block := f.block
	err := f.failures[op]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (f *fakeAPI) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) List(ctx context.Context, from, to models.Date) ([]models.Task, error) {
	tasks := f.store.All()
	f.mu.Lock()
	f.calls = append(f.calls, "list")
	hook := f.onList
	f.onList = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return tasks, nil
}

func (f *fakeAPI) Create(ctx context.Context, req remote.CreateRequest) (models.Task, error) {
	if err := f.enter("create"); err != nil {
		return models.Task{}, err
	}
	return f.store.Create(models.Task{Title: req.Title, Date: req.Date, Category: req.Category, IsLabel: req.IsLabel})
}

func (f *fakeAPI) Patch(ctx context.Context, id string, patch models.Patch) (models.Task, error) {
	if err := f.enter("patch"); err != nil {
		return models.Task{}, err
	}
	return f.store.Update(id, patch)
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	return f.store.Delete(id)
}

func (f *fakeAPI) DeleteAndFuture(ctx context.Context, id string) ([]string, error) {
	if err := f.enter("delete_future"); err != nil {
		return nil, err
	}
	return f.store.DeleteAndFuture(id)
}

func (f *fakeAPI) AddSubtask(ctx context.Context, taskID, title string) (models.Subtask, error) {
	if err := f.enter("add_subtask"); err != nil {
		return models.Subtask{}, err
	}
	return f.store.AddSubtask(taskID, title)
}

func (f *fakeAPI) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Subtask, error) {
	if err := f.enter("subtask_completed"); err != nil {
		return models.Subtask{}, err
	}
	return f.store.SetSubtaskCompleted(taskID, subtaskID, completed)
}

func (f *fakeAPI) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	if err := f.enter("delete_subtask"); err != nil {
		return err
	}
	return f.store.DeleteSubtask(taskID, subtaskID)
}

func (f *fakeAPI) SetRecurrence(ctx context.Context, id string, rule models.Recurrence) ([]models.Task, error) {
	if err := f.enter("set_recurrence"); err != nil {
		return nil, err
	}
	return f.store.SetRecurrence(id, &rule)
}

func (f *fakeAPI) ClearRecurrence(ctx context.Context, id string) error {
	if err := f.enter("clear_recurrence"); err != nil {
		return err
	}
	_, err := f.store.SetRecurrence(id, nil)
	return err
}

func (f *fakeAPI) Move(ctx context.Context, req remote.MoveRequest) ([]models.Task, error) {
	if err := f.enter("move"); err != nil {
		return nil, err
	}
	return f.store.Move(req.TaskID, req.NewDate, req.NewCategory, req.NewIndex)
}

func (f *fakeAPI) Rollover(ctx context.Context) (int, error) {
	if err := f.enter("rollover"); err != nil {
		return 0, err
	}
	return f.store.Rollover()
}

func newTestAdapter(t *testing.T, api *fakeAPI) *Adapter {
	t.Helper()
	a := New(api, WithTimeout(time.Second), WithStoreOptions(
		taskstore.WithClock(testNow),
		taskstore.WithLocation(time.UTC),
	))
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Refresh(context.Background()))
	return a
}

func flush(t *testing.T, a *Adapter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Flush(ctx))
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	sort.Strings(out)
	return out
}

func TestRefreshLoadsRemote(t *testing.T) {
	api := newFakeAPI(models.Task{ID: "r-a", Title: "Seeded", Date: "2026-02-20", Category: models.CategoryAcademic})
	a := newTestAdapter(t, api)

	tasks := a.All()
	require.Len(t, tasks, 1)
	assert.Equal(t, "r-a", tasks[0].ID)
	assert.Equal(t, models.ColorNone, tasks[0].Color)
}

func TestAddIsOptimisticAndRekeyed(t *testing.T) {
	api := newFakeAPI()
	a := newTestAdapter(t, api)

	task, err := a.Add("Essay", "2026-02-20", models.CategoryAcademic)
	require.NoError(t, err)
	assert.True(t, models.IsTemporaryID(task.ID), "local id %q", task.ID)
	assert.Len(t, a.TasksFor("2026-02-20", models.CategoryAcademic), 1)

	flush(t, a)

	assert.Equal(t, []string{"r-1"}, ids(a.All()))
	got, err := a.Get(task.ID)
	require.NoError(t, err, "temporary id still resolves after rekey")
	assert.Equal(t, "r-1", got.ID)
	assert.Zero(t, a.Failures())
}

func TestQueuedOperationsTranslateTemporaryIDs(t *testing.T) {
	api := newFakeAPI()
	a := newTestAdapter(t, api)

	api.block = make(chan struct{})
	task, err := a.Add("Lab report", "2026-02-20", models.CategoryAcademic)
	require.NoError(t, err)
	_, err = a.ToggleComplete(task.ID)
	require.NoError(t, err)
	st, err := a.AddSubtask(task.ID, "Graphs")
	require.NoError(t, err)
	_, err = a.ToggleSubtask(task.ID, st.ID)
	require.NoError(t, err)
	close(api.block)

	flush(t, a)
	assert.Zero(t, a.Failures())
	assert.Equal(t, []string{"list", "create", "patch", "add_subtask", "subtask_completed"}, api.callLog())

	remoteTask, err := api.store.Get("r-1")
	require.NoError(t, err)
	assert.True(t, remoteTask.Completed)
	require.Len(t, remoteTask.Subtasks, 1)
	assert.True(t, remoteTask.Subtasks[0].Completed)

	localTask, err := a.Get("r-1")
	require.NoError(t, err)
	require.Len(t, localTask.Subtasks, 1)
	assert.Equal(t, remoteTask.Subtasks[0].ID, localTask.Subtasks[0].ID)
}

func TestLocalFailureIsNotMirrored(t *testing.T) {
	api := newFakeAPI()
	a := newTestAdapter(t, api)

	err := a.Delete("missing")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = a.Add("", "2026-02-20", models.CategoryAcademic)
	assert.True(t, apperrors.IsValidation(err))

	flush(t, a)
	assert.Equal(t, []string{"list"}, api.callLog())
}

func TestRemoteFailureRefreshes(t *testing.T) {
	api := newFakeAPI(models.Task{ID: "r-a", Title: "Original", Date: "2026-02-20", Category: models.CategoryPersonal})
	a := newTestAdapter(t, api)
	api.failOn("patch", errors.New("connection reset"))

	title := "Renamed"
	updated, err := a.Update("r-a", models.Patch{Title: &title})
	require.NoError(t, err, "remote failures never reach the caller")
	assert.Equal(t, "Renamed", updated.Title)

	flush(t, a)

	assert.EqualValues(t, 1, a.Failures())
	got, err := a.Get("r-a")
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title, "local view replaced by the remote list")
	assert.Equal(t, api.store.All(), a.All())
}

func TestUnmappedTemporaryIDFails(t *testing.T) {
	api := newFakeAPI()
	a := newTestAdapter(t, api)
	api.failOn("create", errors.New("server unavailable"))

	api.block = make(chan struct{})
	task, err := a.Add("Lost", "2026-02-20", models.CategoryPersonal)
	require.NoError(t, err)
	_, err = a.ToggleComplete(task.ID)
	require.NoError(t, err)
	close(api.block)

	flush(t, a)

	assert.EqualValues(t, 2, a.Failures())
	assert.Empty(t, a.All())
	assert.NotContains(t, api.callLog(), "patch", "an unmapped id is never sent")
}

func TestRecurrenceAlwaysRefreshes(t *testing.T) {
	api := newFakeAPI(models.Task{ID: "r-gym", Title: "Gym", Date: "2026-02-16", Category: models.CategoryPersonal})
	a := newTestAdapter(t, api)

	created, err := a.SetRecurrence("r-gym", &models.Recurrence{Type: models.RecurrenceWeekly})
	require.NoError(t, err)
	require.Len(t, created, 4)
	for _, inst := range created {
		assert.True(t, models.IsTemporaryID(inst.ID))
	}

	flush(t, a)

	assert.Equal(t, ids(api.store.All()), ids(a.All()))
	for _, task := range a.All() {
		assert.False(t, models.IsTemporaryID(task.ID), "instance %s kept a temporary id", task.ID)
	}
	calls := api.callLog()
	assert.Equal(t, "list", calls[len(calls)-1])

	_, err = a.SetRecurrence("r-gym", nil)
	require.NoError(t, err)
	flush(t, a)
	assert.Contains(t, api.callLog(), "clear_recurrence")
	got, _ := a.Get("r-gym")
	assert.Nil(t, got.Recurrence)
}

func TestDeleteAndFutureAndRolloverRefresh(t *testing.T) {
	api := newFakeAPI(
		models.Task{ID: "r-old", Title: "Overdue", Date: "2026-02-18", Category: models.CategoryPersonal},
		models.Task{ID: "r-x", Title: "Gone", Date: "2026-02-21", Category: models.CategoryPersonal},
	)
	a := newTestAdapter(t, api)

	n, err := a.Rollover()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := a.DeleteAndFuture("r-x")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-x"}, removed)

	flush(t, a)
	assert.Equal(t, []string{"list", "rollover", "list", "delete_future", "list"}, api.callLog())
	assert.Equal(t, api.store.All(), a.All())
	got, _ := a.Get("r-old")
	assert.Equal(t, models.Date("2026-02-20"), got.Date)
}

func TestMoveMirrorsPosition(t *testing.T) {
	api := newFakeAPI(
		models.Task{ID: "r-a", Title: "A", Date: "2026-02-20", Category: models.CategoryPersonal, Order: 0},
		models.Task{ID: "r-b", Title: "B", Date: "2026-02-20", Category: models.CategoryPersonal, Order: 1},
	)
	a := newTestAdapter(t, api)

	bucket, err := a.Move("r-b", "2026-02-20", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "r-b", bucket[0].ID)

	flush(t, a)
	remoteBucket := api.store.TasksFor("2026-02-20", models.CategoryPersonal)
	require.Len(t, remoteBucket, 2)
	assert.Equal(t, "r-b", remoteBucket[0].ID)
	assert.Equal(t, "r-a", remoteBucket[1].ID)
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	a := newTestAdapter(t, api)

	entered := make(chan struct{})
	release := make(chan struct{})
	api.mu.Lock()
	api.onList = func() {
		close(entered)
		<-release
	}
	api.mu.Unlock()

	staleDone := make(chan error, 1)
	go func() { staleDone <- a.Refresh(context.Background()) }()
	<-entered

	_, err := api.store.Add("Arrived later", "2026-02-20", models.CategoryPersonal)
	require.NoError(t, err)
	require.NoError(t, a.Refresh(context.Background()))
	require.Len(t, a.All(), 1)

	close(release)
	require.NoError(t, <-staleDone)
	assert.Len(t, a.All(), 1, "older listing must not overwrite the newer one")
}

func TestCloseAbandonsQueued(t *testing.T) {
	api := newFakeAPI()
	a := New(api, WithStoreOptions(taskstore.WithClock(testNow)))

	api.block = make(chan struct{})
	_, err := a.Add("In flight", "2026-02-20", models.CategoryPersonal)
	require.NoError(t, err)
	_, err = a.Add("Queued", "2026-02-20", models.CategoryPersonal)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(api.callLog()) == 1 }, time.Second, 5*time.Millisecond)

	a.mu.Lock()
	tail := a.tail
	a.mu.Unlock()

	closed := make(chan struct{})
	go func() {
		a.Close()
		close(closed)
	}()
	<-a.stop
	close(api.block)
	<-closed

	assert.ErrorIs(t, tail.Wait(context.Background()), ErrClosed)

	_, err = a.Add("After close", "2026-02-20", models.CategoryPersonal)
	require.NoError(t, err, "local mutations still apply")
	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, []string{"create"}, api.callLog())
}

func TestCreateQueuedBehindRefreshIsRestored(t *testing.T) {
	api := newFakeAPI(models.Task{ID: "r-gym", Title: "Gym", Date: "2026-02-16", Category: models.CategoryPersonal})
	a := newTestAdapter(t, api)

	api.block = make(chan struct{})
	_, err := a.SetRecurrence("r-gym", &models.Recurrence{Type: models.RecurrenceWeekly})
	require.NoError(t, err)
	task, err := a.Add("Essay", "2026-02-20", models.CategoryAcademic)
	require.NoError(t, err)
	close(api.block)

	flush(t, a)

	assert.Zero(t, a.Failures())
	assert.Equal(t, ids(api.store.All()), ids(a.All()))
	got, err := a.Get(task.ID)
	require.NoError(t, err, "essay survives the refresh that ran before it was created remotely")
	assert.Equal(t, "Essay", got.Title)
	assert.False(t, models.IsTemporaryID(got.ID))
}

func TestPatchInFlightDuringRefreshIsRestored(t *testing.T) {
	api := newFakeAPI(models.Task{ID: "r-a", Title: "Original", Date: "2026-02-20", Category: models.CategoryPersonal})
	a := newTestAdapter(t, api)

	api.block = make(chan struct{})
	title := "Renamed"
	_, err := a.Update("r-a", models.Patch{Title: &title})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(api.callLog()) == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Refresh(context.Background()))
	got, _ := a.Get("r-a")
	require.Equal(t, "Original", got.Title, "refresh lands before the patch reaches the remote")

	close(api.block)
	flush(t, a)

	got, _ = a.Get("r-a")
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, api.store.All(), a.All())
	assert.Equal(t, []string{"list", "patch", "list", "list"}, api.callLog())
}

func TestCreateCarriesColorNotesAndCompletion(t *testing.T) {
	api := newFakeAPI()
	a := newTestAdapter(t, api)

	task, err := a.Create(models.Task{
		Title:     "Reading",
		Date:      "2026-02-20",
		Category:  models.CategoryAcademic,
		Color:     models.ColorBlue,
		Notes:     "chapters 3-4",
		Completed: true,
	})
	require.NoError(t, err)

	flush(t, a)

	assert.Equal(t, []string{"list", "create", "patch"}, api.callLog())
	remoteTask, err := api.store.Get("r-1")
	require.NoError(t, err)
	assert.Equal(t, models.ColorBlue, remoteTask.Color)
	assert.Equal(t, "chapters 3-4", remoteTask.Notes)
	assert.True(t, remoteTask.Completed)

	local, err := a.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, remoteTask, local)
}
