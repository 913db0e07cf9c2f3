// Package taskstore owns the task collection and every mutation on it. Each
// mutation runs against a copy, is persisted, and only then replaces the
// current collection, so readers never observe a half-applied change.
package taskstore

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tweeklike/internal/constants"
	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
)

// Persister receives the whole collection after every successful mutation.
type Persister interface {
	SaveTasks(tasks []models.Task) error
}

// IDGenerator returns a fresh id for a task or subtask.
type IDGenerator func() string

// NewUUID generates authoritative ids.
func NewUUID() string {
	return uuid.NewString()
}

// TempIDs returns a generator of temporary ids "-1", "-2", ... used by a
// client until the remote system assigns the real ones.
func TempIDs() IDGenerator {
	var n atomic.Int64
	return func() string {
		return strconv.FormatInt(-n.Add(1), 10)
	}
}

// Option configures a Store.
type Option func(*Store)

// WithPersister saves the collection after every mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

// WithClock sets the source of the current time used by Rollover.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithHorizon sets how many days ahead recurrence instances are generated.
func WithHorizon(days int) Option {
	return func(s *Store) { s.horizon = days }
}

type Store struct {
	mu    sync.RWMutex
	tasks Collection

	persister Persister
	newID     IDGenerator
	now       func() time.Time
	loc       *time.Location
	horizon   int
}

// New creates a store holding tasks. Records are migrated to the current
// model first.
func New(tasks []models.Task, opts ...Option) *Store {
	s := &Store{
		tasks:   NewCollection(models.MigrateTasks(tasks)),
		newID:   NewUUID,
		now:     time.Now,
		loc:     time.Local,
		horizon: constants.DefaultHorizonDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errUnchanged lets a transformation report that there is nothing to persist.
var errUnchanged = errors.New("unchanged")

// mutate applies fn to a copy of the collection, persists the result and
// swaps it in. On any error the current collection is kept.
func (s *Store) mutate(fn func(next Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tasks.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}

	if s.persister != nil {
		if err := s.persister.SaveTasks(next.Tasks()); err != nil {
			logger.Error("Failed to persist tasks", "error", err)
			return fmt.Errorf("failed to save tasks: %w", err)
		}
	}
	s.tasks = next
	return nil
}

// Today returns the store's current calendar day.
func (s *Store) Today() models.Date {
	return utils.Today(s.now(), s.loc)
}

// Horizon returns the recurrence horizon in days.
func (s *Store) Horizon() int {
	return s.horizon
}

func lookup(c Collection, id string) (models.Task, error) {
	t, ok := c[id]
	if !ok {
		return models.Task{}, apperrors.NotFound("task", id)
	}
	return t, nil
}
