package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/tweeklike/internal/backup"
	"github.com/julianstephens/tweeklike/internal/constants"
	"github.com/julianstephens/tweeklike/internal/keyring"
	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/remote"
	"github.com/julianstephens/tweeklike/internal/storage"
	"github.com/julianstephens/tweeklike/internal/storage/postgres"
	"github.com/julianstephens/tweeklike/internal/storage/sqlite"
	"github.com/julianstephens/tweeklike/internal/syncer"
	"github.com/julianstephens/tweeklike/internal/taskstore"
	"github.com/julianstephens/tweeklike/internal/utils"
	"github.com/julianstephens/tweeklike/internal/validation"
)

// Planner is the task surface commands work against. A local task store and
// a sync adapter both satisfy it.
type Planner interface {
	Get(id string) (models.Task, error)
	All() []models.Task
	TasksFor(date models.Date, category models.Category) []models.Task
	LabelsFor(date models.Date) []models.Task
	Someday() []models.Task
	Range(from, to models.Date) []models.Task
	Today() models.Date

	Add(title string, date models.Date, category models.Category) (models.Task, error)
	AddLabel(title string, date models.Date) (models.Task, error)
	Update(id string, patch models.Patch) (models.Task, error)
	ToggleComplete(id string) (models.Task, error)
	SetColor(id string, color models.Color) (models.Task, error)
	Delete(id string) error
	DeleteAndFuture(id string) ([]string, error)
	Move(id string, date models.Date, category models.Category, index int) ([]models.Task, error)
	Rollover() (int, error)
	SetRecurrence(id string, rule *models.Recurrence) ([]models.Task, error)

	AddSubtask(taskID, title string) (models.Subtask, error)
	ToggleSubtask(taskID, subtaskID string) (models.Subtask, error)
	DeleteSubtask(taskID, subtaskID string) error
}

var (
	_ Planner = (*taskstore.Store)(nil)
	_ Planner = (*syncer.Adapter)(nil)
)

type Context struct {
	Store    storage.Provider
	Location *time.Location
	Horizon  int
	Now      func() time.Time

	// Planner is set by Open or Connect.
	Planner Planner
	// Local is the persisted store; nil when a remote API is the system of record.
	Local *taskstore.Store

	adapter *syncer.Adapter
}

func (c *Context) storeOptions() []taskstore.Option {
	opts := []taskstore.Option{taskstore.WithLocation(c.Location)}
	if c.Horizon > 0 {
		opts = append(opts, taskstore.WithHorizon(c.Horizon))
	}
	if c.Now != nil {
		opts = append(opts, taskstore.WithClock(c.Now))
	}
	return opts
}

// Open loads the local provider and builds a store that saves through it.
func (c *Context) Open() error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	tasks, err := c.Store.LoadTasks()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	if result := validation.New().ValidateTasks(tasks); result.HasConflicts() {
		logger.Warn("Stored tasks have conflicts", "count", len(result.Conflicts))
	}

	opts := append(c.storeOptions(), taskstore.WithPersister(c.Store))
	c.Local = taskstore.New(tasks, opts...)
	c.Planner = c.Local
	return nil
}

// Connect mirrors mutations to the API at baseURL and loads its collection.
func (c *Context) Connect(ctx context.Context, baseURL string, timeout time.Duration) error {
	client := remote.NewClient(baseURL, remote.WithTimeout(timeout))
	c.adapter = syncer.New(client,
		syncer.WithTimeout(timeout),
		syncer.WithStoreOptions(c.storeOptions()...),
	)
	c.Planner = c.adapter

	if err := c.adapter.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load tasks from %s: %w", baseURL, err)
	}
	return nil
}

// Close waits for queued remote calls and releases storage.
func (c *Context) Close(ctx context.Context) error {
	if c.adapter != nil {
		flushErr := c.adapter.Flush(ctx)
		_ = c.adapter.Close()
		if n := c.adapter.Failures(); n > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d change(s) could not be synced; the remote copy was kept.\n", n)
		}
		if flushErr != nil {
			return fmt.Errorf("failed to sync pending changes: %w", flushErr)
		}
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// RequireLocal fails for commands that need direct access to stored data.
func (c *Context) RequireLocal(command string) error {
	if c.Local == nil {
		return fmt.Errorf("%s needs local storage and is not available with --remote", command)
	}
	return nil
}

// BackupManager keeps snapshots beside the data file, or in the default
// config directory for PostgreSQL.
func (c *Context) BackupManager() *backup.Manager {
	path := c.Store.GetConfigPath()
	if storage.DetectKind(path) == storage.KindPostgres || path == "postgresql" {
		path = ExpandHome(constants.DefaultConfigPath)
	}
	return backup.NewManager(path)
}

// PerformAutomaticBackup snapshots the collection before a bulk change and
// only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if c.Local == nil {
		return
	}
	if _, err := c.BackupManager().CreateBackup(c.Local.All()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ErrEmbeddedCredentials rejects PostgreSQL config strings that carry a password.
var ErrEmbeddedCredentials = errors.New("PostgreSQL connection strings with embedded credentials are not allowed; " +
	"use the OS keyring ('" + constants.AppName + " keyring set'), the " + constants.EnvDBConnection +
	" environment variable, or a .pgpass file")

// NewProvider picks the storage provider for a config location. PostgreSQL
// credentials come from the environment or the OS keyring, never the config.
func NewProvider(config string) (storage.Provider, error) {
	switch storage.DetectKind(config) {
	case storage.KindPostgres:
		if storage.HasEmbeddedCredentials(config) {
			return nil, ErrEmbeddedCredentials
		}
		connStr, source, err := keyring.ResolveConnectionString(config)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve connection string: %w", err)
		}
		logger.Debug("Resolved PostgreSQL connection string", "source", source)
		return postgres.New(connStr), nil
	case storage.KindJSON:
		return storage.NewJSONStore(config), nil
	default:
		return sqlite.NewStore(config), nil
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// ParseDateArg accepts YYYY-MM-DD, "today", "tomorrow", "yesterday" or
// "someday" (and an empty string, also someday).
func ParseDateArg(s string, today models.Date) (models.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "someday":
		return models.Someday, nil
	case "today":
		return today, nil
	case "tomorrow", "yesterday":
		t, err := utils.ParseDate(string(today))
		if err != nil {
			return "", err
		}
		n := 1
		if strings.EqualFold(strings.TrimSpace(s), "yesterday") {
			n = -1
		}
		return models.Date(utils.ToDateString(utils.AddDays(t, n))), nil
	}
	return validation.Date(s)
}

// FormatRecurrence formats a recurrence rule into a human-readable string
func FormatRecurrence(rec *models.Recurrence) string {
	if rec == nil {
		return ""
	}
	var s string
	switch rec.Type {
	case models.RecurrenceDaily:
		s = "daily"
	case models.RecurrenceWeekly:
		s = "weekly"
	case models.RecurrenceMonthly:
		s = "monthly"
	case models.RecurrenceCustom:
		if len(rec.DaysOfWeek) > 0 {
			var days []string
			for _, wd := range rec.DaysOfWeek {
				days = append(days, wd.String()[:3])
			}
			s = "on " + strings.Join(days, ",")
		} else {
			interval := max(rec.Interval, 1)
			s = fmt.Sprintf("every %d days", interval)
		}
	default:
		s = "unknown"
	}
	if rec.Count > 0 {
		s += fmt.Sprintf(" (%d times)", rec.Count)
	}
	return s
}
