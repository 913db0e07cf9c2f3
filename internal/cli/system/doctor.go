package system

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/validation"
)

// versioned is implemented by the SQL-backed providers.
type versioned interface {
	SchemaVersion() (current, latest int, err error)
}

var errSkipped = errors.New("skipped")

type check struct {
	name    string
	warning bool
	run     func() error
}

type DoctorCmd struct {
	out io.Writer
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	if diagnose(out, ctx) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

// diagnose prints one line per check and reports whether any check failed.
func diagnose(out io.Writer, ctx *cli.Context) bool {
	var tasks []models.Task
	reachable, loaded := false, false

	checks := []check{
		{name: "Storage reachable", run: func() error {
			if err := ctx.Store.Load(); err != nil {
				return fmt.Errorf("failed to load storage: %w", err)
			}
			reachable = true
			return nil
		}},
		{name: "Schema version", run: func() error {
			if !reachable {
				return errSkipped
			}
			return checkSchemaVersion(ctx)
		}},
		{name: "Task collection", run: func() error {
			if !reachable {
				return errSkipped
			}
			var err error
			if tasks, err = ctx.Store.LoadTasks(); err != nil {
				return err
			}
			loaded = true
			return nil
		}},
		{name: "Data validation", run: func() error {
			if !loaded {
				return errSkipped
			}
			return checkValidation(tasks)
		}},
		{name: "Backups present", warning: true, run: func() error {
			return checkBackupsPresent(ctx)
		}},
		{name: "Clock/timezone", run: func() error {
			return checkClockTimezone(ctx)
		}},
	}

	failed := false
	for _, c := range checks {
		err := c.run()
		switch {
		case err == nil:
			fmt.Fprintf(out, "✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			fmt.Fprintf(out, "⊘ %s: SKIPPED\n", c.name)
		case c.warning:
			fmt.Fprintf(out, "⚠ %s: WARNING\n", c.name)
			fmt.Fprintf(out, "   %v\n", err)
		default:
			fmt.Fprintf(out, "❌ %s: FAIL\n", c.name)
			fmt.Fprintf(out, "   Error: %v\n", err)
			failed = true
		}
	}
	return failed
}

func checkSchemaVersion(ctx *cli.Context) error {
	v, ok := ctx.Store.(versioned)
	if !ok {
		// JSON files carry no schema version
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkValidation(tasks []models.Task) error {
	result := validation.New().ValidateTasks(tasks)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found, run 'tweeklike validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.BackupManager().ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'tweeklike backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Location == nil {
		return fmt.Errorf("no timezone configured")
	}
	return nil
}
