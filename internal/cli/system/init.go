package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing data file before initializing."`
	Source string `help:"Data file or PostgreSQL connection string to copy tasks from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized tweeklike storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying tasks from: %s\n", c.Source)
		n, err := copyTasks(c.Source, ctx.Store)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Printf("Copied %d tasks\n", n)
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if storage.DetectKind(path) == storage.KindPostgres || path == "postgresql" {
		return fmt.Errorf("--force is only supported for file storage")
	}

	if c.Source != "" {
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		if absSource, err := filepath.Abs(cli.ExpandHome(c.Source)); err == nil && absSource == path {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyTasks loads the collection stored at source and saves it into dst.
func copyTasks(source string, dst storage.Provider) (int, error) {
	src, err := cli.NewProvider(cli.ExpandHome(source))
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source: %w", err)
	}
	defer src.Close()

	tasks, err := src.LoadTasks()
	if err != nil {
		return 0, fmt.Errorf("failed to read source tasks: %w", err)
	}
	if err := dst.SaveTasks(tasks); err != nil {
		return 0, fmt.Errorf("failed to save tasks: %w", err)
	}
	return len(tasks), nil
}
