package system

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/tweeklike/internal/cli"
)

// migrator is implemented by the SQL-backed providers.
type migrator interface {
	Migrate() (int, error)
}

type MigrateCmd struct {
	out io.Writer
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	m, ok := ctx.Store.(migrator)
	if !ok {
		fmt.Fprintln(out, "JSON storage has no schema. Nothing to migrate.")
		return nil
	}

	count, err := m.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(out, "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(out, "Successfully applied %d migration(s).\n", count)
	}
	return nil
}
