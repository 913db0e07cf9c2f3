package tasks

import (
	"fmt"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/validation"
)

type EditCmd struct {
	ID         string `arg:"" help:"Task ID to edit."`
	Title      string `short:"t" help:"New title."`
	Date       string `short:"d" help:"New date (YYYY-MM-DD, today, tomorrow or someday)."`
	Category   string `short:"c" help:"New category (academic|personal)."`
	Notes      string `short:"n" help:"New notes."`
	ClearNotes bool   `help:"Remove the notes."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	var patch models.Patch
	if c.Title != "" {
		title := c.Title
		patch.Title = &title
	}
	if c.Date != "" {
		date, err := cli.ParseDateArg(c.Date, ctx.Planner.Today())
		if err != nil {
			return err
		}
		patch.Date = &date
	}
	if c.Category != "" {
		category, err := validation.Category(c.Category)
		if err != nil {
			return err
		}
		patch.Category = &category
	}
	if c.Notes != "" || c.ClearNotes {
		notes := c.Notes
		patch.Notes = &notes
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change; pass at least one of --title, --date, --category, --notes")
	}

	task, err := ctx.Planner.Update(c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	fmt.Printf("Updated task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}

type DoneCmd struct {
	ID string `arg:"" help:"Task ID to toggle."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Planner.ToggleComplete(c.ID)
	if err != nil {
		return err
	}
	state := "not done"
	if task.Completed {
		state = "done"
	}
	fmt.Printf("Marked %s as %s\n", task.Title, state)
	return nil
}

type ColorCmd struct {
	ID    string `arg:"" help:"Task ID."`
	Color string `arg:"" help:"Preset (none|pink|purple|yellow|green|blue|orange) or #rrggbb."`
}

func (c *ColorCmd) Run(ctx *cli.Context) error {
	color, err := validation.Color(c.Color)
	if err != nil {
		return err
	}
	task, err := ctx.Planner.SetColor(c.ID, color)
	if err != nil {
		return err
	}
	fmt.Printf("Set color of %s to %s\n", task.Title, task.Color)
	return nil
}

type DeleteCmd struct {
	ID     string `arg:"" help:"Task ID to delete."`
	Future bool   `short:"f" help:"Also delete this and later occurrences of the series."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Planner.Get(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", c.ID, err)
	}

	if !c.Future {
		if err := ctx.Planner.Delete(c.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		fmt.Printf("Deleted task: %s (ID: %s)\n", task.Title, c.ID)
		return nil
	}

	ctx.PerformAutomaticBackup()
	removed, err := ctx.Planner.DeleteAndFuture(c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	fmt.Printf("Deleted %s and %d later occurrence(s)\n", task.Title, len(removed)-1)
	return nil
}
