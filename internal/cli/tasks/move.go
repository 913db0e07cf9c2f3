package tasks

import (
	"fmt"
	"math"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/validation"
)

type MoveCmd struct {
	ID       string `arg:"" help:"Task ID to move."`
	Date     string `arg:"" help:"Destination date (YYYY-MM-DD, today, tomorrow or someday)."`
	Category string `short:"c" help:"Destination category; defaults to the task's current one."`
	Position int    `short:"p" help:"0-based position in the destination; negative appends." default:"-1"`
}

func (c *MoveCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDateArg(c.Date, ctx.Planner.Today())
	if err != nil {
		return err
	}
	var category models.Category
	if c.Category != "" {
		if category, err = validation.Category(c.Category); err != nil {
			return err
		}
	}
	index := c.Position
	if index < 0 {
		index = math.MaxInt32
	}

	bucket, err := ctx.Planner.Move(c.ID, date, category, index)
	if err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}
	for _, t := range bucket {
		if t.ID == c.ID {
			fmt.Printf("Moved %s to %s at position %d\n", t.Title, t.Date, t.Order)
			return nil
		}
	}
	fmt.Printf("Moved task to %s\n", date)
	return nil
}

type RolloverCmd struct{}

func (c *RolloverCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()
	n, err := ctx.Planner.Rollover()
	if err != nil {
		return fmt.Errorf("rollover failed: %w", err)
	}
	if n == 0 {
		fmt.Println("Nothing to roll over.")
		return nil
	}
	fmt.Printf("Rolled %d overdue task(s) over to %s\n", n, ctx.Planner.Today())
	return nil
}
