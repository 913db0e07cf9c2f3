package tasks

import (
	"fmt"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/validation"
)

type AddCmd struct {
	Title    string `arg:"" help:"Task title."`
	Date     string `short:"d" help:"Date (YYYY-MM-DD, today, tomorrow or someday)." default:"today"`
	Category string `short:"c" help:"Category (academic|personal)." default:"personal"`
	Color    string `help:"Color (pink|purple|yellow|green|blue|orange or #rrggbb)."`
	Notes    string `short:"n" help:"Free-form notes."`
}

func (c *AddCmd) Validate() error {
	if err := validation.Title(c.Title); err != nil {
		return err
	}
	if _, err := validation.Category(c.Category); err != nil {
		return err
	}
	if c.Color != "" {
		if _, err := validation.Color(c.Color); err != nil {
			return err
		}
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDateArg(c.Date, ctx.Planner.Today())
	if err != nil {
		return err
	}
	category, err := validation.Category(c.Category)
	if err != nil {
		return err
	}

	task, err := ctx.Planner.Add(c.Title, date, category)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	if c.Color != "" {
		color, err := validation.Color(c.Color)
		if err != nil {
			return err
		}
		if task, err = ctx.Planner.SetColor(task.ID, color); err != nil {
			return fmt.Errorf("failed to set color: %w", err)
		}
	}
	if c.Notes != "" {
		notes := c.Notes
		if task, err = ctx.Planner.Update(task.ID, models.Patch{Notes: &notes}); err != nil {
			return fmt.Errorf("failed to set notes: %w", err)
		}
	}

	fmt.Printf("Added task: %s on %s (ID: %s)\n", task.Title, task.Date, task.ID)
	return nil
}

type LabelCmd struct {
	Title string `arg:"" help:"Label text."`
	Date  string `short:"d" help:"Date to pin the label to." default:"today"`
}

func (c *LabelCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDateArg(c.Date, ctx.Planner.Today())
	if err != nil {
		return err
	}
	if date.IsSomeday() {
		return fmt.Errorf("labels need a date")
	}

	label, err := ctx.Planner.AddLabel(c.Title, date)
	if err != nil {
		return fmt.Errorf("failed to add label: %w", err)
	}
	fmt.Printf("Added label: %s on %s (ID: %s)\n", label.Title, label.Date, label.ID)
	return nil
}
