package tasks

import (
	"fmt"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/validation"
)

type SubtaskAddCmd struct {
	TaskID string `arg:"" help:"Parent task ID."`
	Title  string `arg:"" help:"Subtask title."`
}

func (c *SubtaskAddCmd) Run(ctx *cli.Context) error {
	if err := validation.Title(c.Title); err != nil {
		return err
	}
	st, err := ctx.Planner.AddSubtask(c.TaskID, c.Title)
	if err != nil {
		return fmt.Errorf("failed to add subtask: %w", err)
	}
	fmt.Printf("Added subtask: %s (ID: %s)\n", st.Title, st.ID)
	return nil
}

type SubtaskToggleCmd struct {
	TaskID    string `arg:"" help:"Parent task ID."`
	SubtaskID string `arg:"" help:"Subtask ID."`
}

func (c *SubtaskToggleCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Planner.ToggleSubtask(c.TaskID, c.SubtaskID)
	if err != nil {
		return err
	}
	mark := "[ ]"
	if st.Completed {
		mark = "[x]"
	}
	fmt.Printf("%s %s\n", mark, st.Title)
	return nil
}

type SubtaskDeleteCmd struct {
	TaskID    string `arg:"" help:"Parent task ID."`
	SubtaskID string `arg:"" help:"Subtask ID."`
}

func (c *SubtaskDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Planner.DeleteSubtask(c.TaskID, c.SubtaskID); err != nil {
		return err
	}
	fmt.Printf("Deleted subtask %s\n", c.SubtaskID)
	return nil
}

type SubtaskCmd struct {
	Add    SubtaskAddCmd    `cmd:"" help:"Add a subtask."`
	Toggle SubtaskToggleCmd `cmd:"" help:"Toggle a subtask's completion."`
	Delete SubtaskDeleteCmd `cmd:"" help:"Delete a subtask."`
}
