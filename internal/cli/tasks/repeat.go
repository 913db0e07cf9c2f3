package tasks

import (
	"fmt"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
	"github.com/julianstephens/tweeklike/internal/validation"
)

type RepeatCmd struct {
	ID       string `arg:"" help:"Template task ID."`
	Type     string `arg:"" enum:"daily,weekly,monthly,custom,none" help:"Recurrence type (daily|weekly|monthly|custom|none)."`
	Interval int    `short:"i" help:"Days between occurrences for custom recurrence."`
	Days     string `short:"w" help:"Comma-separated weekdays for custom recurrence (e.g. mon,wed or 1,3)."`
	Count    int    `short:"n" help:"Maximum number of occurrences to generate."`
}

func (c *RepeatCmd) rule() (*models.Recurrence, error) {
	if c.Type == "none" {
		return nil, nil
	}

	rule := &models.Recurrence{
		Type:     models.RecurrenceType(c.Type),
		Interval: c.Interval,
		Count:    c.Count,
	}
	if c.Days != "" {
		days, err := utils.ParseWeekdays(c.Days)
		if err != nil {
			return nil, err
		}
		rule.DaysOfWeek = days
	}
	if err := validation.Recurrence(*rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (c *RepeatCmd) Run(ctx *cli.Context) error {
	rule, err := c.rule()
	if err != nil {
		return err
	}

	created, err := ctx.Planner.SetRecurrence(c.ID, rule)
	if err != nil {
		return fmt.Errorf("failed to set recurrence: %w", err)
	}

	if rule == nil {
		fmt.Println("Recurrence cleared; existing occurrences were kept.")
		return nil
	}
	fmt.Printf("Repeating %s, %d occurrence(s) scheduled\n", cli.FormatRecurrence(rule), len(created))
	for _, t := range created {
		fmt.Printf("  %s\n", t.Date)
	}
	return nil
}
