package views

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
)

type WeekCmd struct {
	Date    string `arg:"" optional:"" help:"Any date in the week to show." default:"today"`
	ShowIDs bool   `help:"Show task IDs." name:"show-ids"`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	out, err := Week(ctx.Planner, c.Date, c.ShowIDs)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// Week renders Monday through Sunday of the week containing date, followed
// by the someday pool.
func Week(p cli.Planner, date string, showIDs bool) (string, error) {
	d, err := cli.ParseDateArg(date, p.Today())
	if err != nil {
		return "", err
	}
	if d.IsSomeday() {
		return cli.RenderSomeday(p, showIDs), nil
	}
	t, err := utils.ParseDate(string(d))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, day := range utils.WeekDates(t) {
		b.WriteString(cli.RenderDay(p, day, showIDs))
		b.WriteString("\n")
	}
	b.WriteString(cli.RenderSomeday(p, showIDs))
	return b.String(), nil
}

type DayCmd struct {
	Date    string `arg:"" optional:"" help:"Date to show." default:"today"`
	ShowIDs bool   `help:"Show task IDs." name:"show-ids"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	d, err := cli.ParseDateArg(c.Date, ctx.Planner.Today())
	if err != nil {
		return err
	}
	if d.IsSomeday() {
		fmt.Print(cli.RenderSomeday(ctx.Planner, c.ShowIDs))
		return nil
	}
	fmt.Print(cli.RenderDay(ctx.Planner, d, c.ShowIDs))
	return nil
}

type SomedayCmd struct {
	ShowIDs bool `help:"Show task IDs." name:"show-ids"`
}

func (c *SomedayCmd) Run(ctx *cli.Context) error {
	fmt.Print(cli.RenderSomeday(ctx.Planner, c.ShowIDs))
	return nil
}

type ListCmd struct {
	From    string `help:"First date of the range (inclusive)."`
	To      string `help:"Last date of the range (inclusive)."`
	ShowIDs bool   `help:"Show task IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	out, err := List(ctx.Planner, c.From, c.To, c.ShowIDs)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// List renders every task in [from, to] grouped by date, plus undated
// tasks. Either bound may be left open.
func List(p cli.Planner, from, to string, showIDs bool) (string, error) {
	var fromDate, toDate models.Date
	var err error
	if from != "" {
		if fromDate, err = cli.ParseDateArg(from, p.Today()); err != nil {
			return "", err
		}
	}
	if to != "" {
		if toDate, err = cli.ParseDateArg(to, p.Today()); err != nil {
			return "", err
		}
	}

	tasks := p.Range(fromDate, toDate)
	if len(tasks) == 0 {
		return "No tasks found\n", nil
	}

	var b strings.Builder
	var current models.Date
	first := true
	for _, t := range tasks {
		if first || t.Date != current {
			current = t.Date
			first = false
			header := string(current)
			if current.IsSomeday() {
				header = "Someday"
			}
			fmt.Fprintf(&b, "%s\n", header)
		}
		prefix := "  "
		if t.IsLabel {
			prefix = "  ◆ "
		}
		b.WriteString(prefix + cli.TaskLine(t, showIDs) + "\n")
	}
	return b.String(), nil
}
