package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tweeklike/internal/models"
	"github.com/julianstephens/tweeklike/internal/utils"
)

// TaskLine renders one task with its status box, color, recurrence and
// subtask progress.
func TaskLine(t models.Task, showIDs bool) string {
	box := "[ ]"
	title := t.Title
	if t.Completed {
		box = "[x]"
		title = doneStyle.Render(title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", swatch(string(t.Color)), box, title)

	if t.Recurrence != nil {
		b.WriteString(mutedStyle.Render(" ↻ " + FormatRecurrence(t.Recurrence)))
	} else if t.IsInstance() {
		b.WriteString(mutedStyle.Render(" ↻"))
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Completed {
				done++
			}
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d/%d)", done, n)))
	}
	if showIDs {
		b.WriteString(mutedStyle.Render(" " + t.ID))
	}
	return b.String()
}

// RenderDay renders the labels and both category columns of one date.
func RenderDay(p Planner, date models.Date, showIDs bool) string {
	var b strings.Builder

	header := dayHeader(date)
	if date == p.Today() {
		b.WriteString(todayHeaderStyle.Render(header))
	} else {
		b.WriteString(headerStyle.Render(header))
	}
	b.WriteString("\n")

	for _, l := range p.LabelsFor(date) {
		line := labelStyle.Render("◆ " + l.Title)
		if showIDs {
			line += mutedStyle.Render(" " + l.ID)
		}
		b.WriteString("  " + line + "\n")
	}

	for _, cat := range models.Categories {
		tasks := p.TasksFor(date, cat)
		if len(tasks) == 0 {
			continue
		}
		b.WriteString("  " + categoryStyle.Render(string(cat)) + "\n")
		for _, t := range tasks {
			b.WriteString("    " + TaskLine(t, showIDs) + "\n")
			for _, st := range t.Subtasks {
				mark := "-"
				if st.Completed {
					mark = "✓"
				}
				sub := fmt.Sprintf("%s %s", mark, st.Title)
				if showIDs {
					sub += mutedStyle.Render(" " + st.ID)
				}
				b.WriteString("        " + sub + "\n")
			}
		}
	}
	return b.String()
}

// RenderSomeday renders the undated pool.
func RenderSomeday(p Planner, showIDs bool) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Someday") + "\n")
	tasks := p.Someday()
	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render("  nothing here") + "\n")
	}
	for _, t := range tasks {
		b.WriteString("  " + TaskLine(t, showIDs) + "\n")
	}
	return b.String()
}

func dayHeader(date models.Date) string {
	t, err := utils.ParseDate(string(date))
	if err != nil {
		return date.String()
	}
	return fmt.Sprintf("%s (%s)", t.Format("Mon Jan 2"), date)
}
