package cli

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	todayHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236")).
				Background(lipgloss.Color("205")).
				Padding(0, 1).
				Bold(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// SuccessStyle marks confirmations printed by commands.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// WarningStyle marks prompts before destructive changes.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

var presetColors = map[string]lipgloss.Color{
	"pink":   lipgloss.Color("212"),
	"purple": lipgloss.Color("141"),
	"yellow": lipgloss.Color("227"),
	"green":  lipgloss.Color("120"),
	"blue":   lipgloss.Color("111"),
	"orange": lipgloss.Color("215"),
}

// swatch renders the small color marker in front of a task. Custom hex colors
// are passed to the terminal as-is.
func swatch(color string) string {
	if color == "" || color == "none" {
		return " "
	}
	c, ok := presetColors[color]
	if !ok {
		c = lipgloss.Color(color)
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}
