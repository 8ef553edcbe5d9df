package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Header           lipgloss.Style
	UserLabel        lipgloss.Style
	AssistantLabel   lipgloss.Style
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	FocusedInput     lipgloss.Style
	BlurredInput     lipgloss.Style
	Status           lipgloss.Style
	Hint             lipgloss.Style
	Error            lipgloss.Style
}

type BorderColors struct {
	User      string
	Assistant string
	Focused   string
	Blurred   string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		User:      "#A7C7E7", // pastel blue
		Assistant: "#CCCCCC",
		Focused:   "#FFFF99", // light yellow
		Blurred:   "#CCCCCC",
	}

	darkModeColors := BorderColors{
		User:      "#5B7DA8",
		Assistant: "#444444",
		Focused:   "#DDDD77",
		Blurred:   "#444444",
	}

	border := func(light, dark string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}

	return &Style{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(border(lightModeColors.User, darkModeColors.User)),
		AssistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		UserMessage: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(border(lightModeColors.User, darkModeColors.User)),
		AssistantMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(border(lightModeColors.Assistant, darkModeColors.Assistant)),
		FocusedInput: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			BorderForeground(border(lightModeColors.Focused, darkModeColors.Focused)),
		BlurredInput: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			BorderForeground(border(lightModeColors.Blurred, darkModeColors.Blurred)),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		Hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
	}
}
