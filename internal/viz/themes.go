package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Good      lipgloss.Color
	Warn      lipgloss.Color
	Bad       lipgloss.Color
}

var Themes = []Theme{
	{
		Name:      "neon",
		Primary:   lipgloss.Color("#00ffff"),
		Secondary: lipgloss.Color("#ff00ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Good:      lipgloss.Color("#00ff88"),
		Warn:      lipgloss.Color("#ffcc00"),
		Bad:       lipgloss.Color("#ff4444"),
	},
	{
		Name:      "phosphor",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Good:      lipgloss.Color("#88ff88"),
		Warn:      lipgloss.Color("#ffff00"),
		Bad:       lipgloss.Color("#ff0000"),
	},
	{
		Name:      "plain",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#cccccc"),
		Muted:     lipgloss.Color("#888888"),
		Good:      lipgloss.Color("#00ff00"),
		Warn:      lipgloss.Color("#ffaa00"),
		Bad:       lipgloss.Color("#ff0000"),
	},
}

// ThemeByName falls back to the first theme for unknown names.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
