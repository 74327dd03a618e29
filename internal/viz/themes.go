package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view. Bodies without a colour hint
// take their colour from Bodies, cycling by index.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Bodies  []lipgloss.Color
}

var (
	ThemeSpace = Theme{
		Name:    "space",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
		Bodies: []lipgloss.Color{
			"#ffd700", "#ff8c00", "#1e90ff", "#00ced1", "#ff4500", "#a9a9a9",
		},
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
		Bodies: []lipgloss.Color{
			"#00ff00", "#88ff88", "#00cc00", "#ccffcc",
		},
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
		Bodies: []lipgloss.Color{
			"#ffffff", "#cccccc", "#999999",
		},
	}

	CurrentTheme = ThemeSpace

	Themes = []Theme{
		ThemeSpace,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the space theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeSpace
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after the current one, wrapping around.
func NextTheme() Theme {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			return GetTheme(names[(i+1)%len(names)])
		}
	}
	return ThemeSpace
}

// BodyColor picks the colour of body i: the hint when one is given,
// otherwise the theme palette.
func (t Theme) BodyColor(i int, hints []string) lipgloss.Color {
	if i < len(hints) && hints[i] != "" {
		return lipgloss.Color(hints[i])
	}
	if len(t.Bodies) == 0 {
		return t.Text
	}
	return t.Bodies[i%len(t.Bodies)]
}
