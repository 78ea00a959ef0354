package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Active  lipgloss.Style
	Muted   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Failed  lipgloss.Style
	Panel   lipgloss.Style
	Canvas  lipgloss.Style
	Graph   lipgloss.Style

	high, mid, low lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Muted:   lipgloss.NewStyle().Foreground(t.Muted),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warn),
		Failed:  lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		Canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Primary),
		Graph:  lipgloss.NewStyle().Foreground(t.Secondary),
		high:   lipgloss.NewStyle().Foreground(t.Good),
		mid:    lipgloss.NewStyle().Foreground(t.Warn),
		low:    lipgloss.NewStyle().Foreground(t.Bad),
	}
}

// ProgressBar renders a bar filled to fraction in [0, 1].
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case fraction > 0.8:
		return s.high.Render(bar)
	case fraction > 0.4:
		return s.mid.Render(bar)
	}
	return s.low.Render(bar)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[max(0, min(len(sparkChars)-1, idx))])
	}
	return b.String()
}
