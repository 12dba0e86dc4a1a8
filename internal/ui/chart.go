package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kittrack/kittrack/pkg/tracking"
)

const barGlyph = "█"

// MoodChart draws points as a column chart with a fixed 1..7 y axis. Only
// the most recent points that fit in width are shown.
func MoodChart(points []tracking.MoodPoint, width int, styles Styles) string {
	if len(points) == 0 {
		return styles.Muted.Render("No mood readings yet.")
	}

	// Each column is two cells wide, plus the y axis labels.
	maxCols := (width - 4) / 2
	if maxCols < 1 {
		maxCols = 1
	}
	if len(points) > maxCols {
		points = points[len(points)-maxCols:]
	}

	var rows []string
	for y := tracking.MoodMax; y >= 1; y-- {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%d │", y))
		for _, p := range points {
			if clampMood(p.Mood) >= y {
				sb.WriteString(styles.Bar.Render(barGlyph))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(" ")
		}
		rows = append(rows, sb.String())
	}
	rows = append(rows, "  └"+strings.Repeat("──", len(points)))

	first := points[0].Date.Format("Jan 2")
	last := points[len(points)-1].Date.Format("Jan 2")
	axis := "   " + first
	if len(points) > 1 && last != first {
		axis += " … " + last
	}
	rows = append(rows, styles.Muted.Render(axis))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func clampMood(v int) int {
	if v < 0 {
		return 0
	}
	if v > tracking.MoodMax {
		return tracking.MoodMax
	}
	return v
}
