// Package calendar renders a month grid with entry markers and the current
// pay window highlighted.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
	"github.com/Tiliavir/paywindow-tracker/internal/ui/theme"
)

const marker = "•"

var weekdays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Render draws the month of month. Days whose YYYY-MM-DD key is in marked get
// a marker; days inside current are highlighted.
func Render(month time.Time, marked map[string]bool, current timecalc.PayWindow) string {
	var b strings.Builder

	title := theme.HeaderStyle.Render(month.Format("January 2006"))
	b.WriteString(title)
	b.WriteString("\n")

	head := make([]string, len(weekdays))
	for i, w := range weekdays {
		head[i] = fmt.Sprintf("%-3s", w)
	}
	b.WriteString(theme.MutedStyle.Render(strings.Join(head, " ")))
	b.WriteString("\n")

	for _, week := range timecalc.MonthGrid(month) {
		cells := make([]string, len(week))
		for i, day := range week {
			cells[i] = cell(day, month.Month(), marked, current)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}

	legend := fmt.Sprintf("%s has entries   current window %s, payday %s",
		theme.MarkerStyle.Render(marker),
		timecalc.FormatRange(current),
		timecalc.FormatShort(current.Payday))
	b.WriteString(theme.MutedStyle.Render(legend))
	return b.String()
}

func cell(day time.Time, month time.Month, marked map[string]bool, current timecalc.PayWindow) string {
	mark := " "
	if marked[timecalc.FormatDate(day)] {
		mark = theme.MarkerStyle.Render(marker)
	}
	text := fmt.Sprintf("%2d", day.Day()) + mark

	var style lipgloss.Style
	switch {
	case day.Month() != month:
		style = theme.MutedStyle
	case current.Contains(day):
		style = theme.CurrentWindowStyle
	default:
		return text
	}
	return style.Render(text)
}
