package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/loadprobe/internal/report"
)

// ShowChart opens the chart window and blocks until it is dismissed
func ShowChart(chart *report.Chart, summary string, color bool) error {
	if chart == nil {
		return fmt.Errorf("no chart to display")
	}

	m := New(chart, summary, color)

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chart window: %w", err)
	}

	return nil
}
