package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed   = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorGray  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan  = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

const footerHelp = "q quit  j/k scroll  g/G top/bottom  y copy summary"

// View renders the window
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	b.WriteString(styleFrame.Render(m.view.View()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTitle() string {
	title := "loadprobe"
	if m.chart != nil && m.chart.Title != "" {
		title = m.chart.Title
	}
	return styleTitle.Render(title)
}

// renderFooter shows an error, a status message, or the key help
func (m Model) renderFooter() string {
	scroll := styleSubtle.Render(fmt.Sprintf("%3.0f%%", m.view.ScrollPercent()*100))

	switch {
	case m.errorMsg != "":
		return styleError.Render(m.errorMsg) + "  " + scroll
	case m.statusMsg != "":
		return styleSuccess.Render(m.statusMsg) + "  " + scroll
	default:
		return styleSubtle.Render(footerHelp) + "  " + scroll
	}
}
