package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// copyToClipboard copies the statistics summary
func (m *Model) copyToClipboard() tea.Cmd {
	if m.summary == "" {
		return func() tea.Msg {
			return errorMsg("No summary to copy")
		}
	}

	text := m.summary
	copyFn := m.copyFn
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
		return statusMsg("Summary copied to clipboard")
	}
}
