package tui

import tea "github.com/charmbracelet/bubbletea"

// handleKeyPress routes keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return tea.Quit

	case "y":
		return m.copyToClipboard()

	case "up", "k":
		m.view.ScrollUp(1)
	case "down", "j":
		m.view.ScrollDown(1)
	case "pgup":
		m.view.PageUp()
	case "pgdown", " ":
		m.view.PageDown()
	case "g", "home":
		m.view.GotoTop()
	case "G", "end":
		m.view.GotoBottom()
	}

	return nil
}
