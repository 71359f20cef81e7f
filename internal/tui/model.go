package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/loadprobe/internal/report"
)

// Model is the chart window state
type Model struct {
	chart   *report.Chart
	summary string
	color   bool

	view  viewport.Model
	ready bool

	// Terminal size
	width  int
	height int

	statusMsg string
	errorMsg  string

	// Clipboard writer, replaced in tests
	copyFn func(string) error
}

// Custom messages
type statusMsg string
type errorMsg string
type clearStatusMsg struct{}
type clearErrorMsg struct{}

// New creates the window model for a chart and the plain text summary
// that "y" copies to the clipboard
func New(chart *report.Chart, summary string, color bool) Model {
	return Model{
		chart:   chart,
		summary: summary,
		color:   color,
		view:    viewport.New(80, 20),
		copyFn:  clipboard.WriteAll,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case statusMsg:
		cmd = m.setStatusMessage(string(msg))

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	case clearStatusMsg:
		m.statusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
	}

	return m, cmd
}

// resize fits the viewport to the terminal and redraws the chart into it
func (m *Model) resize() {
	w := max(m.width-ViewportBorderWidth-ViewportPaddingHorizontal, MinViewportWidth)
	h := max(m.height-ChromeLines, MinViewportHeight)

	m.view.Width = w
	m.view.Height = h
	m.view.SetContent(m.content())
	m.ready = true
}

// content is the chart sized to one viewport page, then the summary
func (m *Model) content() string {
	body := m.chart.Render(m.view.Width, m.view.Height, m.color)
	if m.summary == "" {
		return body
	}
	return body + "\n" + m.summary
}

func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = truncateMessage(msg)
	return tea.Tick(StatusMessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.errorMsg = truncateMessage(msg)
	return tea.Tick(StatusMessageTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

func truncateMessage(msg string) string {
	if len(msg) > StatusMessageMaxLen {
		return msg[:StatusMessageMaxLen-3] + "..."
	}
	return msg
}
