package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/loadprobe/internal/report"
	"github.com/studiowebux/loadprobe/internal/stresstest"
)

// CreateTestModel creates a sized model over a small latency chart
func CreateTestModel(t *testing.T) *Model {
	t.Helper()

	s, err := stresstest.Summarize([]float64{120, 80, 100, 140, 95}, 1, 6)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	chart, err := report.NewLatencyChart(s, "Test Chart")
	if err != nil {
		t.Fatalf("NewLatencyChart() error = %v", err)
	}

	m := New(chart, report.SummaryText(s, false), false)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &m
}

// KeyPress builds a key message for a single rune or a named key
func KeyPress(key string) tea.KeyMsg {
	switch key {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// AssertModelField verifies a model field has the expected value
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// IsQuit reports whether a command quits the program
func IsQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
