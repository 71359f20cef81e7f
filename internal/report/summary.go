package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/loadprobe/internal/stresstest"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleValue   = lipgloss.NewStyle().Bold(true)
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
)

// summaryDoc is the structured form of a summary
type summaryDoc struct {
	stresstest.Summary `yaml:",inline"`
	NoData             bool   `json:"noData" yaml:"noData"`
	Message            string `json:"message,omitempty" yaml:"message,omitempty"`
}

// NoDataMessage describes a run without successful samples
func NoDataMessage(s stresstest.Summary) string {
	return fmt.Sprintf("No successful samples: %d of %d requests failed", s.Errors, s.Total)
}

// WriteSummary writes the statistics block in the given format. A summary
// without samples is reported as a "no data" outcome, never as an error.
func WriteSummary(w io.Writer, s stresstest.Summary, format string, color bool) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, SummaryText(s, color))
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(newSummaryDoc(s), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode summary as JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newSummaryDoc(s)); err != nil {
			return fmt.Errorf("failed to encode summary as YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func newSummaryDoc(s stresstest.Summary) summaryDoc {
	doc := summaryDoc{Summary: s}
	if !s.HasData() {
		doc.NoData = true
		doc.Message = NoDataMessage(s)
	}
	return doc
}

// SummaryText renders the text statistics block
func SummaryText(s stresstest.Summary, color bool) string {
	var b strings.Builder

	render := func(style lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return style.Render(text)
	}
	line := func(label, value string) {
		b.WriteString(render(styleLabel, label+": "))
		b.WriteString(render(styleValue, value))
		b.WriteString("\n")
	}

	b.WriteString(render(styleTitle, fmt.Sprintf("Requests: %d ok, %d failed, %d total", s.Successes, s.Errors, s.Total)))
	b.WriteString("\n")

	if !s.HasData() {
		b.WriteString(render(styleError, NoDataMessage(s)))
		b.WriteString("\n")
	} else {
		line("Average Response Time", fmt.Sprintf("%.2f ms", s.Mean))
		line("Min Response Time", fmt.Sprintf("%.2f ms", s.Min))
		line("Max Response Time", fmt.Sprintf("%.2f ms", s.Max))
		line("50th Percentile", fmt.Sprintf("%.2f ms", s.P50))
		line("95th Percentile", fmt.Sprintf("%.2f ms", s.P95))
		line("99th Percentile", fmt.Sprintf("%.2f ms", s.P99))
	}

	rate := fmt.Sprintf("%.2f%%", s.ErrorRate)
	b.WriteString(render(styleLabel, "Error Rate: "))
	b.WriteString(render(errorRateStyle(s.ErrorRate), rate))
	b.WriteString("\n")

	return b.String()
}

func errorRateStyle(rate float64) lipgloss.Style {
	switch {
	case rate == 0:
		return styleSuccess
	case rate < 5:
		return styleWarning
	default:
		return styleError
	}
}

// IsNoData reports whether err means the run had no successful sample
func IsNoData(err error) bool {
	return errors.Is(err, stresstest.ErrNoSamples)
}
