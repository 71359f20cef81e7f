package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"

	"github.com/studiowebux/loadprobe/internal/stresstest"
)

const (
	minPlotWidth  = 10
	minPlotHeight = 5
	xTickCount    = 5

	// Reference lines are drawn for dashPeriod/2 columns, then skipped
	// for as many
	dashPeriod = 4
)

// RefLine is a horizontal reference line drawn across the plot
type RefLine struct {
	Label string
	Value float64
	Color asciigraph.AnsiColor
}

// Chart is a line chart of one series with horizontal reference lines
type Chart struct {
	Title       string
	XLabel      string
	YLabel      string
	SeriesLabel string
	SeriesColor asciigraph.AnsiColor
	Series      []float64
	Refs        []RefLine
	Note        string
}

// NewLatencyChart builds the latency chart of a summary: sorted samples
// against their index, with mean, p95, p99, min and max reference lines
// and the error rate as a note
func NewLatencyChart(s stresstest.Summary, title string) (*Chart, error) {
	if !s.HasData() {
		return nil, stresstest.ErrNoSamples
	}

	return &Chart{
		Title:       title,
		XLabel:      "Request Index",
		YLabel:      "Response Time (ms)",
		SeriesLabel: "Response Time (ms)",
		SeriesColor: asciigraph.Blue,
		Series:      s.Sorted,
		Refs: []RefLine{
			{Label: fmt.Sprintf("Average Response Time (%.2f ms)", s.Mean), Value: s.Mean, Color: asciigraph.Green},
			{Label: fmt.Sprintf("95th Percentile (%.2f ms)", s.P95), Value: s.P95, Color: asciigraph.DarkOrange},
			{Label: fmt.Sprintf("99th Percentile (%.2f ms)", s.P99), Value: s.P99, Color: asciigraph.Red},
			{Label: fmt.Sprintf("Min Response Time (%.2f ms)", s.Min), Value: s.Min, Color: asciigraph.Purple},
			{Label: fmt.Sprintf("Max Response Time (%.2f ms)", s.Max), Value: s.Max, Color: asciigraph.Brown},
		},
		Note: fmt.Sprintf("Error Rate: %.2f%%", s.ErrorRate),
	}, nil
}

// Render draws the chart into a block of about width x height cells.
// The plot body comes from asciigraph; the x axis, its tick labels and
// the vertical legend are added around it.
func (c *Chart) Render(width, height int, color bool) string {
	// title, y label, x axis, x ticks, x label, blank, legend, note
	overhead := 6 + 1 + len(c.Refs)
	if c.Note != "" {
		overhead++
	}
	plotH := max(height-overhead, minPlotHeight)

	lo, hi := c.bounds()
	plotW := max(width-c.labelWidth(lo, hi), minPlotWidth)

	body := c.plot(plotW, plotH, lo, hi, color)
	axisCol := axisColumn(body)
	fullW := axisCol + 1 + plotW

	var b strings.Builder
	b.WriteString(center(c.Title, fullW))
	b.WriteString("\n")
	b.WriteString(truncate(c.YLabel, fullW))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")

	b.WriteString(strings.Repeat(" ", axisCol))
	b.WriteString("└")
	b.WriteString(strings.Repeat("─", plotW))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", axisCol+1))
	b.WriteString(c.xTicks(plotW))
	b.WriteString("\n")
	b.WriteString(center(c.XLabel, fullW))
	b.WriteString("\n\n")

	paint := func(ac asciigraph.AnsiColor, text string) string {
		if !color {
			return text
		}
		return ac.String() + text + asciigraph.Default.String()
	}

	b.WriteString(paint(c.seriesColor(), "────"))
	b.WriteString(" ")
	b.WriteString(truncate(c.SeriesLabel, fullW-5))
	b.WriteString("\n")
	for _, ref := range c.Refs {
		b.WriteString(paint(ref.Color, "─╴ ╶"))
		b.WriteString(" ")
		b.WriteString(truncate(ref.Label, fullW-5))
		b.WriteString("\n")
	}

	if c.Note != "" {
		b.WriteString(truncate(c.Note, fullW))
		b.WriteString("\n")
	}

	return b.String()
}

// plot renders the series and the dashed reference lines with asciigraph.
// The series goes last so it is drawn over the reference lines.
func (c *Chart) plot(plotW, plotH int, lo, hi float64, color bool) string {
	data := make([][]float64, 0, len(c.Refs)+1)
	colors := make([]asciigraph.AnsiColor, 0, len(c.Refs)+1)

	// n points span n-1 columns
	points := plotW + 1
	for _, ref := range c.Refs {
		data = append(data, dashed(ref.Value, points))
		colors = append(colors, ref.Color)
	}
	series := c.Series
	if len(series) == 0 {
		series = []float64{math.NaN()}
	}
	data = append(data, fit(series, points))
	colors = append(colors, c.seriesColor())

	opts := []asciigraph.Option{
		asciigraph.Height(plotH - 1),
		asciigraph.LowerBound(lo),
		asciigraph.UpperBound(hi),
	}
	if color {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}

	return asciigraph.PlotMany(data, opts...)
}

func (c *Chart) seriesColor() asciigraph.AnsiColor {
	if c.SeriesColor == asciigraph.Default {
		return asciigraph.Blue
	}
	return c.SeriesColor
}

// bounds returns the y range covering the series and every reference line
func (c *Chart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range c.Series {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	for _, ref := range c.Refs {
		lo, hi = math.Min(lo, ref.Value), math.Max(hi, ref.Value)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi-lo < 1e-9 {
		// Flat data still needs a visible range
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// labelWidth returns the columns asciigraph spends on y labels and the
// axis, using the same precision rule it applies to its labels
func (c *Chart) labelWidth(lo, hi float64) int {
	precision := 2
	logMax := math.Log10(math.Max(math.Abs(lo), math.Abs(hi)))
	if lo == 0 && hi == 0 {
		logMax = -1
	}
	switch {
	case logMax < 0 && math.Mod(logMax, 1) != 0:
		precision += int(math.Abs(logMax))
	case logMax < 0:
		precision += int(math.Abs(logMax) - 1)
	case logMax > 2:
		precision = 0
	}
	n := max(len(fmt.Sprintf("%.*f", precision, lo)), len(fmt.Sprintf("%.*f", precision, hi)))
	return n + 3
}

// fit stretches or squeezes a series to exactly n points by linear
// interpolation, so every series of the plot shares one x scale
func fit(series []float64, n int) []float64 {
	out := make([]float64, n)
	if len(series) == 1 {
		for i := range out {
			out[i] = series[0]
		}
		return out
	}
	step := float64(len(series)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		j := min(int(pos), len(series)-2)
		out[i] = series[j] + (series[j+1]-series[j])*(pos-float64(j))
	}
	return out
}

// dashed returns a constant series with NaN gaps, which asciigraph
// leaves blank
func dashed(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%dashPeriod < dashPeriod/2 {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// axisColumn returns the display column of the y axis in a plot body
func axisColumn(body string) int {
	first, _, _ := strings.Cut(body, "\n")
	idx := strings.IndexAny(first, "┤┼")
	if idx < 0 {
		return 0
	}
	return runewidth.StringWidth(first[:idx])
}

// xTicks returns the tick label line under the x axis
func (c *Chart) xTicks(plotW int) string {
	n := len(c.Series)
	line := []rune(strings.Repeat(" ", plotW))
	if n == 0 {
		return string(line)
	}

	nextFree := 0
	for k := 0; k < xTickCount; k++ {
		idx := k * (n - 1) / (xTickCount - 1)
		if k > 0 && idx == 0 {
			continue
		}
		label := []rune(fmt.Sprintf("%d", idx))
		start := columnFor(idx, n, plotW)
		if len(label) > plotW {
			break
		}
		if start+len(label) > plotW {
			start = plotW - len(label)
		}
		if start < nextFree {
			continue
		}
		copy(line[start:], label)
		nextFree = start + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}

// columnFor maps a series index to a plot column
func columnFor(i, n, plotW int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(plotW-1) / float64(n-1)))
}

func center(s string, width int) string {
	s = truncate(s, width)
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
