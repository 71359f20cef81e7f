package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/loadprobe/internal/stresstest"
)

func summarize(t *testing.T, samples []float64, errorCount, total int) stresstest.Summary {
	t.Helper()
	s, err := stresstest.Summarize(samples, errorCount, total)
	if len(samples) > 0 {
		require.NoError(t, err)
	}
	return s
}

func TestWriteSummary_Text(t *testing.T) {
	var buf bytes.Buffer
	s := summarize(t, []float64{100, 200, 300}, 0, 3)

	require.NoError(t, WriteSummary(&buf, s, FormatText, false))

	out := buf.String()
	assert.Contains(t, out, "Requests: 3 ok, 0 failed, 3 total")
	assert.Contains(t, out, "Average Response Time: 200.00 ms")
	assert.Contains(t, out, "Min Response Time: 100.00 ms")
	assert.Contains(t, out, "Max Response Time: 300.00 ms")
	assert.Contains(t, out, "95th Percentile: 290.00 ms")
	assert.Contains(t, out, "99th Percentile: 298.00 ms")
	assert.Contains(t, out, "Error Rate: 0.00%")
}

func TestWriteSummary_ErrorRate(t *testing.T) {
	samples := make([]float64, 93)
	for i := range samples {
		samples[i] = 50
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summarize(t, samples, 7, 100), FormatText, false))

	assert.Contains(t, buf.String(), "Error Rate: 7.00%")
}

func TestWriteSummary_NoData(t *testing.T) {
	s := summarize(t, nil, 5, 5)

	for _, format := range []string{FormatText, FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, s, format, false))
			assert.Contains(t, buf.String(), "No successful samples: 5 of 5 requests failed")
			assert.NotContains(t, buf.String(), "Average Response Time")
		})
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s, FormatText, false))
	assert.Contains(t, buf.String(), "Error Rate: 100.00%")
}

func TestWriteSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summarize(t, []float64{100, 200, 300}, 1, 4), FormatJSON, false))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, 200.0, doc["meanMs"])
	assert.Equal(t, 25.0, doc["errorRatePct"])
	assert.Equal(t, 3.0, doc["successes"])
	assert.Equal(t, false, doc["noData"])
	assert.NotContains(t, doc, "Sorted")
	assert.NotContains(t, doc, "message")
}

func TestWriteSummary_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summarize(t, []float64{100, 200, 300}, 0, 3), FormatYAML, false))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, 200, doc["meanMs"])
	assert.Equal(t, 3, doc["total"])
	assert.Equal(t, false, doc["noData"])
	assert.NotContains(t, doc, "sorted")
}

func TestWriteSummary_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteSummary(&buf, stresstest.Summary{}, "xml", false))
}

func TestNewLatencyChart_NoData(t *testing.T) {
	_, err := NewLatencyChart(summarize(t, nil, 3, 3), "title")
	assert.True(t, IsNoData(err))
}

func TestNewLatencyChart_ReferenceLines(t *testing.T) {
	chart, err := NewLatencyChart(summarize(t, []float64{100, 200, 300}, 0, 3), "Probe")
	require.NoError(t, err)

	require.Len(t, chart.Refs, 5)
	assert.Equal(t, 200.0, chart.Refs[0].Value)
	assert.Contains(t, chart.Refs[1].Label, "95th Percentile")
	assert.Contains(t, chart.Refs[2].Label, "99th Percentile")
	assert.Equal(t, 100.0, chart.Refs[3].Value)
	assert.Equal(t, 300.0, chart.Refs[4].Value)
	assert.Equal(t, []float64{100, 200, 300}, chart.Series)
	assert.Equal(t, "Error Rate: 0.00%", chart.Note)
}

func TestChart_Render(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64((i + 1) * 10)
	}
	chart, err := NewLatencyChart(summarize(t, samples, 7, 107), "Performance Test")
	require.NoError(t, err)

	out := chart.Render(80, 30, false)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Len(t, lines, 30)
	for i, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 80, "line %d too wide: %q", i, line)
	}

	assert.Contains(t, lines[0], "Performance Test")
	assert.Equal(t, "Response Time (ms)", lines[1])
	// asciigraph drops decimals above 100 and marks the first value of
	// the max reference line on the axis
	assert.True(t, strings.HasPrefix(lines[2], " 1000 ┼"), lines[2])
	assert.True(t, strings.HasPrefix(lines[18], "   10 ┼"), lines[18])
	assert.True(t, strings.HasPrefix(lines[19], "      └─"), lines[19])
	assert.Equal(t, 7, strings.Index(lines[20], "0"), "first tick sits right of the axis: %q", lines[20])
	assert.True(t, strings.HasSuffix(lines[20], "99"), lines[20])
	assert.Contains(t, lines[21], "Request Index")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Average Response Time (505.00 ms)")
	assert.Contains(t, out, "95th Percentile (950.50 ms)")
	assert.Contains(t, out, "99th Percentile (990.10 ms)")
	assert.Contains(t, out, "Min Response Time (10.00 ms)")
	assert.Contains(t, out, "Max Response Time (1000.00 ms)")
	assert.Equal(t, "Error Rate: 6.54%", lines[len(lines)-1])
}

func TestChart_RenderEdgeCases(t *testing.T) {
	single, err := NewLatencyChart(summarize(t, []float64{42}, 0, 1), "single")
	require.NoError(t, err)
	assert.Contains(t, single.Render(60, 20, false), "42.00")

	flat, err := NewLatencyChart(summarize(t, []float64{5, 5, 5, 5}, 0, 4), "flat")
	require.NoError(t, err)
	assert.NotPanics(t, func() { flat.Render(60, 20, false) })

	tiny, err := NewLatencyChart(summarize(t, []float64{1, 2, 3}, 0, 3), "tiny")
	require.NoError(t, err)
	assert.NotPanics(t, func() { tiny.Render(3, 2, true) })

	dense := make([]float64, 5000)
	for i := range dense {
		dense[i] = float64(i % 97)
	}
	denseChart, err := NewLatencyChart(summarize(t, dense, 0, 5000), "dense")
	require.NoError(t, err)
	assert.NotPanics(t, func() { denseChart.Render(40, 15, false) })
}

func TestChart_RenderColorAndDashes(t *testing.T) {
	chart, err := NewLatencyChart(summarize(t, []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}, 0, 9), "colors")
	require.NoError(t, err)

	plain := chart.Render(60, 25, false)
	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, plain, "─╴ ╶─", "reference lines are dashed")

	colored := chart.Render(60, 25, true)
	assert.Contains(t, colored, asciigraph.Blue.String(), "series color")
	assert.Contains(t, colored, asciigraph.Green.String(), "mean line color")
	assert.Contains(t, colored, asciigraph.Brown.String(), "max line color")
}

func TestChart_RenderFitsWidth(t *testing.T) {
	for _, samples := range [][]float64{
		{0.0012, 0.0034, 0.0051},
		{1.5, 2.5, 3.5},
		{12000, 15000, 31000},
	} {
		chart, err := NewLatencyChart(summarize(t, samples, 0, len(samples)), "width")
		require.NoError(t, err)
		for i, line := range strings.Split(chart.Render(70, 25, false), "\n") {
			assert.LessOrEqual(t, utf8.RuneCountInString(line), 70, "samples %v line %d: %q", samples, i, line)
		}
	}
}

func TestFit(t *testing.T) {
	assert.Equal(t, []float64{0, 5, 10}, fit([]float64{0, 10}, 3))
	assert.Equal(t, []float64{7, 7, 7, 7}, fit([]float64{7}, 4))
	assert.Equal(t, []float64{0, 4}, fit([]float64{0, 1, 2, 3, 4}, 2))
}

func TestChart_XTicks(t *testing.T) {
	chart := &Chart{Series: make([]float64, 101)}
	ticks := chart.xTicks(60)

	assert.True(t, strings.HasPrefix(ticks, "0"))
	assert.True(t, strings.HasSuffix(ticks, "100"))
	assert.Contains(t, ticks, "50")
}
