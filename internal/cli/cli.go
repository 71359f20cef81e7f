package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/studiowebux/loadprobe/internal/config"
	"github.com/studiowebux/loadprobe/internal/report"
	"github.com/studiowebux/loadprobe/internal/stresstest"
	"github.com/studiowebux/loadprobe/internal/tui"
)

// Size of the chart when printed instead of shown in a window
const (
	PrintChartWidth  = 100
	PrintChartHeight = 35
)

// RunOptions contains options for a probe run
type RunOptions struct {
	Settings *config.Settings
	Logger   *zap.Logger
	Stdout   io.Writer // Progress, statistics and printed chart (default: os.Stdout)

	// Overrides, for tests
	HTTPClient *http.Client
	IsTerminal func() bool
	ShowChart  func(chart *report.Chart, summary string, color bool) error
}

// Run executes the probe and reports the outcome. A run whose every
// request failed is reported, not returned as an error; only setup
// problems are.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Settings == nil {
		return fmt.Errorf("settings are required")
	}
	if err := opts.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	opts = withDefaults(opts)
	settings := opts.Settings
	out := opts.Stdout

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	execOpts := []stresstest.Option{
		stresstest.WithObserver(stresstest.NewProgressPrinter(out)),
		stresstest.WithLogger(opts.Logger),
	}
	if opts.HTTPClient != nil {
		execOpts = append(execOpts, stresstest.WithHTTPClient(opts.HTTPClient))
	}

	executor, err := stresstest.NewExecutor(&stresstest.ExecutionConfig{
		Target: settings.Target(),
		Config: settings.RunConfig(),
	}, execOpts...)
	if err != nil {
		return err
	}

	result, err := executor.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if result.Interrupted {
		fmt.Fprintf(out, "\nInterrupted after %d of %d requests\n", result.Dispatched, result.Requested)
	}

	summary, err := result.Summarize()
	noData := report.IsNoData(err)
	if err != nil && !noData {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	opts.Logger.Info("run complete",
		zap.Int("dispatched", result.Dispatched),
		zap.Int("errors", result.Errors),
		zap.Int("waves", result.Waves),
		zap.Int("peakInFlight", result.PeakInFlight),
		zap.Duration("duration", result.Duration()),
	)

	terminal := opts.IsTerminal()
	color := terminal && !settings.NoColor

	fmt.Fprintln(out)
	if err := report.WriteSummary(out, summary, settings.Output, color); err != nil {
		return err
	}

	if noData {
		// Nothing to plot
		return nil
	}

	return display(opts, summary, terminal, color)
}

// display shows the latency chart according to the display mode
func display(opts RunOptions, summary stresstest.Summary, terminal, color bool) error {
	mode := resolveDisplay(opts.Settings.Display, terminal)
	if mode == config.DisplayNone {
		return nil
	}

	chart, err := report.NewLatencyChart(summary, opts.Settings.Title)
	if err != nil {
		return fmt.Errorf("failed to build chart: %w", err)
	}

	if mode == config.DisplayWindow {
		err := opts.ShowChart(chart, report.SummaryText(summary, false), color)
		if err == nil {
			return nil
		}
		// No usable terminal: fall back to the printed chart
		opts.Logger.Warn("chart window unavailable, printing chart", zap.Error(err))
	}

	fmt.Fprintln(opts.Stdout)
	_, err = io.WriteString(opts.Stdout, chart.Render(PrintChartWidth, PrintChartHeight, color))
	return err
}

// resolveDisplay maps "auto" to a window on a terminal and to a printed
// chart otherwise
func resolveDisplay(mode string, terminal bool) string {
	if mode != config.DisplayAuto && mode != "" {
		return mode
	}
	if terminal {
		return config.DisplayWindow
	}
	return config.DisplayPrint
}

func withDefaults(opts RunOptions) RunOptions {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = stdoutIsTerminal
	}
	if opts.ShowChart == nil {
		opts.ShowChart = tui.ShowChart
	}
	return opts
}

// stdoutIsTerminal checks if stdout is a terminal (not piped)
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
