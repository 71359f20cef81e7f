package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studiowebux/loadprobe/internal/cli"
	"github.com/studiowebux/loadprobe/internal/config"
	"github.com/studiowebux/loadprobe/internal/logging"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loadprobe [url]",
	Short: "loadprobe - HTTP GET latency probe",
	Long: `loadprobe sends a fixed number of GET requests to one endpoint in waves of
bounded concurrency, then reports latency statistics and a latency chart.

The access token is read from the access_token environment variable and sent
as the accessToken cookie. Settings can also come from a config file
(--config) or LOADPROBE_* environment variables; flags win over both.

Examples:
  loadprobe                                  # Probe the default endpoint
  loadprobe http://localhost:8080/api/items  # Probe another endpoint
  loadprobe -n 500 -w 50                     # 500 requests, 50 at a time
  loadprobe -o json --display none           # Statistics only, as JSON
  loadprobe -c probe.yaml                    # Load settings from a file
  loadprobe mock --delay 20 --drop-rate 0.05 # Start a local target`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			if err := cmd.Flags().Set("url", args[0]); err != nil {
				return fmt.Errorf("invalid url argument: %w", err)
			}
		}

		configPath, _ := cmd.Flags().GetString("config")
		settings, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := logging.New(settings.LogLevel, os.Stderr)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return cli.Run(cmd.Context(), cli.RunOptions{
			Settings: settings,
			Logger:   logger,
			Stdout:   cmd.OutOrStdout(),
		})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start a local target server",
	Long: `Start a local HTTP target with simulated latency and failures.

Without --config, a single GET route is served on --path. A dropped request
has its connection closed without a response, which the probe counts as an
error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(mockLogLevel, os.Stderr)
		if err != nil {
			return err
		}
		defer logger.Sync()

		opts := mockOptions
		opts.Logger = logger
		opts.Stdout = cmd.OutOrStdout()
		return cli.RunMock(cmd.Context(), opts)
	},
}

var mockInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write a mock route file from the mock flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.WriteMockConfig(mockOptions, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mock config written to %s\n", args[0])
		return nil
	},
}

// Flags for mock
var (
	mockOptions  cli.MockOptions
	mockLogLevel string
)

func init() {
	// Root command flags
	config.BindFlags(rootCmd.Flags())

	// mock flags, shared with mock init
	mockCmd.PersistentFlags().StringVarP(&mockOptions.ConfigPath, "config", "c", "", "Route file (.yaml, .yml, .json, .jsonc)")
	mockCmd.PersistentFlags().StringVar(&mockOptions.Host, "host", "", "Listen host (default: localhost)")
	mockCmd.PersistentFlags().IntVarP(&mockOptions.Port, "port", "p", 8080, "Listen port (0 picks a free port)")
	mockCmd.PersistentFlags().StringVar(&mockOptions.Path, "path", "", "Route path (default: the recommendations endpoint)")
	mockCmd.PersistentFlags().IntVar(&mockOptions.Status, "status", 200, "Response status code")
	mockCmd.PersistentFlags().IntVar(&mockOptions.DelayMs, "delay", 0, "Response delay in milliseconds")
	mockCmd.PersistentFlags().IntVar(&mockOptions.JitterMs, "jitter", 0, "Extra random delay, up to this many milliseconds")
	mockCmd.PersistentFlags().Float64Var(&mockOptions.DropRate, "drop-rate", 0, "Fraction of connections closed without a response (0-1)")
	mockCmd.PersistentFlags().StringVar(&mockOptions.Cookie, "require-cookie", "", "Answer 401 when this cookie is missing")
	mockCmd.Flags().StringVar(&mockLogLevel, "log-level", "info", "Log level (debug/info/warn/error)")

	// Add subcommands
	mockCmd.AddCommand(mockInitCmd)
	rootCmd.AddCommand(mockCmd)
}
