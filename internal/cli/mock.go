package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/studiowebux/loadprobe/internal/mock"
)

// MockOptions contains options for the local target server
type MockOptions struct {
	ConfigPath string // Route file; the flags below are ignored when set
	Host       string
	Port       int
	Path       string
	Status     int
	DelayMs    int
	JitterMs   int
	DropRate   float64
	Cookie     string // Require this cookie, answering 401 without it

	Logger *zap.Logger
	Stdout io.Writer
}

// MockConfig resolves the server configuration from a file or the options
func MockConfig(opts MockOptions) (*mock.Config, error) {
	if opts.ConfigPath != "" {
		cfg, err := mock.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if opts.Host != "" {
			cfg.Host = opts.Host
		}
		return cfg, nil
	}

	cfg := mock.DefaultConfig(opts.Path)
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	cfg.Port = opts.Port

	route := &cfg.Routes[0]
	if opts.Status != 0 {
		route.Status = opts.Status
	}
	route.Delay = opts.DelayMs
	route.Jitter = opts.JitterMs
	route.DropRate = opts.DropRate
	route.RequireCookie = opts.Cookie

	if err := mock.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid mock options: %w", err)
	}
	return cfg, nil
}

// RunMock serves the mock target until ctx ends or the process is signalled
func RunMock(ctx context.Context, opts MockOptions) error {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	cfg, err := MockConfig(opts)
	if err != nil {
		return err
	}

	server := mock.NewServer(cfg, opts.Logger)
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintf(opts.Stdout, "Mock target listening on %s\n", server.Address())
	for _, route := range cfg.Routes {
		fmt.Fprintf(opts.Stdout, "  %s %s -> %d (delay %dms, jitter %dms, drop %.0f%%)\n",
			route.Method, route.Path, statusOrDefault(route.Status), route.Delay, route.Jitter, route.DropRate*100)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := server.Stop(); err != nil {
		return fmt.Errorf("failed to stop mock server: %w", err)
	}

	fmt.Fprintf(opts.Stdout, "Served %d requests (%d dropped)\n", server.Requests(), server.Dropped())
	return nil
}

// WriteMockConfig writes the configuration the options describe to path,
// as a starting point for a route file
func WriteMockConfig(opts MockOptions, path string) error {
	opts.ConfigPath = ""
	cfg, err := MockConfig(opts)
	if err != nil {
		return err
	}
	return mock.SaveConfig(cfg, path)
}

func statusOrDefault(status int) int {
	if status == 0 {
		return 200
	}
	return status
}
