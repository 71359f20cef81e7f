package stresstest

import (
	"fmt"
	"time"

	"github.com/studiowebux/loadprobe/internal/types"
)

const (
	// MaxConcurrentRequests caps the wave size
	MaxConcurrentRequests = 1000
	// MaxTotalRequests caps a single run
	MaxTotalRequests = 1000000
)

// Config represents a probe run configuration
type Config struct {
	ConcurrentRequests int  // Wave size
	TotalRequests      int  // Attempts dispatched over the whole run
	RequestTimeoutSec  int  // Per-request timeout, 0 leaves the client default (none)
	FailOnHTTPError    bool // Count status >= 400 as a failure
}

// ExecutionConfig contains the runtime configuration for executing a run
type ExecutionConfig struct {
	Target *types.Target
	Config *Config
}

// Validate validates the run configuration
func (c *Config) Validate() error {
	if c.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}
	if c.ConcurrentRequests > MaxConcurrentRequests {
		return fmt.Errorf("concurrent requests cannot exceed %d", MaxConcurrentRequests)
	}
	if c.TotalRequests <= 0 {
		return fmt.Errorf("total requests must be greater than 0")
	}
	if c.TotalRequests > MaxTotalRequests {
		return fmt.Errorf("total requests cannot exceed %d", MaxTotalRequests)
	}
	if c.RequestTimeoutSec < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	return nil
}

// GetRequestTimeout returns the request timeout as time.Duration
func (c *Config) GetRequestTimeout() time.Duration {
	if c.RequestTimeoutSec == 0 {
		return 0 // No timeout
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Waves returns the number of waves the run is split into
func (c *Config) Waves() int {
	if c.ConcurrentRequests <= 0 {
		return 0
	}
	return (c.TotalRequests + c.ConcurrentRequests - 1) / c.ConcurrentRequests
}

// Validate checks that the execution config is complete and valid
func (e *ExecutionConfig) Validate() error {
	if e.Config == nil {
		return fmt.Errorf("run config is required")
	}
	if e.Target == nil || e.Target.URL == "" {
		return fmt.Errorf("target URL is required")
	}
	return e.Config.Validate()
}
