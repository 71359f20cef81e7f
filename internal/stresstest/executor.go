package stresstest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/loadprobe/internal/types"
)

const (
	// HTTP client configuration timeouts
	TCPDialTimeout        = 30 * time.Second
	TCPKeepAliveInterval  = 30 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	IdleConnTimeout       = 90 * time.Second
	ExpectContinueTimeout = 1 * time.Second
)

// ErrHTTPStatus marks an attempt failed only because of its status code
var ErrHTTPStatus = errors.New("http error status")

// Result holds everything a run produced
type Result struct {
	Requested    int       // Configured total
	Dispatched   int       // Attempts actually started
	Samples      []float64 // Successful latencies in ms, completion order
	Errors       int
	Attempts     []Attempt // Every attempt, completion order
	Waves        int
	PeakInFlight int
	Interrupted  bool
	StartedAt    time.Time
	CompletedAt  time.Time
}

// Successes returns the number of successful attempts
func (r *Result) Successes() int {
	return len(r.Samples)
}

// Duration returns the wall-clock time of the run
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Summarize computes the summary statistics of the run
func (r *Result) Summarize() (Summary, error) {
	return Summarize(r.Samples, r.Errors, r.Dispatched)
}

// Option configures an Executor
type Option func(*Executor)

// WithObserver registers an observer notified after each attempt
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHTTPClient replaces the executor's own client. The caller keeps
// ownership and its idle connections are left alone after the run.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		if c != nil {
			e.httpClient = c
			e.ownsClient = false
		}
	}
}

// Executor dispatches a run in waves of bounded concurrency
type Executor struct {
	config     *ExecutionConfig
	observer   Observer
	logger     *zap.Logger
	httpClient *http.Client // Shared by every attempt of the run
	ownsClient bool
	inFlight   atomic.Int32
	peak       atomic.Int32
}

// NewExecutor creates a new executor
func NewExecutor(config *ExecutionConfig, opts ...Option) (*Executor, error) {
	if config == nil {
		return nil, fmt.Errorf("invalid config: execution config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Executor{
		config:     config,
		logger:     zap.NewNop(),
		ownsClient: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.httpClient == nil {
		httpClient, err := buildProbeHTTPClient(config.Config, config.Target.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build HTTP client: %w", err)
		}
		e.httpClient = httpClient
	}

	return e, nil
}

// Run dispatches every attempt and returns once all of them resolved.
// Cancelling ctx fails the in-flight attempts and stops further waves;
// the partial result is still returned.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	cfg := e.config.Config
	if e.ownsClient {
		defer e.httpClient.CloseIdleConnections()
	}
	e.inFlight.Store(0)
	e.peak.Store(0)

	result := &Result{
		Requested: cfg.TotalRequests,
		Samples:   make([]float64, 0, cfg.TotalRequests),
		Attempts:  make([]Attempt, 0, cfg.TotalRequests),
		StartedAt: time.Now(),
	}

	e.logger.Info("starting run",
		zap.String("url", e.config.Target.URL),
		zap.Int("requests", cfg.TotalRequests),
		zap.Int("concurrency", cfg.ConcurrentRequests),
		zap.Int("waves", cfg.Waves()),
		zap.Bool("credential", e.config.Target.HasCredential()),
	)

	for start := 0; start < cfg.TotalRequests; start += cfg.ConcurrentRequests {
		if ctx.Err() != nil {
			break
		}
		end := min(start+cfg.ConcurrentRequests, cfg.TotalRequests)
		e.runWave(ctx, start, end, result)
	}

	result.CompletedAt = time.Now()
	result.PeakInFlight = int(e.peak.Load())
	if ctx.Err() != nil && result.Dispatched < result.Requested {
		result.Interrupted = true
		e.logger.Warn("run interrupted",
			zap.Int("dispatched", result.Dispatched),
			zap.Int("requested", result.Requested),
			zap.Error(ctx.Err()),
		)
	}

	return result, nil
}

// runWave launches attempts [start,end) together and folds their outcomes
// into result once every one of them resolved
func (e *Executor) runWave(ctx context.Context, start, end int, result *Result) {
	done := make(chan Attempt, end-start)

	var g errgroup.Group
	for i := start; i < end; i++ {
		g.Go(func() error {
			a := e.attempt(ctx, i)
			if e.observer != nil {
				e.observer.AttemptDone(a)
			}
			done <- a
			return nil
		})
	}
	// Attempts report failures in their value, never as an error
	_ = g.Wait()
	close(done)

	failed := 0
	for a := range done {
		result.Attempts = append(result.Attempts, a)
		if a.OK() {
			result.Samples = append(result.Samples, a.ElapsedMs())
		} else {
			result.Errors++
			failed++
		}
	}
	result.Dispatched += end - start
	result.Waves++

	e.logger.Debug("wave complete",
		zap.Int("wave", result.Waves),
		zap.Int("first", start),
		zap.Int("size", end-start),
		zap.Int("failed", failed),
	)
}

// attempt performs one GET against the target
func (e *Executor) attempt(ctx context.Context, index int) Attempt {
	a := e.track(index)
	defer e.inFlight.Add(-1)

	target := e.config.Target
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		a.Start = time.Now()
		a.Err = fmt.Errorf("failed to create request: %w", err)
		return a
	}
	target.Apply(req)

	a.Start = time.Now()
	resp, err := e.httpClient.Do(req)
	// Latency stops at the response headers
	a.Elapsed = time.Since(a.Start)
	if err != nil {
		a.Err = err
		return a
	}
	a.StatusCode = resp.StatusCode
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if e.config.Config.FailOnHTTPError && resp.StatusCode >= http.StatusBadRequest {
		a.Err = fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return a
}

// track counts the attempt as in flight and updates the observed peak
func (e *Executor) track(index int) Attempt {
	n := e.inFlight.Add(1)
	for {
		peak := e.peak.Load()
		if n <= peak || e.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return Attempt{Index: index}
}

// buildProbeHTTPClient creates the client shared by all attempts of a run
func buildProbeHTTPClient(config *Config, tlsConfig *types.TLSConfig) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.ConcurrentRequests,
		MaxIdleConnsPerHost: config.ConcurrentRequests,
		IdleConnTimeout:     IdleConnTimeout,
		ForceAttemptHTTP2:   true,

		DialContext: (&net.Dialer{
			Timeout:   TCPDialTimeout,
			KeepAlive: TCPKeepAliveInterval,
		}).DialContext,

		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.GetRequestTimeout(),
		ExpectContinueTimeout: ExpectContinueTimeout,
	}

	if tlsConfig != nil {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Client certificate (mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   config.GetRequestTimeout(),
		Transport: transport,
	}, nil
}
