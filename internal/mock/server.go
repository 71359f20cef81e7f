package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// maxLogs bounds the in-memory request log
const maxLogs = 1000

// Server is a local HTTP target with simulated latency and failures
type Server struct {
	config     *Config
	logger     *zap.Logger
	patterns   map[int]*regexp.Regexp
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
	requests   atomic.Int64
	dropped    atomic.Int64

	// Random source for jitter and drops, replaced in tests
	float64Fn func() float64
}

// NewServer creates a new mock server. The config must have passed
// validation (LoadConfig does this).
func NewServer(config *Config, logger *zap.Logger) *Server {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	patterns := make(map[int]*regexp.Regexp)
	for i, route := range config.Routes {
		if route.PathType == PathRegex {
			if re, err := regexp.Compile(route.Path); err == nil {
				patterns[i] = re
			}
		}
	}

	return &Server{
		config:    config,
		logger:    logger,
		patterns:  patterns,
		logs:      make([]RequestLog, 0),
		float64Fn: rand.Float64,
	}
}

// Handler returns the request handler, for use without Start
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("mock server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("mock server listening",
		zap.String("address", s.Address()),
		zap.Int("routes", len(s.config.Routes)))

	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// handleRequest handles incoming HTTP requests
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.requests.Add(1)

	io.Copy(io.Discard, r.Body)
	r.Body.Close()

	entry := RequestLog{
		Timestamp:   start,
		Method:      r.Method,
		Path:        r.URL.Path,
		MatchedRule: "none",
	}
	defer func() {
		entry.Duration = time.Since(start)
		s.logRequest(entry)
	}()

	route, idx := s.findMatchingRoute(r.Method, r.URL.Path)
	if route == nil {
		entry.Status = http.StatusNotFound
		http.Error(w, fmt.Sprintf("Mock server: No route configured for %s %s", r.Method, r.URL.Path), entry.Status)
		return
	}

	entry.MatchedRule = route.Name
	if entry.MatchedRule == "" {
		entry.MatchedRule = fmt.Sprintf("%s %s (#%d)", route.Method, route.Path, idx)
	}

	if !s.wait(r.Context(), route) {
		// Client went away during the delay
		return
	}

	if route.DropRate > 0 && s.float64Fn() < route.DropRate {
		entry.Dropped = true
		s.dropped.Add(1)
		s.drop(w)
		return
	}

	if route.RequireCookie != "" {
		if c, err := r.Cookie(route.RequireCookie); err != nil || c.Value == "" {
			entry.Status = http.StatusUnauthorized
			http.Error(w, fmt.Sprintf("Mock server: missing cookie %s", route.RequireCookie), entry.Status)
			return
		}
	}

	entry.Status = route.Status
	if entry.Status == 0 {
		entry.Status = http.StatusOK
	}

	for key, value := range route.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(entry.Status)
	io.WriteString(w, route.Body)
}

// wait sleeps for the route delay plus jitter, returning false when the
// request context ends first
func (s *Server) wait(ctx context.Context, route *Route) bool {
	delay := time.Duration(route.Delay) * time.Millisecond
	if route.Jitter > 0 {
		delay += time.Duration(s.float64Fn() * float64(route.Jitter) * float64(time.Millisecond))
	}
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// drop closes the connection without writing a response
func (s *Server) drop(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "Mock server: connection cannot be dropped", http.StatusInternalServerError)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		s.logger.Warn("failed to hijack connection", zap.Error(err))
		return
	}
	conn.Close()
}

// findMatchingRoute finds the first route that matches the method and path
func (s *Server) findMatchingRoute(method, path string) (*Route, int) {
	for i := range s.config.Routes {
		route := &s.config.Routes[i]
		if !strings.EqualFold(route.Method, method) {
			continue
		}

		matched := false
		switch route.PathType {
		case "", PathExact:
			matched = route.Path == path
		case PathPrefix:
			matched = strings.HasPrefix(path, route.Path)
		case PathRegex:
			if re := s.patterns[i]; re != nil {
				matched = re.MatchString(path)
			}
		}

		if matched {
			return route, i
		}
	}

	return nil, -1
}

// logRequest adds a request to the log
func (s *Server) logRequest(entry RequestLog) {
	if s.config.Logging {
		s.logger.Debug("request",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.String("rule", entry.MatchedRule),
			zap.Int("status", entry.Status),
			zap.Bool("dropped", entry.Dropped),
			zap.Duration("duration", entry.Duration))
	}

	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, entry)

	// Keep only the most recent entries
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	// Return a copy
	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}

// Requests returns the number of requests received
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Dropped returns the number of connections dropped
func (s *Server) Dropped() int64 {
	return s.dropped.Load()
}

// Address returns the base URL the server is reachable at
func (s *Server) Address() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port)))
}
