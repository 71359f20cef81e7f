package mock

import "time"

// Path match types
const (
	PathExact  = "exact"
	PathPrefix = "prefix"
	PathRegex  = "regex"
)

// Default target served when no config file is given
const (
	DefaultHost = "localhost"
	DefaultPort = 8080
	DefaultPath = "/api/v1/products/my-recommendations"
	DefaultBody = `{"items":[]}`
)

// Config represents the mock target configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`       // Server port (default: 8080, 0 picks a free port)
	Host    string  `json:"host" yaml:"host"`       // Server host (default: localhost)
	Routes  []Route `json:"routes" yaml:"routes"`   // Route definitions
	Logging bool    `json:"logging" yaml:"logging"` // Log every request at debug level
}

// Route represents one simulated endpoint
type Route struct {
	Name          string            `json:"name,omitempty" yaml:"name,omitempty"`                   // Route description
	Method        string            `json:"method" yaml:"method"`                                   // HTTP method (GET, POST, etc.)
	Path          string            `json:"path" yaml:"path"`                                       // URL path pattern
	PathType      string            `json:"pathType,omitempty" yaml:"pathType,omitempty"`           // exact, prefix, regex (default: exact)
	Status        int               `json:"status" yaml:"status"`                                   // HTTP status code
	Headers       map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`             // Response headers
	Body          string            `json:"body,omitempty" yaml:"body,omitempty"`                   // Response body
	Delay         int               `json:"delay,omitempty" yaml:"delay,omitempty"`                 // Response delay in milliseconds
	Jitter        int               `json:"jitter,omitempty" yaml:"jitter,omitempty"`               // Extra random delay, 0..jitter milliseconds
	DropRate      float64           `json:"dropRate,omitempty" yaml:"dropRate,omitempty"`           // Fraction of requests whose connection is closed unanswered
	RequireCookie string            `json:"requireCookie,omitempty" yaml:"requireCookie,omitempty"` // Answer 401 when this cookie is missing
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time     `json:"timestamp"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	MatchedRule string        `json:"matchedRule"`
	Status      int           `json:"status"`
	Dropped     bool          `json:"dropped"`
	Duration    time.Duration `json:"duration"`
}

// DefaultConfig returns a config with a single GET route on path
func DefaultConfig(path string) *Config {
	if path == "" {
		path = DefaultPath
	}
	return &Config{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Logging: true,
		Routes: []Route{{
			Name:    "target",
			Method:  "GET",
			Path:    path,
			Status:  200,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    DefaultBody,
		}},
	}
}
