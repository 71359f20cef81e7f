package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/studiowebux/loadprobe/internal/logging"
	"github.com/studiowebux/loadprobe/internal/stresstest"
	"github.com/studiowebux/loadprobe/internal/types"
)

const (
	// EnvPrefix prefixes environment overrides (LOADPROBE_REQUESTS, ...)
	EnvPrefix = "LOADPROBE"
	// TokenEnv is the environment variable carrying the credential
	TokenEnv = "access_token"

	DefaultURL         = "http://localhost:8080/api/v1/products/my-recommendations"
	DefaultRequests    = 100
	DefaultConcurrency = 10
	DefaultTitle       = "Performance Test of Recommendation Endpoint"
)

// Output formats for the statistics block
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Display modes for the chart
const (
	DisplayAuto   = "auto"   // Window on a terminal, printed otherwise
	DisplayWindow = "window" // Interactive window
	DisplayPrint  = "print"  // Static chart on stdout
	DisplayNone   = "none"
)

// Settings is the resolved configuration of a probe run
type Settings struct {
	URL             string            `mapstructure:"url"`
	Token           string            `mapstructure:"token"`
	CookieName      string            `mapstructure:"cookie-name"`
	Requests        int               `mapstructure:"requests"`
	Concurrency     int               `mapstructure:"concurrency"`
	TimeoutSec      int               `mapstructure:"timeout"`
	FailOnHTTPError bool              `mapstructure:"fail-on-http-error"`
	Output          string            `mapstructure:"output"`
	Display         string            `mapstructure:"display"`
	Title           string            `mapstructure:"title"`
	LogLevel        string            `mapstructure:"log-level"`
	NoColor         bool              `mapstructure:"no-color"`
	Headers         map[string]string `mapstructure:"headers"`
	TLS             TLSSettings       `mapstructure:"tls"`
}

// TLSSettings holds client TLS options
type TLSSettings struct {
	CertFile string `mapstructure:"cert-file"`
	KeyFile  string `mapstructure:"key-file"`
	CAFile   string `mapstructure:"ca-file"`
	Insecure bool   `mapstructure:"insecure"`
}

// BindFlags registers the run flags on fs with their defaults
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Config file (.yaml, .yml, .json, .jsonc, .toml)")
	fs.String("url", DefaultURL, "Target endpoint")
	fs.IntP("requests", "n", DefaultRequests, "Total number of requests")
	fs.IntP("concurrency", "w", DefaultConcurrency, "Requests per wave")
	fs.String("cookie-name", types.DefaultCookieName, "Cookie carrying the $"+TokenEnv+" credential")
	fs.Int("timeout", 0, "Per-request timeout in seconds (0 = none)")
	fs.Bool("fail-on-http-error", false, "Count responses with status >= 400 as errors")
	fs.StringP("output", "o", OutputText, "Statistics format (text/json/yaml)")
	fs.String("display", DisplayAuto, "Chart display (auto/window/print/none)")
	fs.String("title", DefaultTitle, "Chart title")
	fs.String("log-level", "warn", "Diagnostics level (debug/info/warn/error)")
	fs.Bool("no-color", false, "Disable colored output")
	fs.StringArrayP("header", "H", []string{}, "Extra header 'Name: value', can be repeated")
	fs.String("cert-file", "", "Client certificate for mTLS")
	fs.String("key-file", "", "Client key for mTLS")
	fs.String("ca-file", "", "CA certificate to verify the target")
	fs.BoolP("insecure", "k", false, "Skip TLS verification")
}

// Load resolves settings from defaults, an optional config file, the
// environment and fs (highest precedence). fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", TokenEnv); err != nil {
		return nil, fmt.Errorf("failed to bind token env: %w", err)
	}

	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	var extraHeaders []string
	if fs != nil {
		if err := bindFlagSet(v, fs); err != nil {
			return nil, err
		}
		if fs.Lookup("header") != nil {
			var err error
			if extraHeaders, err = fs.GetStringArray("header"); err != nil {
				return nil, fmt.Errorf("failed to read header flags: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if s.Headers == nil {
		s.Headers = make(map[string]string)
	}
	for _, raw := range extraHeaders {
		name, value, err := ParseHeader(raw)
		if err != nil {
			return nil, err
		}
		s.Headers[name] = value
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("url", DefaultURL)
	v.SetDefault("token", "")
	v.SetDefault("cookie-name", types.DefaultCookieName)
	v.SetDefault("requests", DefaultRequests)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("timeout", 0)
	v.SetDefault("fail-on-http-error", false)
	v.SetDefault("output", OutputText)
	v.SetDefault("display", DisplayAuto)
	v.SetDefault("title", DefaultTitle)
	v.SetDefault("log-level", "warn")
	v.SetDefault("no-color", false)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("tls.cert-file", "")
	v.SetDefault("tls.key-file", "")
	v.SetDefault("tls.ca-file", "")
	v.SetDefault("tls.insecure", false)
}

// bindFlagSet binds the flags registered by BindFlags that exist on fs
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	keys := map[string]string{
		"url":                "url",
		"requests":           "requests",
		"concurrency":        "concurrency",
		"cookie-name":        "cookie-name",
		"timeout":            "timeout",
		"fail-on-http-error": "fail-on-http-error",
		"output":             "output",
		"display":            "display",
		"title":              "title",
		"log-level":          "log-level",
		"no-color":           "no-color",
		"cert-file":          "tls.cert-file",
		"key-file":           "tls.key-file",
		"ca-file":            "tls.ca-file",
		"insecure":           "tls.insecure",
	}

	for flagName, key := range keys {
		flag := fs.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// readConfigFile loads path into v, stripping comments from .jsonc files
func readConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".json":
		v.SetConfigType("json")
	case ".jsonc":
		data = jsonc.ToJSON(data)
		v.SetConfigType("json")
	case ".toml":
		v.SetConfigType("toml")
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json, .jsonc or .toml)", ext)
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ParseHeader splits "Name: value" (or "Name=value") into its parts
func ParseHeader(raw string) (string, string, error) {
	sep := strings.IndexAny(raw, ":=")
	if sep <= 0 {
		return "", "", fmt.Errorf("invalid header %q (expected 'Name: value')", raw)
	}
	name := strings.TrimSpace(raw[:sep])
	if name == "" {
		return "", "", fmt.Errorf("invalid header %q (empty name)", raw)
	}
	return name, strings.TrimSpace(raw[sep+1:]), nil
}

// Validate checks the settings
func (s *Settings) Validate() error {
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url host is required")
	}
	if err := s.RunConfig().Validate(); err != nil {
		return err
	}

	switch s.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be text, json or yaml, got %q", s.Output)
	}

	switch s.Display {
	case DisplayAuto, DisplayWindow, DisplayPrint, DisplayNone:
	default:
		return fmt.Errorf("display must be auto, window, print or none, got %q", s.Display)
	}

	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if (s.TLS.CertFile == "") != (s.TLS.KeyFile == "") {
		return fmt.Errorf("cert-file and key-file must be set together")
	}
	return nil
}

// Target returns the endpoint description for the executor
func (s *Settings) Target() *types.Target {
	target := &types.Target{
		URL:        s.URL,
		CookieName: s.CookieName,
		Token:      s.Token,
		Headers:    s.Headers,
	}
	if s.TLS != (TLSSettings{}) {
		target.TLS = &types.TLSConfig{
			CertFile:           s.TLS.CertFile,
			KeyFile:            s.TLS.KeyFile,
			CAFile:             s.TLS.CAFile,
			InsecureSkipVerify: s.TLS.Insecure,
		}
	}
	return target
}

// RunConfig returns the executor configuration
func (s *Settings) RunConfig() *stresstest.Config {
	return &stresstest.Config{
		ConcurrentRequests: s.Concurrency,
		TotalRequests:      s.Requests,
		RequestTimeoutSec:  s.TimeoutSec,
		FailOnHTTPError:    s.FailOnHTTPError,
	}
}
