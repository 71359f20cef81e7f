package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables Load reads so the host environment
// cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{TokenEnv, "LOADPROBE_TOKEN", "LOADPROBE_URL", "LOADPROBE_REQUESTS", "LOADPROBE_CONCURRENCY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, s.URL)
	assert.Equal(t, DefaultRequests, s.Requests)
	assert.Equal(t, DefaultConcurrency, s.Concurrency)
	assert.Equal(t, "accessToken", s.CookieName)
	assert.Equal(t, 0, s.TimeoutSec)
	assert.Equal(t, OutputText, s.Output)
	assert.Equal(t, DisplayAuto, s.Display)
	assert.Equal(t, DefaultTitle, s.Title)
	assert.Empty(t, s.Token)
	assert.False(t, s.FailOnHTTPError)
	assert.Nil(t, s.Target().TLS)
}

func TestLoad_TokenFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(TokenEnv, "abc123")

	s, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "abc123", s.Token)
	cookie := s.Target().Cookie()
	require.NotNil(t, cookie)
	assert.Equal(t, "accessToken", cookie.Name)
	assert.Equal(t, "abc123", cookie.Value)
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOADPROBE_REQUESTS", "42")
	t.Setenv("LOADPROBE_CONCURRENCY", "6")

	s, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 42, s.Requests)
	assert.Equal(t, 6, s.Concurrency)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "probe.yaml", `
url: https://api.example.com/health
requests: 20
concurrency: 4
timeout: 3
headers:
  X-Trace: probe
tls:
  insecure: true
`)

	s, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/health", s.URL)
	assert.Equal(t, 20, s.Requests)
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, 3, s.TimeoutSec)
	assert.Equal(t, "probe", s.Headers["x-trace"])
	require.NotNil(t, s.Target().TLS)
	assert.True(t, s.Target().TLS.InsecureSkipVerify)
}

func TestLoad_JSONCFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "probe.jsonc", `{
  // local service
  "url": "http://127.0.0.1:9000/ping",
  "requests": 5, /* small smoke run */
  "concurrency": 5,
}`)

	s, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/ping", s.URL)
	assert.Equal(t, 5, s.Requests)
}

func TestLoad_FlagsOverrideFileAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOADPROBE_REQUESTS", "42")
	path := writeFile(t, "probe.yml", "requests: 20\nconcurrency: 4\n")

	fs := newFlags(t, "--requests", "7", "-H", "X-One: 1", "--header", "X-Two=2")

	s, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, 7, s.Requests)
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, "1", s.Headers["X-One"])
	assert.Equal(t, "2", s.Headers["X-Two"])
}

func TestLoad_UnchangedFlagsKeepFileValues(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "probe.json", `{"concurrency": 3}`)

	s, err := Load(path, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Concurrency)
	assert.Equal(t, DefaultRequests, s.Requests)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		file string
		body string
	}{
		{"unsupported extension", "probe.ini", "url=x"},
		{"bad scheme", "probe.yaml", "url: ftp://example.com"},
		{"missing host", "probe.yaml", "url: http://"},
		{"zero requests", "probe.yaml", "requests: 0"},
		{"bad output", "probe.yaml", "output: xml"},
		{"bad display", "probe.yaml", "display: popup"},
		{"bad log level", "probe.yaml", "log-level: chatty"},
		{"half mtls", "probe.yaml", "tls:\n  cert-file: /tmp/cert.pem\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body), nil)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestParseHeader(t *testing.T) {
	name, value, err := ParseHeader("Authorization: Bearer x:y")
	require.NoError(t, err)
	assert.Equal(t, "Authorization", name)
	assert.Equal(t, "Bearer x:y", value)

	_, _, err = ParseHeader("no-separator")
	assert.Error(t, err)

	_, _, err = ParseHeader(": value")
	assert.Error(t, err)
}

func TestSettings_RunConfig(t *testing.T) {
	s := &Settings{Requests: 30, Concurrency: 7, TimeoutSec: 2, FailOnHTTPError: true}
	rc := s.RunConfig()

	assert.Equal(t, 30, rc.TotalRequests)
	assert.Equal(t, 7, rc.ConcurrentRequests)
	assert.Equal(t, 2, rc.RequestTimeoutSec)
	assert.True(t, rc.FailOnHTTPError)
}
