package mock

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadConfig loads a mock configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{Logging: true}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	// Validate config
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// ValidateConfig validates the mock configuration
func ValidateConfig(config *Config) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	if len(config.Routes) == 0 {
		return fmt.Errorf("no routes defined")
	}

	for i, route := range config.Routes {
		if route.Method == "" {
			return fmt.Errorf("route %d: method is required", i)
		}
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		switch route.PathType {
		case "", PathExact, PathPrefix:
		case PathRegex:
			if _, err := regexp.Compile(route.Path); err != nil {
				return fmt.Errorf("route %d: invalid path regex: %w", i, err)
			}
		default:
			return fmt.Errorf("route %d: pathType must be 'exact', 'prefix', or 'regex'", i)
		}
		if route.Status != 0 && http.StatusText(route.Status) == "" {
			return fmt.Errorf("route %d: unknown status code %d", i, route.Status)
		}
		if route.Delay < 0 || route.Jitter < 0 {
			return fmt.Errorf("route %d: delay and jitter must not be negative", i)
		}
		if route.DropRate < 0 || route.DropRate > 1 {
			return fmt.Errorf("route %d: dropRate must be between 0 and 1", i)
		}
	}

	return nil
}

// SaveConfig saves a mock configuration to a file
func SaveConfig(config *Config, path string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	case ".json", ".jsonc":
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
