package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration
type Config struct {
	Warehouse  WarehouseConfig  `json:"warehouse"  envPrefix:"SALES_ASSISTANT_"`
	Completion CompletionConfig `json:"completion" envPrefix:"SALES_ASSISTANT_"`
	Chart      ChartConfig      `json:"chart"      envPrefix:"SALES_ASSISTANT_"`
	Logging    LoggingConfig    `json:"logging"    envPrefix:"SALES_ASSISTANT_"`
}

// WarehouseConfig represents the query-engine connection configuration.
// Driver "databricks" targets the production SQL warehouse; "duckdb" runs
// against a local database file for offline development.
type WarehouseConfig struct {
	Driver         string `json:"driver"          env:"WAREHOUSE_DRIVER"     envDefault:"databricks"`
	ServerHostname string `json:"server_hostname" env:"DATABRICKS_SERVER_HOSTNAME"`
	HTTPPath       string `json:"http_path"       env:"DATABRICKS_HTTP_PATH"`
	AccessToken    string `json:"access_token"    env:"DATABRICKS_ACCESS_TOKEN"`
	LocalPath      string `json:"local_path"      env:"WAREHOUSE_LOCAL_PATH" envDefault:"~/.local/share/sales-assistant/sales.db"`
	Database       string `json:"database"        env:"WAREHOUSE_DATABASE"   envDefault:"sales"`
	QueryTimeout   string `json:"query_timeout"   env:"WAREHOUSE_QUERY_TIMEOUT" envDefault:"2m"`
}

// CompletionConfig represents the text-completion service configuration
type CompletionConfig struct {
	Endpoint       string `json:"endpoint"        env:"AZURE_OPENAI_ENDPOINT"`
	APIKey         string `json:"api_key"         env:"AZURE_OPENAI_KEY"`
	DeploymentName string `json:"deployment_name" env:"AZURE_OPENAI_DEPLOYMENT_NAME" envDefault:"gpt-4"`
	APIVersion     string `json:"api_version"     env:"AZURE_OPENAI_API_VERSION"     envDefault:"2023-07-01-preview"`
	Timeout        string `json:"timeout"         env:"COMPLETION_TIMEOUT"           envDefault:"60s"`
	MaxTokens      int    `json:"max_tokens"      env:"COMPLETION_MAX_TOKENS"        envDefault:"1000"`
}

// ChartConfig represents chart artifact output configuration
type ChartConfig struct {
	OutputDir string `json:"output_dir" env:"CHART_OUTPUT_DIR" envDefault:"~/.local/share/sales-assistant/charts"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"`   // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`   // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"` // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"   envDefault:"~/.config/sales-assistant/logs/app.log"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := &Config{}

	// Load from config file if it exists
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply environment variable overrides (also sets defaults)
	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "SALES_ASSISTANT_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if flagOverrides != nil {
		applyFlagOverrides(config, flagOverrides)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "driver":
			if str, ok := value.(string); ok && str != "" {
				config.Warehouse.Driver = str
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "chart-out":
			if str, ok := value.(string); ok && str != "" {
				config.Chart.OutputDir = str
			}
		}
	}
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := range s.NumField() {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validDrivers := map[string]bool{"databricks": true, "duckdb": true}
	if !validDrivers[strings.ToLower(config.Warehouse.Driver)] {
		return fmt.Errorf(
			"invalid warehouse driver: %s (must be databricks or duckdb)",
			config.Warehouse.Driver,
		)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{"stdout": true, "stderr": true, "file": true}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	if _, err := time.ParseDuration(config.Warehouse.QueryTimeout); err != nil {
		return fmt.Errorf("invalid warehouse query timeout: %s", config.Warehouse.QueryTimeout)
	}

	if _, err := time.ParseDuration(config.Completion.Timeout); err != nil {
		return fmt.Errorf("invalid completion timeout: %s", config.Completion.Timeout)
	}

	if config.Completion.MaxTokens <= 0 {
		return fmt.Errorf("completion max tokens must be positive: %d", config.Completion.MaxTokens)
	}

	return nil
}

// MissingWarehouseCredentials reports which production warehouse settings are
// absent. An empty result means the databricks driver can attempt to connect.
func (c *Config) MissingWarehouseCredentials() []string {
	if strings.ToLower(c.Warehouse.Driver) != "databricks" {
		return nil
	}

	var missing []string

	if c.Warehouse.ServerHostname == "" {
		missing = append(missing, "DATABRICKS_SERVER_HOSTNAME")
	}

	if c.Warehouse.HTTPPath == "" {
		missing = append(missing, "DATABRICKS_HTTP_PATH")
	}

	if c.Warehouse.AccessToken == "" {
		missing = append(missing, "DATABRICKS_ACCESS_TOKEN")
	}

	return missing
}

// MissingCompletionCredentials reports which completion-service settings are absent
func (c *Config) MissingCompletionCredentials() []string {
	var missing []string

	if c.Completion.APIKey == "" {
		missing = append(missing, "AZURE_OPENAI_KEY")
	}

	if c.Completion.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}

	return missing
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv("SALES_ASSISTANT_CONFIG"); configPath != "" {
		return expandPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(homeDir, ".config", "sales-assistant", "config.json")
}

// expandPath expands ~ to home directory in file paths
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	c.Warehouse.LocalPath = expandPath(c.Warehouse.LocalPath)
	c.Chart.OutputDir = expandPath(c.Chart.OutputDir)
	c.Logging.File = expandPath(c.Logging.File)
}
