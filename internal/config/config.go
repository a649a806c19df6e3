// Package config loads the YAML configuration shared by the command line tools.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-ohlcv/internal/version"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvPolygonAPIKey = "POLYGON_API_KEY"
	EnvDataRoot      = "ARGO_DATA_ROOT"
)

// Config is the root of the configuration file. Each field is a namespace
// addressable through Lookup.
type Config struct {
	// Version is the tools release the file was written for. Empty skips the check.
	Version  string         `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Tools release the file targets"`
	Path     PathConfig     `yaml:"path" json:"path"`
	Download DownloadConfig `yaml:"download" json:"download"`
	Features FeatureConfig  `yaml:"features" json:"features"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

// PathConfig locates the data directories.
type PathConfig struct {
	Data     string `yaml:"data" json:"data" default:"data" validate:"required" jsonschema:"title=Data Root,description=Base directory of all stored data"`
	Input    string `yaml:"input" json:"input" default:"input" jsonschema:"title=Input Root,description=Directory under the data root holding downloaded tables"`
	Features string `yaml:"features" json:"features" default:"features" jsonschema:"title=Features Root,description=Directory holding feature files; resolved on its own and not nested under the data root"`
}

// DownloadConfig controls the downloader and batch runner.
type DownloadConfig struct {
	Provider       string `yaml:"provider" json:"provider" default:"polygon" validate:"required,oneof=polygon binance" jsonschema:"enum=polygon,enum=binance"`
	Format         string `yaml:"format" json:"format" default:"csv" validate:"required,oneof=csv ftr parquet" jsonschema:"enum=csv,enum=ftr,enum=parquet"`
	Interval       string `yaml:"interval" json:"interval" default:"1d" validate:"required,oneof=1min 5min 15min 30min 1hour 4hour 1d" jsonschema:"enum=1min,enum=5min,enum=15min,enum=30min,enum=1hour,enum=4hour,enum=1d"`
	Workers        int    `yaml:"workers" json:"workers" default:"8" validate:"min=1" jsonschema:"minimum=1"`
	ChunkDays      int    `yaml:"chunk_days" json:"chunk_days" default:"8" validate:"min=1" jsonschema:"minimum=1"`
	BatchDelay     string `yaml:"batch_delay" json:"batch_delay" default:"70s" validate:"required" jsonschema:"description=Pause between download periods as a Go duration"`
	PolygonAPIKey  string `yaml:"polygon_api_key" json:"polygon_api_key" jsonschema:"description=Also read from POLYGON_API_KEY"`
	BinanceBaseURL string `yaml:"binance_base_url" json:"binance_base_url" jsonschema:"description=Overrides the Binance REST endpoint"`
	MergeKey       string `yaml:"merge_key" json:"merge_key" default:"all" validate:"oneof=all ticker_time" jsonschema:"enum=all,enum=ticker_time"`
	Quiet          bool   `yaml:"quiet" json:"quiet" jsonschema:"description=Hide the progress bar"`
}

// FeatureConfig controls feature generation.
type FeatureConfig struct {
	Format           string `yaml:"format" json:"format" default:"csv" validate:"required,oneof=csv ftr parquet" jsonschema:"enum=csv,enum=ftr,enum=parquet"`
	CloseColumn      string `yaml:"close_column" json:"close_column" default:"close" validate:"oneof=close adjClose" jsonschema:"enum=close,enum=adjClose"`
	PivotCloseColumn string `yaml:"pivot_close_column" json:"pivot_close_column" validate:"omitempty,oneof=close adjClose" jsonschema:"enum=close,enum=adjClose,description=Empty uses adjClose for providers serving adjusted closes and close otherwise"`
	SMAWindows       []int  `yaml:"sma_windows" json:"sma_windows" default:"[20,50,200]" validate:"dive,min=1"`
	ATRWindow        int    `yaml:"atr_window" json:"atr_window" default:"14" validate:"min=1"`
	VolatilityWindow int    `yaml:"volatility_window" json:"volatility_window" default:"14" validate:"min=1"`
	DeviationWindow  int    `yaml:"deviation_window" json:"deviation_window" default:"20" validate:"min=1"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level" default:"info" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns a configuration holding only default values.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to apply defaults", err)
	}

	return cfg, nil
}

// Load reads path, fills unset fields with defaults, applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to read config %s", path)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to apply defaults", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPolygonAPIKey); v != "" {
		c.Download.PolygonAPIKey = v
	}

	if v := os.Getenv(EnvDataRoot); v != "" {
		c.Path.Data = v
	}
}

// Validate checks the validate tags of every namespace.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, err := c.Download.Delay(); err != nil {
		return err
	}

	return version.CheckConfigCompatibility(version.GetVersion(), c.Version)
}

// Delay parses BatchDelay.
func (d DownloadConfig) Delay() (time.Duration, error) {
	delay, err := time.ParseDuration(d.BatchDelay)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid download.batch_delay %q", d.BatchDelay)
	}

	if delay < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidConfiguration, "download.batch_delay must not be negative, got %s", d.BatchDelay)
	}

	return delay, nil
}

// Lookup returns the value of key inside namespace, as written in the
// configuration file. Missing namespaces or keys are a missing-parameter error.
func (c *Config) Lookup(namespace, key string) (any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode configuration", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode configuration", err)
	}

	section, ok := tree[namespace].(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "unknown configuration namespace %q", namespace)
	}

	value, ok := section[key]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "unknown configuration key %q in namespace %q", key, namespace)
	}

	return value, nil
}

// LookupString is Lookup for string values.
func (c *Config) LookupString(namespace, key string) (string, error) {
	value, err := c.Lookup(namespace, key)
	if err != nil {
		return "", err
	}

	s, ok := value.(string)
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidType, "configuration key %s.%s is not a string", namespace, key)
	}

	return s, nil
}

// GenerateSchema returns the JSON schema of the configuration file.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.FieldNameTag = "yaml"

	schema := r.Reflect(c)
	schema.Title = "argo-ohlcv-config"
	schema.Description = "Configuration schema for the OHLCV downloader and feature generator"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON returns the JSON schema as an indented string.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode schema", err)
	}

	return string(data), nil
}

// Roots holds the resolved storage directories.
type Roots struct {
	Data     string
	Input    string
	Features string
}

// Roots resolves the path namespace. Input is relative to Data; Features
// is used as written.
func (c *Config) Roots() (Roots, error) {
	var roots Roots

	keys := []struct {
		name string
		dst  *string
	}{
		{"data", &roots.Data},
		{"input", &roots.Input},
		{"features", &roots.Features},
	}

	for _, k := range keys {
		v, err := c.LookupString("path", k.name)
		if err != nil {
			return Roots{}, err
		}

		*k.dst = filepath.Clean(v)
	}

	return roots, nil
}
