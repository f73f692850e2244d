package config

import (
	"fmt"
	"strings"
)

// Config is the complete configuration for the platecrnn application. It
// covers all commands (prepare, preprocess, recognize, serve) and can be
// loaded from configuration files, environment variables and CLI flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Directory that receives preprocessed CSVs and generated artifacts.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`

	// Path of the persisted alphabet lookup shared by all stages.
	AlphabetPath string `mapstructure:"alphabet_path" yaml:"alphabet_path" json:"alphabet_path"`

	// Model/input hyperparameters.
	Params Params `mapstructure:"params" yaml:"params" json:"params"`

	// Dataset locations.
	Data DataConfig `mapstructure:"data" yaml:"data" json:"data"`

	// Offline preprocessing settings.
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`

	// ONNX inference settings (recognize and serve commands).
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`

	// HTTP server settings (serve command).
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DataConfig locates the raw and formatted dataset CSVs.
type DataConfig struct {
	TrainCSV string `mapstructure:"train_csv" yaml:"train_csv" json:"train_csv"`
	EvalCSV  string `mapstructure:"eval_csv" yaml:"eval_csv" json:"eval_csv"`
}

// PreprocessConfig contains offline preprocessing settings.
type PreprocessConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// RecognizerConfig contains ONNX model inference settings.
type RecognizerConfig struct {
	ModelPath  string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	NumThreads int    `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		Verbose:      false,
		OutputDir:    "output",
		AlphabetPath: "alphabet_lookup.json",
		Params:       DefaultParams(),
		Preprocess: PreprocessConfig{
			Workers: 4,
		},
		Recognizer: RecognizerConfig{
			NumThreads: 0,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     10,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if c.Preprocess.Workers <= 0 {
		return fmt.Errorf("invalid preprocess workers: %d (must be positive)", c.Preprocess.Workers)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	return nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
