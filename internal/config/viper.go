// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/pdftext"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FATURA_LOG_LEVEL.
const EnvPrefix = "FATURA"

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// PatternsConfig points at an alternative pattern registry.
type PatternsConfig struct {
	// File replaces the embedded registry when set.
	File string `mapstructure:"file" yaml:"file"`
}

// DetectionConfig bounds the text scanned for bank signatures.
type DetectionConfig struct {
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`
	MaxBytes int `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// PDFConfig configures text acquisition.
type PDFConfig struct {
	Backend        string `mapstructure:"backend" yaml:"backend"`
	MaxSizeMB      int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ExportConfig configures reports.
type ExportConfig struct {
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	Format       string `mapstructure:"format" yaml:"format"`
	CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
}

// CategorizationConfig enables the optional strategies. Keyword matching is
// always on.
type CategorizationConfig struct {
	Fuzzy bool `mapstructure:"fuzzy" yaml:"fuzzy"`
	AI    bool `mapstructure:"ai" yaml:"ai"`
}

// AIConfig configures the Gemini client.
type AIConfig struct {
	Model             string `mapstructure:"model" yaml:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins    []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int      `mapstructure:"burst" yaml:"burst"`
	UploadDir         string   `mapstructure:"upload_dir" yaml:"upload_dir"`
	TempMaxAgeMinutes int      `mapstructure:"temp_max_age_minutes" yaml:"temp_max_age_minutes"`
	MaxBatchFiles     int      `mapstructure:"max_batch_files" yaml:"max_batch_files"`
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	Patterns       PatternsConfig       `mapstructure:"patterns" yaml:"patterns"`
	Detection      DetectionConfig      `mapstructure:"detection" yaml:"detection"`
	PDF            PDFConfig            `mapstructure:"pdf" yaml:"pdf"`
	Export         ExportConfig         `mapstructure:"export" yaml:"export"`
	Categorization CategorizationConfig `mapstructure:"categorization" yaml:"categorization"`
	AI             AIConfig             `mapstructure:"ai" yaml:"ai"`
	Server         ServerConfig         `mapstructure:"server" yaml:"server"`
}

// MaxPDFBytes returns the document size limit in bytes.
func (c *Config) MaxPDFBytes() int64 {
	return int64(c.PDF.MaxSizeMB) * 1024 * 1024
}

// PDFTimeout returns the text acquisition budget per document.
func (c *Config) PDFTimeout() time.Duration {
	return time.Duration(c.PDF.TimeoutSeconds) * time.Second
}

// Delimiter returns the CSV delimiter rune.
func (c *Config) Delimiter() rune {
	return []rune(c.Export.CSVDelimiter)[0]
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load initializes Viper configuration with hierarchical loading. When
// configFile is empty config.yaml is searched in the usual locations.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.fatura-extractor")
		v.AddConfigPath(".fatura-extractor")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is always read unprefixed
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the built-in configuration, ignoring files and the
// environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("patterns.file", "")

	v.SetDefault("detection.max_pages", 2)
	v.SetDefault("detection.max_bytes", 64*1024)

	v.SetDefault("pdf.backend", string(pdftext.BackendPoppler))
	v.SetDefault("pdf.max_size_mb", 10)
	v.SetDefault("pdf.timeout_seconds", 60)

	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("export.format", "json")
	v.SetDefault("export.csv_delimiter", ",")

	v.SetDefault("categorization.fuzzy", false)
	v.SetDefault("categorization.ai", false)

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.requests_per_second", 5.0)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.temp_max_age_minutes", 60)
	v.SetDefault("server.max_batch_files", 20)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Detection.MaxPages < 1 || config.Detection.MaxPages > 50 {
		return fmt.Errorf("detection.max_pages must be between 1 and 50, got: %d", config.Detection.MaxPages)
	}
	if config.Detection.MaxBytes < 1024 {
		return fmt.Errorf("detection.max_bytes must be at least 1024, got: %d", config.Detection.MaxBytes)
	}

	if _, err := pdftext.New(pdftext.Backend(config.PDF.Backend)); err != nil {
		return fmt.Errorf("invalid pdf.backend: %w", err)
	}
	if config.PDF.MaxSizeMB < 1 || config.PDF.MaxSizeMB > 100 {
		return fmt.Errorf("pdf.max_size_mb must be between 1 and 100, got: %d", config.PDF.MaxSizeMB)
	}
	if config.PDF.TimeoutSeconds < 1 || config.PDF.TimeoutSeconds > 600 {
		return fmt.Errorf("pdf.timeout_seconds must be between 1 and 600, got: %d", config.PDF.TimeoutSeconds)
	}

	switch strings.ToLower(config.Export.Format) {
	case "json", "excel", "xlsx", "csv":
	default:
		return fmt.Errorf("invalid export.format: %s (must be 'json', 'excel' or 'csv')", config.Export.Format)
	}
	if len([]rune(config.Export.CSVDelimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Export.CSVDelimiter)
	}

	if config.Categorization.AI {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI categorization is enabled")
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.Server.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.requests_per_second must be positive, got: %f", config.Server.RequestsPerSecond)
	}
	if config.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1, got: %d", config.Server.Burst)
	}
	if config.Server.MaxBatchFiles < 1 {
		return fmt.Errorf("server.max_batch_files must be at least 1, got: %d", config.Server.MaxBatchFiles)
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from config.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
