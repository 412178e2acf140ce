package config

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Reporter   ReporterConfig   `mapstructure:"reporter"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ProcessingConfig holds pipeline configuration
type ProcessingConfig struct {
	Delay            time.Duration `mapstructure:"delay"`
	StrictExtraction bool          `mapstructure:"strict_extraction"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
	// ProofSeed makes every generated proof identical when set, replacing
	// the random proofs the pipeline otherwise produces. Fixtures only.
	ProofSeed        string        `mapstructure:"proof_seed"`
}

// ReporterConfig holds the periodic store reporter configuration
type ReporterConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	v.AutomaticEnv()
	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("processing.delay", "1s")
	v.SetDefault("processing.strict_extraction", false)
	v.SetDefault("processing.max_body_bytes", 1<<20)
	v.SetDefault("processing.proof_seed", "")

	v.SetDefault("reporter.enabled", true)
	v.SetDefault("reporter.interval_seconds", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Processing
	v.BindEnv("processing.delay", "PROCESSING_DELAY")
	v.BindEnv("processing.strict_extraction", "PROCESSING_STRICT_EXTRACTION")
	v.BindEnv("processing.max_body_bytes", "PROCESSING_MAX_BODY_BYTES")
	v.BindEnv("processing.proof_seed", "PROCESSING_PROOF_SEED")

	// Reporter
	v.BindEnv("reporter.enabled", "REPORTER_ENABLED")
	v.BindEnv("reporter.interval_seconds", "REPORTER_INTERVAL_SECONDS")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Processing.Delay <= 0 {
		return fmt.Errorf("processing delay must be greater than 0")
	}

	if c.Processing.MaxBodyBytes <= 0 {
		return fmt.Errorf("processing max body bytes must be greater than 0")
	}

	if c.Reporter.Enabled && c.Reporter.IntervalSeconds <= 0 {
		return fmt.Errorf("reporter interval must be greater than 0")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}

	return nil
}
