package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Decoder  DecoderConfig  `mapstructure:"decoder"`
	Vectors  VectorsConfig  `mapstructure:"vectors"`
	Database DatabaseConfig `mapstructure:"database"`
	Web      WebConfig      `mapstructure:"web"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DecoderConfig describes the code and the decoder built for it
type DecoderConfig struct {
	FrameLength    int      `mapstructure:"frame_length"`     // Information bits per frame (K)
	FramesPerGroup int      `mapstructure:"frames_per_group"` // Frames decoded in lock-step
	Buffered       bool     `mapstructure:"buffered"`         // Frames carry termination tail bits
	Feedback       string   `mapstructure:"feedback"`         // Octal feedback polynomial
	Forward        []string `mapstructure:"forward"`          // Octal parity polynomials, one per parity bit
	MaxOperator    string   `mapstructure:"max_operator"`     // max, max-star, max-linear, max-table
	Variant        string   `mapstructure:"variant"`          // std or fused
	Precision      string   `mapstructure:"precision"`        // float32 or float64
}

// VectorsConfig controls reference vector generation and verification
type VectorsConfig struct {
	Count     int     `mapstructure:"count"`
	Seed      uint64  `mapstructure:"seed"`
	Amplitude float64 `mapstructure:"amplitude"` // Noiseless LLR magnitude
	Sigma     float64 `mapstructure:"sigma"`     // Gaussian LLR noise
	Tolerance float64 `mapstructure:"tolerance"` // Max absolute extrinsic difference on verify
}

// DatabaseConfig holds the vector store location
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// WebConfig holds the vector service HTTP configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/bcjr")
	}

	// BCJR_DECODER_FRAME_LENGTH and friends
	viper.SetEnvPrefix("BCJR")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Decoder defaults: 8-state rate 1/2 code
	viper.SetDefault("decoder.frame_length", 64)
	viper.SetDefault("decoder.frames_per_group", 8)
	viper.SetDefault("decoder.buffered", true)
	viper.SetDefault("decoder.feedback", "013")
	viper.SetDefault("decoder.forward", []string{"015"})
	viper.SetDefault("decoder.max_operator", "max-star")
	viper.SetDefault("decoder.variant", "std")
	viper.SetDefault("decoder.precision", "float32")

	// Vector defaults
	viper.SetDefault("vectors.count", 16)
	viper.SetDefault("vectors.seed", 1)
	viper.SetDefault("vectors.amplitude", 2.0)
	viper.SetDefault("vectors.sigma", 0.8)
	viper.SetDefault("vectors.tolerance", 1e-3)

	viper.SetDefault("database.path", "bcjr-vectors.db")

	// Web defaults
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", false)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
