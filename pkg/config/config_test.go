package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		Decoder: DecoderConfig{
			FrameLength:    64,
			FramesPerGroup: 8,
			Buffered:       true,
			Feedback:       "013",
			Forward:        []string{"015"},
			MaxOperator:    "max-star",
			Variant:        "std",
			Precision:      "float32",
		},
		Vectors:  VectorsConfig{Count: 4, Seed: 1, Amplitude: 2, Sigma: 0.8, Tolerance: 1e-3},
		Database: DatabaseConfig{Path: "vectors.db"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// Spot-check a few defaults
	if cfg.Decoder.FrameLength != 64 {
		t.Errorf("expected Decoder.FrameLength default 64, got %d", cfg.Decoder.FrameLength)
	}
	if cfg.Decoder.FramesPerGroup != 8 {
		t.Errorf("expected Decoder.FramesPerGroup default 8, got %d", cfg.Decoder.FramesPerGroup)
	}
	if !cfg.Decoder.Buffered {
		t.Errorf("expected Decoder.Buffered default true")
	}
	if cfg.Decoder.Feedback != "013" || len(cfg.Decoder.Forward) != 1 || cfg.Decoder.Forward[0] != "015" {
		t.Errorf("expected default code 013/015, got %s/%v", cfg.Decoder.Feedback, cfg.Decoder.Forward)
	}
	if cfg.Decoder.MaxOperator != "max-star" {
		t.Errorf("expected Decoder.MaxOperator default max-star, got %s", cfg.Decoder.MaxOperator)
	}
	if cfg.Vectors.Tolerance != 1e-3 {
		t.Errorf("expected Vectors.Tolerance default 1e-3, got %v", cfg.Vectors.Tolerance)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Metrics.Prometheus.Port != 9090 {
		t.Errorf("expected Prometheus.Port default 9090, got %d", cfg.Metrics.Prometheus.Port)
	}
	if !cfg.Web.Enabled || cfg.Web.Port != 8080 {
		t.Errorf("expected Web enabled on 8080, got %v/%d", cfg.Web.Enabled, cfg.Web.Port)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `decoder:
  frame_length: 40
  feedback: "07"
  forward: ["05", "07"]
  max_operator: max-table
  variant: fused
database:
  path: /tmp/x.db
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("BCJR_DECODER_PRECISION", "float64")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Decoder.FrameLength != 40 {
		t.Errorf("expected frame_length 40 from file, got %d", cfg.Decoder.FrameLength)
	}
	if len(cfg.Decoder.Forward) != 2 || cfg.Decoder.Forward[1] != "07" {
		t.Errorf("expected forward [05 07], got %v", cfg.Decoder.Forward)
	}
	if cfg.Decoder.Variant != "fused" || cfg.Decoder.MaxOperator != "max-table" {
		t.Errorf("unexpected decoder selection %s/%s", cfg.Decoder.MaxOperator, cfg.Decoder.Variant)
	}
	if cfg.Decoder.Precision != "float64" {
		t.Errorf("expected precision from environment, got %s", cfg.Decoder.Precision)
	}
	if cfg.Decoder.FramesPerGroup != 8 {
		t.Errorf("expected frames_per_group default to survive, got %d", cfg.Decoder.FramesPerGroup)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("decoder:\n  max_operator: fastest\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "decoder.max_operator") {
		t.Fatalf("expected max_operator validation error, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	if err := validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"zero frame length", func(c *Config) { c.Decoder.FrameLength = 0 }, "decoder.frame_length"},
		{"zero frames per group", func(c *Config) { c.Decoder.FramesPerGroup = 0 }, "decoder.frames_per_group"},
		{"no parity polynomial", func(c *Config) { c.Decoder.Forward = nil }, "decoder.forward"},
		{"non-octal polynomial", func(c *Config) { c.Decoder.Feedback = "019" }, "decoder.feedback"},
		{"unknown operator", func(c *Config) { c.Decoder.MaxOperator = "min" }, "decoder.max_operator"},
		{"unknown variant", func(c *Config) { c.Decoder.Variant = "alt" }, "decoder.variant"},
		{"unknown precision", func(c *Config) { c.Decoder.Precision = "float16" }, "decoder.precision"},
		{"zero vector count", func(c *Config) { c.Vectors.Count = 0 }, "vectors.count"},
		{"negative sigma", func(c *Config) { c.Vectors.Sigma = -1 }, "vectors.sigma"},
		{"negative tolerance", func(c *Config) { c.Vectors.Tolerance = -1 }, "vectors.tolerance"},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"web port out of range", func(c *Config) { c.Web = WebConfig{Enabled: true, Port: 0} }, "web.port"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"prometheus port out of range", func(c *Config) {
			c.Metrics = MetricsConfig{Enabled: true, Prometheus: PrometheusConfig{Enabled: true, Port: 70000, Path: "/metrics"}}
		}, "metrics.prometheus.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validate(cfg)
			if err == nil {
				t.Fatalf("expected error mentioning %s", tt.key)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not mention %s", err, tt.key)
			}
		})
	}
}
