package config

import (
	"fmt"
	"strings"

	"github.com/dbehnke/rsc-bcjr/pkg/bcjr"
	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
	"github.com/dbehnke/rsc-bcjr/pkg/rsc"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// validate validates the configuration
func validate(cfg *Config) error {
	// Validate decoder config
	d := cfg.Decoder
	if d.FrameLength <= 0 {
		return fmt.Errorf("decoder.frame_length must be positive")
	}
	if d.FramesPerGroup <= 0 {
		return fmt.Errorf("decoder.frames_per_group must be positive")
	}
	if len(d.Forward) == 0 {
		return fmt.Errorf("decoder.forward requires at least one parity polynomial")
	}
	if _, err := rsc.Parse(d.Feedback, d.Forward...); err != nil {
		return fmt.Errorf("decoder.feedback/forward: %w", err)
	}
	if !maxop.Valid(d.MaxOperator) {
		return fmt.Errorf("decoder.max_operator %q is invalid (must be one of %s)", d.MaxOperator, strings.Join(maxop.Names, ", "))
	}
	if d.Variant != bcjr.VariantStandard && d.Variant != bcjr.VariantFused {
		return fmt.Errorf("decoder.variant %q is invalid (must be %s or %s)", d.Variant, bcjr.VariantStandard, bcjr.VariantFused)
	}
	if d.Precision != "float32" && d.Precision != "float64" {
		return fmt.Errorf("decoder.precision %q is invalid (must be float32 or float64)", d.Precision)
	}

	// Validate vector config
	if cfg.Vectors.Count <= 0 {
		return fmt.Errorf("vectors.count must be positive")
	}
	if cfg.Vectors.Amplitude <= 0 {
		return fmt.Errorf("vectors.amplitude must be positive")
	}
	if cfg.Vectors.Sigma < 0 {
		return fmt.Errorf("vectors.sigma must not be negative")
	}
	if cfg.Vectors.Tolerance < 0 {
		return fmt.Errorf("vectors.tolerance must not be negative")
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate logging config
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is invalid (must be text or json)", cfg.Logging.Format)
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
		if !strings.HasPrefix(cfg.Metrics.Prometheus.Path, "/") {
			return fmt.Errorf("metrics.prometheus.path must start with /")
		}
	}

	return nil
}
