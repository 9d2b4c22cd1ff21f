package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dbehnke/rsc-bcjr/pkg/bcjr"
)

// Entry point labels
const (
	EntrySISO     = "siso"
	EntryCodeword = "codeword"
	EntryGroup    = "group"
	EntrySIHO     = "siho"
)

// Collector collects decoder and vector metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	framesDecoded  *prometheus.CounterVec
	decodeErrors   *prometheus.CounterVec
	decodeDuration *prometheus.HistogramVec
	decoders       *prometheus.CounterVec
	vectorsChecked *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		framesDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bcjr_frames_decoded_total",
				Help: "Frames decoded successfully",
			},
			[]string{"operator", "variant", "entry"},
		),
		decodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bcjr_decode_errors_total",
				Help: "Decode calls rejected at the call boundary",
			},
			[]string{"reason"},
		),
		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bcjr_decode_duration_seconds",
				Help:    "Wall time of a decode call",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"operator", "variant", "entry"},
		),
		decoders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bcjr_decoders_created_total",
				Help: "Instrumented decoder instances, including clones",
			},
			[]string{"operator", "variant"},
		),
		vectorsChecked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bcjr_vectors_verified_total",
				Help: "Reference vectors compared against a decoder",
			},
			[]string{"result"},
		),
	}
}

// Registry returns the registry the collector's metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// DecoderCreated records a new decoder instance
func (c *Collector) DecoderCreated(info bcjr.Info) {
	c.decoders.WithLabelValues(info.Operator, info.Variant).Inc()
}

// Decoded records a decode call over frames frames
func (c *Collector) Decoded(info bcjr.Info, entry string, frames int, took time.Duration, err error) {
	if err != nil {
		c.decodeErrors.WithLabelValues(errorReason(err)).Inc()
		return
	}
	c.framesDecoded.WithLabelValues(info.Operator, info.Variant, entry).Add(float64(frames))
	c.decodeDuration.WithLabelValues(info.Operator, info.Variant, entry).Observe(took.Seconds())
}

// VectorVerified records one reference vector comparison
func (c *Collector) VectorVerified(ok bool) {
	result := "pass"
	if !ok {
		result = "fail"
	}
	c.vectorsChecked.WithLabelValues(result).Inc()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, bcjr.ErrSizeMismatch):
		return "size_mismatch"
	case errors.Is(err, bcjr.ErrFrameID):
		return "frame_id"
	default:
		return "other"
	}
}
