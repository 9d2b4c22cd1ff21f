package vectors

import (
	"context"
	"fmt"
	"time"

	"github.com/dbehnke/rsc-bcjr/pkg/bcjr"
	"github.com/dbehnke/rsc-bcjr/pkg/config"
	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/logger"
	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
	"github.com/dbehnke/rsc-bcjr/pkg/metrics"
	"github.com/dbehnke/rsc-bcjr/pkg/rsc"
)

// Events receives the outcome of runner operations
type Events interface {
	SetGenerated(set *database.VectorSet)
	SetVerified(set *database.VectorSet, rep Report, err error)
}

// Runner generates and verifies vector sets described by the application config
type Runner struct {
	cfg       *config.Config
	repo      *database.VectorRepository
	collector *metrics.Collector
	events    Events
	log       *logger.Logger
}

// NewRunner creates a runner. collector may be nil to skip instrumentation.
func NewRunner(cfg *config.Config, repo *database.VectorRepository, collector *metrics.Collector, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.New(logger.Config{Level: "info"})
	}
	return &Runner{
		cfg:       cfg,
		repo:      repo,
		collector: collector,
		log:       log.WithComponent("vectors"),
	}
}

// SetEvents registers a receiver for runner outcomes. Call before the runner is shared.
func (r *Runner) SetEvents(e Events) {
	r.events = e
}

// NewDecoder builds the encoder and a decoder with frames lanes for the code
// and decoder selection recorded in set
func NewDecoder[R maxop.Real](set *database.VectorSet, frames int) (*rsc.Encoder, bcjr.Decoder[R], error) {
	enc, err := rsc.Parse(set.Feedback, set.Forward...)
	if err != nil {
		return nil, nil, err
	}
	tr, err := enc.Trellis()
	if err != nil {
		return nil, nil, err
	}
	dec, err := bcjr.Build[R](bcjr.Config{
		FrameLength: set.FrameLength,
		Frames:      frames,
		States:      enc.States(),
		Buffered:    set.Buffered,
		Trellis:     tr,
	}, set.Operator, set.Variant)
	if err != nil {
		return nil, nil, err
	}
	return enc, dec, nil
}

// Describe returns an unsaved set for the configured code, decoder and channel
func Describe(cfg *config.Config) *database.VectorSet {
	d, v := cfg.Decoder, cfg.Vectors
	return &database.VectorSet{
		Feedback:    d.Feedback,
		Forward:     append([]string(nil), d.Forward...),
		FrameLength: d.FrameLength,
		Buffered:    d.Buffered,
		Operator:    d.MaxOperator,
		Variant:     d.Variant,
		Precision:   d.Precision,
		Seed:        v.Seed,
		Amplitude:   v.Amplitude,
		Sigma:       v.Sigma,
	}
}

// Generate decodes vectors.count random frames and stores them as a new set
func (r *Runner) Generate(ctx context.Context) (*database.VectorSet, error) {
	set := Describe(r.cfg)
	start := time.Now()

	var err error
	switch set.Precision {
	case "float64":
		set.Vectors, err = generate[float64](ctx, r, set)
	default:
		set.Vectors, err = generate[float32](ctx, r, set)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", set.Code(), err)
	}

	if err := r.repo.Create(set); err != nil {
		return nil, fmt.Errorf("failed to store vector set: %w", err)
	}

	r.log.Info("Vector set generated",
		logger.String("set", set.ID),
		logger.String("code", set.Code()),
		logger.Int("vectors", len(set.Vectors)),
		logger.String("operator", set.Operator),
		logger.String("precision", set.Precision),
		logger.Duration("took", time.Since(start)))
	if r.events != nil {
		r.events.SetGenerated(set)
	}
	return set, nil
}

func generate[R maxop.Real](ctx context.Context, r *Runner, set *database.VectorSet) ([]database.ReferenceVector, error) {
	enc, dec, err := NewDecoder[R](set, r.cfg.Decoder.FramesPerGroup)
	if err != nil {
		return nil, err
	}
	if r.collector != nil {
		dec = metrics.Instrument(dec, r.collector)
	}
	ch := Channel{Seed: set.Seed, Amplitude: set.Amplitude, Sigma: set.Sigma}
	return Generate(ctx, enc, dec, ch, r.cfg.Vectors.Count)
}

// Verify re-decodes the set with the given id, or the latest set when id is
// empty, and compares against the stored output within vectors.tolerance
func (r *Runner) Verify(ctx context.Context, id string) (*database.VectorSet, Report, error) {
	var (
		set *database.VectorSet
		err error
	)
	if id == "" {
		set, err = r.repo.Latest()
	} else {
		set, err = r.repo.Get(id)
	}
	if err != nil {
		return nil, Report{}, err
	}

	var rep Report
	switch set.Precision {
	case "float64":
		rep, err = verify[float64](ctx, r, set)
	default:
		rep, err = verify[float32](ctx, r, set)
	}

	if r.events != nil {
		r.events.SetVerified(set, rep, err)
	}

	fields := []logger.Field{
		logger.String("set", set.ID),
		logger.String("code", set.Code()),
		logger.Int("checked", rep.Checked),
		logger.Int("failed", rep.Failed),
		logger.Float64("max_diff", rep.MaxDiff),
	}
	if err != nil {
		r.log.Error("Vector set verification failed", append(fields, logger.Error(err))...)
		return set, rep, err
	}
	r.log.Info("Vector set verified", fields...)
	return set, rep, nil
}

func verify[R maxop.Real](ctx context.Context, r *Runner, set *database.VectorSet) (Report, error) {
	_, dec, err := NewDecoder[R](set, r.cfg.Decoder.FramesPerGroup)
	if err != nil {
		return Report{}, err
	}
	var obs Observer
	if r.collector != nil {
		dec = metrics.Instrument(dec, r.collector)
		obs = r.collector
	}
	return Verify(ctx, dec, set.Vectors, r.cfg.Vectors.Tolerance, obs)
}
