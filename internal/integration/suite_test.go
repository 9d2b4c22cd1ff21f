//go:build integration
// +build integration

package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbehnke/rsc-bcjr/pkg/config"
	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/logger"
	"github.com/dbehnke/rsc-bcjr/pkg/metrics"
	"github.com/dbehnke/rsc-bcjr/pkg/vectors"
)

// Suite provides a configured vector store, collector and runner
type Suite struct {
	T         *testing.T
	Config    *config.Config
	Logger    *logger.Logger
	Ctx       context.Context
	Cancel    context.CancelFunc
	DB        *database.DB
	Repo      *database.VectorRepository
	Collector *metrics.Collector
	Runner    *vectors.Runner
}

// NewSuite creates a suite over a temporary database
func NewSuite(t *testing.T) *Suite {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)

	log := logger.New(logger.Config{
		Level:  "warn",
		Format: "text",
	})

	cfg := &config.Config{
		Decoder: config.DecoderConfig{
			FrameLength:    48,
			FramesPerGroup: 4,
			Buffered:       true,
			Feedback:       "013",
			Forward:        []string{"015"},
			MaxOperator:    "max-star",
			Variant:        "std",
			Precision:      "float32",
		},
		Vectors:  config.VectorsConfig{Count: 9, Seed: 1, Amplitude: 2, Sigma: 0.8, Tolerance: 1e-3},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "vectors.db")},
		Logging:  config.LoggingConfig{Level: "warn", Format: "text"},
	}

	db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log)
	if err != nil {
		cancel()
		t.Fatalf("Failed to create database: %v", err)
	}

	repo := database.NewVectorRepository(db.GetDB())
	collector := metrics.NewCollector()

	return &Suite{
		T:         t,
		Config:    cfg,
		Logger:    log,
		Ctx:       ctx,
		Cancel:    cancel,
		DB:        db,
		Repo:      repo,
		Collector: collector,
		Runner:    vectors.NewRunner(cfg, repo, collector, log),
	}
}

// GetFreePort gets a free port for testing
func (s *Suite) GetFreePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		s.T.Fatalf("Failed to get free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// Cleanup releases suite resources
func (s *Suite) Cleanup() {
	s.Cancel()
	_ = s.DB.Close()
}
