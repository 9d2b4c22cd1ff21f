package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"

	"github.com/dbehnke/rsc-bcjr/pkg/config"
	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/logger"
	"github.com/dbehnke/rsc-bcjr/pkg/metrics"
	"github.com/dbehnke/rsc-bcjr/pkg/vectors"
	"github.com/dbehnke/rsc-bcjr/pkg/web"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

var modes = []string{"generate", "verify", "list", "serve"}

func validMode(mode string) bool {
	return slices.Contains(modes, mode)
}

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	mode := flag.String("mode", "verify", strings.Join(modes, ", "))
	setID := flag.String("set", "", "Vector set to verify (default: latest)")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bcjr-vectors %s (commit %s, built %s)\n", version, gitCommit, buildTime)
		return 0
	}
	if !validMode(*mode) {
		fmt.Fprintf(os.Stderr, "unknown mode %q (must be one of %s)\n", *mode, strings.Join(modes, ", "))
		return 2
	}
	web.SetVersionInfo(version, gitCommit, buildTime)

	// Basic console logger until the configuration is known
	log := logger.New(logger.Config{Level: "info", Format: "text"})

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		return 1
	}
	log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if *validate {
		log.Info("Configuration is valid")
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()
	// cancel runs before wg.Wait so the metrics server shuts down on return
	defer cancel()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}
	if collector != nil && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				collector,
				log,
			)
			if err := metricsServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
	}

	db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log)
	if err != nil {
		log.Error("Failed to open vector store", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	repo := database.NewVectorRepository(db.GetDB())
	runner := vectors.NewRunner(cfg, repo, collector, log)

	switch *mode {
	case "generate":
		set, err := runner.Generate(ctx)
		if err != nil {
			log.Error("Generation failed", logger.Error(err))
			return 1
		}
		fmt.Println(set.ID)

	case "verify":
		set, rep, err := runner.Verify(ctx, *setID)
		if err != nil {
			// mismatches are reported by the runner
			if !errors.Is(err, vectors.ErrMismatch) {
				log.Error("Verification failed", logger.Error(err))
			}
			return 1
		}
		fmt.Printf("%s %s: %d vectors ok, max difference %g\n", set.ID, set.Code(), rep.Checked, rep.MaxDiff)

	case "list":
		sets, err := repo.List(50)
		if err != nil {
			log.Error("Failed to list vector sets", logger.Error(err))
			return 1
		}
		for _, s := range sets {
			fmt.Printf("%s  %s  K=%d buffered=%v %s/%s/%s  %s\n",
				s.ID, s.Code(), s.FrameLength, s.Buffered, s.Operator, s.Variant, s.Precision,
				s.CreatedAt.Format("2006-01-02 15:04:05"))
		}

	case "serve":
		if !cfg.Web.Enabled {
			log.Error("Serve mode requires web.enabled")
			return 1
		}
		hub := web.NewWebSocketHub(log.WithComponent("ws"))
		runner.SetEvents(hub)
		srv := web.NewServer(cfg.Web, web.NewAPI(repo, runner, log), hub, log)
		if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Web server error", logger.Error(err))
			return 1
		}

	}
	return 0
}
