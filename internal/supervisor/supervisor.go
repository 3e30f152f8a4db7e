// Package supervisor wires every subsystem together and owns the
// server's lifecycle (C11): ordered startup, signal-triggered graceful
// shutdown, and exit-code semantics. Grounded on
// crates/core/src/main.rs's startup sequence (restore snapshot, wire
// replication, start the periodic snapshot task, serve, graceful shutdown
// on ctrl_c) and the teacher's cmd/knowhow-server/main.go's
// http.Server+signal.Notify shutdown shape, with ad hoc goroutine+channel
// bookkeeping replaced by golang.org/x/sync/errgroup per SPEC_FULL.md's
// domain-stack wiring.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/apiserver"
	"github.com/hivemindlabs/hivemindd/internal/bus"
	"github.com/hivemindlabs/hivemindd/internal/config"
	"github.com/hivemindlabs/hivemindd/internal/embed"
	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/hivemindlabs/hivemindd/internal/extract"
	"github.com/hivemindlabs/hivemindd/internal/replication"
	"github.com/hivemindlabs/hivemindd/internal/search"
	"github.com/hivemindlabs/hivemindd/internal/snapshot"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace bounds how long graceful HTTP shutdown waits for
// in-flight requests, matching the teacher's 10s shutdown timeout.
const shutdownGrace = 10 * time.Second

// Supervisor owns every long-running subsystem: the HTTP/WS server, the
// periodic snapshot task, and (if enabled) the replication client.
type Supervisor struct {
	cfg        config.Config
	logger     *slog.Logger
	engine     *engine.Engine
	snapshotMgr *snapshot.Manager
	replSink   *replication.HTTPSink
	httpServer *http.Server
}

// New builds every subsystem from cfg but does not start anything yet.
// A missing/misconfigured embedder or extractor degrades to a null
// implementation rather than failing construction (spec.md §7); a broken
// data directory or corrupt snapshot is returned as a startup error.
func New(cfg config.Config, logger *slog.Logger) (*Supervisor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	embedder, err := embed.New(embed.NewFromConfig(cfg.EmbeddingModel, cfg.EmbeddingAPIKey))
	if err != nil {
		return nil, fmt.Errorf("construct embedder: %w", err)
	}
	if !embedder.Available() {
		logger.Warn("embedder unavailable, search will degrade to keyword-only")
	}

	var extractor engine.Extractor
	if cfg.LLMAPIKey == "" && cfg.LLMProvider != "ollama" {
		extractor = extract.Disabled{Reason: "no LLM API key configured"}
		logger.Warn("extractor unavailable, no LLM provider configured")
	} else {
		ex, err := extract.New(extract.Config{Provider: cfg.LLMProvider, Model: cfg.LLMModel, APIKey: cfg.LLMAPIKey})
		if err != nil {
			logger.Warn("extractor construction failed, disabling extraction", "error", err)
			extractor = extract.Disabled{Reason: err.Error()}
		} else {
			extractor = ex
		}
	}

	b := bus.New(cfg.BusQueueCapacity, logger)

	var replSink *replication.HTTPSink
	var sink engine.ReplicationSink
	if cfg.EnableReplication {
		replSink = replication.New(cfg.RTDBURL, logger)
		sink = replSink
	}

	eng := engine.New(engine.Options{
		Embedder:          embedder,
		Extractor:         extractor,
		Bus:               b,
		Replication:       sink,
		Logger:            logger,
		GraphDepthCeiling: cfg.GraphDepthCeiling,
	})

	snapshotMgr, err := snapshot.New(cfg.DataDir, eng, logger)
	if err != nil {
		return nil, fmt.Errorf("construct snapshot manager: %w", err)
	}
	if err := snapshotMgr.Load(); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	searchEngine := search.New(eng)
	srv := apiserver.New(eng, searchEngine, b, logger)

	return &Supervisor{
		cfg:         cfg,
		logger:      logger,
		engine:      eng,
		snapshotMgr: snapshotMgr,
		replSink:    replSink,
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      srv.Handler(),
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

// Run starts every subsystem and blocks until ctx is cancelled (typically
// by SIGINT/SIGTERM — see RunUntilSignal), then shuts everything down:
// cancellation stops the HTTP server (graceful shutdown, bounded by
// shutdownGrace) and the background loops together, and once all of them
// have returned one final snapshot is written so no committed write since
// the last periodic save is lost.
func (s *Supervisor) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if s.replSink != nil {
		group.Go(func() error {
			s.replSink.Run(groupCtx)
			return nil
		})
	}

	if s.cfg.SnapshotInterval > 0 {
		stop := make(chan struct{})
		group.Go(func() error {
			s.snapshotMgr.Loop(s.cfg.SnapshotInterval, stop)
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			close(stop)
			return nil
		})
		s.logger.Info("snapshot task started", "interval", s.cfg.SnapshotInterval)
	}

	group.Go(func() error {
		s.logger.Info("hivemindd listening", "addr", s.cfg.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err := group.Wait()

	if saveErr := s.snapshotMgr.Save(); saveErr != nil {
		s.logger.Error("final snapshot save failed", "error", saveErr)
		if err == nil {
			err = fmt.Errorf("%w: %v", engine.ErrSnapshotIO, saveErr)
		}
	}

	s.logger.Info("hivemindd stopped")
	return err
}

// RunUntilSignal runs the supervisor until SIGINT/SIGTERM, then performs
// the same shutdown sequence as Run.
func (s *Supervisor) RunUntilSignal(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Engine exposes the underlying engine, used by cmd/hivemindd-cli for
// offline snapshot export/import and status inspection.
func (s *Supervisor) Engine() *engine.Engine { return s.engine }

// ExitCode maps a Run error to the process exit code spec.md §11
// expects: 0 clean, 1 generic startup/runtime failure, 2 snapshot
// corruption detected at restore.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, engine.ErrSnapshotCorrupt) {
		return 2
	}
	return 1
}
