package wisdom

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// VaultSource supplies the promotion sweep with the current opt-in
// vault contents. Implemented by the host application over its vault
// registry; the pipeline never reaches into vault internals.
type VaultSource interface {
	Snapshots() []VaultSnapshot
}

// WorkerConfig holds configuration for the promotion worker.
type WorkerConfig struct {
	SweepInterval time.Duration
	Threshold     float64
}

// Worker periodically sweeps opt-in vaults for high-confidence nodes
// and offers them to the pipeline, then persists the global store.
type Worker struct {
	config   WorkerConfig
	pipeline *Pipeline
	source   VaultSource
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a promotion worker.
func NewWorker(cfg WorkerConfig, pipeline *Pipeline, source VaultSource, logger *zap.Logger) *Worker {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 15 * time.Minute
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultPromotionThreshold
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		config:   cfg,
		pipeline: pipeline,
		source:   source,
		logger:   logger.Named("wisdom-worker"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the background sweep loop.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.runLoop()
}

// Stop runs one final sweep so pending candidates drain, then shuts the
// worker down.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.Sweep(context.Background())
}

func (w *Worker) runLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(w.ctx)
		}
	}
}

// Sweep collects high-confidence opt-in nodes and promotes them.
func (w *Worker) Sweep(ctx context.Context) {
	start := time.Now()
	candidates := w.pipeline.CollectHighConfidenceNodes(w.source.Snapshots(), w.config.Threshold)
	if len(candidates) == 0 {
		return
	}

	promoted := 0
	for _, c := range candidates {
		if w.pipeline.Promote(ctx, c.Node, c.UserID) != nil {
			promoted++
		}
	}

	if err := w.pipeline.Persist(); err != nil {
		w.logger.Warn("failed to persist wisdom store after sweep", zap.Error(err))
	}

	w.logger.Info("promotion sweep complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("promoted", promoted),
		zap.Duration("duration", time.Since(start)))
}
