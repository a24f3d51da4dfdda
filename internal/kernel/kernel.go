// Package kernel wires the taste memory core together: the per-user
// vault registry, the global wisdom pipeline, and the background
// promotion worker.
package kernel

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/blob"
	"github.com/taste-memory-kernel/internal/config"
	"github.com/taste-memory-kernel/internal/graph"
	"github.com/taste-memory-kernel/internal/notify"
	"github.com/taste-memory-kernel/internal/similarity"
	"github.com/taste-memory-kernel/internal/vault"
	"github.com/taste-memory-kernel/internal/wisdom"
)

// Kernel owns one registry of user vaults and one wisdom pipeline.
type Kernel struct {
	cfg    config.Config
	logger *zap.Logger

	registry *graph.Registry
	pipeline *wisdom.Pipeline
	worker   *wisdom.Worker
	hook     notify.LearnHook

	mu     sync.Mutex
	vaults map[string]*vault.Manager
}

// New builds the kernel from configuration. sim and hook may be nil.
func New(cfg config.Config, sim similarity.Service, hook notify.LearnHook, logger *zap.Logger) (*Kernel, error) {
	blobs, err := blob.NewFS(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	k := &Kernel{
		cfg:      cfg,
		logger:   logger,
		registry: graph.NewRegistry(blobs, logger),
		pipeline: wisdom.NewPipeline(blobs, sim, logger),
		hook:     hook,
		vaults:   make(map[string]*vault.Manager),
	}
	k.pipeline.Load()
	k.worker = wisdom.NewWorker(wisdom.WorkerConfig{
		SweepInterval: time.Duration(cfg.Promotion.SweepInterval),
		Threshold:     cfg.Promotion.Threshold,
	}, k.pipeline, k, logger)
	return k, nil
}

// Vault returns the user's vault manager, creating it on first access
// with the tier's configuration.
func (k *Kernel) Vault(userID string, tier vault.Tier) *vault.Manager {
	k.mu.Lock()
	defer k.mu.Unlock()

	if m, ok := k.vaults[userID]; ok {
		return m
	}
	tc, ok := k.cfg.Tiers[tier]
	if !ok {
		tc = vault.DefaultTiers()[vault.TierFree]
	}
	m := vault.NewManager(k.registry.Get(userID), tc, k.hook, k.logger)
	k.vaults[userID] = m
	return m
}

// Pipeline exposes the global wisdom pipeline.
func (k *Kernel) Pipeline() *wisdom.Pipeline { return k.pipeline }

// GlobalWisdom returns the active global patterns to inject into the
// user's agent context, sliced by the vault tier's injection limit.
// Unknown users get nothing.
func (k *Kernel) GlobalWisdom(userID string) []*wisdom.GlobalPattern {
	k.mu.Lock()
	m, ok := k.vaults[userID]
	k.mu.Unlock()
	if !ok {
		return nil
	}

	tc := m.Tier()
	if tc.Tier == vault.TierPremium {
		return k.pipeline.ForPremium(tc.GlobalWisdomInjections)
	}
	return k.pipeline.ForFree(tc.GlobalWisdomInjections)
}

// Snapshots flattens every live vault into the pipeline's promotion
// input shape. Node confidence rides in the HelpfulCount field as the
// normalized promotion signal.
func (k *Kernel) Snapshots() []wisdom.VaultSnapshot {
	k.mu.Lock()
	vaults := make([]*vault.Manager, 0, len(k.vaults))
	for _, m := range k.vaults {
		vaults = append(vaults, m)
	}
	k.mu.Unlock()

	out := make([]wisdom.VaultSnapshot, 0, len(vaults))
	for _, m := range vaults {
		snap := wisdom.VaultSnapshot{UserID: m.UserID(), OptIn: m.GlobalOptIn()}
		for _, n := range m.Store().Nodes() {
			snap.Nodes = append(snap.Nodes, wisdom.GraphNode{
				ID:           n.ID,
				Content:      n.Content,
				HelpfulCount: n.Confidence,
				CreatedAt:    n.CreatedAt,
				Tags:         n.Tags,
				Language:     n.Language,
			})
		}
		out = append(out, snap)
	}
	return out
}

// Start launches the background promotion worker.
func (k *Kernel) Start() {
	k.worker.Start()
	k.logger.Info("kernel started",
		zap.Duration("sweep_interval", time.Duration(k.cfg.Promotion.SweepInterval)))
}

// Stop drains the worker and persists all state.
func (k *Kernel) Stop() {
	k.worker.Stop()
	k.registry.PersistAll()
	if err := k.pipeline.Persist(); err != nil {
		k.logger.Warn("failed to persist wisdom store", zap.Error(err))
	}
	k.logger.Info("kernel stopped")
}
