// Package vault implements the tier-aware taste vault: a capacity-bound
// wrapper around one user's memory graph with learning, conflict
// detection, pattern extraction, and contextual retrieval.
package vault

// Tier is the subscription level controlling vault capacity and how
// many global wisdom patterns get injected into agent context.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// TierConfig carries the per-tier limits. MaxNodes == 0 means unbounded.
type TierConfig struct {
	Tier                   Tier `yaml:"tier"`
	MaxNodes               int  `yaml:"max_nodes"`
	GlobalWisdomInjections int  `yaml:"global_wisdom_injections"`
	CanOptIntoGlobal       bool `yaml:"can_opt_into_global"`
}

// DefaultTiers returns the built-in tier table.
func DefaultTiers() map[Tier]TierConfig {
	return map[Tier]TierConfig{
		TierFree: {
			Tier:                   TierFree,
			MaxNodes:               500,
			GlobalWisdomInjections: 4,
			CanOptIntoGlobal:       true,
		},
		TierPremium: {
			Tier:                   TierPremium,
			MaxNodes:               0,
			GlobalWisdomInjections: 12,
			CanOptIntoGlobal:       true,
		},
	}
}

// EvictionCeiling is the confidence at or above which a node is never
// evicted to make room. A vault full of trusted nodes can therefore
// exceed MaxNodes; capacity is a soft limit.
const EvictionCeiling = 0.9

// DefaultConfidence is assigned to learned nodes when the caller does
// not specify one.
const DefaultConfidence = 0.8
