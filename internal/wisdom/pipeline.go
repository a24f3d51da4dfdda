package wisdom

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/blob"
	"github.com/taste-memory-kernel/internal/jsonx"
	"github.com/taste-memory-kernel/internal/notify"
	"github.com/taste-memory-kernel/internal/similarity"
)

const (
	// HarmDeactivationThreshold is the report count at which a pattern
	// is pulled from both distribution tiers, permanently.
	HarmDeactivationThreshold = 3

	// Distribution tier slice sizes. The free tier is not independently
	// curated, only truncated harder.
	DefaultPremiumLimit = 12
	DefaultFreeLimit    = 4

	// SnapshotPath is the single fixed blob path for the global store.
	SnapshotPath = "wisdom/global.json"

	snapshotVersion = 1

	recentFingerprintCap = 4096
)

// Pipeline is the process-wide global wisdom aggregator. It persists
// independently of any contributing user's vault.
type Pipeline struct {
	blobs  blob.Store
	sim    similarity.Service // nil disables the semantic check
	logger *zap.Logger
	guard  *promotionGuard

	mu          sync.RWMutex
	patterns    map[string]*GlobalPattern
	weekly      map[string]*WeeklyPromotionLog // userID + "|" + weekStart
	subscribers map[int]func(notify.PromotionEvent)
	nextSubID   int

	// Recently promoted content fingerprints, a fast path in front of
	// the pairwise duplicate checks.
	recent *lru.Cache[string, string]

	now func() time.Time
}

// NewPipeline creates an empty pipeline. sim may be nil; the pipeline
// then relies on lexical deduplication alone.
func NewPipeline(blobs blob.Store, sim similarity.Service, logger *zap.Logger) *Pipeline {
	recent, _ := lru.New[string, string](recentFingerprintCap)
	return &Pipeline{
		blobs:       blobs,
		sim:         sim,
		logger:      logger.Named("wisdom"),
		guard:       newPromotionGuard(),
		patterns:    make(map[string]*GlobalPattern),
		weekly:      make(map[string]*WeeklyPromotionLog),
		subscribers: make(map[int]func(notify.PromotionEvent)),
		recent:      recent,
		now:         time.Now,
	}
}

// CollectHighConfidenceNodes filters to opt-in vaults, then to nodes
// whose normalized confidence meets the threshold.
func (p *Pipeline) CollectHighConfidenceNodes(vaults []VaultSnapshot, threshold float64) []Candidate {
	var out []Candidate
	for _, v := range vaults {
		if !v.OptIn {
			continue
		}
		for _, n := range v.Nodes {
			if n.HelpfulCount >= threshold {
				out = append(out, Candidate{UserID: v.UserID, Node: n})
			}
		}
	}
	return out
}

// CheckAntiGaming reports whether the user is still under the weekly
// promotion cap for the current calendar week.
func (p *Pipeline) CheckAntiGaming(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.weeklyCountLocked(userID) < MaxWeeklyPromotions
}

func (p *Pipeline) weeklyKey(userID string) string {
	return userID + "|" + WeekStart(p.now()).Format("2006-01-02")
}

func (p *Pipeline) weeklyCountLocked(userID string) int {
	if log, ok := p.weekly[p.weeklyKey(userID)]; ok {
		return log.Count
	}
	return 0
}

func (p *Pipeline) incrementWeeklyLocked(userID string) {
	key := p.weeklyKey(userID)
	log, ok := p.weekly[key]
	if !ok {
		log = &WeeklyPromotionLog{UserID: userID, WeekStart: WeekStart(p.now())}
		p.weekly[key] = log
	}
	log.Count++
}

// Promote runs the full pipeline for one candidate node: anti-gaming
// throttle, anonymization, semantic then lexical duplicate detection,
// diversity accounting, scoring, publication, and subscriber
// notification. Any rejection returns nil; rejections are expected
// business outcomes, not errors.
func (p *Pipeline) Promote(ctx context.Context, node GraphNode, userID string) *GlobalPattern {
	if !p.CheckAntiGaming(userID) {
		p.logger.Info("promotion throttled", zap.String("user", userID))
		return nil
	}

	stripped := StripSensitiveData(node)
	fingerprint := Fingerprint(stripped.Content)

	release := p.guard.acquire(fingerprint)
	defer release()

	if patternID, ok := p.recent.Get(fingerprint); ok {
		p.creditContributor(patternID, userID)
		return nil
	}

	if matched := p.findDuplicate(ctx, stripped); matched != "" {
		p.creditContributor(matched, userID)
		return nil
	}
	if p.semanticDuplicate(ctx, stripped) {
		// The semantic collaborator does not say which pattern matched,
		// so there is nothing to credit.
		p.logger.Info("semantic duplicate rejected", zap.String("node", node.ID))
		return nil
	}

	contributor := HashContributor(userID)
	now := p.now()
	pattern := &GlobalPattern{
		ID:               uuid.NewString(),
		CanonicalContent: stripped.Content,
		OriginalNodeIDs:  []string{node.ID},
		Contributors:     []string{contributor},
		UserDiversity:    1,
		LastPromotedAt:   now,
		Language:         stripped.Language,
		Tags:             stripped.Tags,
		PromotionCount:   1,
		IsActive:         true,
	}
	pattern.SuccessScore = ScoreNode(stripped, pattern.UserDiversity, now)

	p.mu.Lock()
	p.patterns[pattern.ID] = pattern
	p.incrementWeeklyLocked(userID)
	p.mu.Unlock()
	p.recent.Add(fingerprint, pattern.ID)

	p.logger.Info("pattern promoted",
		zap.String("pattern", pattern.ID),
		zap.Float64("score", pattern.SuccessScore))

	p.notifySubscribers(notify.PromotionEvent{
		PatternID:        pattern.ID,
		CanonicalContent: pattern.CanonicalContent,
		SuccessScore:     pattern.SuccessScore,
		UserDiversity:    pattern.UserDiversity,
		Language:         pattern.Language,
		Tags:             pattern.Tags,
	})
	return pattern
}

// semanticDuplicate consults the embedding collaborator; any failure
// there degrades silently to lexical-only comparison.
func (p *Pipeline) semanticDuplicate(ctx context.Context, node GraphNode) bool {
	if p.sim == nil {
		return false
	}

	p.mu.RLock()
	existing := make([]similarity.Document, 0, len(p.patterns))
	for _, pat := range p.patterns {
		existing = append(existing, similarity.Document{ID: pat.ID, Content: pat.CanonicalContent})
	}
	p.mu.RUnlock()

	if len(existing) == 0 {
		return false
	}
	dup, err := p.sim.IsDuplicate(ctx, similarity.Document{ID: node.ID, Content: node.Content}, existing)
	if err != nil {
		p.logger.Warn("similarity service failed, lexical comparison only", zap.Error(err))
		return false
	}
	return dup
}

// findDuplicate runs the lexical Jaccard check against every existing
// canonical content and returns the first matching pattern id.
func (p *Pipeline) findDuplicate(_ context.Context, node GraphNode) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, pat := range p.patterns {
		if IsSimilar(node.Content, pat.CanonicalContent, SimilarityThreshold) {
			return pat.ID
		}
	}
	return ""
}

// creditContributor records a new distinct contributor on an existing
// pattern and rescores it. The promotion itself is still rejected; the
// corpus keeps one canonical copy, its diversity just grows.
func (p *Pipeline) creditContributor(patternID, userID string) {
	hash := HashContributor(userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	pattern, ok := p.patterns[patternID]
	if !ok || pattern.hasContributor(hash) {
		return
	}
	pattern.Contributors = append(pattern.Contributors, hash)
	pattern.UserDiversity = len(pattern.Contributors)
	pattern.SuccessScore = ScoreNode(GraphNode{
		Content:      pattern.CanonicalContent,
		HelpfulCount: 1,
		CreatedAt:    pattern.LastPromotedAt,
	}, pattern.UserDiversity, p.now())

	p.logger.Info("duplicate credited to existing pattern",
		zap.String("pattern", patternID),
		zap.Int("diversity", pattern.UserDiversity))
}

// ReportHarm increments a pattern's harm reports; at the threshold the
// pattern deactivates permanently. Unknown ids are a no-op.
func (p *Pipeline) ReportHarm(patternID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pattern, ok := p.patterns[patternID]
	if !ok {
		return
	}
	pattern.HarmReports++
	if pattern.HarmReports >= HarmDeactivationThreshold && pattern.IsActive {
		pattern.IsActive = false
		p.logger.Warn("pattern deactivated by harm reports",
			zap.String("pattern", patternID),
			zap.Int("reports", pattern.HarmReports))
	}
}

// ForPremium returns the top active patterns by success score, sliced
// to limit (default 12).
func (p *Pipeline) ForPremium(limit int) []*GlobalPattern {
	if limit <= 0 {
		limit = DefaultPremiumLimit
	}
	return p.topActive(limit)
}

// ForFree returns the top active patterns by success score, sliced to
// limit (default 4).
func (p *Pipeline) ForFree(limit int) []*GlobalPattern {
	if limit <= 0 {
		limit = DefaultFreeLimit
	}
	return p.topActive(limit)
}

func (p *Pipeline) topActive(limit int) []*GlobalPattern {
	p.mu.RLock()
	out := make([]*GlobalPattern, 0, len(p.patterns))
	for _, pat := range p.patterns {
		if pat.IsActive {
			out = append(out, pat)
		}
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessScore != out[j].SuccessScore {
			return out[i].SuccessScore > out[j].SuccessScore
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Subscribe registers an in-process promotion subscriber and returns
// its id for Unsubscribe. A panicking subscriber is caught and logged;
// it never aborts a promotion.
func (p *Pipeline) Subscribe(fn func(notify.PromotionEvent)) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	return id
}

// Unsubscribe removes a subscriber.
func (p *Pipeline) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscribers, id)
}

func (p *Pipeline) notifySubscribers(event notify.PromotionEvent) {
	p.mu.RLock()
	subs := make([]func(notify.PromotionEvent), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Warn("promotion subscriber panicked", zap.Any("panic", r))
				}
			}()
			fn(event)
		}()
	}
}

// Stats summarizes the corpus, including deactivated patterns.
type Stats struct {
	TotalPatterns  int `json:"total_patterns"`
	ActivePatterns int `json:"active_patterns"`
	TotalHarm      int `json:"total_harm_reports"`
	WeeklyLogs     int `json:"weekly_logs"`
}

// Statistics returns corpus counts. Deactivated patterns remain
// counted here even though neither tier distributes them.
func (p *Pipeline) Statistics() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Stats{TotalPatterns: len(p.patterns), WeeklyLogs: len(p.weekly)}
	for _, pat := range p.patterns {
		if pat.IsActive {
			st.ActivePatterns++
		}
		st.TotalHarm += pat.HarmReports
	}
	return st
}

// wisdomSnapshot is the persisted form of the global store.
type wisdomSnapshot struct {
	Version     int                   `json:"version"`
	Patterns    []*GlobalPattern      `json:"patterns"`
	WeeklyLogs  []*WeeklyPromotionLog `json:"weeklyLogs"`
	LastUpdated time.Time             `json:"lastUpdated"`
}

// Persist writes the full pattern and weekly-log collections to the
// blob store.
func (p *Pipeline) Persist() error {
	if p.blobs == nil {
		return nil
	}

	p.mu.RLock()
	snap := wisdomSnapshot{Version: snapshotVersion, LastUpdated: p.now()}
	for _, pat := range p.patterns {
		snap.Patterns = append(snap.Patterns, pat)
	}
	for _, log := range p.weekly {
		snap.WeeklyLogs = append(snap.WeeklyLogs, log)
	}
	p.mu.RUnlock()

	data, err := jsonx.MarshalIndent(snap)
	if err != nil {
		return err
	}
	return p.blobs.Write(SnapshotPath, data)
}

// Load fully replaces the in-memory pattern and weekly-log maps from
// the persisted snapshot. Missing or corrupt blobs are logged no-ops;
// Load reports whether a snapshot was restored.
func (p *Pipeline) Load() bool {
	if p.blobs == nil {
		return false
	}

	data, found, err := p.blobs.Read(SnapshotPath)
	if err != nil {
		p.logger.Warn("failed to read wisdom snapshot", zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	var snap wisdomSnapshot
	if err := jsonx.Unmarshal(data, &snap); err != nil {
		p.logger.Warn("corrupt wisdom snapshot, keeping in-memory state", zap.Error(err))
		return false
	}

	p.mu.Lock()
	p.patterns = make(map[string]*GlobalPattern, len(snap.Patterns))
	for _, pat := range snap.Patterns {
		p.patterns[pat.ID] = pat
	}
	p.weekly = make(map[string]*WeeklyPromotionLog, len(snap.WeeklyLogs))
	for _, log := range snap.WeeklyLogs {
		p.weekly[log.UserID+"|"+log.WeekStart.Local().Format("2006-01-02")] = log
	}
	p.mu.Unlock()

	p.logger.Info("loaded wisdom snapshot",
		zap.Int("patterns", len(snap.Patterns)),
		zap.Int("weekly_logs", len(snap.WeeklyLogs)))
	return true
}
