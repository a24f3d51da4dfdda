package wisdom

import (
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// promotionGuard serializes logically concurrent promotions of the same
// content. Duplicate checking and pattern insertion are not one atomic
// step, so without per-fingerprint exclusion two interleaved Promote
// calls could both pass the duplicate check before either commits.
type promotionGuard struct {
	mu    sync.Mutex
	locks map[string]*fingerprintLock
}

type fingerprintLock struct {
	mu   sync.Mutex
	refs int
}

func newPromotionGuard() *promotionGuard {
	return &promotionGuard{locks: make(map[string]*fingerprintLock)}
}

// acquire locks the fingerprint and returns the release func.
func (g *promotionGuard) acquire(fingerprint string) func() {
	g.mu.Lock()
	l, ok := g.locks[fingerprint]
	if !ok {
		l = &fingerprintLock{}
		g.locks[fingerprint] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, fingerprint)
		}
		g.mu.Unlock()
	}
}

// Fingerprint derives a stable identity for canonical content:
// lowercase, whitespace-collapsed, hashed.
func Fingerprint(content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}
