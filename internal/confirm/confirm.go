// Package confirm holds short-lived confirmations for destructive actions
// such as leaving a household. Each key has at most one pending token.
package confirm

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// State is the outcome of a confirmation attempt.
type State string

const (
	StateAwaiting  State = "awaiting"
	StateConfirmed State = "confirmed"
	StateExpired   State = "expired"
)

type pending struct {
	token     string
	expiresAt time.Time
}

// Store tracks pending confirmations in a TTL cache keyed by identity.
type Store struct {
	ttl     time.Duration
	now     func() time.Time
	pending *ttlcache.Cache[string, pending]
}

// NewStore creates a Store whose tokens live for ttl.
func NewStore(ttl time.Duration) *Store {
	cache := ttlcache.New[string, pending](
		ttlcache.WithTTL[string, pending](ttl),
		ttlcache.WithDisableTouchOnHit[string, pending](),
	)
	return &Store{ttl: ttl, now: time.Now, pending: cache}
}

// TTL returns how long a token stays valid.
func (s *Store) TTL() time.Duration { return s.ttl }

// Begin starts (or restarts) a confirmation for key and returns its token.
func (s *Store) Begin(key string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.pending.DeleteExpired()
	s.pending.Set(key, pending{token: token, expiresAt: s.now().Add(s.ttl)}, ttlcache.DefaultTTL)
	return token, nil
}

// Confirm consumes the token for key. An unknown, mismatched or stale token
// yields StateExpired and the caller has to Begin again.
func (s *Store) Confirm(key, token string) State {
	item, ok := s.pending.GetAndDelete(key)
	if !ok || item == nil {
		return StateExpired
	}
	p := item.Value()
	if p.token != token || !s.now().Before(p.expiresAt) {
		return StateExpired
	}
	return StateConfirmed
}

// Status reports whether key has a live pending token and how long it has left.
func (s *Store) Status(key string) (State, time.Duration) {
	item := s.pending.Get(key)
	if item == nil {
		return StateExpired, 0
	}
	left := item.Value().expiresAt.Sub(s.now())
	if left <= 0 {
		return StateExpired, 0
	}
	return StateAwaiting, left
}
