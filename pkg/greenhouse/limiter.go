package greenhouse

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterStore manages per-owner token buckets guarding the relay
// endpoint against bursts. Distinct from the WriteCache, which throttles
// persistence: a request can pass this guard and still be dropped by the
// cache.
type RateLimiterStore struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func (s *RateLimiterStore) GetLimiter(ownerID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ownerID]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[ownerID] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(ownerID string, ownerRate rate.Limit, ownerBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[ownerID] = rate.NewLimiter(ownerRate, ownerBurst)
}
