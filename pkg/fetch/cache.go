package fetch

import (
	"context"
	"time"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/patrickmn/go-cache"
)

// DefaultRuleCacheTTL is how long a fetched rule body is reused.
const DefaultRuleCacheTTL = 10 * time.Minute

// RuleCache memoizes rule bodies by URL. Failures are never cached.
type RuleCache struct {
	fetcher ports.TextFetcher
	cache   *cache.Cache
}

// NewRuleCache wraps fetcher with a TTL cache. Non-positive ttl selects the default.
func NewRuleCache(fetcher ports.TextFetcher, ttl time.Duration) *RuleCache {
	if ttl <= 0 {
		ttl = DefaultRuleCacheTTL
	}
	return &RuleCache{
		fetcher: fetcher,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Get returns the rule body at url, fetching it on a miss.
func (r *RuleCache) Get(ctx context.Context, url string) (string, error) {
	if x, found := r.cache.Get(url); found {
		return x.(string), nil
	}
	body, err := r.fetcher.FetchText(ctx, domain.FetchRuleBody, url)
	if err != nil {
		return "", err
	}
	r.cache.Set(url, body, cache.DefaultExpiration)
	return body, nil
}

// Len returns the number of cached bodies.
func (r *RuleCache) Len() int {
	return r.cache.ItemCount()
}

// Flush drops every cached body.
func (r *RuleCache) Flush() {
	r.cache.Flush()
}
