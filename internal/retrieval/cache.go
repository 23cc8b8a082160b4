package retrieval

import (
	"sync"

	"policyrag/internal/domain"
	"policyrag/internal/index"
)

// IndexCache stores built indexes keyed by user and policy type. Updates
// are replace-only: a published index is never mutated, so readers always
// see either the fully-old or fully-new index.
type IndexCache interface {
	Get(user string, policyType domain.PolicyType) *index.Index
	Put(user string, policyType domain.PolicyType, idx *index.Index)
	InvalidateAll()
}

// NopCache never holds anything; every retrieval rebuilds its indexes,
// which is the reference behavior.
type NopCache struct{}

func (NopCache) Get(string, domain.PolicyType) *index.Index  { return nil }
func (NopCache) Put(string, domain.PolicyType, *index.Index) {}
func (NopCache) InvalidateAll()                              {}

// MemoryCache keeps indexes across requests until invalidated.
type MemoryCache struct {
	mu      sync.RWMutex
	indexes map[string]*index.Index
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{indexes: make(map[string]*index.Index)}
}

func (c *MemoryCache) Get(user string, policyType domain.PolicyType) *index.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexes[user+"/"+string(policyType)]
}

func (c *MemoryCache) Put(user string, policyType domain.PolicyType, idx *index.Index) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[user+"/"+string(policyType)] = idx
}

// InvalidateAll drops every cached index. Used when the underlying policy
// documents change on disk.
func (c *MemoryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes = make(map[string]*index.Index)
}
