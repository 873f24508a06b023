// Package core holds the collaborators that sit between the transport and
// the consensus engine: the bounded context table and the transport
// abstraction. The single-goroutine dispatcher that wires them together
// lives in the outer rbcast package.
package core

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/definition"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/metrics"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

const defaultContextCapacity = 1000

// ContextStore is a size-bounded mapping from MessageId to
// *ConsensusContext, with LRU eviction on insertion overflow. Every lookup
// counts as a use for LRU purposes, so contexts still in active consensus
// are kept hot naturally under steady load. It is not persistent: a
// restart forgets every in-flight instance.
//
// The store assumes single-threaded access, matching spec.md section 5:
// Handle is the engine's only mutating entry point and the dispatcher
// serialises calls onto it, so the store never needs its own lock.
type ContextStore struct {
	cache   *lru.Cache[types.MessageId, *types.ConsensusContext]
	log     definition.Logger
	metrics *metrics.Metrics
}

// NewContextStore creates a store with the given capacity (0 defaults to
// the spec's 1000). Evicted entries are logged and counted, matching the
// CapacityEvictionError telemetry row in spec.md section 7.
func NewContextStore(capacity int, log definition.Logger, m *metrics.Metrics) *ContextStore {
	if capacity <= 0 {
		capacity = defaultContextCapacity
	}
	store := &ContextStore{log: log, metrics: m}
	cache, _ := lru.NewWithEvict[types.MessageId, *types.ConsensusContext](capacity, store.onEvict)
	store.cache = cache
	return store
}

func (s *ContextStore) onEvict(id types.MessageId, _ *types.ConsensusContext) {
	if s.log != nil {
		s.log.Warnf("%v", &CapacityEvictionError{ID: id})
	}
	s.metrics.CapacityEviction()
}

// Get returns the context for id, if present, marking it as recently used.
func (s *ContextStore) Get(id types.MessageId) (*types.ConsensusContext, bool) {
	return s.cache.Get(id)
}

// Put inserts or replaces the context for id. If the store is at capacity,
// the least-recently-used entry is evicted first.
func (s *ContextStore) Put(id types.MessageId, ctx *types.ConsensusContext) {
	s.cache.Add(id, ctx)
}

// Len reports the current number of tracked contexts.
func (s *ContextStore) Len() int {
	return s.cache.Len()
}
