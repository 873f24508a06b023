package core

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast/definition"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/metrics"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

func TestContextStore_PutAndGet(t *testing.T) {
	store := NewContextStore(10, definition.NewDefaultLogger(), metrics.NewMetrics(prometheus.NewRegistry()))

	ctx := types.NewConsensusContext("m1", "A", testMembers(t, "A", "B"), true)
	store.Put("m1", ctx)

	got, ok := store.Get("m1")
	require.True(t, ok)
	assert.Same(t, ctx, got)
	assert.Equal(t, 1, store.Len())
}

func TestContextStore_MissingID(t *testing.T) {
	store := NewContextStore(10, definition.NewDefaultLogger(), metrics.NewMetrics(prometheus.NewRegistry()))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestContextStore_DefaultsCapacityTo1000(t *testing.T) {
	store := NewContextStore(0, definition.NewDefaultLogger(), metrics.NewMetrics(prometheus.NewRegistry()))

	for i := 0; i < 1000; i++ {
		id := types.MessageId(fmt.Sprintf("id-%d", i))
		store.Put(id, types.NewConsensusContext(id, "A", testMembers(t, "A"), true))
	}
	assert.Equal(t, 1000, store.Len())
}

func TestContextStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store := NewContextStore(2, definition.NewDefaultLogger(), metrics.NewMetrics(prometheus.NewRegistry()))

	store.Put("first", types.NewConsensusContext("first", "A", testMembers(t, "A"), true))
	store.Put("second", types.NewConsensusContext("second", "A", testMembers(t, "A"), true))

	// Touch "first" so "second" becomes the least-recently-used entry.
	_, _ = store.Get("first")

	store.Put("third", types.NewConsensusContext("third", "A", testMembers(t, "A"), true))

	_, firstOK := store.Get("first")
	_, secondOK := store.Get("second")
	_, thirdOK := store.Get("third")

	assert.True(t, firstOK, "recently touched entries survive eviction")
	assert.False(t, secondOK, "the least-recently-used entry is evicted")
	assert.True(t, thirdOK)
	assert.Equal(t, 2, store.Len())
}

// testMembers is a small local helper (core package does not import the
// types package's own test helper of the same name).
func testMembers(t *testing.T, ids ...types.NodeId) map[types.NodeId]struct{} {
	t.Helper()
	out := make(map[types.NodeId]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
