package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembership_IsMemberAndActiveWithLocal(t *testing.T) {
	m := NewMembership("A", nil, testMembers("B", "C"))

	assert.True(t, m.IsMember("B"))
	assert.False(t, m.IsMember("A"), "the local peer is not itself counted as an active remote member")

	active := m.ActiveWithLocal()
	assert.ElementsMatch(t, []NodeId{"A", "B", "C"}, keys(active))
}

func keys(m map[NodeId]struct{}) []NodeId {
	out := make([]NodeId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestThresholdAccept(t *testing.T) {
	p := ThresholdAccept{Ratio: 0.5}

	assert.False(t, p.Accept(1, 4))
	assert.True(t, p.Accept(2, 4))
}

func TestAnyOnlineAccept(t *testing.T) {
	p := AnyOnlineAccept{}

	assert.False(t, p.Accept(0, 4))
	assert.True(t, p.Accept(1, 4))
}

func TestMembershipView_ActivatePending(t *testing.T) {
	view := NewMembershipView("A", AnyOnlineAccept{}, 0)

	_, hasPrevious := view.Previous()
	assert.False(t, hasPrevious)

	_, hasPending := view.Pending()
	assert.False(t, hasPending)

	require.Equal(t, ErrNoPendingMembership, view.ActivatePending())

	next := NewMembership("A", nil, testMembers("B", "C"))
	view.SetPending(next)

	staged, ok := view.Pending()
	require.True(t, ok)
	assert.True(t, staged.IsMember("B"))

	require.NoError(t, view.ActivatePending())

	current := view.Current()
	assert.Equal(t, uint64(1), current.Generation)
	assert.True(t, current.IsMember("C"))

	previous, ok := view.Previous()
	require.True(t, ok)
	assert.False(t, previous.IsMember("B"), "generation 0's snapshot had no active members")

	_, hasPendingAfter := view.Pending()
	assert.False(t, hasPendingAfter, "pending is cleared once activated")
}

func TestMembershipView_RemovePending(t *testing.T) {
	view := NewMembershipView("A", AnyOnlineAccept{}, 0)

	_, ok := view.RemovePending()
	assert.False(t, ok)

	view.SetPending(NewMembership("A", nil, testMembers("B")))
	m, ok := view.RemovePending()
	require.True(t, ok)
	assert.True(t, m.IsMember("B"))

	_, stillPending := view.Pending()
	assert.False(t, stillPending)
}

func TestMembershipView_Accept(t *testing.T) {
	view := NewMembershipView("A", ThresholdAccept{Ratio: 0.5}, 0)

	assert.False(t, view.Accept(1, 4))
	assert.True(t, view.Accept(2, 4))
}
