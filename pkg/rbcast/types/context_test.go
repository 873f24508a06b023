package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMembers(ids ...NodeId) map[NodeId]struct{} {
	out := make(map[NodeId]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestNewConsensusContext_CopiesMembers(t *testing.T) {
	members := testMembers("A", "B", "C")
	ctx := NewConsensusContext("m1", "A", members, true)

	members["D"] = struct{}{}

	assert.False(t, ctx.IsMember("D"), "mutating the caller's map after construction must not reach the context")
	assert.True(t, ctx.IsMember("A"))
	assert.True(t, ctx.IsMember("B"))
	assert.True(t, ctx.IsMember("C"))
}

func TestConsensusContext_AddPrepareVote_RejectsNonMember(t *testing.T) {
	ctx := NewConsensusContext("m1", "A", testMembers("A", "B"), true)

	ok := ctx.AddPrepareVote("C")

	assert.False(t, ok)
	assert.NotContains(t, ctx.PrepareVotes, NodeId("C"))
}

func TestConsensusContext_AddPrepareVote_Idempotent(t *testing.T) {
	ctx := NewConsensusContext("m1", "A", testMembers("A", "B"), true)

	require.True(t, ctx.AddPrepareVote("B"))
	require.True(t, ctx.AddPrepareVote("B"))

	assert.Len(t, ctx.PrepareVotes, 1)
}

func TestConsensusContext_AddCommitVote_RejectsNonMember(t *testing.T) {
	ctx := NewConsensusContext("m1", "A", testMembers("A", "B"), true)

	ok := ctx.AddCommitVote("stranger")

	assert.False(t, ok)
	assert.NotContains(t, ctx.CommitVotes, NodeId("stranger"))
}

func TestConsensusContext_HasPreparedAndCommittedLocally(t *testing.T) {
	ctx := NewConsensusContext("m1", "A", testMembers("A", "B"), true)

	assert.False(t, ctx.HasPreparedLocally())
	assert.False(t, ctx.HasCommittedLocally())

	ctx.AddPrepareVote("A")
	assert.True(t, ctx.HasPreparedLocally())

	ctx.AddCommitVote("A")
	assert.True(t, ctx.HasCommittedLocally())
}

func TestConsensusContext_MembersList(t *testing.T) {
	ctx := NewConsensusContext("m1", "A", testMembers("A", "B", "C"), true)

	assert.ElementsMatch(t, []NodeId{"A", "B", "C"}, ctx.MembersList())
}
