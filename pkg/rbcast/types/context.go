package types

import "time"

// ConsensusContext is the per-instance state kept at a single node for one
// in-flight MessageId. Members is fixed at creation time and never mutated
// by a later membership change (invariant: members of a context is
// immutable after creation).
type ConsensusContext struct {
	ID             MessageId
	CreatedAt      time.Time
	OriginalSender bool
	LocalID        NodeId
	Members        map[NodeId]struct{}
	PrepareVotes   map[NodeId]struct{}
	CommitVotes    map[NodeId]struct{}
	Prepared       bool
	Committed      bool
}

// NewConsensusContext creates a fresh context. members is copied so that a
// later mutation of the caller's map never reaches back into the context.
func NewConsensusContext(id MessageId, localID NodeId, members map[NodeId]struct{}, originalSender bool) *ConsensusContext {
	snapshot := make(map[NodeId]struct{}, len(members))
	for n := range members {
		snapshot[n] = struct{}{}
	}
	return &ConsensusContext{
		ID:             id,
		CreatedAt:      time.Now(),
		OriginalSender: originalSender,
		LocalID:        localID,
		Members:        snapshot,
		PrepareVotes:   make(map[NodeId]struct{}),
		CommitVotes:    make(map[NodeId]struct{}),
	}
}

// IsMember reports whether n belongs to the context's fixed membership
// snapshot.
func (c *ConsensusContext) IsMember(n NodeId) bool {
	_, ok := c.Members[n]
	return ok
}

// AddPrepareVote idempotently records a PREPARE vote from n. It is a no-op
// (and returns false) if n is not a member of the context's snapshot.
func (c *ConsensusContext) AddPrepareVote(n NodeId) bool {
	if !c.IsMember(n) {
		return false
	}
	c.PrepareVotes[n] = struct{}{}
	return true
}

// AddCommitVote idempotently records a COMMIT vote from n. It is a no-op
// (and returns false) if n is not a member of the context's snapshot.
func (c *ConsensusContext) AddCommitVote(n NodeId) bool {
	if !c.IsMember(n) {
		return false
	}
	c.CommitVotes[n] = struct{}{}
	return true
}

// HasPreparedLocally reports whether the local node has already emitted its
// own PREPARE vote for this instance.
func (c *ConsensusContext) HasPreparedLocally() bool {
	_, ok := c.PrepareVotes[c.LocalID]
	return ok
}

// HasCommittedLocally reports whether the local node has already emitted
// its own COMMIT vote for this instance.
func (c *ConsensusContext) HasCommittedLocally() bool {
	_, ok := c.CommitVotes[c.LocalID]
	return ok
}

// MembersList returns the members of the context's snapshot as a slice,
// suitable for use as a BROADCAST peer list.
func (c *ConsensusContext) MembersList() []NodeId {
	out := make([]NodeId, 0, len(c.Members))
	for n := range c.Members {
		out = append(out, n)
	}
	return out
}
