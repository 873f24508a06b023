package types

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PeerAddress is the opaque transport address associated with a NodeId.
// The core never dials it; it is carried only for the dispatcher's benefit.
type PeerAddress string

// Membership is an immutable snapshot of the peer set authorised to vote.
type Membership struct {
	Generation    uint64
	LocalPeerID   NodeId
	AllMembers    map[NodeId]PeerAddress
	ActiveMembers map[NodeId]struct{}
}

// NewMembership builds a snapshot from the given member addresses and the
// subset currently considered active.
func NewMembership(localPeerID NodeId, all map[NodeId]PeerAddress, active map[NodeId]struct{}) Membership {
	allCopy := make(map[NodeId]PeerAddress, len(all))
	for k, v := range all {
		allCopy[k] = v
	}
	activeCopy := make(map[NodeId]struct{}, len(active))
	for k := range active {
		activeCopy[k] = struct{}{}
	}
	return Membership{
		LocalPeerID:   localPeerID,
		AllMembers:    allCopy,
		ActiveMembers: activeCopy,
	}
}

// IsMember reports whether id is in the active member set.
func (m Membership) IsMember(id NodeId) bool {
	_, ok := m.ActiveMembers[id]
	return ok
}

// ActiveWithLocal returns a fresh set containing every active member plus
// the local peer id. This is the snapshot a new ConsensusContext is created
// with.
func (m Membership) ActiveWithLocal() map[NodeId]struct{} {
	out := make(map[NodeId]struct{}, len(m.ActiveMembers)+1)
	for n := range m.ActiveMembers {
		out[n] = struct{}{}
	}
	out[m.LocalPeerID] = struct{}{}
	return out
}

// AcceptPolicy decides whether enough peers are connected for the
// membership to be considered usable.
type AcceptPolicy interface {
	Accept(connected, total int) bool
}

// ThresholdAccept requires connected >= floor(ratio*total).
type ThresholdAccept struct {
	Ratio float64
}

func (t ThresholdAccept) Accept(connected, total int) bool {
	minimum := int(float64(total) * t.Ratio)
	return connected >= minimum
}

// AnyOnlineAccept requires at least one connected peer.
type AnyOnlineAccept struct{}

func (AnyOnlineAccept) Accept(connected, total int) bool {
	return connected > 0
}

const defaultHistoryCapacity = 1000

// MembershipView maintains the active, previous, and pending peer sets and
// answers "is X a member now?". Snapshots are numbered by a monotonically
// increasing generation; the history of past generations is bounded by an
// LRU cache so it ages out under a long-running node.
type MembershipView struct {
	mu         sync.Mutex
	generation uint64
	current    Membership
	history    *lru.Cache[uint64, Membership]
	pending    *Membership
	accept     AcceptPolicy
}

// NewMembershipView creates a view whose initial snapshot (generation 0)
// contains only the local peer, and whose history buffer holds up to
// historyCapacity past snapshots (0 defaults to 1000, matching spec.md's
// 1000-entry history buffer).
func NewMembershipView(localPeerID NodeId, accept AcceptPolicy, historyCapacity int) *MembershipView {
	if historyCapacity <= 0 {
		historyCapacity = defaultHistoryCapacity
	}
	cache, _ := lru.New[uint64, Membership](historyCapacity)
	initial := NewMembership(localPeerID, nil, nil)
	cache.Add(0, initial)
	return &MembershipView{
		current: initial,
		history: cache,
		accept:  accept,
	}
}

// Current returns the active membership snapshot. It is always defined.
func (v *MembershipView) Current() Membership {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Previous returns the snapshot immediately preceding the current one, if
// it is still within the history buffer.
func (v *MembershipView) Previous() (Membership, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.generation == 0 {
		return Membership{}, false
	}
	return v.history.Get(v.generation - 1)
}

// SetPending stages a membership snapshot that has not yet been activated.
func (v *MembershipView) SetPending(m Membership) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := m
	v.pending = &cp
}

// RemovePending discards the staged snapshot, if any, and returns it.
func (v *MembershipView) RemovePending() (Membership, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return Membership{}, false
	}
	m := *v.pending
	v.pending = nil
	return m, true
}

// Pending returns the currently staged snapshot, if any.
func (v *MembershipView) Pending() (Membership, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return Membership{}, false
	}
	return *v.pending, true
}

// ErrNoPendingMembership is returned by ActivatePending when there is
// nothing staged to promote.
var ErrNoPendingMembership = fmt.Errorf("no pending membership to activate")

// ActivatePending atomically promotes the pending snapshot to current,
// advancing the generation counter and pushing the outgoing current
// snapshot into the bounded history buffer. It never mutates contexts
// already created against the old snapshot: ConsensusContext copies the
// member set by value at creation time.
func (v *MembershipView) ActivatePending() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return ErrNoPendingMembership
	}
	next := *v.pending
	v.pending = nil

	v.history.Add(v.generation, v.current)
	v.generation++
	next.Generation = v.generation
	v.current = next
	return nil
}

// Accept applies the configured AcceptPolicy.
func (v *MembershipView) Accept(connected, total int) bool {
	v.mu.Lock()
	policy := v.accept
	v.mu.Unlock()
	return policy.Accept(connected, total)
}
