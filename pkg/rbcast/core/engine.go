package core

import (
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/definition"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/metrics"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

// DispatchKind tells the outer dispatcher what to do with a Response.
type DispatchKind uint8

const (
	// KindBroadcast asks the dispatcher to send Response.Reply to every
	// peer in Response.Peers.
	KindBroadcast DispatchKind = iota
	// KindReply asks the dispatcher to unicast Response.Reply back to the
	// request's source peer.
	KindReply
	// KindDrop asks the dispatcher to discard the response; no frame is
	// sent.
	KindDrop
)

// Request is what the dispatcher hands the engine for every inbound frame.
type Request struct {
	Message    types.ReliableBroadcastMessage
	SourcePeer types.NodeId
}

// Response is what the engine hands back to the dispatcher.
type Response struct {
	Kind  DispatchKind
	Peers []types.NodeId
	Reply types.ReliableBroadcastMessage
}

func dropResponse() Response {
	return Response{Kind: KindDrop}
}

func ackResponse(id types.MessageId, localID types.NodeId) Response {
	return Response{
		Kind: KindReply,
		Reply: types.ReliableBroadcastMessage{
			ID:     id,
			NodeID: localID,
			Kind:   types.FrameAck,
		},
	}
}

func broadcastResponse(id types.MessageId, localID types.NodeId, kind types.FrameKind, payload types.Payload, peers []types.NodeId) Response {
	return Response{
		Kind:  KindBroadcast,
		Peers: peers,
		Reply: types.ReliableBroadcastMessage{
			ID:      id,
			NodeID:  localID,
			Kind:    kind,
			Payload: payload,
		},
	}
}

// ConsensusEngine is the state-machine executor. It holds no mutable global
// state beyond its injected collaborators, and Handle is its only mutating
// entry point: the surrounding dispatcher is expected to serialise calls
// onto it (spec.md section 5), so the engine itself performs no internal
// locking.
type ConsensusEngine struct {
	LocalID    types.NodeId
	Store      *ContextStore
	Quorum     QuorumPolicy
	Membership *types.MembershipView
	App        definition.Application
	Log        definition.Logger
	Metrics    *metrics.Metrics
}

// NewConsensusEngine wires the engine's collaborators together. contextCapacity
// of 0 defaults to spec.md's 1000-entry bound.
func NewConsensusEngine(localID types.NodeId, contextCapacity int, quorum QuorumPolicy, membership *types.MembershipView, app definition.Application, log definition.Logger, m *metrics.Metrics) *ConsensusEngine {
	if log == nil {
		log = definition.NewDefaultLogger()
	}
	return &ConsensusEngine{
		LocalID:    localID,
		Store:      NewContextStore(contextCapacity, log, m),
		Quorum:     quorum,
		Membership: membership,
		App:        app,
		Log:        log,
		Metrics:    m,
	}
}

// Propose locally originates a new consensus instance for payload, assigns
// it a fresh MessageId, and runs the PrePrepare transition as the original
// sender.
func (e *ConsensusEngine) Propose(payload types.Payload) (types.MessageId, Response, error) {
	id := types.NewMessageId()
	req := Request{
		Message: types.ReliableBroadcastMessage{
			ID:      id,
			NodeID:  e.LocalID,
			Kind:    types.FramePrePrepare,
			Payload: payload,
		},
		SourcePeer: e.LocalID,
	}
	resp, err := e.Handle(req)
	return id, resp, err
}

// Handle is the engine's single public operation: it routes req to the
// transition matching its frame kind and returns the outbound frame plus
// dispatch instructions.
func (e *ConsensusEngine) Handle(req Request) (Response, error) {
	switch req.Message.Kind {
	case types.FramePrePrepare:
		return e.handlePrePrepare(req)
	case types.FramePrepare:
		return e.handlePrepare(req)
	case types.FrameCommit:
		return e.handleCommit(req)
	case types.FrameAck:
		return e.handleAck(req)
	default:
		return dropResponse(), &UnknownBroadcastError{ID: req.Message.ID}
	}
}

// handlePrePrepare implements spec.md section 4.1's "On PrePrepare" - the
// local node is the original sender.
func (e *ConsensusEngine) handlePrePrepare(req Request) (Response, error) {
	id := req.Message.ID
	members := e.Membership.Current().ActiveWithLocal()
	ctx := types.NewConsensusContext(id, e.LocalID, members, true)
	ctx.AddPrepareVote(e.LocalID)

	payload, err := e.App.PrePrepare(id, req.SourcePeer, req.Message.Payload, ctx)
	if err != nil {
		e.Metrics.CallbackError("pre_prepare")
		return dropResponse(), &CallbackError{Hook: "pre_prepare", Cause: err}
	}
	if payload == nil {
		payload = req.Message.Payload
	}

	e.Store.Put(id, ctx)
	e.Log.Debugf("pre-prepared %s, broadcasting prepare to %d members", id, len(ctx.Members))
	return broadcastResponse(id, e.LocalID, types.FramePrepare, payload, ctx.MembersList()), nil
}

// handlePrepare implements spec.md section 4.1's "On Prepare".
func (e *ConsensusEngine) handlePrepare(req Request) (Response, error) {
	id := req.Message.ID
	sender := req.SourcePeer

	ctx, existed := e.Store.Get(id)
	if !existed {
		members := e.Membership.Current().ActiveWithLocal()
		ctx = types.NewConsensusContext(id, e.LocalID, members, false)
		e.Store.Put(id, ctx)
	}

	// Already-prepared is checked before the hook runs, per spec.md section
	// 4.1's "On Prepare" step 2 ("if already prepared, return a unicast Ack
	// and stop"): the sender's vote still grows prepare_votes toward the
	// full membership, but the hook must not fire again for this instance.
	if ctx.Prepared {
		if !ctx.AddPrepareVote(sender) {
			e.Metrics.NonMemberDropped()
			e.Log.Warnf("%v", &NonMemberError{Sender: sender})
		}
		return ackResponse(id, e.LocalID), nil
	}

	// The prepare hook runs before this sender's own vote is recorded, per
	// spec.md section 9's third carried-forward open question: it is
	// specified behaviour, not a bug. On error the vote is never added.
	payload, err := e.App.Prepare(id, sender, req.Message.Payload, ctx)
	if err != nil {
		e.Metrics.CallbackError("prepare")
		return dropResponse(), &CallbackError{Hook: "prepare", Cause: err}
	}

	if !ctx.AddPrepareVote(sender) {
		e.Metrics.NonMemberDropped()
		e.Log.Warnf("%v", &NonMemberError{Sender: sender})
	}

	if !ctx.HasPreparedLocally() {
		ctx.AddPrepareVote(e.LocalID)
		e.Log.Debugf("emitting own prepare vote for %s", id)
		return broadcastResponse(id, e.LocalID, types.FramePrepare, payload, ctx.MembersList()), nil
	}

	if e.Quorum.PrepareThreshold(len(ctx.PrepareVotes), len(ctx.Members)) {
		ctx.Prepared = true
		e.Metrics.PrepareQuorumReached()
		e.Log.Infof("prepare quorum reached for %s (%d/%d)", id, len(ctx.PrepareVotes), len(ctx.Members))

		if err := e.App.Prepared(ctx); err != nil {
			e.Metrics.CallbackError("prepared")
			return dropResponse(), &CallbackError{Hook: "prepared", Cause: err}
		}

		if ctx.OriginalSender {
			ctx.AddCommitVote(e.LocalID)
			e.Log.Debugf("original sender emitting commit for %s", id)
			return broadcastResponse(id, e.LocalID, types.FrameCommit, nil, ctx.MembersList()), nil
		}
	}

	return ackResponse(id, e.LocalID), nil
}

// handleCommit implements spec.md section 4.1's "On Commit". A commit for
// an id with no existing context - because none was ever created, or it
// was evicted - is an error, not a silent accept.
func (e *ConsensusEngine) handleCommit(req Request) (Response, error) {
	id := req.Message.ID
	origin := req.SourcePeer

	ctx, existed := e.Store.Get(id)
	if !existed {
		return dropResponse(), &UnknownBroadcastError{ID: id}
	}

	if !ctx.AddCommitVote(origin) {
		e.Metrics.NonMemberDropped()
		e.Log.Warnf("%v", &NonMemberError{Sender: origin})
	}

	// Recorded above so commit_votes keeps growing toward the full
	// membership even after this node has already committed locally.
	if ctx.Committed {
		return ackResponse(id, e.LocalID), nil
	}

	if !ctx.HasCommittedLocally() {
		ctx.AddCommitVote(e.LocalID)
		e.Log.Debugf("emitting own commit vote for %s", id)
		return broadcastResponse(id, e.LocalID, types.FrameCommit, nil, ctx.MembersList()), nil
	}

	if err := e.App.Commit(id, origin, ctx); err != nil {
		e.Metrics.CallbackError("commit")
		return dropResponse(), &CallbackError{Hook: "commit", Cause: err}
	}

	if ctx.Prepared && e.Quorum.CommitThreshold(len(ctx.CommitVotes), len(ctx.Members)) {
		ctx.Committed = true
		e.Metrics.CommitQuorumReached()
		e.Log.Infof("commit quorum reached for %s (%d/%d)", id, len(ctx.CommitVotes), len(ctx.Members))

		if err := e.App.Committed(ctx); err != nil {
			// Logged only: the context stays committed regardless, per
			// spec.md section 4.5's table.
			e.Metrics.CallbackError("committed")
			e.Log.Errorf("committed callback failed for %s: %v", id, err)
		}
	}

	return ackResponse(id, e.LocalID), nil
}

// handleAck is a no-op: acks are accepted and ignored. handle(ack); state
// == state_before always holds.
func (e *ConsensusEngine) handleAck(_ Request) (Response, error) {
	return dropResponse(), nil
}
