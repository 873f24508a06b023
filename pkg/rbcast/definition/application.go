package definition

import "github.com/jabolina/reliable-broadcast/pkg/rbcast/types"

// Application is the external collaborator invoked at five synchronous,
// fallible hook points. It may validate, transform, or refuse a payload at
// each phase; the engine never retries a failed hook.
type Application interface {
	// PrePrepare is invoked when the local node initiates a consensus
	// instance. A non-nil returned payload replaces the one broadcast;
	// returning the original payload unchanged is also valid. An error
	// aborts the proposal: no PREPARE is broadcast.
	PrePrepare(id types.MessageId, sender types.NodeId, payload types.Payload, ctx *types.ConsensusContext) (types.Payload, error)

	// Prepare is invoked when a PREPARE frame is received for an instance
	// that has not yet reached prepare quorum locally, before the local
	// node's own vote is recorded - see spec.md section 9's third open
	// question. Once the instance is prepared, later PREPARE frames are
	// acknowledged without invoking it. An error aborts processing of that frame: no PREPARE
	// is (re-)broadcast and the sender's vote is not recorded.
	Prepare(id types.MessageId, sender types.NodeId, payload types.Payload, ctx *types.ConsensusContext) (types.Payload, error)

	// Prepared is invoked once when prepare quorum is reached. An error is
	// returned as a CallbackError and prepared remains true; on the original
	// sender, no COMMIT is broadcast from that step. A COMMIT received later
	// from another member is still processed as usual, including emitting
	// this node's own COMMIT vote.
	Prepared(ctx *types.ConsensusContext) error

	// Commit is invoked once a COMMIT frame has been accepted (and after
	// the local node has already emitted its own COMMIT vote). An error
	// aborts processing of that frame.
	Commit(id types.MessageId, origin types.NodeId, ctx *types.ConsensusContext) error

	// Committed is invoked once when commit quorum is reached. An error is
	// logged only; the context stays committed regardless.
	Committed(ctx *types.ConsensusContext) error
}

// NoopApplication is a trivial Application that accepts every payload
// unchanged and never refuses. It is useful as a base to embed in tests
// that only care about a subset of the hooks.
type NoopApplication struct{}

func (NoopApplication) PrePrepare(_ types.MessageId, _ types.NodeId, payload types.Payload, _ *types.ConsensusContext) (types.Payload, error) {
	return payload, nil
}

func (NoopApplication) Prepare(_ types.MessageId, _ types.NodeId, payload types.Payload, _ *types.ConsensusContext) (types.Payload, error) {
	return payload, nil
}

func (NoopApplication) Prepared(_ *types.ConsensusContext) error { return nil }

func (NoopApplication) Commit(_ types.MessageId, _ types.NodeId, _ *types.ConsensusContext) error {
	return nil
}

func (NoopApplication) Committed(_ *types.ConsensusContext) error { return nil }
