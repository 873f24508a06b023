// Package core implements the reliable-broadcast consensus engine's inner
// collaborators: the three-phase (pre-prepare, prepare, commit) voting
// state machine, its quorum predicate, the bounded context table, and the
// transport boundary. The outer rbcast package wires these into a
// Configuration and a Dispatcher; the application callback boundary and
// logger live in definition.
package core

import (
	"fmt"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

// UnknownBroadcastError is returned when a frame's inner variant cannot be
// handled, or a COMMIT arrives for a MessageId with no context - either
// because none was ever created or because it was evicted from the bounded
// context store.
type UnknownBroadcastError struct {
	ID types.MessageId
}

func (e *UnknownBroadcastError) Error() string {
	return fmt.Sprintf("unknown broadcast: %s", e.ID)
}

// CallbackError wraps a failure returned by one of the five Application
// hooks. The engine never retries the callback; the request that triggered
// it is dropped without mutating further state.
type CallbackError struct {
	Hook  string
	Cause error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("application callback %q failed: %v", e.Hook, e.Cause)
}

func (e *CallbackError) Unwrap() error {
	return e.Cause
}

// NonMemberError marks a vote from a sender outside the context's
// membership snapshot. It is never returned from Handle - the vote is
// silently dropped and counted in telemetry - but it is exposed so callers
// can distinguish the reason in logs.
type NonMemberError struct {
	Sender types.NodeId
}

func (e *NonMemberError) Error() string {
	return fmt.Sprintf("sender %s is not a member of the instance's membership snapshot", e.Sender)
}

// CapacityEvictionError is not a fault in itself: the 1000-entry context
// store cap is a pragmatic liveness bound (spec.md section 9), not a safety
// property. It is surfaced so the logger/metrics layer can record when an
// id's follow-on messages started turning into UnknownBroadcastError.
type CapacityEvictionError struct {
	ID types.MessageId
}

func (e *CapacityEvictionError) Error() string {
	return fmt.Sprintf("context for %s was evicted from the bounded store", e.ID)
}
