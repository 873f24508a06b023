package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

// Transport is the boundary the dispatcher drives to actually move bytes
// between nodes. It is deliberately narrow - peer discovery, encryption,
// and multiplexing are out of scope for the core (spec.md section 1) and
// live entirely behind this interface, grounded on the teacher's own
// core.Transport shape but trimmed to the two verbs the dispatcher needs:
// the transport does not hand frames back through a Listen() channel here,
// it is handed them directly by whatever owns the socket.
type Transport interface {
	// Send unicasts msg to a single peer.
	Send(ctx context.Context, to types.NodeId, msg types.ReliableBroadcastMessage) error

	// Broadcast sends msg to every peer in to. Implementations are free to
	// fan this out to per-peer Send calls.
	Broadcast(ctx context.Context, to []types.NodeId, msg types.ReliableBroadcastMessage) error
}

// LoopbackTransport is an in-memory Transport fake for tests and
// single-process demos: every NodeId is backed by a buffered channel that a
// Dispatcher for that node drains.
type LoopbackTransport struct {
	mu    sync.RWMutex
	peers map[types.NodeId]chan Delivery
}

// Delivery pairs a received frame with the peer it is addressed to, for a
// LoopbackTransport consumer.
type Delivery struct {
	To  types.NodeId
	Msg types.ReliableBroadcastMessage
}

// NewLoopbackTransport creates an empty in-memory transport; peers must be
// registered with Register before they can receive frames.
func NewLoopbackTransport() *LoopbackTransport {
	return &LoopbackTransport{peers: make(map[types.NodeId]chan Delivery)}
}

// Register creates (or replaces) the inbound channel for id, with the
// given buffer depth, and returns it for the caller's dispatcher to drain.
func (t *LoopbackTransport) Register(id types.NodeId, buffer int) <-chan Delivery {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan Delivery, buffer)
	t.peers[id] = ch
	return ch
}

// Unregister closes and removes id's inbound channel.
func (t *LoopbackTransport) Unregister(id types.NodeId) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ch, ok := t.peers[id]; ok {
		close(ch)
		delete(t.peers, id)
	}
}

func (t *LoopbackTransport) Send(ctx context.Context, to types.NodeId, msg types.ReliableBroadcastMessage) error {
	t.mu.RLock()
	ch, ok := t.peers[to]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("loopback transport: unknown peer %s", to)
	}
	select {
	case ch <- Delivery{To: to, Msg: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *LoopbackTransport) Broadcast(ctx context.Context, to []types.NodeId, msg types.ReliableBroadcastMessage) error {
	for _, peer := range to {
		if err := t.Send(ctx, peer, msg); err != nil {
			return err
		}
	}
	return nil
}
