package rbcast

import (
	"context"
	"sync"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast/core"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/definition"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/metrics"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

// Dispatcher takes inbound deliveries (frames already decoded into
// ReliableBroadcastMessage values), routes them to a ConsensusEngine, and
// places any resulting outbound frames on the transport's send path. It
// owns the single inbound channel that serialises calls onto the engine -
// spec.md section 5's "actor" model - so the engine itself never needs
// internal locking. Grounded on the teacher's Unity run/poll/process loop
// (protocol.go), generalised from a GM-cast group to an arbitrary
// ReliableBroadcastMessage stream.
type Dispatcher struct {
	engine    *core.ConsensusEngine
	transport core.Transport
	inbound   <-chan core.Delivery
	log       definition.Logger

	shutdownOnce sync.Once
	done         chan struct{}
}

// NewDispatcher builds a Dispatcher around an already-constructed engine, a
// transport, and the channel of inbound deliveries addressed to this node
// (e.g. from LoopbackTransport.Register).
func NewDispatcher(engine *core.ConsensusEngine, transport core.Transport, inbound <-chan core.Delivery, log definition.Logger) *Dispatcher {
	if log == nil {
		log = definition.NewDefaultLogger()
	}
	return &Dispatcher{
		engine:    engine,
		transport: transport,
		inbound:   inbound,
		log:       log,
		done:      make(chan struct{}),
	}
}

// NewEngine is a convenience constructor assembling a ConsensusEngine from a
// Configuration, membership view, application, logger, and metrics
// instance - the wiring spec.md section 2's component diagram describes.
func NewEngine(cfg Configuration, membership *types.MembershipView, app definition.Application, log definition.Logger, m *metrics.Metrics) *core.ConsensusEngine {
	return core.NewConsensusEngine(cfg.LocalNodeID, cfg.ContextCacheCapacity, cfg.Quorum, membership, app, log, m)
}

// Run processes inbound deliveries until the channel is closed, ctx is
// cancelled, or Shutdown is called. When the inbound channel is closed,
// every delivery still buffered in it is processed before Run returns. On
// cancellation or Shutdown, Run returns without processing the deliveries
// still queued. In-flight contexts are dropped either way.
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.log.Infof("dispatcher for %s shutting down", d.engine.LocalID)
	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case delivery, ok := <-d.inbound:
			if !ok {
				return
			}
			d.process(ctx, delivery)
		}
	}
}

// Shutdown signals Run to stop; deliveries still queued on the inbound
// channel are not processed. It is safe to call more than once.
func (d *Dispatcher) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.done)
	})
}

func (d *Dispatcher) process(ctx context.Context, delivery core.Delivery) {
	req := core.Request{
		Message:    delivery.Msg,
		SourcePeer: delivery.Msg.NodeID,
	}

	resp, err := d.engine.Handle(req)
	if err != nil {
		d.log.Warnf("handling %s from %s for %s failed: %v", delivery.Msg.Kind, req.SourcePeer, delivery.Msg.ID, err)
		return
	}

	switch resp.Kind {
	case core.KindDrop:
		return
	case core.KindReply:
		if err := d.transport.Send(ctx, req.SourcePeer, resp.Reply); err != nil {
			d.log.Errorf("failed replying to %s for %s: %v", req.SourcePeer, resp.Reply.ID, err)
		}
	case core.KindBroadcast:
		if err := d.transport.Broadcast(ctx, resp.Peers, resp.Reply); err != nil {
			d.log.Errorf("failed broadcasting %s for %s: %v", resp.Reply.Kind, resp.Reply.ID, err)
		}
	}
}
