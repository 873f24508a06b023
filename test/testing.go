// Package test provides an in-process cluster harness for exercising the
// reliable broadcast engine end to end, across its real dispatcher and
// transport boundary rather than calling ConsensusEngine.Handle directly.
// Grounded on the teacher's own test.CreateCluster/UnityCluster bootstrap
// (test/testing.go), generalised from a GM-cast partition to a flat set of
// nodes exchanging ReliableBroadcastMessage frames.
package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/core"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/definition"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/metrics"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

// Alphabet mirrors the teacher's fuzzy test corpus (fuzzy/commit_test.go's
// string slice of letters), used here as a source of distinct payloads.
var Alphabet = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
}

// RecordingApplication is a definition.Application that records every id
// that reaches commit quorum at its node, for test assertions.
type RecordingApplication struct {
	mu        sync.Mutex
	committed map[types.MessageId]types.Payload
}

func NewRecordingApplication() *RecordingApplication {
	return &RecordingApplication{committed: make(map[types.MessageId]types.Payload)}
}

func (a *RecordingApplication) PrePrepare(_ types.MessageId, _ types.NodeId, payload types.Payload, _ *types.ConsensusContext) (types.Payload, error) {
	return payload, nil
}

func (a *RecordingApplication) Prepare(_ types.MessageId, _ types.NodeId, payload types.Payload, _ *types.ConsensusContext) (types.Payload, error) {
	return payload, nil
}

func (a *RecordingApplication) Prepared(_ *types.ConsensusContext) error { return nil }

func (a *RecordingApplication) Commit(_ types.MessageId, _ types.NodeId, _ *types.ConsensusContext) error {
	return nil
}

func (a *RecordingApplication) Committed(ctx *types.ConsensusContext) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.committed[ctx.ID] = nil
	return nil
}

// HasCommitted reports whether id reached commit quorum at this node.
func (a *RecordingApplication) HasCommitted(id types.MessageId) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.committed[id]
	return ok
}

// CommittedCount returns how many distinct ids have committed at this node.
func (a *RecordingApplication) CommittedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.committed)
}

// Node is a single in-process cluster member: an engine, its recording
// application, and the dispatcher goroutine draining its transport channel.
type Node struct {
	ID     types.NodeId
	Engine *core.ConsensusEngine
	App    *RecordingApplication
}

// Cluster is a fixed-size set of nodes fully connected over a shared
// LoopbackTransport, each running its own Dispatcher.
type Cluster struct {
	Nodes     map[types.NodeId]*Node
	Order     []types.NodeId
	transport *core.LoopbackTransport

	cancel context.CancelFunc
	wg     sync.WaitGroup
	idx    int
	mu     sync.Mutex
}

// NewCluster builds a fully connected cluster of size nodes named
// "<namePrefix>-0".."<namePrefix>-(size-1)" and starts every node's
// dispatcher loop.
func NewCluster(namePrefix string, size int) *Cluster {
	ids := make([]types.NodeId, size)
	for i := 0; i < size; i++ {
		ids[i] = types.NodeId(fmt.Sprintf("%s-%d", namePrefix, i))
	}

	transport := core.NewLoopbackTransport()
	ctx, cancel := context.WithCancel(context.Background())

	cluster := &Cluster{
		Nodes:     make(map[types.NodeId]*Node, size),
		Order:     ids,
		transport: transport,
		cancel:    cancel,
	}

	active := make(map[types.NodeId]struct{}, size)
	for _, id := range ids {
		active[id] = struct{}{}
	}

	for _, id := range ids {
		peers := make(map[types.NodeId]struct{}, size-1)
		for other := range active {
			if other != id {
				peers[other] = struct{}{}
			}
		}

		view := types.NewMembershipView(id, types.AnyOnlineAccept{}, 0)
		view.SetPending(types.NewMembership(id, nil, peers))
		if err := view.ActivatePending(); err != nil {
			panic(err) // unreachable: a freshly staged snapshot is always present
		}

		app := NewRecordingApplication()
		log := definition.NewDefaultLogger()
		m := metrics.NewMetrics(prometheus.NewRegistry())
		engine := core.NewConsensusEngine(id, 0, core.DefaultQuorum{}, view, app, log, m)

		inbound := transport.Register(id, 256)
		dispatcher := rbcast.NewDispatcher(engine, transport, inbound, log)

		cluster.Nodes[id] = &Node{ID: id, Engine: engine, App: app}

		cluster.wg.Add(1)
		go func() {
			defer cluster.wg.Done()
			dispatcher.Run(ctx)
		}()
	}

	return cluster
}

// Next round-robins through the cluster's nodes, matching the teacher's
// UnityCluster.Next rotation used to spread writes across members.
func (c *Cluster) Next() *Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.Nodes[c.Order[c.idx%len(c.Order)]]
	c.idx++
	return n
}

// Propose originates a new consensus instance at from and gossips the
// resulting PrePrepare-triggered PREPARE frame to every member of the
// instance, the origin included - the same "first hop" a dispatcher would
// perform for a locally submitted request.
func (c *Cluster) Propose(from types.NodeId, payload types.Payload) (types.MessageId, error) {
	node := c.Nodes[from]
	id, resp, err := node.Engine.Propose(payload)
	if err != nil {
		return id, err
	}
	if resp.Kind == core.KindBroadcast {
		if err := c.transport.Broadcast(context.Background(), resp.Peers, resp.Reply); err != nil {
			return id, err
		}
	}
	return id, nil
}

// WaitCommitted polls every node until id has committed everywhere or
// timeout elapses, returning false on timeout.
func (c *Cluster) WaitCommitted(id types.MessageId, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		allCommitted := true
		for _, n := range c.Nodes {
			if !n.App.HasCommitted(id) {
				allCommitted = false
				break
			}
		}
		if allCommitted {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// Shutdown cancels every dispatcher's run loop and waits for them to drain.
func (c *Cluster) Shutdown() {
	c.cancel()
	c.wg.Wait()
}
