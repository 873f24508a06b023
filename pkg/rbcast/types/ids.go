// Package types holds the wire-independent data model of the reliable
// broadcast core: message and node identifiers, the per-instance consensus
// context, and the membership snapshot mechanism.
package types

import "github.com/google/uuid"

// MessageId is an opaque identifier chosen by the original proposer of a
// consensus instance. Two messages sharing an id are the same instance.
type MessageId string

// NodeId is an opaque, total-ordered identifier of a peer.
type NodeId string

// Payload is an opaque byte string. The engine never interprets it.
type Payload []byte

// Certificate is the abstract authentication pair the application layer
// verifies; the engine never inspects its contents.
type Certificate struct {
	PublicKey []byte
	Signature []byte
}

// NewMessageId mints a fresh, globally unique MessageId for a locally
// originated proposal.
func NewMessageId() MessageId {
	return MessageId(uuid.NewString())
}
