// Package net is the thin wiring layer between the core ledger
// packages (entry, gossip, anchor, oes, regen, erasure) and the wire:
// peer identity, an encrypted transport handshake, topic dispatch, and
// backpressure. It intentionally stays thin — the protocol semantics
// live in the packages above it, the same division tos/handler_tos.go
// and p2p/rlpx draw between "the tos subprotocol" and "the transport
// it rides on".
package net

import (
	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

// PeerID identifies a peer by the domain-separated hash of its hybrid
// signing public key, the same identity convention entry.Entry.Creator
// and gossip.Event.Creator already use (crypto.DomainEntry), so a
// peer id and an entry creator id are the same value for one node.
type PeerID = common.NodeID

// PeerIDFromSigningKey derives a PeerID from a node's hybrid signing
// public key.
func PeerIDFromSigningKey(pub *crypto.HybridPublicKey) PeerID {
	return crypto.Hash(crypto.DomainEntry, pub.Bytes())
}

// Peer is one connected remote node: its identity, the topics it has
// subscribed to, and the shared transport secret negotiated with it.
type Peer struct {
	ID      PeerID
	Topics  map[Topic]bool
	Session *Session
}

// NewPeer creates a Peer record for an established session.
func NewPeer(id PeerID, session *Session) *Peer {
	return &Peer{ID: id, Topics: make(map[Topic]bool), Session: session}
}

// Subscribe marks the peer as interested in topic.
func (p *Peer) Subscribe(t Topic) {
	p.Topics[t] = true
}

// Unsubscribe removes the peer's interest in topic.
func (p *Peer) Unsubscribe(t Topic) {
	delete(p.Topics, t)
}

// Subscribed reports whether the peer has subscribed to topic.
func (p *Peer) Subscribed(t Topic) bool {
	return p.Topics[t]
}
