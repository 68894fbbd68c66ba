package net

import (
	"fmt"
	"time"

	"github.com/strandnet/strand/log"
	"github.com/strandnet/strand/protoerr"
)

// Handler processes one inbound message on a topic from peer.
type Handler func(peer PeerID, payload []byte) error

// Host dispatches inbound topic messages to registered handlers and
// tracks outbound request capacity per peer, the same division
// tos/handler_tos.go draws between "which peer set is this subprotocol
// message for" and protocols/tos's per-message decoders — generalized
// here from one subprotocol's messages to the five topics of §4.8.
type Host struct {
	Peers    *PeerSet
	Rates    *Tracker
	handlers map[Topic]Handler
	log      log.Logger
}

// NewHost creates a Host over an existing peer set.
func NewHost(peers *PeerSet) *Host {
	return &Host{
		Peers:    peers,
		Rates:    NewTracker(),
		handlers: make(map[Topic]Handler),
		log:      log.NewContext("module", "net"),
	}
}

// RegisterHandler installs the handler invoked for inbound messages on
// topic. Registering an unknown topic is a caller bug.
func (h *Host) RegisterHandler(t Topic, fn Handler) error {
	if !validTopic(t) {
		return fmt.Errorf("net: unknown topic %q", t)
	}
	h.handlers[t] = fn
	return nil
}

// Dispatch delivers an inbound message from peer on topic to its
// registered handler, refusing delivery if the peer never subscribed
// to the topic or no handler is registered for it.
func (h *Host) Dispatch(peer PeerID, t Topic, payload []byte) error {
	p, ok := h.Peers.Peer(peer)
	if !ok {
		return protoerr.ErrUnauthorized
	}
	if !p.Subscribed(t) {
		return fmt.Errorf("net: peer %s not subscribed to %q", peer.Hex(), t)
	}
	fn, ok := h.handlers[t]
	if !ok {
		return fmt.Errorf("net: no handler registered for %q", t)
	}
	start := time.Now()
	err := fn(peer, payload)
	h.Rates.Update(peer, t, time.Since(start), 1)
	if err != nil {
		h.log.Debug("topic handler failed", "topic", t, "peer", peer.Hex(), "err", err)
	}
	return err
}

// Broadcast returns every connected peer subscribed to topic, after
// reserving one outbound request slot against each via the rate
// tracker; peers with no spare capacity are skipped rather than
// blocking the whole broadcast (spec.md §5's overload semantics are
// per-peer, not all-or-nothing).
func (h *Host) Broadcast(t Topic) []*Peer {
	candidates := h.Peers.SubscribedTo(t)
	out := make([]*Peer, 0, len(candidates))
	for _, p := range candidates {
		if err := h.Rates.Reserve(p.ID, t); err != nil {
			h.log.Debug("skipping peer over capacity", "topic", t, "peer", p.ID.Hex())
			continue
		}
		out = append(out, p)
	}
	return out
}
