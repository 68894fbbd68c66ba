package net

import (
	"errors"
	"sync"
)

// errPeerSetClosed is returned if a peer is attempted to be added or
// removed from the peer set after it has been closed.
var errPeerSetClosed = errors.New("net: peer set closed")

// errPeerAlreadyRegistered is returned if a peer is attempted to be
// added to the peer set, but one with the same id already exists.
var errPeerAlreadyRegistered = errors.New("net: peer already registered")

// errPeerNotRegistered is returned if a peer is attempted to be
// removed from a peer set, but no peer with the given id exists.
var errPeerNotRegistered = errors.New("net: peer not registered")

// PeerSet tracks the peers currently connected to this node, adapted
// from tos/peerset.go's registered/lock/closed shape. Where the
// teacher's peerset additionally tracked a satellite snap protocol
// waiting on its tos counterpart, this peerset has no satellite
// protocol to wait on — every peer speaks the same five topics (§4.8)
// from the moment its session completes.
type PeerSet struct {
	lock   sync.RWMutex
	peers  map[PeerID]*Peer
	closed bool
}

// NewPeerSet creates an empty peer set.
func NewPeerSet() *PeerSet {
	return &PeerSet{peers: make(map[PeerID]*Peer)}
}

// Register adds a newly connected peer to the set.
func (ps *PeerSet) Register(p *Peer) error {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	if ps.closed {
		return errPeerSetClosed
	}
	if _, ok := ps.peers[p.ID]; ok {
		return errPeerAlreadyRegistered
	}
	ps.peers[p.ID] = p
	return nil
}

// Unregister removes a peer from the set.
func (ps *PeerSet) Unregister(id PeerID) error {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	if ps.closed {
		return errPeerSetClosed
	}
	if _, ok := ps.peers[id]; !ok {
		return errPeerNotRegistered
	}
	delete(ps.peers, id)
	return nil
}

// Peer returns the peer with the given id, if connected.
func (ps *PeerSet) Peer(id PeerID) (*Peer, bool) {
	ps.lock.RLock()
	defer ps.lock.RUnlock()
	p, ok := ps.peers[id]
	return p, ok
}

// Len returns the number of connected peers.
func (ps *PeerSet) Len() int {
	ps.lock.RLock()
	defer ps.lock.RUnlock()
	return len(ps.peers)
}

// SubscribedTo returns every connected peer currently subscribed to
// topic, the set a host consults when deciding who to gossip a
// message to.
func (ps *PeerSet) SubscribedTo(t Topic) []*Peer {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	out := make([]*Peer, 0, len(ps.peers))
	for _, p := range ps.peers {
		if p.Subscribed(t) {
			out = append(out, p)
		}
	}
	return out
}

// Close marks the set closed; further Register/Unregister calls fail.
func (ps *PeerSet) Close() {
	ps.lock.Lock()
	defer ps.lock.Unlock()
	ps.closed = true
}

// IDs returns the ids of every connected peer.
func (ps *PeerSet) IDs() []PeerID {
	ps.lock.RLock()
	defer ps.lock.RUnlock()
	out := make([]PeerID, 0, len(ps.peers))
	for id := range ps.peers {
		out = append(out, id)
	}
	return out
}
