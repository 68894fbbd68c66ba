package net

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/common"
)

func TestHostDispatchRoutesToRegisteredHandler(t *testing.T) {
	ps := NewPeerSet()
	peer := NewPeer(common.BytesToHash([]byte("p1")), &Session{})
	peer.Subscribe(TopicEntries)
	require.NoError(t, ps.Register(peer))

	h := NewHost(ps)
	var received []byte
	require.NoError(t, h.RegisterHandler(TopicEntries, func(id PeerID, payload []byte) error {
		received = payload
		return nil
	}))

	require.NoError(t, h.Dispatch(peer.ID, TopicEntries, []byte("hello")))
	require.Equal(t, []byte("hello"), received)
}

func TestHostDispatchRejectsUnsubscribedPeer(t *testing.T) {
	ps := NewPeerSet()
	peer := NewPeer(common.BytesToHash([]byte("p1")), &Session{})
	require.NoError(t, ps.Register(peer))

	h := NewHost(ps)
	require.NoError(t, h.RegisterHandler(TopicEntries, func(PeerID, []byte) error { return nil }))

	err := h.Dispatch(peer.ID, TopicEntries, nil)
	require.Error(t, err)
}

func TestHostDispatchPropagatesHandlerError(t *testing.T) {
	ps := NewPeerSet()
	peer := NewPeer(common.BytesToHash([]byte("p1")), &Session{})
	peer.Subscribe(TopicGossip)
	require.NoError(t, ps.Register(peer))

	h := NewHost(ps)
	wantErr := errors.New("boom")
	require.NoError(t, h.RegisterHandler(TopicGossip, func(PeerID, []byte) error { return wantErr }))

	require.ErrorIs(t, h.Dispatch(peer.ID, TopicGossip, nil), wantErr)
}

func TestHostRegisterHandlerRejectsUnknownTopic(t *testing.T) {
	h := NewHost(NewPeerSet())
	err := h.RegisterHandler(Topic("bogus"), func(PeerID, []byte) error { return nil })
	require.Error(t, err)
}

func TestHostBroadcastSkipsPeersOverCapacity(t *testing.T) {
	ps := NewPeerSet()
	peer := NewPeer(common.BytesToHash([]byte("p1")), &Session{})
	peer.Subscribe(TopicAnchors)
	require.NoError(t, ps.Register(peer))

	h := NewHost(ps)
	for i := 0; i < maxInFlight; i++ {
		require.NoError(t, h.Rates.Reserve(peer.ID, TopicAnchors))
	}

	require.Empty(t, h.Broadcast(TopicAnchors))
}
