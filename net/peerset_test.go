package net

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/common"
)

func TestPeerSetRegisterAndLookup(t *testing.T) {
	ps := NewPeerSet()
	id := common.BytesToHash([]byte("peer-a"))
	p := NewPeer(id, &Session{})

	require.NoError(t, ps.Register(p))
	require.Equal(t, 1, ps.Len())

	got, ok := ps.Peer(id)
	require.True(t, ok)
	require.Equal(t, p, got)

	require.ErrorIs(t, ps.Register(p), errPeerAlreadyRegistered)
}

func TestPeerSetUnregisterUnknownFails(t *testing.T) {
	ps := NewPeerSet()
	require.ErrorIs(t, ps.Unregister(common.BytesToHash([]byte("ghost"))), errPeerNotRegistered)
}

func TestPeerSetSubscribedToFiltersByTopic(t *testing.T) {
	ps := NewPeerSet()
	a := NewPeer(common.BytesToHash([]byte("a")), &Session{})
	b := NewPeer(common.BytesToHash([]byte("b")), &Session{})
	a.Subscribe(TopicAnchors)
	require.NoError(t, ps.Register(a))
	require.NoError(t, ps.Register(b))

	subs := ps.SubscribedTo(TopicAnchors)
	require.Len(t, subs, 1)
	require.Equal(t, a.ID, subs[0].ID)
}

func TestPeerSetRejectsAfterClose(t *testing.T) {
	ps := NewPeerSet()
	ps.Close()
	p := NewPeer(common.BytesToHash([]byte("a")), &Session{})
	require.ErrorIs(t, ps.Register(p), errPeerSetClosed)
}
