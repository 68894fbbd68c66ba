package net

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/crypto"
)

func TestPeerIDFromSigningKeyMatchesEntryCreatorConvention(t *testing.T) {
	pub, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	id := PeerIDFromSigningKey(pub)
	require.Equal(t, crypto.Hash(crypto.DomainEntry, pub.Bytes()), id)
}

func TestPeerSubscriptions(t *testing.T) {
	pub, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	p := NewPeer(PeerIDFromSigningKey(pub), &Session{})

	require.False(t, p.Subscribed(TopicEntries))
	p.Subscribe(TopicEntries)
	require.True(t, p.Subscribed(TopicEntries))
	p.Unsubscribe(TopicEntries)
	require.False(t, p.Subscribed(TopicEntries))
}
