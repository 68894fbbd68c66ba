package gossip

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

func newSignedEvent(t *testing.T, sk *crypto.HybridSecretKey, creator common.NodeID, selfParent, otherParent common.Hash, seq, round uint64, entries ...common.Hash) *Event {
	t.Helper()
	e := &Event{
		SelfParent:  selfParent,
		OtherParent: otherParent,
		Creator:     creator,
		Seq:         seq,
		Round:       round,
		Entries:     entries,
	}
	require.NoError(t, e.Sign(sk))
	return e
}

func TestEventSignVerifyRoundTrip(t *testing.T) {
	pub, sk, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	creator := crypto.Hash(crypto.DomainEntry, pub.Bytes())

	e := newSignedEvent(t, sk, creator, common.Hash{}, common.Hash{}, 1, 0)
	require.True(t, e.VerifySignature(pub))
}

func TestEventIDChangesWithEntries(t *testing.T) {
	pub, sk, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	creator := crypto.Hash(crypto.DomainEntry, pub.Bytes())

	a := newSignedEvent(t, sk, creator, common.Hash{}, common.Hash{}, 1, 0, common.BytesToHash([]byte("e1")))
	b := newSignedEvent(t, sk, creator, common.Hash{}, common.Hash{}, 1, 0, common.BytesToHash([]byte("e2")))
	require.NotEqual(t, a.ID(), b.ID())
}

func TestEventIsFirst(t *testing.T) {
	pub, sk, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	creator := crypto.Hash(crypto.DomainEntry, pub.Bytes())

	first := newSignedEvent(t, sk, creator, common.Hash{}, common.Hash{}, 1, 0)
	require.True(t, first.IsFirst())

	next := newSignedEvent(t, sk, creator, first.ID(), common.Hash{}, 2, 0)
	require.False(t, next.IsFirst())
}
