package anchor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/gossip"
	"github.com/strandnet/strand/params"
)

func testNetworkConfig() params.NetworkConfig {
	cfg := params.DefaultNetworkConfig
	cfg.AnchorInterval = time.Millisecond
	cfg.FinalityDepth = 2
	return cfg
}

func newTestValidator(t *testing.T) (common.NodeID, *crypto.HybridSecretKey) {
	t.Helper()
	pub, sk, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return crypto.Hash(crypto.DomainEntry, pub.Bytes()), sk
}

// chainEvent builds and signs a single-validator self-parented gossip
// event; with a one-validator set, StronglySees(from, to) trivially
// holds whenever to is from itself or one of its self-ancestors.
func chainEvent(t *testing.T, sk *crypto.HybridSecretKey, creator common.NodeID, selfParent common.Hash, seq, round uint64) *gossip.Event {
	t.Helper()
	e := &gossip.Event{SelfParent: selfParent, Creator: creator, Seq: seq, Round: round}
	require.NoError(t, e.Sign(sk))
	return e
}

func TestGenesisThenAdvanceByIntervalRoundAndStronglySees(t *testing.T) {
	h := gossip.NewHistory()
	creator, sk := newTestValidator(t)
	vs := gossip.NewValidatorSet(creator)

	e0 := chainEvent(t, sk, creator, common.Hash{}, 1, 0)
	require.NoError(t, h.Add(e0))

	engine := NewEngine(h, vs, testNetworkConfig())
	genesisCandidate := Candidate{EntryID: common.BytesToHash([]byte("genesis-entry")), EventID: e0.ID(), Round: 0}
	engine.Genesis(genesisCandidate, time.Now().Add(-time.Hour))

	e1 := chainEvent(t, sk, creator, e0.ID(), 2, 1)
	require.NoError(t, h.Add(e1))

	candidate := Candidate{EntryID: common.BytesToHash([]byte("next-entry")), EventID: e1.ID(), Round: 1}
	promoted := engine.TryAdvance(candidate, time.Now())
	require.True(t, promoted)

	last, ok := engine.LastAnchor()
	require.True(t, ok)
	require.Equal(t, candidate.EntryID, last.EntryID)
}

func TestTryAdvanceRejectsSameRound(t *testing.T) {
	h := gossip.NewHistory()
	creator, sk := newTestValidator(t)
	vs := gossip.NewValidatorSet(creator)

	e0 := chainEvent(t, sk, creator, common.Hash{}, 1, 0)
	require.NoError(t, h.Add(e0))

	engine := NewEngine(h, vs, testNetworkConfig())
	engine.Genesis(Candidate{EntryID: common.BytesToHash([]byte("g")), EventID: e0.ID(), Round: 0}, time.Now().Add(-time.Hour))

	e1 := chainEvent(t, sk, creator, e0.ID(), 2, 0)
	require.NoError(t, h.Add(e1))

	candidate := Candidate{EntryID: common.BytesToHash([]byte("same-round")), EventID: e1.ID(), Round: 0}
	require.False(t, engine.TryAdvance(candidate, time.Now()))
}

func TestTryAdvanceRejectsBeforeInterval(t *testing.T) {
	h := gossip.NewHistory()
	creator, sk := newTestValidator(t)
	vs := gossip.NewValidatorSet(creator)

	e0 := chainEvent(t, sk, creator, common.Hash{}, 1, 0)
	require.NoError(t, h.Add(e0))

	cfg := testNetworkConfig()
	cfg.AnchorInterval = time.Hour
	engine := NewEngine(h, vs, cfg)
	engine.Genesis(Candidate{EntryID: common.BytesToHash([]byte("g")), EventID: e0.ID(), Round: 0}, time.Now())

	e1 := chainEvent(t, sk, creator, e0.ID(), 2, 1)
	require.NoError(t, h.Add(e1))

	candidate := Candidate{EntryID: common.BytesToHash([]byte("too-soon")), EventID: e1.ID(), Round: 1}
	require.False(t, engine.TryAdvance(candidate, time.Now()))
}

func TestTryAdvanceIsIdempotentPerEntry(t *testing.T) {
	h := gossip.NewHistory()
	creator, sk := newTestValidator(t)
	vs := gossip.NewValidatorSet(creator)

	e0 := chainEvent(t, sk, creator, common.Hash{}, 1, 0)
	require.NoError(t, h.Add(e0))
	engine := NewEngine(h, vs, testNetworkConfig())
	engine.Genesis(Candidate{EntryID: common.BytesToHash([]byte("g")), EventID: e0.ID(), Round: 0}, time.Now().Add(-time.Hour))

	e1 := chainEvent(t, sk, creator, e0.ID(), 2, 1)
	require.NoError(t, h.Add(e1))
	candidate := Candidate{EntryID: common.BytesToHash([]byte("once")), EventID: e1.ID(), Round: 1}

	require.True(t, engine.TryAdvance(candidate, time.Now()))
	require.False(t, engine.TryAdvance(candidate, time.Now()))
	require.Len(t, engine.Anchors(), 2)
}

func TestSelectAnchorPicksSmallestIDAmongQualifying(t *testing.T) {
	h := gossip.NewHistory()
	creator, sk := newTestValidator(t)
	vs := gossip.NewValidatorSet(creator)

	e0 := chainEvent(t, sk, creator, common.Hash{}, 1, 0)
	require.NoError(t, h.Add(e0))
	engine := NewEngine(h, vs, testNetworkConfig())
	engine.Genesis(Candidate{EntryID: common.BytesToHash([]byte("g")), EventID: e0.ID(), Round: 0}, time.Now().Add(-time.Hour))

	e1 := chainEvent(t, sk, creator, e0.ID(), 2, 1)
	require.NoError(t, h.Add(e1))

	high := Candidate{EntryID: common.Hash{0xFF}, EventID: e1.ID(), Round: 1}
	low := Candidate{EntryID: common.Hash{0x01}, EventID: e1.ID(), Round: 1}

	winner, ok := engine.SelectAnchor([]Candidate{high, low}, time.Now())
	require.True(t, ok)
	require.Equal(t, low.EntryID, winner.EntryID)
}
