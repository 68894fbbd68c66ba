package entry

import (
	"testing"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

func newTestEntry(t *testing.T, content []byte, parents []common.Hash, counter uint64, sk *crypto.HybridSecretKey, creator common.NodeID) *Entry {
	t.Helper()
	e := &Entry{
		Content:           content,
		Clock:             Clock{Creator: creator, Counter: counter},
		Parents:           parents,
		ReplicationFactor: 5,
		Mutability:        Immutable,
		OESEpoch:          1,
		Creator:           creator,
	}
	if err := e.Sign(sk); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return e
}

func testCreator(t *testing.T) (common.NodeID, *crypto.HybridPublicKey, *crypto.HybridSecretKey) {
	t.Helper()
	pub, sec, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	id := crypto.Hash(crypto.DomainEntry, pub.Bytes())
	return id, pub, sec
}

func TestCanonicalDeterministicUnderParentOrder(t *testing.T) {
	creator, _, sk := testCreator(t)
	p1 := common.BytesToHash([]byte("parent-one"))
	p2 := common.BytesToHash([]byte("parent-two"))

	a := newTestEntry(t, []byte("hello"), []common.Hash{p1, p2}, 1, sk, creator)
	b := newTestEntry(t, []byte("hello"), []common.Hash{p2, p1}, 1, sk, creator)

	if a.ID() != b.ID() {
		t.Fatalf("expected identical ids regardless of input parent order")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	creator, pub, sk := testCreator(t)
	e := newTestEntry(t, []byte("payload"), nil, 1, sk, creator)
	if !e.VerifySignature(pub) {
		t.Fatalf("expected signature to verify")
	}
}

func TestIDChangesWithContent(t *testing.T) {
	creator, _, sk := testCreator(t)
	a := newTestEntry(t, []byte("hello"), nil, 1, sk, creator)
	b := newTestEntry(t, []byte("goodbye"), nil, 1, sk, creator)
	if a.ID() == b.ID() {
		t.Fatalf("expected different ids for different content")
	}
}

func TestValidateStructureRejectsOversizeContent(t *testing.T) {
	creator, _, sk := testCreator(t)
	e := newTestEntry(t, make([]byte, MaxContentBytes+1), nil, 1, sk, creator)
	if err := e.validateStructure(); err == nil {
		t.Fatalf("expected oversize content to be rejected")
	}
}

func TestValidateStructureAcceptsExactMaxContent(t *testing.T) {
	creator, _, sk := testCreator(t)
	e := newTestEntry(t, make([]byte, MaxContentBytes), nil, 1, sk, creator)
	if err := e.validateStructure(); err != nil {
		t.Fatalf("expected max-size content to be accepted, got %v", err)
	}
}

func TestEncodeDecodeEntryRoundTrip(t *testing.T) {
	creator, pub, sk := testCreator(t)
	p1 := common.BytesToHash([]byte("parent-one"))
	p2 := common.BytesToHash([]byte("parent-two"))
	e := newTestEntry(t, []byte("payload"), []common.Hash{p1, p2}, 7, sk, creator)
	e.OESProof = common.BytesToHash([]byte("proof"))

	decoded, err := DecodeEntry(EncodeEntry(e))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID() != e.ID() {
		t.Fatalf("expected decoded entry to have the same id")
	}
	if !decoded.VerifySignature(pub) {
		t.Fatalf("expected decoded entry's signature to still verify")
	}
}

func TestDecodeEntryRejectsTruncatedBytes(t *testing.T) {
	creator, _, sk := testCreator(t)
	e := newTestEntry(t, []byte("payload"), nil, 1, sk, creator)
	encoded := EncodeEntry(e)
	if _, err := DecodeEntry(encoded[:len(encoded)-1]); err == nil {
		t.Fatalf("expected truncated entry to be rejected")
	}
}

func TestValidateStructureRejectsTooManyParents(t *testing.T) {
	creator, _, sk := testCreator(t)
	parents := make([]common.Hash, MaxParents+1)
	for i := range parents {
		parents[i] = common.BytesToHash([]byte{byte(i), byte(i >> 8)})
	}
	e := newTestEntry(t, []byte("x"), parents, 1, sk, creator)
	if err := e.validateStructure(); err == nil {
		t.Fatalf("expected too many parents to be rejected")
	}
}
