package gossip

import (
	"encoding/binary"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

// Event is the atomic unit a single validator emits into its gossip
// history: a reference to its own previous event (self-parent), one event
// learned from a peer (other-parent), the set of entry ids it is
// announcing at that moment, and a round number (spec.md §4.3 glossary
// "Gossip event"). Grounded structurally on the Fantom-lineage
// self-parent/other-parent event DAG, carrying a bare entry-id
// announcement set instead of an EVM transaction payload.
type Event struct {
	SelfParent  common.Hash
	OtherParent common.Hash
	Creator     common.NodeID
	Seq         uint64
	Round       uint64
	Entries     []common.Hash
	Signature   crypto.HybridSignature
}

// IsFirst reports whether this is a validator's first event (no
// self-parent, i.e. a round-0 witness candidate).
func (e *Event) IsFirst() bool {
	return e.SelfParent.IsZero()
}

// Canonical returns the deterministic encoding of e's content, excluding
// the signature, used both as the signing payload and as id input.
func (e *Event) Canonical() []byte {
	buf := make([]byte, 0, 3*common.HashLength+16+4+len(e.Entries)*common.HashLength)
	buf = append(buf, e.SelfParent.Bytes()...)
	buf = append(buf, e.OtherParent.Bytes()...)
	buf = append(buf, e.Creator.Bytes()...)
	buf = appendU64(buf, e.Seq)
	buf = appendU64(buf, e.Round)
	buf = appendU32(buf, uint32(len(e.Entries)))
	for _, id := range e.Entries {
		buf = append(buf, id.Bytes()...)
	}
	return buf
}

// ID is the event's content-addressed identifier: hash(canonical ||
// signature), mirroring entry.Entry.ID (spec.md §6).
func (e *Event) ID() common.Hash {
	return crypto.Hash(crypto.DomainGossip, e.Canonical(), e.Signature)
}

func (e *Event) Sign(sk *crypto.HybridSecretKey) error {
	sig, err := crypto.Sign(e.Canonical(), sk)
	if err != nil {
		return err
	}
	e.Signature = sig
	return nil
}

func (e *Event) VerifySignature(pk *crypto.HybridPublicKey) bool {
	return crypto.Verify(e.Canonical(), e.Signature, pk)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}
