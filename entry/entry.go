// Package entry implements the content-addressed record type of the
// graph (spec.md §3: "entry (string)") and its canonical, signature-
// bearing wire encoding.
package entry

import (
	"encoding/binary"
	"fmt"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/protoerr"
)

// MaxContentBytes is the hard content-size ceiling (spec.md §8: "Entry
// of exactly 10 MiB is accepted; 10 MiB + 1 byte rejected").
const MaxContentBytes = 10 * 1024 * 1024

// MaxParents is the hard parent-count ceiling (spec.md §8: "Entry with
// parents.len() = 257 is rejected").
const MaxParents = 256

// MutabilityClass governs which erasure reasons may target an entry
// (spec.md §3, §4.7).
type MutabilityClass uint8

const (
	Immutable MutabilityClass = iota
	OwnerErasable
	TtlErasable
	PolicyErasable
)

func (m MutabilityClass) String() string {
	switch m {
	case Immutable:
		return "immutable"
	case OwnerErasable:
		return "owner-erasable"
	case TtlErasable:
		return "ttl-erasable"
	case PolicyErasable:
		return "policy-erasable"
	default:
		return fmt.Sprintf("mutability(%d)", uint8(m))
	}
}

// Clock is the logical timestamp pairing a creator with a monotonic
// per-creator counter (spec.md §3).
type Clock struct {
	Creator common.NodeID
	Counter uint64
}

// Entry is the atomic content-addressed record of the graph (spec.md
// §3). Its id is derived, never stored as a separate field: callers
// obtain it via ID().
type Entry struct {
	Content           []byte
	Clock             Clock
	Parents           []common.Hash
	ReplicationFactor int
	Mutability        MutabilityClass
	OESEpoch          uint64
	OESProof          common.Hash
	Creator           common.NodeID
	Signature         crypto.HybridSignature
}

// Canonical encodes the signed fields in the fixed order required by
// spec.md §6: "content, clock, parents in ascending id order,
// replication, mutability, oes_epoch, creator, oes_proof". Every
// variable-length field is length-prefixed so decoding never needs a
// delimiter scan.
func (e *Entry) Canonical() []byte {
	parents := append([]common.Hash(nil), e.Parents...)
	common.SortHashes(parents)

	buf := make([]byte, 0, 64+len(e.Content)+32*len(parents))
	buf = appendU32Prefixed(buf, e.Content)
	buf = appendU64(buf, e.Clock.Counter)
	buf = append(buf, e.Clock.Creator.Bytes()...)
	buf = appendU32(buf, uint32(len(parents)))
	for _, p := range parents {
		buf = append(buf, p.Bytes()...)
	}
	buf = appendU32(buf, uint32(e.ReplicationFactor))
	buf = append(buf, byte(e.Mutability))
	buf = appendU64(buf, e.OESEpoch)
	buf = append(buf, e.Creator.Bytes()...)
	buf = append(buf, e.OESProof.Bytes()...)
	return buf
}

// ID derives the entry's content-addressed identifier: hash(canonical
// || hybrid_signature) (spec.md §6).
func (e *Entry) ID() common.Hash {
	return crypto.Hash(crypto.DomainEntry, e.Canonical(), e.Signature)
}

// Sign produces the hybrid signature over the canonical encoding and
// assigns it, completing the entry so that ID() is stable.
func (e *Entry) Sign(sk *crypto.HybridSecretKey) error {
	sig, err := crypto.Sign(e.Canonical(), sk)
	if err != nil {
		return err
	}
	e.Signature = sig
	return nil
}

// VerifySignature checks the hybrid signature against the supplied
// public key (resolved externally for e.Creator at e.OESEpoch).
func (e *Entry) VerifySignature(pk *crypto.HybridPublicKey) bool {
	return crypto.Verify(e.Canonical(), e.Signature, pk)
}

// EncodeEntry serializes e for storage: its canonical encoding followed
// by the length-prefixed hybrid signature (spec.md §6: "column entries:
// id -> canonical encoding + signature").
func EncodeEntry(e *Entry) []byte {
	buf := e.Canonical()
	var sigLen [4]byte
	binary.BigEndian.PutUint32(sigLen[:], uint32(len(e.Signature)))
	buf = append(buf, sigLen[:]...)
	buf = append(buf, e.Signature...)
	return buf
}

// DecodeEntry is the inverse of EncodeEntry, reconstructing an Entry
// from its persisted bytes so a stored entry can be re-verified
// (spec.md §8: decode(encode(entry)) = entry).
func DecodeEntry(b []byte) (*Entry, error) {
	e := &Entry{}
	off := 0

	if len(b) < off+4 {
		return nil, fmt.Errorf("entry: truncated content length")
	}
	contentLen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if off+contentLen > len(b) {
		return nil, fmt.Errorf("entry: truncated content")
	}
	e.Content = append([]byte(nil), b[off:off+contentLen]...)
	off += contentLen

	if len(b) < off+8+common.HashLength {
		return nil, fmt.Errorf("entry: truncated clock")
	}
	e.Clock.Counter = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	e.Clock.Creator = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength

	if len(b) < off+4 {
		return nil, fmt.Errorf("entry: truncated parent count")
	}
	parentCount := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if off+parentCount*common.HashLength > len(b) {
		return nil, fmt.Errorf("entry: truncated parents")
	}
	if parentCount > 0 {
		e.Parents = make([]common.Hash, parentCount)
		for i := 0; i < parentCount; i++ {
			e.Parents[i] = common.BytesToHash(b[off : off+common.HashLength])
			off += common.HashLength
		}
	}

	if len(b) < off+4+1+8+2*common.HashLength {
		return nil, fmt.Errorf("entry: truncated fixed tail")
	}
	e.ReplicationFactor = int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	e.Mutability = MutabilityClass(b[off])
	off++
	e.OESEpoch = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	e.Creator = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength
	e.OESProof = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength

	if len(b) < off+4 {
		return nil, fmt.Errorf("entry: truncated signature length")
	}
	sigLen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if off+sigLen > len(b) {
		return nil, fmt.Errorf("entry: truncated signature")
	}
	e.Signature = crypto.HybridSignature(append([]byte(nil), b[off:off+sigLen]...))
	off += sigLen

	return e, nil
}

// IsGenesis reports whether e is eligible to be the unique
// empty-parent entry (spec.md §3: "Genesis entry").
func (e *Entry) IsGenesis() bool {
	return len(e.Parents) == 0
}

// validateStructure performs the structural checks from spec.md §4.2
// that do not require graph or key-resolver state: size, parent
// count, parent non-duplication/non-self-reference.
func (e *Entry) validateStructure() error {
	if len(e.Content) > MaxContentBytes {
		return protoerr.ErrOversizeContent
	}
	if len(e.Parents) > MaxParents {
		return protoerr.ErrTooManyParents
	}
	if e.ReplicationFactor < 3 || e.ReplicationFactor > 10 {
		return fmt.Errorf("entry: replication_factor must be in [3,10], got %d", e.ReplicationFactor)
	}
	seen := make(map[common.Hash]struct{}, len(e.Parents))
	selfID := e.ID()
	for _, p := range e.Parents {
		if p == selfID {
			return protoerr.ErrCircularParentage
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("entry: duplicate parent %s", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendU32Prefixed(buf, data []byte) []byte {
	buf = appendU32(buf, uint32(len(data)))
	return append(buf, data...)
}
