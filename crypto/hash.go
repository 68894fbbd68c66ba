// Package crypto implements the hybrid cryptographic layer: classical
// plus lattice-based signatures and key encapsulation, and the
// domain-separated content hash used for entry ids, shard bindings,
// OES commitments, and genome derivation.
package crypto

import (
	"encoding/binary"

	"github.com/strandnet/strand/common"
	"golang.org/x/crypto/sha3"
)

// Domain tags separate hash purposes so that, e.g., an entry id can
// never collide with a shard hash or an OES commitment even if the
// underlying bytes coincide.
const (
	DomainEntry      = "entry"
	DomainShard      = "shard"
	DomainCommitment = "commitment"
	DomainOESGenome  = "oes-genome"
	DomainGossip     = "gossip-event"
)

// Hash computes the collision-resistant 256-bit content hash of data
// under the given domain tag. It is used for entry ids, erasure
// proofs, parity verification, and OES commitments (spec.md §4.1, §6).
func Hash(domain string, data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// KeyedHash computes a keyed hash (HMAC-like, via the key as an extra
// domain-separated input) used by OES's genome derivation, which must
// depend on the signer-local genome and not merely the public dynamics
// output.
func KeyedHash(key []byte, domain string, data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	var klen [8]byte
	binary.BigEndian.PutUint64(klen[:], uint64(len(key)))
	h.Write(klen[:])
	h.Write(key)
	for _, d := range data {
		h.Write(d)
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}
