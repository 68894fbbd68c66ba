// Package common holds identifier types and encoding helpers shared by
// every package in the module: the graph, gossip, anchors, OES and the
// network runtime all key their state off the same 32-byte hash.
package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
)

// HashLength is the size in bytes of a Hash.
const HashLength = 32

// Hash is a 32-byte content-addressed identifier. It is used for entry
// ids, gossip event ids, OES generation commitments, and node ids (the
// hash of a hybrid public key).
type Hash [HashLength]byte

// BytesToHash left-truncates/left-pads b into a Hash: longer input keeps
// its last HashLength bytes, shorter input is zero-padded on the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a copy of h as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether h is the zero hash (used to detect genesis'
// empty parent set and "no value" sentinels).
func (h Hash) IsZero() bool { return h == Hash{} }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// Less implements the tie-break rule used throughout the spec:
// "lexicographically smaller 32-byte id wins".
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// HexToHash parses a 0x-prefixed or bare hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("common: invalid hash hex: %w", err)
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("common: hash must be %d bytes, got %d", HashLength, len(b))
	}
	return BytesToHash(b), nil
}

// SortHashes sorts a slice of Hash ascending, matching the canonical
// "parents in ascending id order" requirement of the entry encoding.
func SortHashes(hs []Hash) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Less(hs[j]) })
}

// NodeID identifies a participant by the hash of its hybrid public key.
type NodeID = Hash
