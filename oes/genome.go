// Package oes implements the organic encryption state evolution
// subsystem (spec.md §4.5): a per-participant genome and three
// deterministic dynamics that, combined, rotate hybrid key material on
// an anchor cadence, plus the network-wide commitment agreement that
// makes a new generation binding.
//
// Every dynamic in this package runs in fixed-point/integer arithmetic
// only (see DESIGN.md's "floating-point dynamics" Open Question
// decision): no IEEE-754 state crosses the wire or feeds a commitment
// hash, so independently-built nodes converge on byte-identical
// genomes regardless of host FPU behavior.
package oes

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

// GenomeSize is the fixed width of a genome, spec.md §4.5's "fixed-width
// byte vector (default ~1 KiB)".
const GenomeSize = 1024

// Genome seeds every dynamic and, transitively, every derived keypair
// for one generation.
type Genome [GenomeSize]byte

// expand stretches seed into size deterministic bytes under a
// domain-separated SHAKE256 XOF, the mechanism genome derivation and
// deterministic keygen seeding both rely on so that a 32-byte keyed
// hash can feed a much wider structure (a 1 KiB genome, a lattice
// keygen seed) without losing determinism.
func expand(domain string, size int, parts ...[]byte) []byte {
	xof := sha3.NewShake256()
	xof.Write([]byte(domain))
	xof.Write([]byte{0})
	for _, p := range parts {
		var l [8]byte
		binary.BigEndian.PutUint64(l[:], uint64(len(p)))
		xof.Write(l[:])
		xof.Write(p)
	}
	out := make([]byte, size)
	if _, err := xof.Read(out); err != nil {
		// sha3's Shake Read never returns an error for a finite request;
		// a panic here would mean the XOF implementation changed shape.
		panic("oes: shake256 read failed: " + err.Error())
	}
	return out
}

// GenesisGenome derives the network's first genome deterministically
// from a shared seed (e.g. the chain id), so every participant starts
// generation 0 from the same byte-identical state without needing an
// out-of-band distribution step.
func GenesisGenome(seed []byte) Genome {
	var g Genome
	copy(g[:], expand(crypto.DomainOESGenome, GenomeSize, seed))
	return g
}

// DeriveGenome computes the next generation's genome from the previous
// genome and the combined output of this generation's dynamics steps
// (spec.md §4.5 step 2: "keyed hash of the previous genome and the
// combined dynamics outputs"), stretched back out to GenomeSize bytes.
func DeriveGenome(previous Genome, dynamicsOutput []byte) Genome {
	var g Genome
	copy(g[:], expand(crypto.DomainOESGenome, GenomeSize, previous[:], dynamicsOutput))
	return g
}

// Hash returns the domain-separated content hash of the genome.
// computeCommitment does not use it; it hashes the raw genome bytes
// together with the generation and the dynamics outputs.
func (g Genome) Hash() common.Hash {
	return crypto.Hash(crypto.DomainOESGenome, g[:])
}
