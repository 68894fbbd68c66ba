package oes

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/strandnet/strand/crypto"
)

// fixedShift is the Q32.32 fixed-point binary point used by the ODE
// dynamic: 32 integer bits, 32 fractional bits, all arithmetic in
// int64 so every participant's compiler/platform produces identical
// results (no float rounding mode to disagree on).
const fixedShift = 32

// OscillatorState is the ODE-like dynamic's carried state (spec.md
// §4.5: "continuous-state ODE-like" dynamic), a damped harmonic
// oscillator integrated with a single fixed-point Euler step per
// generation. Position and velocity are Q32.32 fixed-point.
type OscillatorState struct {
	Position int64
	Velocity int64
}

// StepOscillator advances the oscillator by one fixed-point Euler step,
// reading its spring/damping constants from the genome so each
// participant's dynamic is seeded, not just its initial state.
//
//	velocity' = velocity + (-k*position - c*velocity) >> fixedShift
//	position' = position + velocity' >> fixedShift
func StepOscillator(s OscillatorState, genome Genome) (OscillatorState, []byte) {
	k := int64(int32(binary.BigEndian.Uint32(genome[0:4])))
	c := int64(int32(binary.BigEndian.Uint32(genome[4:8])))

	accel := (-k*s.Position - c*s.Velocity) >> fixedShift
	next := OscillatorState{
		Velocity: s.Velocity + accel,
	}
	next.Position = s.Position + (next.Velocity >> fixedShift)

	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[0:8], uint64(next.Position))
	binary.BigEndian.PutUint64(out[8:16], uint64(next.Velocity))
	return next, out
}

// CAWidth is the bit width of the elementary cellular automaton's row
// (spec.md §4.5: "cellular automaton" dynamic).
const CAWidth = 256

// CAState is CAWidth cells, one bit each, packed big-endian.
type CAState [CAWidth / 8]byte

// StepCA advances an elementary cellular automaton (Wolfram-numbered
// rule, selected per generation from the genome) by one row, with
// wraparound neighbors so the rule is well-defined at the row edges.
func StepCA(s CAState, genome Genome) (CAState, []byte) {
	rule := genome[8]
	var next CAState
	bit := func(cs CAState, i int) byte {
		i = ((i % CAWidth) + CAWidth) % CAWidth
		return (cs[i/8] >> (7 - uint(i%8))) & 1
	}
	setBit := func(cs *CAState, i int, v byte) {
		if v != 0 {
			cs[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	for i := 0; i < CAWidth; i++ {
		left, center, right := bit(s, i-1), bit(s, i), bit(s, i+1)
		idx := left<<2 | center<<1 | right
		v := (rule >> idx) & 1
		setBit(&next, i, v)
	}
	return next, next[:]
}

// WalkState is a point on the secp256k1 curve, the "pseudo-quantum
// walk" and "fractal iterate" dynamics folded into a single group-walk
// dynamic: repeated scalar multiplication of the curve's base point by
// a genome-derived scalar is exactly the kind of one-way, deterministic
// iteration both names describe, standing in for the spec's more
// exotic, non-classical-hardware dynamics without requiring a second
// elliptic-curve library.
type WalkState struct {
	X, Y [32]byte
}

// StepWalk advances the walk by multiplying the current point by a
// scalar derived from the genome (so the walk's trajectory depends on
// the current generation, not just its starting point).
func StepWalk(s WalkState, genome Genome) (WalkState, []byte) {
	point := decodeWalkPoint(s)
	scalarBytes := expand(crypto.DomainOESGenome+"-walk", 32, genome[:], point.SerializeCompressed())

	var k btcec.ModNScalar
	k.SetByteSlice(scalarBytes)

	var jp, next btcec.JacobianPoint
	point.AsJacobian(&jp)
	btcec.ScalarMultNonConst(&k, &jp, &next)
	next.ToAffine()

	out := WalkState{X: next.X.Bytes(), Y: next.Y.Bytes()}
	return out, append(append([]byte(nil), out.X[:]...), out.Y[:]...)
}

// decodeWalkPoint recovers the curve point from a WalkState, falling
// back to the curve's base point for the all-zero genesis state.
func decodeWalkPoint(s WalkState) *btcec.PublicKey {
	if s.X == ([32]byte{}) && s.Y == ([32]byte{}) {
		params := btcec.S256().Params()
		var fx, fy btcec.FieldVal
		fx.SetByteSlice(params.Gx.Bytes())
		fy.SetByteSlice(params.Gy.Bytes())
		return btcec.NewPublicKey(&fx, &fy)
	}
	var fx, fy btcec.FieldVal
	fx.SetByteSlice(s.X[:])
	fy.SetByteSlice(s.Y[:])
	return btcec.NewPublicKey(&fx, &fy)
}
