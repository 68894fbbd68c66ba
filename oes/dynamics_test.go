package oes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepOscillatorDeterministic(t *testing.T) {
	genome := GenesisGenome([]byte("osc"))
	s0 := OscillatorState{}

	s1, out1 := StepOscillator(s0, genome)
	s1Again, out1Again := StepOscillator(s0, genome)
	require.Equal(t, s1, s1Again)
	require.Equal(t, out1, out1Again)

	s2, out2 := StepOscillator(s1, genome)
	require.NotEqual(t, out1, out2)
	_ = s2
}

func TestStepCADeterministicAndChanges(t *testing.T) {
	genome := GenesisGenome([]byte("ca"))
	var s0 CAState

	s1, out1 := StepCA(s0, genome)
	s1Again, out1Again := StepCA(s0, genome)
	require.Equal(t, s1, s1Again)
	require.Equal(t, out1, out1Again)
}

func TestStepWalkProducesValidCurvePoint(t *testing.T) {
	genome := GenesisGenome([]byte("walk"))
	var s0 WalkState

	s1, out1 := StepWalk(s0, genome)
	s1Again, out1Again := StepWalk(s0, genome)
	require.Equal(t, s1, s1Again)
	require.Equal(t, out1, out1Again)

	// Walking twice from genesis must not return to the same point.
	s2, _ := StepWalk(s1, genome)
	require.NotEqual(t, s1, s2)

	// decodeWalkPoint must accept the produced state without panicking.
	require.NotPanics(t, func() { decodeWalkPoint(s1) })
}
