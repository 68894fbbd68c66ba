package regen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/entry"
)

func buildCompanion(t *testing.T) *entry.ParityCompanion {
	t.Helper()
	content := make([]byte, entry.ShardSize*3+100)
	for i := range content {
		content[i] = byte(i)
	}
	pc, err := entry.BuildParityCompanion(content, 3)
	require.NoError(t, err)
	return pc
}

func allShards(pc *entry.ParityCompanion) [][]byte {
	all := append([][]byte(nil), pc.DataShards...)
	all = append(all, pc.ParityShards...)
	return all
}

func TestDetectDamageCleanCompanionReportsNothing(t *testing.T) {
	pc := buildCompanion(t)
	r := DetectDamage(pc, allShards(pc))
	require.Empty(t, r.MissingShards)
	require.Empty(t, r.MismatchShards)
}

func TestDetectDamageMissingShard(t *testing.T) {
	pc := buildCompanion(t)
	shards := allShards(pc)
	shards[1] = nil
	r := DetectDamage(pc, shards)
	require.Equal(t, []int{1}, r.MissingShards)
	require.Empty(t, r.MismatchShards)
	require.Equal(t, ContiguousSegmentCorruption, Classify(r))
}

func TestDetectDamageMismatchedShard(t *testing.T) {
	pc := buildCompanion(t)
	shards := allShards(pc)
	tampered := append([]byte(nil), shards[0]...)
	tampered[0] ^= 0xFF
	shards[0] = tampered
	r := DetectDamage(pc, shards)
	require.Equal(t, []int{0}, r.MismatchShards)
	require.Equal(t, MismatchError, Classify(r))
}

func TestClassifyTotalLoss(t *testing.T) {
	r := ShardReport{TotalShards: 4, MissingShards: []int{0, 1, 2, 3}}
	require.Equal(t, TotalLoss, Classify(r))
}

func TestClassifySevereCorruption(t *testing.T) {
	r := ShardReport{TotalShards: 4, MissingShards: []int{0, 1, 2}}
	require.Equal(t, SevereCorruption, Classify(r))
}
