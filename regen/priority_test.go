package regen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/common"
)

func TestQueuePopsHighestPriorityFirst(t *testing.T) {
	now := time.Now()
	q := NewQueue()
	q.Push(Task{EntryID: common.BytesToHash([]byte("low")), Damage: SingleAtomCorruption, Kind: KindUserEntry, DetectedAt: now}, now)
	q.Push(Task{EntryID: common.BytesToHash([]byte("high")), Damage: TotalLoss, Kind: KindAnchor, DetectedAt: now}, now)
	q.Push(Task{EntryID: common.BytesToHash([]byte("mid")), Damage: MismatchError, Kind: KindAttestation, DetectedAt: now}, now)

	first, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, common.BytesToHash([]byte("high")), first.EntryID)

	second, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, common.BytesToHash([]byte("mid")), second.EntryID)

	third, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, common.BytesToHash([]byte("low")), third.EntryID)

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestAnchorsOutrankUserEntriesAtEqualSeverity(t *testing.T) {
	now := time.Now()
	anchorTask := Task{Damage: ContiguousSegmentCorruption, Kind: KindAnchor, DetectedAt: now}
	userTask := Task{Damage: ContiguousSegmentCorruption, Kind: KindUserEntry, DetectedAt: now}
	require.Greater(t, Priority(anchorTask, now), Priority(userTask, now))
}

func TestAgingIncreasesPriorityOverTime(t *testing.T) {
	now := time.Now()
	task := Task{Damage: SingleAtomCorruption, Kind: KindUserEntry, DetectedAt: now}
	later := now.Add(5 * time.Minute)
	require.Greater(t, Priority(task, later), Priority(task, now))
}

func TestQueueRescorePreservesDescendingOrder(t *testing.T) {
	now := time.Now()
	q := NewQueue()
	q.Push(Task{EntryID: common.BytesToHash([]byte("old")), Damage: SingleAtomCorruption, Kind: KindUserEntry, DetectedAt: now.Add(-90 * time.Minute)}, now)
	q.Push(Task{EntryID: common.BytesToHash([]byte("fresh")), Damage: TotalLoss, Kind: KindUserEntry, DetectedAt: now}, now)

	q.Rescore(now.Add(3 * time.Hour))

	require.Equal(t, 2, q.Len())
	first, ok := q.Pop()
	require.True(t, ok)
	second, ok := q.Pop()
	require.True(t, ok)
	require.GreaterOrEqual(t, Priority(first, now.Add(3*time.Hour)), Priority(second, now.Add(3*time.Hour)))
}
