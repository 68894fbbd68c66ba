package net

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/protoerr"
)

func TestTrackerReserveBacksOffAtMaxInFlight(t *testing.T) {
	tr := NewTracker()
	peer := common.BytesToHash([]byte("peer"))

	for i := 0; i < maxInFlight; i++ {
		require.NoError(t, tr.Reserve(peer, TopicEntries))
	}
	require.ErrorIs(t, tr.Reserve(peer, TopicEntries), protoerr.ErrInsufficientPeers)
}

func TestTrackerUpdateReleasesInFlightSlot(t *testing.T) {
	tr := NewTracker()
	peer := common.BytesToHash([]byte("peer"))

	require.NoError(t, tr.Reserve(peer, TopicGossip))
	tr.Update(peer, TopicGossip, 10*time.Millisecond, 5)
	// slot released, so maxInFlight more reservations now succeed
	for i := 0; i < maxInFlight; i++ {
		require.NoError(t, tr.Reserve(peer, TopicGossip))
	}
}

func TestTrackerCapacityNeverNegative(t *testing.T) {
	tr := NewTracker()
	peer := common.BytesToHash([]byte("peer"))
	require.NoError(t, tr.Reserve(peer, TopicEntries))
	tr.Update(peer, TopicEntries, time.Microsecond, 1000000)

	capacity := tr.Capacity(peer, TopicEntries, 10*time.Millisecond)
	require.GreaterOrEqual(t, capacity, 1)
}

func TestTrackerCapacityIndependentPerTopic(t *testing.T) {
	tr := NewTracker()
	peer := common.BytesToHash([]byte("peer"))
	require.NoError(t, tr.Reserve(peer, TopicAnchors))
	tr.Update(peer, TopicAnchors, time.Second, 1000)

	fast := tr.Capacity(peer, TopicAnchors, time.Second)
	slow := tr.Capacity(peer, TopicErasure, time.Second)
	require.Greater(t, fast, slow)
}
