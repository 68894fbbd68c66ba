package net

import (
	"sync"
	"time"

	"github.com/strandnet/strand/protoerr"
)

// Tracker estimates each peer's sustainable request rate per topic,
// adapted from p2p/msgrate's peer-throughput estimator: every
// completed round trip updates a moving-average items-per-second
// figure, which Capacity reports. Reserve does not consult that
// figure: it bounds outstanding requests per peer per topic at
// maxInFlight. Where the teacher's tracker silently throttles by
// handing out a smaller batch, this tracker's Reserve refuses the
// request outright with protoerr.ErrInsufficientPeers once that peer
// has no free slot on that topic (spec.md §5: overload must surface as
// a typed error, not a silent drop).
type Tracker struct {
	mu    sync.Mutex
	rates map[PeerID]map[Topic]*rateEstimate
}

type rateEstimate struct {
	itemsPerSecond float64
	inFlight       int
}

const (
	// smoothing is the exponential moving average weight given to a
	// fresh measurement; the remainder stays with the prior estimate.
	smoothing = 0.2
	// maxInFlight bounds concurrent outstanding requests per peer per
	// topic, the backpressure limit Reserve enforces.
	maxInFlight = 4
)

// NewTracker creates an empty rate tracker.
func NewTracker() *Tracker {
	return &Tracker{rates: make(map[PeerID]map[Topic]*rateEstimate)}
}

func (t *Tracker) estimateLocked(peer PeerID, topic Topic) *rateEstimate {
	byTopic, ok := t.rates[peer]
	if !ok {
		byTopic = make(map[Topic]*rateEstimate)
		t.rates[peer] = byTopic
	}
	e, ok := byTopic[topic]
	if !ok {
		e = &rateEstimate{itemsPerSecond: 1}
		byTopic[topic] = e
	}
	return e
}

// Reserve claims one in-flight request slot against peer for topic,
// failing with protoerr.ErrInsufficientPeers if the peer already has
// maxInFlight outstanding requests on that topic.
func (t *Tracker) Reserve(peer PeerID, topic Topic) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.estimateLocked(peer, topic)
	if e.inFlight >= maxInFlight {
		return protoerr.ErrInsufficientPeers
	}
	e.inFlight++
	return nil
}

// Update records a completed request's elapsed time and item count,
// releasing its in-flight slot and updating the moving-average rate.
func (t *Tracker) Update(peer PeerID, topic Topic, elapsed time.Duration, items int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.estimateLocked(peer, topic)
	if e.inFlight > 0 {
		e.inFlight--
	}
	if elapsed <= 0 || items <= 0 {
		return
	}
	sample := float64(items) / elapsed.Seconds()
	e.itemsPerSecond = smoothing*sample + (1-smoothing)*e.itemsPerSecond
}

// Capacity returns the estimated number of items peer can serve on
// topic within targetRTT, never negative.
func (t *Tracker) Capacity(peer PeerID, topic Topic, targetRTT time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.estimateLocked(peer, topic)
	capacity := int(e.itemsPerSecond * targetRTT.Seconds())
	if capacity < 1 {
		capacity = 1
	}
	return capacity
}
