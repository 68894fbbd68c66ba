// Package protoerr centralizes the typed error taxonomy shared by the
// entry graph, gossip, anchor, OES, regeneration, erasure, and network
// packages (spec.md §7), so every layer reports the same kind for the
// same failure instead of redefining near-duplicate sentinels.
package protoerr

import "errors"

var (
	// ErrNotFound: id unknown locally.
	ErrNotFound = errors.New("protoerr: not found")
	// ErrErased: id is tombstoned.
	ErrErased = errors.New("protoerr: erased")
	// ErrParentMissing: structurally valid but ancestry absent; caller
	// should quarantine and pull.
	ErrParentMissing = errors.New("protoerr: parent missing")
	// ErrInvalidSignature: hybrid verification failed (either component).
	ErrInvalidSignature = errors.New("protoerr: invalid signature")
	// ErrEpochOutOfWindow: oes_epoch outside [current-W, current].
	ErrEpochOutOfWindow = errors.New("protoerr: oes epoch out of window")
	// ErrClockRegression: clock.counter did not increase over the
	// creator's ancestor entries.
	ErrClockRegression = errors.New("protoerr: clock regression")
	// ErrCircularParentage: parentage forms a cycle.
	ErrCircularParentage = errors.New("protoerr: circular parentage")
	// ErrOversizeContent: content exceeds the maximum entry size.
	ErrOversizeContent = errors.New("protoerr: oversize content")
	// ErrTooManyParents: parent count exceeds the maximum.
	ErrTooManyParents = errors.New("protoerr: too many parents")
	// ErrQuorumNotMet: supermajority unavailable; retry with backoff.
	ErrQuorumNotMet = errors.New("protoerr: quorum not met")
	// ErrRegenerationFailed: insufficient surviving shards.
	ErrRegenerationFailed = errors.New("protoerr: regeneration failed")
	// ErrInsufficientPeers: gossip mesh under minimum; caller retries.
	ErrInsufficientPeers = errors.New("protoerr: insufficient peers")
	// ErrUnauthorized: policy engine refused.
	ErrUnauthorized = errors.New("protoerr: unauthorized")
	// ErrStorageFull: backend out of space.
	ErrStorageFull = errors.New("protoerr: storage full")
	// ErrNetworkPartition: no quorum reachable.
	ErrNetworkPartition = errors.New("protoerr: network partition")
)
