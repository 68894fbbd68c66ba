// Package anchor selects the entries that serialize the DAG and computes
// finality depth over them (spec.md §4.4), built on top of the gossip
// package's virtual-voting primitives and the quorum package's
// certificate pool for the thin-network attestation path.
package anchor

import (
	"sync"
	"time"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/gossip"
	"github.com/strandnet/strand/params"
)

// Candidate is an entry being considered for anchor promotion: its own
// id, the gossip event that first announced it (used for strongly-sees
// and round lookups), and that event's round.
type Candidate struct {
	EntryID common.Hash
	EventID common.Hash
	Round   uint64
}

// Anchor is a promoted candidate, recorded with the time it was
// promoted (for the next candidate's interval check).
type Anchor struct {
	Candidate
	PromotedAt time.Time
}

// Engine runs the anchor selection rule for one validator (spec.md
// §4.4): interval elapsed, strongly-sees the previous anchor, round
// exceeds the previous anchor's round. Grounded on tos/bft_finality.go's
// applyQCFinality/shouldAdvanceFinality "only advance if strictly
// greater" idiom and its seen-cache dedup (markQCSeen), generalized from
// "one QC finalizes one block" to "an entry strongly-seen by a
// supermajority becomes an anchor".
type Engine struct {
	mu sync.Mutex

	history    *gossip.History
	validators *gossip.ValidatorSet
	config     params.NetworkConfig

	anchors []Anchor
	seen    map[common.Hash]bool
}

func NewEngine(history *gossip.History, validators *gossip.ValidatorSet, config params.NetworkConfig) *Engine {
	return &Engine{
		history:    history,
		validators: validators,
		config:     config,
		seen:       make(map[common.Hash]bool),
	}
}

// Genesis seeds the engine with the network's first anchor (normally the
// genesis entry), skipping the interval/strongly-sees checks that have
// no meaning before any anchor exists.
func (e *Engine) Genesis(c Candidate, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.anchors = append(e.anchors, Anchor{Candidate: c, PromotedAt: at})
	e.seen[c.EntryID] = true
}

// LastAnchor returns the most recently promoted anchor, if any.
func (e *Engine) LastAnchor() (Anchor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.anchors) == 0 {
		return Anchor{}, false
	}
	return e.anchors[len(e.anchors)-1], true
}

// Anchors returns every anchor promoted so far, oldest first.
func (e *Engine) Anchors() []Anchor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Anchor(nil), e.anchors...)
}

// qualifies reports whether c satisfies the anchor predicate against the
// current last anchor, without mutating engine state.
func (e *Engine) qualifies(c Candidate, now time.Time) bool {
	if len(e.anchors) == 0 {
		return true
	}
	last := e.anchors[len(e.anchors)-1]
	if now.Sub(last.PromotedAt) < e.config.AnchorInterval {
		return false
	}
	if !e.history.StronglySees(c.EventID, last.EventID, e.validators) {
		return false
	}
	if c.Round <= last.Round {
		return false
	}
	return true
}

// TryAdvance promotes c to anchor if it qualifies, returning whether it
// was promoted. Re-submitting an already-seen candidate is a no-op
// (dedup mirrors markQCSeen).
func (e *Engine) TryAdvance(c Candidate, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seen[c.EntryID] {
		return false
	}
	if !e.qualifies(c, now) {
		return false
	}
	e.anchors = append(e.anchors, Anchor{Candidate: c, PromotedAt: now})
	e.seen[c.EntryID] = true
	return true
}

// SelectAnchor evaluates every qualifying candidate and promotes the one
// with the lexicographically smallest entry id, the tie-break spec.md
// §4.3/§4.4 mandates when multiple candidates qualify simultaneously. It
// reports the promoted candidate, if any.
func (e *Engine) SelectAnchor(candidates []Candidate, now time.Time) (Candidate, bool) {
	e.mu.Lock()
	var best *Candidate
	for i := range candidates {
		c := candidates[i]
		if e.seen[c.EntryID] {
			continue
		}
		if !e.qualifies(c, now) {
			continue
		}
		if best == nil || c.EntryID.Less(best.EntryID) {
			best = &c
		}
	}
	e.mu.Unlock()

	if best == nil {
		return Candidate{}, false
	}
	if e.TryAdvance(*best, now) {
		return *best, true
	}
	return Candidate{}, false
}
