package gossip

import (
	"sort"

	"github.com/strandnet/strand/common"
)

// Decision is the virtual vote's accept/abstain outcome (spec.md §4.3).
type Decision int

const (
	DecisionAbstain Decision = iota
	DecisionAccept
)

// VirtualVote is validator n's vote on an entry, derived purely from the
// gossip DAG's structure rather than an explicit ballot (spec.md §4.3).
type VirtualVote struct {
	Decision Decision
	Ordering int
	Round    uint64
}

// FirstLearnedBy returns the earliest event validator created that
// announced entryID, i.e. first_learned(validator, entryID).
func (h *History) FirstLearnedBy(validator common.NodeID, entryID common.Hash) (common.Hash, uint64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range h.byCreator[validator] {
		e := h.events[id]
		for _, ref := range e.Entries {
			if ref == entryID {
				return id, e.Round, true
			}
		}
	}
	return common.Hash{}, 0, false
}

// VirtualVote computes validator n's vote on entryID: abstain if
// first_learned is undefined, otherwise accept with ordering set to the
// total number of gossip events (by any validator) that reference
// entryID, and round set to the round of n's first-learned event
// (spec.md §4.3).
func (h *History) VirtualVote(validator common.NodeID, entryID common.Hash) VirtualVote {
	_, round, ok := h.FirstLearnedBy(validator, entryID)
	if !ok {
		return VirtualVote{Decision: DecisionAbstain}
	}
	return VirtualVote{
		Decision: DecisionAccept,
		Ordering: len(h.ReferencingEvents(entryID)),
		Round:    round,
	}
}

// ConsensusVote tallies every validator's virtual vote on entryID and
// reports the ordering value held by a strict supermajority (> 2|V|/3),
// if any (spec.md §4.3). decided is false when entryID is undecided at
// this moment.
func (h *History) ConsensusVote(entryID common.Hash, vs *ValidatorSet) (ordering int, decided bool) {
	tally := make(map[int]int)
	for _, v := range vs.Members() {
		vote := h.VirtualVote(v, entryID)
		if vote.Decision != DecisionAccept {
			continue
		}
		tally[vote.Ordering]++
	}

	threshold := vs.StrongMajorityThreshold()
	var orderings []int
	for o := range tally {
		orderings = append(orderings, o)
	}
	sort.Ints(orderings)
	for _, o := range orderings {
		if tally[o] >= threshold {
			return o, true
		}
	}
	return 0, false
}
