// Package gossip implements the per-validator gossip history and the
// virtual-voting machinery built on top of it: can-see, strongly-sees,
// round assignment, virtual vote and consensus vote (spec.md §4.3).
package gossip

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/protoerr"
)

// defaultReferenceCacheSize bounds the per-entry reference index (the
// events that announced each entry id, behind ReferencingEvents) so a
// long-running node doesn't keep an unbounded per-entry list in memory;
// the least recently used entry ids are evicted first, trading recall of old entry
// ids for a fixed memory footprint (an operational necessity the spec
// assumes but doesn't size).
const defaultReferenceCacheSize = 8192

// History is one validator's view of the gossip DAG: every event it has
// learned (its own and peers'), indexed for ancestry queries and the
// first-learned lookup virtual voting depends on.
type History struct {
	mu sync.RWMutex

	events    map[common.Hash]*Event
	byCreator map[common.NodeID][]common.Hash // event ids in ascending Seq order
	lastSeq   map[common.NodeID]uint64

	// references maps an entry id to the events (oldest first) that
	// announced it, bounded by an LRU so old entries age out.
	references *lru.Cache
}

func NewHistory() *History {
	cache, _ := lru.New(defaultReferenceCacheSize)
	return &History{
		events:     make(map[common.Hash]*Event),
		byCreator:  make(map[common.NodeID][]common.Hash),
		lastSeq:    make(map[common.NodeID]uint64),
		references: cache,
	}
}

// Add admits e into the history. It is idempotent on re-delivery, rejects
// events whose parents are unknown (ErrParentMissing) and events whose
// sequence regresses a validator's own chain (ErrClockRegression, the same
// taxonomy entry admission uses for its per-creator clock).
func (h *History) Add(e *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := e.ID()
	if _, exists := h.events[id]; exists {
		return nil
	}
	if !e.IsFirst() {
		if _, ok := h.events[e.SelfParent]; !ok {
			return protoerr.ErrParentMissing
		}
	}
	if !e.OtherParent.IsZero() {
		if _, ok := h.events[e.OtherParent]; !ok {
			return protoerr.ErrParentMissing
		}
	}

	last, hasPrior := h.lastSeq[e.Creator]
	if e.IsFirst() {
		if hasPrior {
			return protoerr.ErrClockRegression
		}
	} else if e.Seq <= last {
		return protoerr.ErrClockRegression
	}

	h.events[id] = e
	h.byCreator[e.Creator] = append(h.byCreator[e.Creator], id)
	h.lastSeq[e.Creator] = e.Seq
	for _, entryID := range e.Entries {
		h.recordReference(entryID, id)
	}
	return nil
}

func (h *History) recordReference(entryID, eventID common.Hash) {
	var list []common.Hash
	if v, ok := h.references.Get(entryID); ok {
		list = v.([]common.Hash)
	}
	list = append(list, eventID)
	h.references.Add(entryID, list)
}

// Get returns a known event by id.
func (h *History) Get(id common.Hash) (*Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.events[id]
	return e, ok
}

// ReferencingEvents returns, oldest first, the events that announced
// entryID, or nil if none are known (or the entry aged out of the bounded
// index).
func (h *History) ReferencingEvents(entryID common.Hash) []common.Hash {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.references.Get(entryID)
	if !ok {
		return nil
	}
	return append([]common.Hash(nil), v.([]common.Hash)...)
}

// CanSee reports whether toID is an ancestor of fromID (or equal to it)
// via the self-parent/other-parent chain.
func (h *History) CanSee(fromID, toID common.Hash) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.canSeeLocked(fromID, toID)
}

func (h *History) canSeeLocked(fromID, toID common.Hash) bool {
	if fromID == toID {
		return true
	}
	visited := make(map[common.Hash]bool)
	queue := []common.Hash{fromID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		ev, ok := h.events[id]
		if !ok {
			continue
		}
		if ev.SelfParent == toID || ev.OtherParent == toID {
			return true
		}
		if !ev.SelfParent.IsZero() {
			queue = append(queue, ev.SelfParent)
		}
		if !ev.OtherParent.IsZero() {
			queue = append(queue, ev.OtherParent)
		}
	}
	return false
}

// StronglySees implements spec.md §4.3: a supermajority W of vs's
// validators each has an event that is both reachable from fromID and
// reaches toID.
func (h *History) StronglySees(fromID, toID common.Hash, vs *ValidatorSet) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stronglySeesLocked(fromID, toID, vs)
}

func (h *History) stronglySeesLocked(fromID, toID common.Hash, vs *ValidatorSet) bool {
	count := 0
	for _, v := range vs.Members() {
		for _, id := range h.byCreator[v] {
			if h.canSeeLocked(fromID, id) && h.canSeeLocked(id, toID) {
				count++
				break
			}
		}
	}
	return count >= vs.StrongMajorityThreshold()
}

// Witnesses returns each validator's first event with the given round, if
// it has one (spec.md §4.3: "a witness of round r is a validator's first
// event with that round").
func (h *History) Witnesses(round uint64) []common.Hash {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []common.Hash
	for _, ids := range h.byCreator {
		for _, id := range ids {
			if h.events[id].Round == round {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// AssignRound computes the round e should carry (spec.md §4.3): the
// smallest round whose predecessor-round witness set e strongly-sees a
// supermajority of. A validator's first event is always round 0.
func (h *History) AssignRound(e *Event, vs *ValidatorSet) uint64 {
	if e.IsFirst() {
		return 0
	}

	h.mu.RLock()
	var base uint64
	if sp, ok := h.events[e.SelfParent]; ok && sp.Round > base {
		base = sp.Round
	}
	if !e.OtherParent.IsZero() {
		if op, ok := h.events[e.OtherParent]; ok && op.Round > base {
			base = op.Round
		}
	}
	h.mu.RUnlock()

	witnesses := h.Witnesses(base)
	seen := 0
	for _, w := range witnesses {
		if stronglySeesFromCandidate(h, e, w, vs) {
			seen++
		}
	}
	if seen >= vs.StrongMajorityThreshold() {
		return base + 1
	}
	return base
}

// stronglySeesFromCandidate evaluates strongly-sees(e, w) for an event e
// that has not been inserted into the history yet, by checking ancestry
// from e's two parents instead of e itself (e trivially sees both of its
// parents and everything they see).
func stronglySeesFromCandidate(h *History, e *Event, w common.Hash, vs *ValidatorSet) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, v := range vs.Members() {
		for _, id := range h.byCreator[v] {
			reaches := h.canSeeLocked(id, w)
			if !reaches {
				continue
			}
			reachableFromE := id == e.SelfParent || id == e.OtherParent ||
				h.canSeeLocked(e.SelfParent, id) ||
				(!e.OtherParent.IsZero() && h.canSeeLocked(e.OtherParent, id))
			if reachableFromE {
				count++
				break
			}
		}
	}
	return count >= vs.StrongMajorityThreshold()
}
