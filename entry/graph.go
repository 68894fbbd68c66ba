package entry

import (
	"encoding/binary"
	"sync"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/protoerr"
)

// KeyResolver answers "what was creator's hybrid public key at oes
// epoch e", the external collaborator admission needs to verify a
// signature (spec.md §3: "signature validates against creator's key
// material from generation oes_epoch").
type KeyResolver interface {
	PublicKeyAt(creator common.NodeID, epoch uint64) (*crypto.HybridPublicKey, error)
}

// EpochWindow answers whether an epoch is acceptable against the
// current OES generation (spec.md §4.5: acceptance window
// [current-W, current]).
type EpochWindow interface {
	InWindow(epoch uint64) bool
}

// Graph is the concurrency-safe authoritative DAG plus parity
// companions (spec.md §4.2). Readers take the read lock; writers hold
// it only across the admission of a single entry.
type Graph struct {
	mu sync.RWMutex

	backend Backend
	keys    KeyResolver
	window  EpochWindow

	entries  map[common.Hash]*Entry
	children map[common.Hash][]common.Hash
	parity   map[common.Hash]*ParityCompanion

	lastCounter map[common.NodeID]uint64
	hasGenesis  bool

	tombstoned map[common.Hash]TombstoneInfo

	// quarantine holds entries waiting on a missing parent, keyed by
	// the missing parent's id (spec.md §4.2: ParentMissing => quarantine).
	quarantine map[common.Hash][]*Entry

	// OnAdmit, if set, is invoked after an entry commits successfully
	// (spec.md §3: "on success emits an admission event").
	OnAdmit func(*Entry)
}

// TombstoneInfo records why and when an entry was erased (spec.md
// §4.7: the erasure record that authorized it).
type TombstoneInfo struct {
	ErasureRecordID common.Hash
	Reason          string
}

func NewGraph(backend Backend, keys KeyResolver, window EpochWindow) *Graph {
	return &Graph{
		backend:     backend,
		keys:        keys,
		window:      window,
		entries:     make(map[common.Hash]*Entry),
		children:    make(map[common.Hash][]common.Hash),
		parity:      make(map[common.Hash]*ParityCompanion),
		lastCounter: make(map[common.NodeID]uint64),
		tombstoned:  make(map[common.Hash]TombstoneInfo),
		quarantine:  make(map[common.Hash][]*Entry),
	}
}

// Admit validates and inserts an entry (spec.md §4.2). On success it
// commits {entries, parents} in one atomic batch and retries any
// entries quarantined on this id. The parity companion is not part of
// that batch and is not created by Admit; GenerateParity builds and
// stores it in a separate write.
func (g *Graph) Admit(e *Entry) error {
	if err := e.validateStructure(); err != nil {
		return err
	}
	if e.Clock.Creator != e.Creator {
		return protoerr.ErrInvalidSignature
	}

	id := e.ID()

	admitted, err := g.admitLocked(id, e)
	if err != nil || !admitted {
		return err
	}

	// Quarantine retries recurse into Admit, which takes the lock
	// itself, so they run with the lock released.
	g.drainQuarantine(id)
	return nil
}

// admitLocked performs the validation and commit for one entry while
// holding the graph lock, returning (true, nil) only when the entry
// was newly committed.
func (g *Graph) admitLocked(id common.Hash, e *Entry) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, tombstonedAlready := g.tombstoned[id]; tombstonedAlready {
		// Re-seeding identical bytes for an erased id must never
		// resurrect it (spec.md §4.7, §8).
		return false, protoerr.ErrErased
	}
	if _, exists := g.entries[id]; exists {
		// Idempotent double-admit (spec.md §8).
		return false, nil
	}

	if e.IsGenesis() {
		if g.hasGenesis {
			return false, protoerr.ErrCircularParentage
		}
	} else {
		for _, p := range e.Parents {
			if _, ok := g.entries[p]; !ok {
				g.quarantine[p] = append(g.quarantine[p], e)
				return false, protoerr.ErrParentMissing
			}
		}
	}

	if g.window != nil && !g.window.InWindow(e.OESEpoch) {
		return false, protoerr.ErrEpochOutOfWindow
	}

	if last, ok := g.lastCounter[e.Creator]; ok && e.Clock.Counter <= last {
		return false, protoerr.ErrClockRegression
	}

	if g.keys != nil {
		pk, err := g.keys.PublicKeyAt(e.Creator, e.OESEpoch)
		if err != nil {
			return false, protoerr.ErrInvalidSignature
		}
		if !e.VerifySignature(pk) {
			return false, protoerr.ErrInvalidSignature
		}
	}

	g.commit(id, e)
	return true, nil
}

func (g *Graph) commit(id common.Hash, e *Entry) {
	batch := g.backend.NewBatch()
	batch.Put(ColumnEntries, id.Bytes(), EncodeEntry(e))

	parentsBuf := make([]byte, 0, 32*len(e.Parents))
	for _, p := range e.Parents {
		parentsBuf = append(parentsBuf, p.Bytes()...)
		g.children[p] = append(g.children[p], id)
	}
	batch.Put(ColumnParents, id.Bytes(), parentsBuf)

	_ = g.backend.WriteBatch(batch)

	g.entries[id] = e
	g.lastCounter[e.Creator] = e.Clock.Counter
	if e.IsGenesis() {
		g.hasGenesis = true
	}

	if g.OnAdmit != nil {
		g.OnAdmit(e)
	}
}

// drainQuarantine retries every entry that was waiting on
// resolvedParent, now that it has been admitted. Each retry may itself
// resolve further quarantined descendants, so this recurses through
// Admit rather than re-entering admitLocked directly.
func (g *Graph) drainQuarantine(resolvedParent common.Hash) {
	g.mu.Lock()
	waiting := g.quarantine[resolvedParent]
	delete(g.quarantine, resolvedParent)
	g.mu.Unlock()

	for _, e := range waiting {
		_ = g.Admit(e)
	}
}

// Get returns the entry for id, or ErrNotFound / ErrErased.
func (g *Graph) Get(id common.Hash) (*Entry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, erased := g.tombstoned[id]; erased {
		return nil, protoerr.ErrErased
	}
	e, ok := g.entries[id]
	if !ok {
		return nil, protoerr.ErrNotFound
	}
	return e, nil
}

// Has reports whether id is known locally, erased or not.
func (g *Graph) Has(id common.Hash) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, erased := g.tombstoned[id]; erased {
		return true
	}
	_, ok := g.entries[id]
	return ok
}

// Children returns the ids of entries that list id as a parent.
func (g *Graph) Children(id common.Hash) []common.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]common.Hash(nil), g.children[id]...)
}

// Parents returns the parent ids of id.
func (g *Graph) Parents(id common.Hash) ([]common.Hash, error) {
	e, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	return append([]common.Hash(nil), e.Parents...), nil
}

// GenerateParity computes and stores the Reed-Solomon parity
// companion for an admitted entry (spec.md §4.2: "generate_parity").
func (g *Graph) GenerateParity(id common.Hash) (*ParityCompanion, error) {
	e, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	pc, err := BuildParityCompanion(e.Content, e.ReplicationFactor)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.parity[id] = pc
	batch := g.backend.NewBatch()
	batch.Put(ColumnParity, id.Bytes(), pc.Encode())
	_ = g.backend.WriteBatch(batch)
	return pc, nil
}

// Parity returns the stored parity companion for id, if any.
func (g *Graph) Parity(id common.Hash) (*ParityCompanion, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	pc, ok := g.parity[id]
	return pc, ok
}

// Tombstone replaces id's content with a tombstone marker (spec.md
// §4.2, §4.7): the id and clock survive, the parity companion is
// destroyed, and all future Get/regenerate calls return Erased.
func (g *Graph) Tombstone(id common.Hash, erasureRecordID common.Hash, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[id]
	if !ok {
		return protoerr.ErrNotFound
	}
	if _, already := g.tombstoned[id]; already {
		return nil
	}

	e.Content = tombstoneMarker(id)
	g.tombstoned[id] = TombstoneInfo{ErasureRecordID: erasureRecordID, Reason: reason}
	delete(g.parity, id)

	batch := g.backend.NewBatch()
	batch.Delete(ColumnParity, id.Bytes())
	batch.Put(ColumnErasures, id.Bytes(), erasureRecordID.Bytes())
	_ = g.backend.WriteBatch(batch)
	return nil
}

// IsTombstoned reports whether id has been erased.
func (g *Graph) IsTombstoned(id common.Hash) (TombstoneInfo, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	info, ok := g.tombstoned[id]
	return info, ok
}

func tombstoneMarker(id common.Hash) []byte {
	out := make([]byte, 8+common.HashLength)
	binary.BigEndian.PutUint64(out[:8], 0xDEAD5EED)
	copy(out[8:], id.Bytes())
	return out
}
