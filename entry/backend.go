package entry

// Batch accumulates writes for one atomic commit (spec.md §6:
// "Atomicity boundary: one entry admission commits {entries, parents,
// parity, anchors-if-anchor} in a single batch").
type Batch interface {
	Put(column string, key, value []byte)
	Delete(column string, key []byte)
}

// Backend is the storage abstraction the graph is polymorphic over
// (spec.md §4.2: "the graph is polymorphic over a storage backend
// exposing put/get/iter/delete"). Implementations must make Put
// idempotent and WriteBatch atomic.
type Backend interface {
	Get(column string, key []byte) ([]byte, bool, error)
	Iterate(column string, prefix []byte, fn func(key, value []byte) bool) error
	NewBatch() Batch
	WriteBatch(b Batch) error
}

// Column names matching the persisted layout of spec.md §6.
const (
	ColumnEntries      = "entries"
	ColumnParents      = "parents"
	ColumnParity       = "parity"
	ColumnAttestations = "attestations"
	ColumnAnchors      = "anchors"
	ColumnOES          = "oes"
	ColumnErasures     = "erasures"
)
