package entry

import "sync"

// memBatch buffers writes until WriteBatch applies them atomically.
type memBatch struct {
	puts    []memOp
	deletes []memOp
}

type memOp struct {
	column string
	key    string
	value  []byte
}

func (b *memBatch) Put(column string, key, value []byte) {
	b.puts = append(b.puts, memOp{column: column, key: string(key), value: append([]byte(nil), value...)})
}

func (b *memBatch) Delete(column string, key []byte) {
	b.deletes = append(b.deletes, memOp{column: column, key: string(key)})
}

// MemoryBackend is the in-memory Backend implementation the core ships
// (spec.md §4.2: "the core ships an in-memory backend").
type MemoryBackend struct {
	mu   sync.RWMutex
	cols map[string]map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{cols: make(map[string]map[string][]byte)}
}

func (m *MemoryBackend) Get(column string, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.cols[column]
	if !ok {
		return nil, false, nil
	}
	v, ok := col[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Iterate(column string, prefix []byte, fn func(key, value []byte) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col := m.cols[column]
	p := string(prefix)
	for k, v := range col {
		if len(p) > 0 && (len(k) < len(p) || k[:len(p)] != p) {
			continue
		}
		if !fn([]byte(k), v) {
			break
		}
	}
	return nil
}

func (m *MemoryBackend) NewBatch() Batch {
	return &memBatch{}
}

// WriteBatch applies all puts then deletes under a single lock, the
// in-memory approximation of the on-disk backend's atomic batch write.
func (m *MemoryBackend) WriteBatch(b Batch) error {
	mb, ok := b.(*memBatch)
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range mb.puts {
		col, ok := m.cols[op.column]
		if !ok {
			col = make(map[string][]byte)
			m.cols[op.column] = col
		}
		col[op.key] = op.value
	}
	for _, op := range mb.deletes {
		if col, ok := m.cols[op.column]; ok {
			delete(col, op.key)
		}
	}
	return nil
}
