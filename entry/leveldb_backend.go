package entry

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/syndtr/goleveldb/leveldb"
	lvutil "github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBBackend is the on-disk Backend implementation, grounded on
// tosdb/leveldb's wrapping of *leveldb.DB. goleveldb has no native
// column families, so columns are namespaced by prefixing keys with
// "<column>/", the same approach tosdb's ancient/freezer tables use
// for sub-keying a single flat keyspace.
type LevelDBBackend struct {
	db    *leveldb.DB
	cache *fastcache.Cache
}

// OpenLevelDBBackend opens (or creates) a goleveldb store at path,
// fronted by a fastcache read cache sized in bytes.
func OpenLevelDBBackend(path string, cacheBytes int) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{db: db, cache: fastcache.New(cacheBytes)}, nil
}

func (l *LevelDBBackend) Close() error {
	return l.db.Close()
}

func columnKey(column string, key []byte) []byte {
	out := make([]byte, 0, len(column)+1+len(key))
	out = append(out, column...)
	out = append(out, '/')
	out = append(out, key...)
	return out
}

func (l *LevelDBBackend) Get(column string, key []byte) ([]byte, bool, error) {
	ck := columnKey(column, key)
	if v, ok := l.cache.HasGet(nil, ck); ok {
		return v, true, nil
	}
	v, err := l.db.Get(ck, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	l.cache.Set(ck, v)
	return v, true, nil
}

func (l *LevelDBBackend) Iterate(column string, prefix []byte, fn func(key, value []byte) bool) error {
	fullPrefix := columnKey(column, prefix)
	it := l.db.NewIterator(lvutil.BytesPrefix(fullPrefix), nil)
	defer it.Release()
	for it.Next() {
		key := it.Key()[len(column)+1:]
		if !fn(key, it.Value()) {
			break
		}
	}
	return it.Error()
}

type levelDBBatch struct {
	backend *LevelDBBackend
	batch   *leveldb.Batch
}

func (b *levelDBBatch) Put(column string, key, value []byte) {
	b.batch.Put(columnKey(column, key), value)
}

func (b *levelDBBatch) Delete(column string, key []byte) {
	b.batch.Delete(columnKey(column, key))
}

func (l *LevelDBBackend) NewBatch() Batch {
	return &levelDBBatch{backend: l, batch: new(leveldb.Batch)}
}

// WriteBatch commits the batch atomically via goleveldb's native batch
// write, and invalidates the cached entries it touched.
func (l *LevelDBBackend) WriteBatch(b Batch) error {
	lb, ok := b.(*levelDBBatch)
	if !ok {
		return nil
	}
	if err := l.db.Write(lb.batch, nil); err != nil {
		return err
	}
	lb.batch.Replay(invalidatingReplay{cache: l.cache})
	return nil
}

// invalidatingReplay drops cache entries touched by a committed batch
// so subsequent Get calls re-read from disk rather than serve stale
// cached bytes.
type invalidatingReplay struct {
	cache *fastcache.Cache
}

func (r invalidatingReplay) Put(key, value []byte) { r.cache.Del(key) }
func (r invalidatingReplay) Delete(key []byte)      { r.cache.Del(key) }
