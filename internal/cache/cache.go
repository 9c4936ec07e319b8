// Package cache implements the Tag Cache (spec.md §4.1): a persistent,
// content-addressed store mapping (path, content_hash, mtime) to a file's
// extracted tags, with single-writer/many-reader semantics and atomic
// replace on put.
//
// Storage engine: dgraph-io/badger/v4, an embedded transactional KV store
// (found in the retrieval pack's AleutianAI/AleutianFOSS). Badger's
// single-writer transaction model gives the "no partial state observable"
// guarantee of spec.md §4.1 directly, instead of hand-rolling a
// file-backed relational format. cespare/xxhash/v2 (a teacher dependency)
// backs an in-memory secondary index used only to make get's mtime
// fast-path check avoid a Badger lookup; it is never the source of truth
// for coherence, which always resolves through the authoritative SHA-256
// comparison.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	badger "github.com/dgraph-io/badger/v4"

	cerrors "github.com/codelensdev/codelens/internal/errors"
	"github.com/codelensdev/codelens/internal/types"
)

const schemaVersion = 1

const schemaVersionKey = "schema_version"

// Cache is the single-writer/many-reader Tag Cache. Safe for concurrent
// use: Badger serializes writers internally, and Get is lock-free aside
// from the small in-memory fast-path index.
type Cache struct {
	db *badger.DB

	mu       sync.RWMutex // guards fastIndex
	fastIndex map[string]fastEntry

	stats cacheStats
}

type fastEntry struct {
	mtimeUnixNano int64
	pathHash      uint64
}

type cacheStats struct {
	mu      sync.Mutex
	hits    int64
	misses  int64
	puts    int64
	evicted int64
}

// record is the on-disk payload for one cached file: its FileRecord plus
// its ordered Tag list, replaced atomically as a unit.
type record struct {
	FilePath    string
	ContentHash [32]byte
	ModTime     time.Time
	Language    types.Language
	CachedAt    time.Time
	Tags        []types.Tag
}

// Open opens (or creates) the Badger-backed cache at dir. A schema_version
// mismatch (spec.md §6) clears the store before use rather than surfacing
// an error.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, cerrors.New(cerrors.KindCacheCorrupt, dir, "failed to open tag cache", err)
	}

	c := &Cache{db: db, fastIndex: make(map[string]fastEntry)}
	if err := c.reconcileSchema(); err != nil {
		db.Close()
		return nil, err
	}
	c.rebuildFastIndex()
	return c, nil
}

// Close releases the underlying Badger handles.
func (c *Cache) Close() error { return c.db.Close() }

func (c *Cache) reconcileSchema() error {
	var version int
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaVersionKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 1 {
				version = int(val[0])
			}
			return nil
		})
	})
	if err != nil {
		return cerrors.New(cerrors.KindCacheCorrupt, "", "reading schema_version", err)
	}
	if version == schemaVersion {
		return nil
	}
	if err := c.clearLocked(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaVersionKey), []byte{byte(schemaVersion)})
	})
}

func (c *Cache) rebuildFastIndex() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(recordKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			_ = item.Value(func(val []byte) error {
				var rec record
				if decodeRecord(val, &rec) == nil {
					c.fastIndex[rec.FilePath] = fastEntry{
						mtimeUnixNano: rec.ModTime.UnixNano(),
						pathHash:      xxhash.Sum64String(rec.FilePath),
					}
				}
				return nil
			})
		}
		return nil
	})
}

const recordKeyPrefix = "rec:"

func recordKey(path string) []byte { return []byte(recordKeyPrefix + path) }

// Get returns the cached tags for path iff: the file still exists, its
// current mtime is <= the stored mtime (fast-path filter), and the
// SHA-256 of its current bytes equals the stored content hash (the
// authoritative check). Any storage-layer error is treated as a miss,
// per spec.md §4.1's failure semantics.
func (c *Cache) Get(path string) ([]types.Tag, bool) {
	info, err := os.Stat(path)
	if err != nil {
		c.miss()
		return nil, false
	}

	c.mu.RLock()
	fast, known := c.fastIndex[path]
	c.mu.RUnlock()
	if known && info.ModTime().UnixNano() > fast.mtimeUnixNano {
		c.miss()
		return nil, false
	}

	bytesContent, err := os.ReadFile(path)
	if err != nil {
		c.miss()
		return nil, false
	}
	hash := sha256.Sum256(bytesContent)

	var rec record
	found := false
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(path))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if decodeErr := decodeRecord(val, &rec); decodeErr != nil {
				return decodeErr
			}
			found = true
			return nil
		})
	})
	if err != nil || !found || rec.ContentHash != hash {
		c.miss()
		return nil, false
	}

	c.hit()
	return rec.Tags, true
}

// Put atomically replaces the FileRecord + tags for path: delete-then-insert
// in one Badger transaction, so no partial state is ever observable.
func (c *Cache) Put(path string, language types.Language, tags []types.Tag) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return cerrors.New(cerrors.KindReadError, path, "reading file for cache put", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return cerrors.New(cerrors.KindReadError, path, "stat for cache put", err)
	}

	rec := record{
		FilePath:    path,
		ContentHash: sha256.Sum256(content),
		ModTime:     info.ModTime(),
		Language:    language,
		CachedAt:    time.Now(),
		Tags:        tags,
	}
	encoded, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encoding cache record for %s: %w", path, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if delErr := txn.Delete(recordKey(path)); delErr != nil && delErr != badger.ErrKeyNotFound {
			return delErr
		}
		return txn.Set(recordKey(path), encoded)
	})
	if err != nil {
		return cerrors.New(cerrors.KindCacheCorrupt, path, "writing tag cache record", err)
	}

	c.mu.Lock()
	c.fastIndex[path] = fastEntry{mtimeUnixNano: rec.ModTime.UnixNano(), pathHash: xxhash.Sum64String(path)}
	c.mu.Unlock()

	c.put()
	return nil
}

// Invalidate removes path's FileRecord and tags, if any.
func (c *Cache) Invalidate(path string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		delErr := txn.Delete(recordKey(path))
		if delErr == badger.ErrKeyNotFound {
			return nil
		}
		return delErr
	})
	if err != nil {
		return cerrors.New(cerrors.KindCacheCorrupt, path, "invalidating tag cache entry", err)
	}
	c.mu.Lock()
	delete(c.fastIndex, path)
	c.mu.Unlock()
	return nil
}

// Clear removes every cached record.
func (c *Cache) Clear() error {
	if err := c.clearLocked(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaVersionKey), []byte{byte(schemaVersion)})
	})
}

func (c *Cache) clearLocked() error {
	if err := c.db.DropAll(); err != nil {
		return cerrors.New(cerrors.KindCacheCorrupt, "", "clearing tag cache", err)
	}
	c.mu.Lock()
	c.fastIndex = make(map[string]fastEntry)
	c.mu.Unlock()
	return nil
}

// Stats is the cache counters surfaced by stats() (spec.md §6); graph
// counters are not part of it.
type Stats struct {
	Hits    int64
	Misses  int64
	Puts    int64
	Entries int
}

func (c *Cache) Stats() Stats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	c.mu.RLock()
	entries := len(c.fastIndex)
	c.mu.RUnlock()
	return Stats{Hits: c.stats.hits, Misses: c.stats.misses, Puts: c.stats.puts, Entries: entries}
}

func (c *Cache) hit() {
	c.stats.mu.Lock()
	c.stats.hits++
	c.stats.mu.Unlock()
}

func (c *Cache) miss() {
	c.stats.mu.Lock()
	c.stats.misses++
	c.stats.mu.Unlock()
}

func (c *Cache) put() {
	c.stats.mu.Lock()
	c.stats.puts++
	c.stats.mu.Unlock()
}

func encodeRecord(rec record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, rec *record) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(rec)
}
