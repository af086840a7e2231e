package pager

import (
	"github.com/mpatterson/heapdb/pager/cache"
)

// defaultCachePages bounds how many whole pages the read cache keeps in
// memory at once.
const defaultCachePages = 256

// cachingStorage decorates a storage with an LRU cache of whole page
// contents, keyed by page index. Only full, page-aligned reads are cached,
// since those are the ones a file scan repeats across every operator pull
// on the same page; partial reads (a single slot or tuple) pass straight
// through. Any write touching a page evicts that page's cache entry so a
// subsequent read never observes stale bytes.
type cachingStorage struct {
	inner storage
	cache *cache.LRU
}

func newCachingStorage(inner storage, maxPages int) storage {
	return &cachingStorage{inner: inner, cache: cache.NewLRU(maxPages, 0)}
}

func (c *cachingStorage) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == PageSize && off%PageSize == 0 {
		idx := int(off / PageSize)
		if v, hit := c.cache.Get(idx); hit {
			copy(p, v)
			return len(p), nil
		}
		n, err := c.inner.ReadAt(p, off)
		if err == nil {
			cp := make([]byte, len(p))
			copy(cp, p)
			c.cache.Add(idx, cp)
		}
		return n, err
	}
	return c.inner.ReadAt(p, off)
}

func (c *cachingStorage) WriteAt(p []byte, off int64) (int, error) {
	idx := int(off / PageSize)
	c.cache.Remove(idx)
	return c.inner.WriteAt(p, off)
}

func (c *cachingStorage) Flush() error          { return c.inner.Flush() }
func (c *cachingStorage) Size() (int64, error)  { return c.inner.Size() }
func (c *cachingStorage) WriterLock() error     { return c.inner.WriterLock() }
func (c *cachingStorage) WriterUnlock()         { c.inner.WriterUnlock() }
func (c *cachingStorage) ReaderLock() error     { return c.inner.ReaderLock() }
func (c *cachingStorage) ReaderUnlock()         { c.inner.ReaderUnlock() }
