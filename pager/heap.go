package pager

import (
	"sync"

	"github.com/mpatterson/heapdb/row"
	"github.com/pkg/errors"
)

// Heap is an append-only sequence of fixed-size pages backed by a single
// storage. New pages are allocated on overflow; nothing is ever deleted or
// compacted. A Heap is safe for one writer and many readers: writes take
// wMu, and page contents are only ever appended to, never rewritten, so a
// reader racing a writer sees either the old or the new tail, never a torn
// page.
type Heap struct {
	store storage
	arity int

	wMu sync.Mutex

	pagesMu sync.RWMutex
	pages   []*Page
	// rowCounts[i] is the number of rows stored in pages[0:i+1], so that
	// Get(k) can find the page owning row k instead of only ever consulting
	// the last-written page.
	rowCounts []int
}

// Open opens or creates a file-backed Heap at path, wrapped in a read cache
// of up to defaultCachePages pages. arity is the fixed number of fields
// every row must have; pass -1 to skip arity validation.
func Open(path string, arity int) (*Heap, error) {
	fs, err := newFileStorage(path)
	if err != nil {
		return nil, err
	}
	return OpenHeap(newCachingStorage(fs, defaultCachePages), arity)
}

// OpenMemory creates a new in-memory Heap. arity is the fixed number of
// fields every row must have; pass -1 to skip arity validation.
func OpenMemory(arity int) (*Heap, error) {
	return OpenHeap(newMemoryStorage(), arity)
}

// OpenHeap opens or creates a Heap over s. arity is the fixed number of
// fields every row must have; pass -1 to skip arity validation.
func OpenHeap(s storage, arity int) (*Heap, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	h := &Heap{store: s, arity: arity}
	if size == 0 {
		p, err := createPage(s, 0)
		if err != nil {
			return nil, err
		}
		h.pages = []*Page{p}
		h.rowCounts = []int{0}
		return h, nil
	}
	if size%PageSize != 0 {
		return nil, errors.Errorf("heap file size %d is not a multiple of page size %d", size, PageSize)
	}
	n := int(size / PageSize)
	count := 0
	for i := 0; i < n; i++ {
		p, err := openPage(s, i)
		if err != nil {
			return nil, err
		}
		h.pages = append(h.pages, p)
		count += p.SlotCount()
		h.rowCounts = append(h.rowCounts, count)
	}
	return h, nil
}

// Insert appends r to the heap, writing it onto the last page if it fits or
// allocating and writing a fresh page otherwise. Insert serializes against
// other Insert calls and holds the storage writer lock while it writes, so
// concurrent Get and Iterate calls wait until it returns.
func (h *Heap) Insert(r row.Row) error {
	if h.arity >= 0 && len(r) != h.arity {
		return errors.Errorf("row has %d fields, want %d", len(r), h.arity)
	}
	if slotSize+2+row.PackedLen(r) > PageSize-headerSize {
		return ErrTupleTooLarge
	}

	h.wMu.Lock()
	defer h.wMu.Unlock()

	if err := h.store.WriterLock(); err != nil {
		return errors.Wrap(err, "acquiring writer exclusivity")
	}
	defer h.store.WriterUnlock()

	h.pagesMu.RLock()
	last := h.pages[len(h.pages)-1]
	h.pagesMu.RUnlock()

	if err := last.Insert(r); err != nil {
		if !errors.Is(err, ErrOutOfPageSpace) {
			return err
		}
		next, cerr := createPage(h.store, len(h.pages))
		if cerr != nil {
			return cerr
		}
		if ierr := next.Insert(r); ierr != nil {
			return ierr
		}
		h.pagesMu.Lock()
		h.pages = append(h.pages, next)
		h.rowCounts = append(h.rowCounts, h.rowCounts[len(h.rowCounts)-1])
		h.pagesMu.Unlock()
		last = next
	}

	h.pagesMu.Lock()
	h.rowCounts[len(h.rowCounts)-1] = h.rowCounts[len(h.rowCounts)-1] + 1
	h.pagesMu.Unlock()
	return nil
}

// PageCount returns the number of pages currently allocated.
func (h *Heap) PageCount() int {
	h.pagesMu.RLock()
	defer h.pagesMu.RUnlock()
	return len(h.pages)
}

// RowCount returns the total number of rows across all pages.
func (h *Heap) RowCount() int {
	h.pagesMu.RLock()
	defer h.pagesMu.RUnlock()
	if len(h.rowCounts) == 0 {
		return 0
	}
	return h.rowCounts[len(h.rowCounts)-1]
}

// Get returns the k-th row (0-based) across the whole heap, resolving which
// page owns k from the cumulative per-page row counts rather than only ever
// consulting the most recently written page.
func (h *Heap) Get(k int) (row.Row, error) {
	if err := h.store.ReaderLock(); err != nil {
		return nil, errors.Wrap(err, "acquiring reader access")
	}
	defer h.store.ReaderUnlock()

	h.pagesMu.RLock()
	defer h.pagesMu.RUnlock()

	if k < 0 {
		return nil, errors.Errorf("negative row index %d", k)
	}
	prev := 0
	for i, cum := range h.rowCounts {
		if k < cum {
			return h.pages[i].Get(k-prev, h.arity)
		}
		prev = cum
	}
	return nil, nil
}

// Offset identifies a row by the page it lives on and the page-relative
// byte offset of its length prefix, the pointer the index operators record
// and later re-resolve through ResolveOffset.
type Offset struct {
	PageIndex int
	ByteOff   uint16
}

// RowOffset returns the Offset of the k-th row in the heap, for use by the
// index build operator. It is recorded from the row's slot entry directly,
// not derived from a read cursor, so it always points at the matched row
// itself rather than whatever follows it.
func (h *Heap) RowOffset(k int) (Offset, bool, error) {
	if err := h.store.ReaderLock(); err != nil {
		return Offset{}, false, errors.Wrap(err, "acquiring reader access")
	}
	defer h.store.ReaderUnlock()

	h.pagesMu.RLock()
	defer h.pagesMu.RUnlock()

	prev := 0
	for i, cum := range h.rowCounts {
		if k < cum {
			off, ok, err := h.pages[i].rowOffset(k - prev)
			if err != nil || !ok {
				return Offset{}, false, err
			}
			return Offset{PageIndex: i, ByteOff: off}, true, nil
		}
		prev = cum
	}
	return Offset{}, false, nil
}

// ResolveOffset reads the row stored at off directly, without scanning.
func (h *Heap) ResolveOffset(off Offset) (row.Row, error) {
	if err := h.store.ReaderLock(); err != nil {
		return nil, errors.Wrap(err, "acquiring reader access")
	}
	defer h.store.ReaderUnlock()

	h.pagesMu.RLock()
	defer h.pagesMu.RUnlock()

	if off.PageIndex < 0 || off.PageIndex >= len(h.pages) {
		return nil, errors.Errorf("offset references page %d, heap has %d pages", off.PageIndex, len(h.pages))
	}
	p := h.pages[off.PageIndex]
	r, err := p.tupleAt(off.ByteOff, h.arity)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving offset on page %d", off.PageIndex)
	}
	return r, nil
}

// Iterate calls fn once for every row in the heap, in insertion order,
// stopping early if fn returns false or a non-nil error.
func (h *Heap) Iterate(fn func(r row.Row) (bool, error)) error {
	if err := h.store.ReaderLock(); err != nil {
		return errors.Wrap(err, "acquiring reader access")
	}
	defer h.store.ReaderUnlock()

	h.pagesMu.RLock()
	pages := append([]*Page(nil), h.pages...)
	h.pagesMu.RUnlock()

	for _, p := range pages {
		n := p.SlotCount()
		for i := 0; i < n; i++ {
			r, err := p.Get(i, h.arity)
			if err != nil {
				return err
			}
			if r == nil {
				continue
			}
			cont, err := fn(r)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
	}
	return nil
}
