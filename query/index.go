package query

import (
	"github.com/mpatterson/heapdb/pager"
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/mpatterson/heapdb/source"
	"github.com/petar/GoLLRB/llrb"
	"github.com/pkg/errors"
)

// ErrSourceNotOffsettable is returned by BuildIndex when given a Source
// that cannot report the Offset of the row it last produced, such as one
// downstream of a Selection or Projection.
var ErrSourceNotOffsettable = errors.New("source does not support offsets, cannot be indexed")

// indexEntry is one (field value, row pointer) pair stored in the tree,
// ordered by value.
type indexEntry struct {
	value  string
	offset source.Offset
}

func (e *indexEntry) Less(than llrb.Item) bool {
	return e.value < than.(*indexEntry).value
}

// Index is an in-memory ordered map from a single field's value to the
// Offset of the row that produced it, built once by draining an upstream
// Source in full. Equal values overwrite: only the most recently drained
// row for a given value is kept, matching a single-column equality index
// rather than a multimap.
type Index struct {
	tree  *llrb.LLRB
	field string
}

// BuildIndex drains src entirely, recording, for every row, the Offset of
// that row keyed by its field-th column. src must implement
// source.Offsetter — in practice this means a fresh Scan dedicated to
// building the index, not the same Source instance a query is already
// reading rows from downstream of, since draining it here would leave
// nothing for the rest of the query to pull.
func BuildIndex(src source.Source, field string) (*Index, error) {
	idx, err := src.Schema().MustIndex(field)
	if err != nil {
		return nil, err
	}
	offsetter, ok := src.(source.Offsetter)
	if !ok {
		return nil, ErrSourceNotOffsettable
	}

	tree := llrb.New()
	for {
		r, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		off, err := offsetter.Offset()
		if err != nil {
			return nil, err
		}
		tree.ReplaceOrInsert(&indexEntry{value: r[idx], offset: off})
	}
	return &Index{tree: tree, field: field}, nil
}

// Lookup returns the Offset recorded for value, if any.
func (ix *Index) Lookup(value string) (source.Offset, bool) {
	item := ix.tree.Get(&indexEntry{value: value})
	if item == nil {
		return source.Offset{}, false
	}
	return item.(*indexEntry).offset, true
}

// Len returns the number of distinct values indexed.
func (ix *Index) Len() int { return ix.tree.Len() }

// IndexProbe is a single-row operator: given a built Index and a probe
// value, it resolves straight to the matching row via the heap rather than
// scanning for it.
type IndexProbe struct {
	heap  *pager.Heap
	sc    *schema.Schema
	ix    *Index
	value string
	done  bool
}

// NewIndexProbe builds an IndexProbe that looks up value in ix and, on a
// hit, resolves the row directly from heap.
func NewIndexProbe(heap *pager.Heap, sc *schema.Schema, ix *Index, value string) *IndexProbe {
	return &IndexProbe{heap: heap, sc: sc, ix: ix, value: value}
}

func (p *IndexProbe) Schema() *schema.Schema { return p.sc }

// Next returns the single row matching the probe's value, then reports
// exhaustion; an IndexProbe never produces more than one row, since the
// index is a single-value equality map.
func (p *IndexProbe) Next() (row.Row, bool, error) {
	if p.done {
		return nil, false, nil
	}
	p.done = true
	off, found := p.ix.Lookup(p.value)
	if !found {
		return nil, false, nil
	}
	r, err := p.heap.ResolveOffset(pager.Offset{PageIndex: off.PageIndex, ByteOff: off.ByteOff})
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}
