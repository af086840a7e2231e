package query

import (
	"github.com/mpatterson/heapdb/pager"
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/mpatterson/heapdb/source"
	"github.com/pkg/errors"
)

// errNoCurrentRow is returned by Scan.Offset when called before the first
// Next or after Next has returned ok=false.
var errNoCurrentRow = errors.New("scan has no current row: Offset called before Next or after exhaustion")

// Scan is the leaf operator: it pulls rows directly out of a heap file, in
// heap order, and is the only operator that can report an Offset for the
// row it last produced.
type Scan struct {
	heap   *pager.Heap
	sc     *schema.Schema
	cursor  int
	last    source.Offset
	hasLast bool
}

// Table returns the name of the table this Scan reads, alongside Offset
// the pair an index build operator consumes.
func (s *Scan) Table() string { return s.sc.Table() }

// NewScan creates a Scan over heap using sc to describe and validate the
// heap's row shape.
func NewScan(heap *pager.Heap, sc *schema.Schema) *Scan {
	return &Scan{heap: heap, sc: sc}
}

func (s *Scan) Schema() *schema.Schema { return s.sc }

// Next returns the row at the current cursor position and records its
// Offset before advancing. Recording the offset from the row actually read
// — rather than from wherever a shared read cursor lands after reading it
// — is what keeps a later Offset() call pointing at the row Next just
// returned instead of the one following it.
func (s *Scan) Next() (row.Row, bool, error) {
	off, ok, err := s.heap.RowOffset(s.cursor)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.hasLast = false
		return nil, false, nil
	}
	r, err := s.heap.ResolveOffset(off)
	if err != nil {
		return nil, false, err
	}
	s.last = source.Offset{PageIndex: off.PageIndex, ByteOff: off.ByteOff}
	s.hasLast = true
	s.cursor++
	return r, true, nil
}

// Offset returns the Offset of the row most recently returned by Next.
func (s *Scan) Offset() (source.Offset, error) {
	if !s.hasLast {
		return source.Offset{}, errNoCurrentRow
	}
	return s.last, nil
}
