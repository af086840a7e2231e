// Package source defines the pull-based contract every query operator
// consumes and produces. An operator reads rows from an upstream Source one
// at a time and is itself a Source to whatever sits downstream, so a query
// is assembled by composing these without materializing intermediate
// result sets, beyond what a given operator's own semantics require.
package source

import (
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
)

// Source produces rows one at a time, in some stable order determined by
// its implementation.
type Source interface {
	// Schema returns the output row shape this Source produces.
	Schema() *schema.Schema
	// Next returns the next row, or ok=false once the source is exhausted.
	// A non-nil error aborts iteration; callers must not call Next again
	// after an error.
	Next() (r row.Row, ok bool, err error)
}

// Offsetter is implemented by a Source that can report a durable pointer to
// the row it most recently returned from Next, suitable for a later direct
// lookup without rescanning. Only heap-backed scans implement this; a
// Source stacked on top of one (selection, projection) does not, since its
// output rows no longer correspond 1:1 with a single upstream offset in a
// way a caller could usefully resolve.
type Offsetter interface {
	// Offset returns the pointer for the row most recently returned by
	// Next. It is only valid to call after a successful Next and before
	// the following call to Next.
	Offset() (Offset, error)
}

// Offset is an opaque, source-defined pointer to one row. Its zero value is
// never a valid pointer.
type Offset struct {
	PageIndex int
	ByteOff   uint16
}

// Tabler is implemented by a Source that scans a single named table, the
// second piece of context an index build operator consumes alongside
// Offsetter.
type Tabler interface {
	Table() string
}
