package pager

import "github.com/pkg/errors"

// ErrOutOfPageSpace is returned by Page.Insert when a row does not fit in the
// page's remaining free space. Heap recovers from it locally by allocating a
// new page; it must never escape Heap.
var ErrOutOfPageSpace = errors.New("out of page space")

// ErrTupleTooLarge is returned when a row's packed length exceeds what any
// page could ever hold, regardless of how much free space it has.
var ErrTupleTooLarge = errors.New("tuple too large for any page")

// ErrCorrupt indicates an on-disk page header or slot entry is inconsistent
// with the invariants of the slotted page format.
var ErrCorrupt = errors.New("corrupt page")

// corruptf wraps ErrCorrupt with a diagnostic naming the page index and byte
// offset at fault, per the error handling design.
func corruptf(pageIndex int, offset int, format string, args ...any) error {
	msg := errors.Errorf(format, args...)
	return errors.Wrapf(ErrCorrupt, "page %d offset %d: %s", pageIndex, offset, msg.Error())
}
