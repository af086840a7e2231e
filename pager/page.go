package pager

import (
	"encoding/binary"

	"github.com/mpatterson/heapdb/row"
	"github.com/pkg/errors"
)

// headerSize is the size, in bytes, of the fixed page header: ptr_lower and
// ptr_upper, each a 16 bit big-endian unsigned integer.
const headerSize = 4

// slotSize is the size, in bytes, of one slot directory entry.
const slotSize = 2

// Page is a byte-exact view over one fixed-size slotted block: a header, a
// slot directory that grows upward from byte 4, free space in the middle,
// and a tuple region that grows downward from the end of the page. See the
// format's normative byte layout for the exact shape.
//
//	offset 0:             ptr_lower (uint16 big-endian)
//	offset 2:             ptr_upper (uint16 big-endian)
//	offset 4..ptr_lower:  slot directory, uint16 big-endian entries
//	offset ptr_lower..ptr_upper: zero-filled free space
//	offset ptr_upper..8192: tuples, each uint16 size + packed row bytes
type Page struct {
	store     storage
	index     int
	base      int64
	ptrLower  uint16
	ptrUpper  uint16
	freeSpace uint16
}

// createPage initializes a zeroed page at page index idx: header
// (ptr_lower=4, ptr_upper=8192) followed by 8188 zero bytes.
func createPage(s storage, idx int) (*Page, error) {
	base := int64(idx) * PageSize
	buf := make([]byte, PageSize)
	binary.BigEndian.PutUint16(buf[0:2], headerSize)
	binary.BigEndian.PutUint16(buf[2:4], PageSize)
	if _, err := s.WriteAt(buf, base); err != nil {
		return nil, errors.Wrapf(err, "creating page %d", idx)
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return &Page{
		store:     s,
		index:     idx,
		base:      base,
		ptrLower:  headerSize,
		ptrUpper:  PageSize,
		freeSpace: PageSize - headerSize,
	}, nil
}

// openPage reads the header of an existing page at page index idx and
// derives free_space; it leaves the rest of the page untouched.
func openPage(s storage, idx int) (*Page, error) {
	base := int64(idx) * PageSize
	hdr := make([]byte, headerSize)
	if _, err := s.ReadAt(hdr, base); err != nil {
		return nil, errors.Wrapf(err, "opening page %d", idx)
	}
	ptrLower := binary.BigEndian.Uint16(hdr[0:2])
	ptrUpper := binary.BigEndian.Uint16(hdr[2:4])
	if err := validateHeader(idx, ptrLower, ptrUpper); err != nil {
		return nil, err
	}
	return &Page{
		store:     s,
		index:     idx,
		base:      base,
		ptrLower:  ptrLower,
		ptrUpper:  ptrUpper,
		freeSpace: ptrUpper - ptrLower,
	}, nil
}

func validateHeader(idx int, ptrLower, ptrUpper uint16) error {
	if ptrLower < headerSize || ptrLower > ptrUpper || ptrUpper > PageSize {
		return corruptf(idx, 0, "invalid header ptr_lower=%d ptr_upper=%d", ptrLower, ptrUpper)
	}
	return nil
}

// FreeSpace returns ptr_upper - ptr_lower, the number of bytes available for
// a new slot entry plus tuple.
func (p *Page) FreeSpace() uint16 { return p.freeSpace }

// PtrLower returns the current ptr_lower header value.
func (p *Page) PtrLower() uint16 { return p.ptrLower }

// PtrUpper returns the current ptr_upper header value.
func (p *Page) PtrUpper() uint16 { return p.ptrUpper }

// SlotCount returns the number of slot directory entries, (ptr_lower-4)/2.
func (p *Page) SlotCount() int { return int(p.ptrLower-headerSize) / slotSize }

// Insert packs r and appends it to the page. Returns ErrOutOfPageSpace if
// the packed row plus its 2 byte size prefix and its 2 byte slot entry does
// not fit in free_space.
func (p *Page) Insert(r row.Row) error {
	packed, err := row.Pack(r)
	if err != nil {
		return err
	}
	l := uint16(len(packed))
	if int(l)+2+slotSize > int(p.freeSpace) {
		return ErrOutOfPageSpace
	}
	newUpper := p.ptrUpper - (l + 2)

	tuple := make([]byte, 2+len(packed))
	binary.BigEndian.PutUint16(tuple[0:2], l)
	copy(tuple[2:], packed)
	if _, err := p.store.WriteAt(tuple, p.base+int64(newUpper)); err != nil {
		return errors.Wrapf(err, "writing tuple on page %d", p.index)
	}

	slotEntry := make([]byte, slotSize)
	binary.BigEndian.PutUint16(slotEntry, newUpper)
	if _, err := p.store.WriteAt(slotEntry, p.base+int64(p.ptrLower)); err != nil {
		return errors.Wrapf(err, "writing slot on page %d", p.index)
	}

	newLower := p.ptrLower + slotSize
	hdr := make([]byte, headerSize)
	binary.BigEndian.PutUint16(hdr[0:2], newLower)
	binary.BigEndian.PutUint16(hdr[2:4], newUpper)
	if _, err := p.store.WriteAt(hdr, p.base); err != nil {
		return errors.Wrapf(err, "writing header on page %d", p.index)
	}

	if err := p.store.Flush(); err != nil {
		return err
	}

	p.ptrLower = newLower
	p.ptrUpper = newUpper
	p.freeSpace = newUpper - newLower
	return nil
}

// content reads the page's full PageSize byte image. Operators typically
// pull several slots from the same page in a row (a scan walks every slot
// before moving on), so this goes through the page read cache rather than
// issuing one small ReadAt per field.
func (p *Page) content() ([]byte, error) {
	buf := make([]byte, PageSize)
	if _, err := p.store.ReadAt(buf, p.base); err != nil {
		return nil, errors.Wrapf(err, "reading page %d", p.index)
	}
	return buf, nil
}

// Get returns the row at slot n (0-based), or nil if there is no such slot.
// arity, when non-negative, is the expected field count used to validate
// the unpacked tuple.
func (p *Page) Get(n int, arity int) (row.Row, error) {
	buf, err := p.content()
	if err != nil {
		return nil, err
	}
	tupleOff, ok := slotAt(buf, p.ptrLower, n)
	if !ok {
		return nil, nil
	}
	if tupleOff < p.ptrUpper || int(tupleOff) >= PageSize {
		return nil, corruptf(p.index, int(tupleOff), "slot %d points outside tuple region", n)
	}
	size := binary.BigEndian.Uint16(buf[tupleOff : tupleOff+2])
	if int(tupleOff)+2+int(size) > PageSize {
		return nil, corruptf(p.index, int(tupleOff), "tuple size %d runs past end of page", size)
	}
	tuple := buf[int(tupleOff)+2 : int(tupleOff)+2+int(size)]
	r, err := row.Unpack(tuple, arity)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d slot %d", p.index, n)
	}
	return r, nil
}

// tupleAt unpacks the tuple whose length prefix starts at byteOff, the same
// offset recorded by rowOffset/RowOffset. Reads through content() like Get,
// so a direct-offset resolution still goes through the page cache instead
// of issuing small unaligned reads straight against storage.
func (p *Page) tupleAt(byteOff uint16, arity int) (row.Row, error) {
	buf, err := p.content()
	if err != nil {
		return nil, err
	}
	if int(byteOff)+2 > PageSize {
		return nil, corruptf(p.index, int(byteOff), "offset runs past end of page")
	}
	size := binary.BigEndian.Uint16(buf[byteOff : byteOff+2])
	if int(byteOff)+2+int(size) > PageSize {
		return nil, corruptf(p.index, int(byteOff), "tuple size %d runs past end of page", size)
	}
	tuple := buf[int(byteOff)+2 : int(byteOff)+2+int(size)]
	r, err := row.Unpack(tuple, arity)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d offset %d", p.index, byteOff)
	}
	return r, nil
}

// rowOffset returns the page-relative byte offset of slot n's length prefix,
// the same value recorded in the slot directory. Used by the index build
// operator to capture a pointer to a row's start rather than the offset
// after reading it (see the index build/probe design).
func (p *Page) rowOffset(n int) (uint16, bool, error) {
	buf, err := p.content()
	if err != nil {
		return 0, false, err
	}
	off, ok := slotAt(buf, p.ptrLower, n)
	return off, ok, nil
}

// slotAt reads slot n's tuple offset out of a full page buffer. ok is false
// if n is past the slot directory or the slot was never written.
func slotAt(buf []byte, ptrLower uint16, n int) (uint16, bool) {
	slotOff := headerSize + n*slotSize
	if slotOff+slotSize > int(ptrLower) {
		return 0, false
	}
	off := binary.BigEndian.Uint16(buf[slotOff : slotOff+slotSize])
	if off == 0 {
		return 0, false
	}
	return off, true
}
