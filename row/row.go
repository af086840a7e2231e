// Package row defines the Tuple/Row wire representation shared by the pager
// and query packages: an ordered list of string fields and the pure pack and
// unpack functions that convert a Row to and from its length-prefixed byte
// encoding.
package row

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Row is an ordered sequence of fields. Row arity is fixed per table by the
// owning schema; Row itself carries no arity information.
type Row []string

// ErrCorrupt indicates a packed tuple's byte layout does not agree with its
// declared length, or its field count does not match the expected arity.
var ErrCorrupt = errors.New("corrupt tuple")

// MaxFieldLen is the largest a single field may be: a 16 bit length prefix
// limits it to 65535 bytes.
const MaxFieldLen = 1<<16 - 1

// Pack serializes row as the concatenation, for each field in order, of a
// 16 bit big-endian length followed by the field's bytes.
func Pack(r Row) ([]byte, error) {
	size := 0
	for _, f := range r {
		if len(f) > MaxFieldLen {
			return nil, errors.Errorf("field of length %d exceeds max field length %d", len(f), MaxFieldLen)
		}
		size += 2 + len(f)
	}
	buf := make([]byte, size)
	off := 0
	for _, f := range r {
		binary.BigEndian.PutUint16(buf[off:], uint16(len(f)))
		off += 2
		off += copy(buf[off:], f)
	}
	return buf, nil
}

// Unpack deserializes a packed row from buf. If wantArity is non-negative the
// resulting row must have exactly that many fields or ErrCorrupt is
// returned.
func Unpack(buf []byte, wantArity int) (Row, error) {
	var fields Row
	off := 0
	for off < len(buf) {
		if off+2 > len(buf) {
			return nil, errors.Wrap(ErrCorrupt, "truncated field length prefix")
		}
		l := int(binary.BigEndian.Uint16(buf[off:]))
		off += 2
		if off+l > len(buf) {
			return nil, errors.Wrap(ErrCorrupt, "field runs past end of tuple")
		}
		fields = append(fields, string(buf[off:off+l]))
		off += l
	}
	if wantArity >= 0 && len(fields) != wantArity {
		return nil, errors.Wrapf(ErrCorrupt, "expected %d fields, got %d", wantArity, len(fields))
	}
	return fields, nil
}

// PackedLen returns the number of bytes Pack(r) would occupy, without
// allocating.
func PackedLen(r Row) int {
	n := 0
	for _, f := range r {
		n += 2 + len(f)
	}
	return n
}
