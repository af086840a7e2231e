package query

import (
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/mpatterson/heapdb/source"
	"github.com/sirupsen/logrus"
)

// opEquals is the only comparison operator this engine supports.
const opEquals = "EQUALS"

// Selection filters an upstream Source by a single three-element predicate
// (field, op, literal). Any op other than EQUALS is logged once as
// unsupported and then matches nothing, per the executor's error handling
// design, rather than failing the query outright.
type Selection struct {
	upstream  source.Source
	fieldIdx  int
	value     string
	supported bool
}

// NewSelection builds a Selection over upstream keeping rows where field
// equals value when op is EQUALS. It resolves field against upstream's
// schema eagerly so a typo surfaces at assembly time rather than after the
// first pull.
func NewSelection(upstream source.Source, field, op, value string) (*Selection, error) {
	idx, err := upstream.Schema().MustIndex(field)
	if err != nil {
		return nil, err
	}
	s := &Selection{upstream: upstream, fieldIdx: idx, value: value, supported: op == opEquals}
	if !s.supported {
		logrus.WithFields(logrus.Fields{
			"component": "selection",
			"operator":  op,
		}).Warn("unsupported selection operator, selection will match no rows")
	}
	return s, nil
}

func (s *Selection) Schema() *schema.Schema { return s.upstream.Schema() }

// Next pulls from upstream until it finds a row whose field matches value,
// or upstream is exhausted. An unsupported operator drains upstream without
// ever matching, per §4.5/§7's UnsupportedOperator handling.
func (s *Selection) Next() (row.Row, bool, error) {
	if !s.supported {
		for {
			_, ok, err := s.upstream.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
		}
	}
	for {
		r, ok, err := s.upstream.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		if r[s.fieldIdx] == s.value {
			return r, true, nil
		}
	}
}
