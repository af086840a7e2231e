package query

import (
	"github.com/goccy/go-json"
	"github.com/mpatterson/heapdb/catalog"
	"github.com/mpatterson/heapdb/source"
	"github.com/pkg/errors"
)

// clause is one [KIND, ARGS] entry of a query description.
type clause struct {
	kind string
	args []string
}

// UnmarshalJSON decodes a clause from its two-element array form,
// `["KIND", ["arg", ...]]`.
func (c *clause) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "malformed query clause")
	}
	if err := json.Unmarshal(raw[0], &c.kind); err != nil {
		return errors.Wrap(err, "malformed query clause kind")
	}
	if err := json.Unmarshal(raw[1], &c.args); err != nil {
		return errors.Wrap(err, "malformed query clause args")
	}
	return nil
}

// ParseDescription decodes a query description from its external JSON
// representation: a sequence of `["KIND", ["arg", ...]]` clauses.
func ParseDescription(data []byte) ([]clause, error) {
	var clauses []clause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return nil, errors.Wrap(err, "malformed query description")
	}
	return clauses, nil
}

// Assemble builds a rows Source from a parsed query description against
// cat. Operators compose bottom-up (projection ∘ selection ∘ scan); any
// subset of selection/projection may be absent. scan is required.
//
// An optional INDEX clause (`["INDEX", [field, value]]`), supplementing the
// base SCAN/SELECTION/PROJECTION trio, replaces the whole pipeline with a
// single index probe: it opens a second, independent scan over the same
// table to build the index, leaving the first scan this call would
// otherwise build untouched.
func Assemble(cat *catalog.Catalog, clauses []clause) (source.Source, error) {
	var scanTable string
	var selectionArgs []string
	var projectionArgs []string
	var indexArgs []string
	sawScan := false

	for _, c := range clauses {
		switch c.kind {
		case "SCAN":
			if len(c.args) == 0 {
				return nil, errors.Wrap(ErrBadArgs, "SCAN requires at least one table name")
			}
			scanTable = c.args[0]
			sawScan = true
		case "SELECTION":
			if len(c.args) != 3 {
				return nil, errors.Wrap(ErrBadArgs, "SELECTION requires exactly [field, operator, literal]")
			}
			selectionArgs = c.args
		case "PROJECTION":
			projectionArgs = c.args
		case "INDEX":
			if len(c.args) != 2 {
				return nil, errors.Wrap(ErrBadArgs, "INDEX requires exactly [field, value]")
			}
			indexArgs = c.args
		default:
			return nil, errors.Wrapf(ErrUnknownOperator, "%q", c.kind)
		}
	}

	if !sawScan {
		return nil, errors.Wrap(ErrEmptyQuery, "missing SCAN clause")
	}

	table, err := cat.Lookup(scanTable)
	if err != nil {
		return nil, err
	}

	if indexArgs != nil {
		buildScan := NewScan(table.Heap, table.Schema)
		ix, err := BuildIndex(buildScan, indexArgs[0])
		if err != nil {
			return nil, err
		}
		return NewIndexProbe(table.Heap, table.Schema, ix, indexArgs[1]), nil
	}

	var src source.Source = NewScan(table.Heap, table.Schema)

	if selectionArgs != nil {
		sel, err := NewSelection(src, selectionArgs[0], selectionArgs[1], selectionArgs[2])
		if err != nil {
			return nil, err
		}
		src = sel
	}

	if projectionArgs != nil {
		proj, err := NewProjection(src, projectionArgs)
		if err != nil {
			return nil, err
		}
		src = proj
	}

	return src, nil
}

// Drain pulls every row out of src, in order, into a single slice. It is
// the result sink the query assembler hands off to: an ordered list of rows
// produced in pull order.
func Drain(src source.Source) ([][]string, error) {
	var out [][]string
	for {
		r, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, []string(r))
	}
}
