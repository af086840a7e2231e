package query

import (
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/mpatterson/heapdb/source"
)

// Projection retains the columns named in a projection list, emitted in
// schema order rather than projection-list order. An empty list is the
// identity.
type Projection struct {
	upstream source.Source
	indexes  []int
	sc       *schema.Schema
}

// NewProjection builds a Projection over upstream keeping every field of
// upstream's schema that also appears in fields, preserving the upstream
// schema's column order. A name in fields that is not in the schema is a
// fatal UnknownField error, resolved once here rather than per pulled row.
func NewProjection(upstream source.Source, fields []string) (*Projection, error) {
	upSchema := upstream.Schema()

	if len(fields) == 0 {
		indexes := make([]int, len(upSchema.Fields()))
		for i := range indexes {
			indexes[i] = i
		}
		return &Projection{upstream: upstream, indexes: indexes, sc: upSchema}, nil
	}

	wanted := make(map[string]bool, len(fields))
	for _, f := range fields {
		if _, err := upSchema.MustIndex(f); err != nil {
			return nil, err
		}
		wanted[f] = true
	}

	var indexes []int
	var kept []string
	for i, f := range upSchema.Fields() {
		if wanted[f] {
			indexes = append(indexes, i)
			kept = append(kept, f)
		}
	}
	return &Projection{
		upstream: upstream,
		indexes:  indexes,
		sc:       schema.New(upSchema.Table(), kept),
	}, nil
}

func (p *Projection) Schema() *schema.Schema { return p.sc }

func (p *Projection) Next() (row.Row, bool, error) {
	r, ok, err := p.upstream.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	out := make(row.Row, len(p.indexes))
	for i, idx := range p.indexes {
		out[i] = r[idx]
	}
	return out, true, nil
}
