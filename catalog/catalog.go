// Package catalog resolves a table name to the heap and schema that back
// it, the minimal registry a query assembler needs to open a scan. It owns
// no schema-evolution or persistence semantics: a Catalog is built fresh
// from whatever tables an ingest pass has already opened.
package catalog

import (
	"github.com/mpatterson/heapdb/pager"
	"github.com/mpatterson/heapdb/schema"
	"github.com/pkg/errors"
)

// Table pairs a heap with the schema describing its rows.
type Table struct {
	Heap   *pager.Heap
	Schema *schema.Schema
}

// Catalog maps table name to Table.
type Catalog struct {
	tables map[string]*Table
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{tables: map[string]*Table{}}
}

// Register adds table t under its schema's table name, overwriting any
// previous registration for that name.
func (c *Catalog) Register(t *Table) {
	c.tables[t.Schema.Table()] = t
}

// Lookup resolves name to its Table. The returned error names the table,
// matching the BadQuery diagnostic a missing scan target produces.
func (c *Catalog) Lookup(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, errors.Errorf("unknown table %q", name)
	}
	return t, nil
}
