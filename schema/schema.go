// Package schema holds the ordered column list for a single table. A Schema
// is created once per query and resolves field names to column indexes for
// the selection, projection and index operators in package query.
package schema

import "github.com/pkg/errors"

// Schema is a table name plus an ordered, duplicate-free sequence of field
// names. Column index is position in that sequence.
type Schema struct {
	table  string
	fields []string
	index  map[string]int
}

// New builds a Schema for table from an ordered list of field names. It does
// not validate that fields are duplicate-free; callers that read fields from
// an untrusted source should do so beforehand.
func New(table string, fields []string) *Schema {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f] = i
	}
	return &Schema{table: table, fields: fields, index: idx}
}

// Table returns the schema's table name.
func (s *Schema) Table() string { return s.table }

// Fields returns the ordered field names. Callers must not mutate the
// returned slice.
func (s *Schema) Fields() []string { return s.fields }

// Arity returns the number of fields in the schema.
func (s *Schema) Arity() int { return len(s.fields) }

// Index resolves a field name to its column index. ok is false if the field
// does not exist in the schema.
func (s *Schema) Index(field string) (idx int, ok bool) {
	idx, ok = s.index[field]
	return
}

// MustIndex resolves a field name to its column index, returning an
// UnknownField-flavored error naming both the field and the table when the
// field does not exist.
func (s *Schema) MustIndex(field string) (int, error) {
	idx, ok := s.index[field]
	if !ok {
		return 0, errors.Errorf("unknown field %q in table %q", field, s.table)
	}
	return idx, nil
}
