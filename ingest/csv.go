// Package ingest implements the one external collaborator the core storage
// and query packages assume but do not provide themselves: turning a
// delimited text table into heap file rows. See the table text source
// format — a newline-terminated file whose first line is a comma-separated
// header and whose remaining lines are comma-separated rows of equal
// arity.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/mpatterson/heapdb/catalog"
	"github.com/mpatterson/heapdb/pager"
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LoadCSV reads a comma-separated table from path — header row first, data
// rows after — and bulk-loads it into the heap file at heapPath, creating the
// file if it is absent and appending to it if it already holds rows. table
// is the name the resulting catalog.Table is registered under. The
// resolved field list is also written to schemaPath(heapPath) as JSON, so a
// later, separate process can reopen the same heap file without re-reading
// the CSV.
func LoadCSV(path, heapPath, table string) (*catalog.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening table source %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", path)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	sc := schema.New(table, header)

	heap, err := pager.Open(heapPath, sc.Arity())
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{"component": "ingest", "table": table})
	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d of %s", n+1, path)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := heap.Insert(row.Row(rec)); err != nil {
			return nil, errors.Wrapf(err, "inserting row %d of %s", n+1, path)
		}
		n++
	}
	log.WithField("rows", n).WithField("pages", heap.PageCount()).Info("bulk load complete")

	if err := writeSchema(schemaPath(heapPath), header); err != nil {
		return nil, err
	}

	return &catalog.Table{Heap: heap, Schema: sc}, nil
}

// OpenHeapTable reopens an already-loaded heap file at heapPath under the
// given table name and field list, without touching the original CSV.
func OpenHeapTable(heapPath, table string, fields []string) (*catalog.Table, error) {
	sc := schema.New(table, fields)
	heap, err := pager.Open(heapPath, sc.Arity())
	if err != nil {
		return nil, err
	}
	return &catalog.Table{Heap: heap, Schema: sc}, nil
}

// schemaPath derives the schema sidecar file path for a given heap file
// path, by replacing a trailing ".heap" with ".schema.json"; a path without
// that suffix has ".schema.json" appended.
func schemaPath(heapPath string) string {
	return strings.TrimSuffix(heapPath, ".heap") + ".schema.json"
}

func writeSchema(path string, fields []string) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing schema sidecar %s", path)
	}
	return nil
}
