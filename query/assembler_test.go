package query

import (
	"testing"

	"github.com/mpatterson/heapdb/catalog"
	"github.com/mpatterson/heapdb/pager"
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moviesCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	heap, err := pager.OpenMemory(3)
	require.NoError(t, err)
	for _, r := range []row.Row{
		{"1", "Toy Story", "Comedy"},
		{"2", "Heat", "Crime"},
		{"3", "Toy Story", "Drama"},
	} {
		require.NoError(t, heap.Insert(r))
	}
	sc := schema.New("movies", []string{"movieId", "title", "genres"})
	cat := catalog.New()
	cat.Register(&catalog.Table{Heap: heap, Schema: sc})
	return cat
}

// TestQueryEndToEnd is spec Scenario C.
func TestQueryEndToEnd(t *testing.T) {
	cat := moviesCatalog(t)
	desc := []byte(`[["SCAN",["movies"]], ["SELECTION",["title","EQUALS","Toy Story"]], ["PROJECTION",["movieId","genres"]]]`)
	clauses, err := ParseDescription(desc)
	require.NoError(t, err)

	src, err := Assemble(cat, clauses)
	require.NoError(t, err)

	got, err := Drain(src)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "Comedy"}, {"3", "Drama"}}, got)
}

// TestProjectionRespectsSchemaOrder is spec Scenario D.
func TestProjectionRespectsSchemaOrder(t *testing.T) {
	cat := moviesCatalog(t)
	desc := []byte(`[["SCAN",["movies"]], ["PROJECTION",["genres","movieId"]]]`)
	clauses, err := ParseDescription(desc)
	require.NoError(t, err)

	src, err := Assemble(cat, clauses)
	require.NoError(t, err)

	got, err := Drain(src)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"1", "Comedy"},
		{"2", "Crime"},
		{"3", "Drama"},
	}, got)
}

// TestProjectionUnknownField is spec Scenario E.
func TestProjectionUnknownField(t *testing.T) {
	cat := moviesCatalog(t)
	desc := []byte(`[["SCAN",["movies"]], ["PROJECTION",["nonexistent"]]]`)
	clauses, err := ParseDescription(desc)
	require.NoError(t, err)

	_, err = Assemble(cat, clauses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
	assert.Contains(t, err.Error(), "movies")
}

func TestAssembleMissingScanIsBadQuery(t *testing.T) {
	cat := moviesCatalog(t)
	clauses, err := ParseDescription([]byte(`[["PROJECTION",["movieId"]]]`))
	require.NoError(t, err)

	_, err = Assemble(cat, clauses)
	require.ErrorIs(t, err, ErrBadQuery)
}

func TestAssembleUnsupportedOperatorMatchesNoRows(t *testing.T) {
	cat := moviesCatalog(t)
	desc := []byte(`[["SCAN",["movies"]], ["SELECTION",["title","LIKE","Toy%"]]]`)
	clauses, err := ParseDescription(desc)
	require.NoError(t, err)

	src, err := Assemble(cat, clauses)
	require.NoError(t, err)

	got, err := Drain(src)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssembleIndexClauseProbesDirectly(t *testing.T) {
	cat := moviesCatalog(t)
	desc := []byte(`[["SCAN",["movies"]], ["INDEX",["movieId","2"]]]`)
	clauses, err := ParseDescription(desc)
	require.NoError(t, err)

	src, err := Assemble(cat, clauses)
	require.NoError(t, err)

	got, err := Drain(src)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2", "Heat", "Crime"}}, got)
}
