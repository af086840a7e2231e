package query

import (
	"testing"

	"github.com/mpatterson/heapdb/row"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionOutputsSchemaOrderRegardlessOfRequestOrder(t *testing.T) {
	heap, sc := genreHeap(t)
	proj, err := NewProjection(NewScan(heap, sc), []string{"genres", "movieId"})
	require.NoError(t, err)
	assert.Equal(t, []string{"movieId", "genres"}, proj.Schema().Fields())

	r, ok, err := proj.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, row.Row{"1", "Comedy"}, r)
}

func TestProjectionEmptyListIsIdentity(t *testing.T) {
	heap, sc := genreHeap(t)
	proj, err := NewProjection(NewScan(heap, sc), nil)
	require.NoError(t, err)

	var got []row.Row
	for {
		r, ok, err := proj.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, r)
	}
	assert.Equal(t, []row.Row{
		{"1", "Toy Story", "Comedy"},
		{"2", "Heat", "Crime"},
		{"3", "Toy Story", "Drama"},
	}, got)
}

func TestProjectionUnknownFieldFailsAtConstruction(t *testing.T) {
	heap, sc := genreHeap(t)
	_, err := NewProjection(NewScan(heap, sc), []string{"nonexistent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}
