package query

import (
	"testing"

	"github.com/mpatterson/heapdb/pager"
	"github.com/mpatterson/heapdb/row"
	"github.com/mpatterson/heapdb/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPreservesInsertOrder(t *testing.T) {
	heap, err := pager.OpenMemory(2)
	require.NoError(t, err)
	rows := []row.Row{{"1", "a"}, {"2", "b"}, {"3", "c"}}
	for _, r := range rows {
		require.NoError(t, heap.Insert(r))
	}

	sc := schema.New("t", []string{"id", "v"})
	s := NewScan(heap, sc)
	assert.Equal(t, "t", s.Table())
	assert.Same(t, sc, s.Schema())

	var got []row.Row
	for {
		r, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, r)
	}
	assert.Equal(t, rows, got)
}

func TestScanOffsetMatchesLastReturnedRow(t *testing.T) {
	heap, err := pager.OpenMemory(2)
	require.NoError(t, err)
	require.NoError(t, heap.Insert(row.Row{"1", "a"}))
	require.NoError(t, heap.Insert(row.Row{"2", "b"}))

	sc := schema.New("t", []string{"id", "v"})
	s := NewScan(heap, sc)

	_, err = s.Offset()
	assert.Error(t, err)

	r, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	off, err := s.Offset()
	require.NoError(t, err)

	resolved, err := heap.ResolveOffset(pager.Offset{PageIndex: off.PageIndex, ByteOff: off.ByteOff})
	require.NoError(t, err)
	assert.Equal(t, r, resolved)
}

func TestScanExhaustionClearsOffset(t *testing.T) {
	heap, err := pager.OpenMemory(1)
	require.NoError(t, err)
	require.NoError(t, heap.Insert(row.Row{"1"}))

	sc := schema.New("t", []string{"id"})
	s := NewScan(heap, sc)

	_, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = s.Next()
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Offset()
	assert.Error(t, err)
}
