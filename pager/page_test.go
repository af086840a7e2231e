package pager

import (
	"testing"

	"github.com/mpatterson/heapdb/row"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePageHeader(t *testing.T) {
	s := newMemoryStorage()
	p, err := createPage(s, 0)
	require.NoError(t, err)

	assert.EqualValues(t, 4, p.PtrLower())
	assert.EqualValues(t, PageSize, p.PtrUpper())
	assert.EqualValues(t, PageSize-4, p.FreeSpace())

	hdr := make([]byte, 4)
	_, err = s.ReadAt(hdr, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 4, 0x20, 0}, hdr)
}

func TestPageInsertAndGet(t *testing.T) {
	s := newMemoryStorage()
	p, err := createPage(s, 0)
	require.NoError(t, err)

	movie := row.Row{"1", "Toy Story", "Animation"}
	require.NoError(t, p.Insert(movie))

	wantTuple := []byte{
		0x00, 0x19,
		0x00, 0x01, 0x31,
		0x00, 0x09, 0x54, 0x6f, 0x79, 0x20, 0x53, 0x74, 0x6f, 0x72, 0x79,
		0x00, 0x09, 0x41, 0x6e, 0x69, 0x6d, 0x61, 0x74, 0x69, 0x6f, 0x6e,
	}
	newUpper := uint16(PageSize - len(wantTuple))
	assert.Equal(t, newUpper, p.PtrUpper())
	assert.EqualValues(t, 6, p.PtrLower())
	assert.Equal(t, uint16(PageSize-6-len(wantTuple)), p.FreeSpace())

	gotTuple := make([]byte, len(wantTuple))
	_, err = s.ReadAt(gotTuple, int64(newUpper))
	require.NoError(t, err)
	assert.Equal(t, wantTuple, gotTuple)

	hdr := make([]byte, 4)
	_, err = s.ReadAt(hdr, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 6, 0x1f, 0xe5}, hdr)

	got, err := p.Get(0, 3)
	require.NoError(t, err)
	assert.Equal(t, movie, got)
}

func TestPageGetMissingSlot(t *testing.T) {
	s := newMemoryStorage()
	p, err := createPage(s, 0)
	require.NoError(t, err)

	got, err := p.Get(0, -1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPageInsertFillsUp(t *testing.T) {
	s := newMemoryStorage()
	p, err := createPage(s, 0)
	require.NoError(t, err)

	movie := row.Row{"1", "Toy Story (1995)", "Adventure|Animation|Children|Comedy|Fantasy"}
	inserted := 0
	for {
		if err := p.Insert(movie); err != nil {
			assert.ErrorIs(t, err, ErrOutOfPageSpace)
			break
		}
		inserted++
	}
	assert.Equal(t, 116, inserted)
}

func TestOpenPageReflectsPersistedHeader(t *testing.T) {
	s := newMemoryStorage()
	p, err := createPage(s, 0)
	require.NoError(t, err)
	require.NoError(t, p.Insert(row.Row{"a", "b"}))

	reopened, err := openPage(s, 0)
	require.NoError(t, err)
	assert.Equal(t, p.PtrLower(), reopened.PtrLower())
	assert.Equal(t, p.PtrUpper(), reopened.PtrUpper())
}
