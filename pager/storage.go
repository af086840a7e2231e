// Storage provides an interface for accessing the filesystem. This allows the
// heap to run on an in memory buffer if desired.
package pager

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// PageSize is the fixed size, in bytes, of every page ("exactly 8192
// bytes").
const PageSize = 8192

// storage is the byte-addressable backing store a Heap reads and writes
// pages against. Reads and writes share cursor state implicitly through the
// *At family of calls rather than a seekable handle, which sidesteps the
// reader/writer duality the design notes call out: there is exactly one
// position-free view over the file no matter how many goroutines hold it.
type storage interface {
	io.ReaderAt
	io.WriterAt
	// Flush durably persists any buffered writes. A Flush is required
	// between a write and a subsequent read of the same bytes.
	Flush() error
	// Size returns the current length of the backing store in bytes.
	Size() (int64, error)
	// WriterLock acquires the single-writer exclusivity a bulk-load holds
	// for the duration of the load, across goroutines and, for file backed
	// storage, across processes too.
	WriterLock() error
	WriterUnlock()
	// ReaderLock acquires shared access; it only ever blocks behind a
	// held WriterLock.
	ReaderLock() error
	ReaderUnlock()
}

// memoryStorage is a growable in-memory backing store. Flush is a no-op:
// crash recovery is explicitly out of scope for an in-memory heap.
type memoryStorage struct {
	buf []byte
	l   lock
}

func newMemoryStorage() storage {
	return &memoryStorage{l: &memoryLock{l: &sync.RWMutex{}}}
}

func (mf *memoryStorage) growTo(n int) {
	if len(mf.buf) >= n {
		return
	}
	grown := make([]byte, n)
	copy(grown, mf.buf)
	mf.buf = grown
}

func (mf *memoryStorage) WriteAt(p []byte, off int64) (n int, err error) {
	mf.growTo(int(off) + len(p))
	copy(mf.buf[off:], p)
	return len(p), nil
}

func (mf *memoryStorage) ReadAt(p []byte, off int64) (n int, err error) {
	if int(off)+len(p) > len(mf.buf) {
		return 0, io.EOF
	}
	copy(p, mf.buf[off:int(off)+len(p)])
	return len(p), nil
}

func (mf *memoryStorage) Flush() error { return nil }

func (mf *memoryStorage) Size() (int64, error) { return int64(len(mf.buf)), nil }

func (mf *memoryStorage) WriterLock() error   { return mf.l.Lock() }
func (mf *memoryStorage) WriterUnlock()       { mf.l.Unlock() }
func (mf *memoryStorage) ReaderLock() error   { return mf.l.RLock() }
func (mf *memoryStorage) ReaderUnlock()       { mf.l.RUnlock() }

// fileStorage is a backing store rooted at a single os.File.
type fileStorage struct {
	file *os.File
	l    lock
}

func newFileStorage(path string) (storage, error) {
	fl, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening heap file %s", path)
	}
	return &fileStorage{file: fl, l: newPlatformLock(fl.Fd())}, nil
}

func (s *fileStorage) WriteAt(p []byte, off int64) (n int, err error) {
	n, err = s.file.WriteAt(p, off)
	if err != nil {
		return n, errors.Wrap(err, "writing heap file")
	}
	return n, nil
}

func (s *fileStorage) ReadAt(p []byte, off int64) (n int, err error) {
	n, err = s.file.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, errors.Wrap(err, "reading heap file")
	}
	return n, err
}

func (s *fileStorage) Flush() error {
	if err := s.file.Sync(); err != nil {
		return errors.Wrap(err, "flushing heap file")
	}
	return nil
}

func (s *fileStorage) Size() (int64, error) {
	fi, err := s.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "statting heap file")
	}
	return fi.Size(), nil
}

func (s *fileStorage) WriterLock() error { return s.l.Lock() }
func (s *fileStorage) WriterUnlock()     { s.l.Unlock() }
func (s *fileStorage) ReaderLock() error { return s.l.RLock() }
func (s *fileStorage) ReaderUnlock()     { s.l.RUnlock() }
