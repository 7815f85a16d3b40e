package fasta

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// readAhead is the minimum window read from the FASTA file on a cache miss.
// Mismatch counting asks for many short, nearby ranges.
const readAhead = 8192

type indexedFasta struct {
	index *faIndex
	r     io.ReadSeeker

	mu     sync.Mutex
	bufOff int64
	buf    []byte // file contents starting at bufOff
	result []byte
}

// NewIndexed creates a new Fasta that can perform efficient random lookups
// using the provided index, without reading the data into memory.
func NewIndexed(fasta io.ReadSeeker, index io.Reader) (Fasta, error) {
	x, err := readIndex(index)
	if err != nil {
		return nil, err
	}
	return newIndexed(fasta, x), nil
}

func newIndexed(r io.ReadSeeker, x *faIndex) *indexedFasta {
	return &indexedFasta{index: x, r: r}
}

// Len implements Fasta.Len().
func (f *indexedFasta) Len(seqName string) (uint64, error) {
	e, ok := f.index.entries[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found in index: %s", seqName)
	}
	return e.length, nil
}

// SeqNames implements Fasta.SeqNames().
func (f *indexedFasta) SeqNames() []string {
	return f.index.names
}

// Get implements Fasta.Get().
func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	e, ok := f.index.entries[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found in index: %s", seqName)
	}
	if end > e.length {
		return "", errors.Errorf("end is past end of sequence %s: %d", seqName, e.length)
	}
	first, last := e.fileOffset(start), e.fileOffset(end-1)+1

	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := f.read(int64(first), int(last-first))
	if err != nil {
		return "", err
	}
	f.result = f.result[:0]
	for _, b := range raw {
		if b != '\n' && b != '\r' {
			f.result = append(f.result, b)
		}
	}
	return string(f.result), nil
}

// read returns the n bytes at off, from the cached window if it covers them.
func (f *indexedFasta) read(off int64, n int) ([]byte, error) {
	if off < f.bufOff || off+int64(n) > f.bufOff+int64(len(f.buf)) {
		if _, err := f.r.Seek(off, io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "fasta seek to %d", off)
		}
		size := readAhead
		if n > size {
			size = n
		}
		if cap(f.buf) < size {
			f.buf = make([]byte, size)
		}
		got, err := io.ReadFull(f.r, f.buf[:size])
		if got < n {
			return nil, errors.Wrapf(err, "fasta read of %d bytes at %d (bad index?)", n, off)
		}
		f.bufOff, f.buf = off, f.buf[:got]
	}
	return f.buf[off-f.bufOff : off-f.bufOff+int64(n)], nil
}
