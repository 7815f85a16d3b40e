// Package fasta reads reference sequences from (optionally indexed) FASTA
// files. See http://www.htslib.org/doc/faidx.html. Briefly, FASTA files
// consist of a number of named sequences that may be interrupted by
// newlines. For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Sequence names are the stretch of characters excluding spaces immediately
// after '>'. For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var (
		seqName string
		seq     strings.Builder
		started bool
	)
	add := func() {
		f.seqs[seqName] = seq.String()
		f.seqNames = append(f.seqNames, seqName)
		seq.Reset()
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if started {
				add()
			}
			seqName = strings.Split(line[1:], " ")[0]
			started = true
			continue
		}
		if !started {
			return nil, errors.Errorf("malformed FASTA file: sequence data before the first name")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	if !started {
		return nil, errors.Errorf("empty FASTA file")
	}
	add()
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seq string) (uint64, error) {
	s, ok := f.seqs[seq]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seq)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}

// File is a Fasta read from a file. It must be closed after use.
type File struct {
	Fasta
	in file.File
}

// Open opens the FASTA file at path. The file is read lazily through an
// index: the one at path+".fai" if it exists, otherwise one computed by
// scanning the file once. Compressed files cannot be seeked into, so they are
// decompressed into memory instead.
func Open(ctx context.Context, path string) (*File, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "fasta open %s", path)
	}
	if idx, err := file.Open(ctx, path+".fai"); err == nil {
		x, err := readIndex(idx.Reader(ctx))
		idx.Close(ctx) // nolint: errcheck
		if err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, errors.Wrapf(err, "fasta index %s.fai", path)
		}
		return &File{Fasta: newIndexed(in.Reader(ctx), x), in: in}, nil
	}
	r := in.Reader(ctx)
	dr, compressed := compress.NewReader(r)
	if compressed {
		defer in.Close(ctx) // nolint: errcheck
		defer dr.Close()    // nolint: errcheck
		fa, err := New(dr)
		if err != nil {
			return nil, errors.Wrapf(err, "fasta read %s", path)
		}
		return &File{Fasta: fa}, nil
	}
	dr.Close() // nolint: errcheck
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, errors.Wrapf(err, "fasta rewind %s", path)
	}
	x, err := scanIndex(r)
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, errors.Wrapf(err, "fasta index %s", path)
	}
	return &File{Fasta: newIndexed(r, x), in: in}, nil
}

// Close releases the underlying file, if it is still open.
func (f *File) Close(ctx context.Context) error {
	if f.in == nil {
		return nil
	}
	err := f.in.Close(ctx)
	f.in = nil
	return err
}
