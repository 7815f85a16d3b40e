// Package fastq reads and writes FASTQ files, singly or as mate pairs.
package fastq

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/grailbio/base/compress"
	gerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when two underlying FASTQ files are discordant.
	ErrDiscordant = errors.New("discordant FASTQ pairs")
)

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Scanner reads FASTQ records one at a time. It requires ID lines to begin
// with "@" and line 3 to begin with "+", and performs no other validation.
// Scanners are not threadsafe.
type Scanner struct {
	b   *bufio.Scanner
	err error
	eof bool
}

// NewScanner constructs a new Scanner that reads raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{b: bufio.NewScanner(r)}
}

// Scan the next read into the provided read. Once Scan returns false, it
// never returns true again; the caller should then check Err.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil || s.eof {
		return false
	}
	if !s.b.Scan() {
		s.err = s.b.Err()
		s.eof = s.err == nil
		return false
	}
	var lines [4]string
	lines[0] = s.b.Text()
	for i := 1; i < 4; i++ {
		if !s.b.Scan() {
			if s.err = s.b.Err(); s.err == nil {
				s.err = ErrShort
			}
			return false
		}
		lines[i] = s.b.Text()
	}
	if len(lines[0]) == 0 || lines[0][0] != '@' || len(lines[2]) == 0 || lines[2][0] != '+' {
		s.err = ErrInvalid
		return false
	}
	read.ID, read.Seq, read.Unk, read.Qual = lines[0], lines[1], lines[2], lines[3]
	return true
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// PairScanner composes a pair of scanners to scan a pair of FASTQ
// streams.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner creates a new FASTQ pair scanner from the provided
// R1 and R2 readers.
func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{r1: NewScanner(r1), r2: NewScanner(r2)}
}

// Scan scans the next read pair into r1, r2.
func (p *PairScanner) Scan(r1, r2 *Read) bool {
	ok1 := p.r1.Scan(r1)
	ok2 := p.r2.Scan(r2)
	if ok1 != ok2 {
		p.err = ErrDiscordant
	}
	return ok1 && ok2
}

// Err returns the scanning error, if any. It should be checked
// after Scan returns false.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}

// ReadAllPairs reads every pair from the FASTQ files at path1 and path2.
// Compressed files are decompressed transparently.
func ReadAllPairs(ctx context.Context, path1, path2 string) (r1s, r2s []Read, err error) {
	var ins []file.File
	defer func() {
		for _, in := range ins {
			if e := in.Close(ctx); e != nil && err == nil {
				err = e
			}
		}
	}()
	var readers [2]io.Reader
	for i, path := range []string{path1, path2} {
		in, err := file.Open(ctx, path)
		if err != nil {
			return nil, nil, gerrors.E(err, "open", path)
		}
		ins = append(ins, in)
		u, _ := compress.NewReader(in.Reader(ctx))
		defer u.Close() // nolint: errcheck
		readers[i] = u
	}
	sc := NewPairScanner(readers[0], readers[1])
	var r1, r2 Read
	for sc.Scan(&r1, &r2) {
		r1s = append(r1s, r1)
		r2s = append(r2s, r2)
	}
	return r1s, r2s, sc.Err()
}
