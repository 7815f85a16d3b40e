package fastq

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

var newline = []byte{'\n'}

// Writer is a FASTQ file writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r in FASTQ format. An empty r.Unk is written as
// "+". An error is returned if the write failed.
func (w *Writer) Write(r *Read) error {
	unk := r.Unk
	if unk == "" {
		unk = "+"
	}
	w.writeln(r.ID)
	w.writeln(r.Seq)
	w.writeln(unk)
	w.writeln(r.Qual)
	return w.err
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}

// output is one FASTQ file opened for writing, optionally gzip compressed.
type output struct {
	path string
	f    file.File
	buf  *bufio.Writer
	gz   *gzip.Writer
	*Writer
}

func createOutput(ctx context.Context, path string) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't create fastq output", path)
	}
	o := &output{path: path, f: f, buf: bufio.NewWriterSize(f.Writer(ctx), 1<<20)}
	if strings.HasSuffix(path, ".gz") {
		o.gz = gzip.NewWriter(o.buf)
		o.Writer = NewWriter(o.gz)
	} else {
		o.Writer = NewWriter(o.buf)
	}
	return o, nil
}

func (o *output) close(ctx context.Context) error {
	e := errors.Once{}
	if o.gz != nil {
		e.Set(o.gz.Close())
	}
	e.Set(o.buf.Flush())
	e.Set(o.f.Close(ctx))
	if err := e.Err(); err != nil {
		return errors.E(err, "close", o.path)
	}
	return nil
}

// PairWriter writes mate 1 and mate 2 of read pairs to two FASTQ files
// in lockstep.
type PairWriter struct {
	r1, r2 *output
}

// CreatePair creates the FASTQ files at path1 and path2. A path ending in
// ".gz" is gzip compressed.
func CreatePair(ctx context.Context, path1, path2 string) (*PairWriter, error) {
	r1, err := createOutput(ctx, path1)
	if err != nil {
		return nil, err
	}
	r2, err := createOutput(ctx, path2)
	if err != nil {
		r1.close(ctx) // nolint: errcheck
		return nil, err
	}
	return &PairWriter{r1: r1, r2: r2}, nil
}

// Write writes r1 to the first file and r2 to the second.
func (p *PairWriter) Write(r1, r2 *Read) error {
	if err := p.r1.Write(r1); err != nil {
		return errors.E(err, "write", p.r1.path)
	}
	if err := p.r2.Write(r2); err != nil {
		return errors.E(err, "write", p.r2.path)
	}
	return nil
}

// Close flushes and closes both files.
func (p *PairWriter) Close(ctx context.Context) error {
	e := errors.Once{}
	e.Set(p.r1.close(ctx))
	e.Set(p.r2.close(ctx))
	return e.Err()
}
