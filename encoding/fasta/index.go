package fasta

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// faiRow is one line of a .fai index: "<sequence name>\t<length>\t<byte
// offset>\t<bases per line>\t<bytes per line>".
// For example: "chr3\t12345\t9000\t80\t81".
type faiRow struct {
	Name                                string
	Length, Offset, LineBase, LineWidth uint64
}

// indexEntry is one line of a .fai index.
type indexEntry struct {
	name      string
	length    uint64
	offset    uint64 // of the first base
	lineBase  uint64 // bases per line
	lineWidth uint64 // bytes per line, including the line terminator
}

// fileOffset returns the byte offset of the 0-based base pos.
func (e indexEntry) fileOffset(pos uint64) uint64 {
	return e.offset + pos/e.lineBase*e.lineWidth + pos%e.lineBase
}

// faIndex is a parsed or computed .fai index.
type faIndex struct {
	entries map[string]indexEntry
	names   []string // in file order
}

func newFaIndex() *faIndex {
	return &faIndex{entries: make(map[string]indexEntry)}
}

func (x *faIndex) add(e indexEntry) {
	x.entries[e.name] = e
	x.names = append(x.names, e.name)
}

// readIndex parses the .fai index in r.
func readIndex(r io.Reader) (*faIndex, error) {
	x := newFaIndex()
	tr := tsv.NewReader(r)
	tr.FieldsPerRecord = 5
	tr.LazyQuotes = true
	for {
		var row faiRow
		err := tr.Read(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "invalid index line")
		}
		if row.Length > 0 && (row.LineBase == 0 || row.LineWidth < row.LineBase) {
			return nil, errors.Errorf("invalid index line for %s: %d bases in %d bytes per line",
				row.Name, row.LineBase, row.LineWidth)
		}
		x.add(indexEntry{
			name:      row.Name,
			length:    row.Length,
			offset:    row.Offset,
			lineBase:  row.LineBase,
			lineWidth: row.LineWidth,
		})
	}
	sort.SliceStable(x.names, func(i, j int) bool {
		return x.entries[x.names[i]].offset < x.entries[x.names[j]].offset
	})
	return x, nil
}

// scanIndex computes the index of the FASTA data in r. Line geometry is taken
// from the first line of each sequence, as samtools faidx does.
func scanIndex(in io.Reader) (*faIndex, error) {
	var (
		x   = newFaIndex()
		r   = bufio.NewReader(in)
		cur *indexEntry
		off uint64
	)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "couldn't read FASTA data")
		}
		width := uint64(len(line))
		off += width
		bases := bytes.TrimRight(line, "\r\n")
		switch {
		case len(bases) == 0:
		case bases[0] == '>':
			if cur != nil {
				x.add(*cur)
			}
			cur = &indexEntry{name: strings.Split(string(bases[1:]), " ")[0], offset: off}
		case cur == nil:
			return nil, errors.Errorf("malformed FASTA file: sequence data before the first name")
		default:
			if cur.lineWidth == 0 {
				cur.lineBase, cur.lineWidth = uint64(len(bases)), width
			}
			cur.length += uint64(len(bases))
		}
		if err == io.EOF {
			break
		}
	}
	if cur == nil {
		return nil, errors.Errorf("empty FASTA file")
	}
	x.add(*cur)
	return x, nil
}

// GenerateIndex generates an index (*.fai) from FASTA.  The index can be later
// passed to NewIndexed() to random-access the FASTA file quickly.
//
// The index format is defined by "samtool faidx"
// (http://www.htslib.org/doc/faidx.html).
func GenerateIndex(out io.Writer, in io.Reader) error {
	x, err := scanIndex(in)
	if err != nil {
		return err
	}
	w := tsv.NewWriter(out)
	for _, name := range x.names {
		e := x.entries[name]
		w.WriteString(e.name)
		w.WriteInt64(int64(e.length))
		w.WriteInt64(int64(e.offset))
		w.WriteInt64(int64(e.lineBase))
		w.WriteInt64(int64(e.lineWidth))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}
