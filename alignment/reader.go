// Package alignment reads aligned read pairs from a coordinate-sorted BAM
// file and turns them into the read pairs consumed by package collapse.
//
// Only primary alignments of paired reads with both mates mapped to the same
// reference are admitted. Mates are joined by name, restored to sequencing
// orientation, and their molecular adapters are extracted either from the
// read name or from the start of each read. Pairs are yielded in order of
// the alignment start of their leftmost mate.
package alignment

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/collapse/collapse"
	"github.com/grailbio/collapse/encoding/fasta"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// Opts controls which pairs a Reader admits and how it extracts adapters.
type Opts struct {
	// SequenceMaxMismatch is the largest number of alignment mismatches
	// allowed on either mate. Pairs beyond it are skipped.
	SequenceMaxMismatch int
	// AdapterInRead selects adapters stored as the first AdapterLen bases
	// of each mate rather than in the read name. The adapter bases are
	// removed from the read.
	AdapterInRead bool
	AdapterLen    int
	// Reference, if set, is used to count mismatches of records that have
	// no NM tag. Without it such records count as perfect matches.
	Reference fasta.Fasta
}

// Stats counts what a Reader saw.
type Stats struct {
	Records    int
	Filtered   int
	Mismatched int
	Orphans    int
	Pairs      int
}

// pendingMate is the first mate of a pair, waiting for the second one.
type pendingMate struct {
	rec  *sam.Record
	done bool
	// pair is the completed pair, or nil if the pair was rejected.
	pair *collapse.ReadPair
}

// Reader yields the admitted read pairs of a BAM file. It implements
// collapse.PairIterator.
type Reader struct {
	ctx  context.Context
	path string
	opts Opts

	in file.File
	br *bam.Reader

	// pending maps read names to first mates whose second mate has not
	// been seen. queue holds first mates in arrival order; pairs are
	// released from its head only, which keeps them sorted by start.
	pending map[string]*pendingMate
	queue   []*pendingMate
	eof     bool

	cur   *collapse.ReadPair
	err   error
	stats Stats
}

// Open opens the BAM file at path.
func Open(ctx context.Context, path string, opts Opts) (*Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, errors.Wrapf(err, "read bam header %s", path)
	}
	return &Reader{
		ctx:     ctx,
		path:    path,
		opts:    opts,
		in:      in,
		br:      br,
		pending: map[string]*pendingMate{},
	}, nil
}

// Header returns the header of the BAM file.
func (r *Reader) Header() *sam.Header { return r.br.Header() }

// Stats returns the counts accumulated so far.
func (r *Reader) Stats() Stats { return r.stats }

// Scan implements collapse.PairIterator.
func (r *Reader) Scan() bool {
	for r.err == nil {
		if p := r.pop(); p != nil {
			r.cur = p
			return true
		}
		if r.eof {
			return false
		}
		rec, err := r.br.Read()
		if err == io.EOF {
			r.eof = true
			continue
		}
		if err != nil {
			r.err = errors.Wrapf(err, "read %s", r.path)
			return false
		}
		r.add(rec)
	}
	return false
}

// Pair implements collapse.PairIterator.
func (r *Reader) Pair() *collapse.ReadPair { return r.cur }

// Err implements collapse.PairIterator.
func (r *Reader) Err() error { return r.err }

// Close implements collapse.PairIterator.
func (r *Reader) Close() error {
	log.Printf("%s: %d records, %d filtered, %d pairs, %d pairs over mismatch limit, %d orphans",
		r.path, r.stats.Records, r.stats.Filtered, r.stats.Pairs, r.stats.Mismatched, r.stats.Orphans)
	err := r.br.Close()
	if e := r.in.Close(r.ctx); e != nil && err == nil {
		err = e
	}
	return err
}

// pop removes and returns the next completed pair from the head of the
// queue. At end of input, unmatched first mates are dropped as orphans.
func (r *Reader) pop() *collapse.ReadPair {
	for len(r.queue) > 0 {
		head := r.queue[0]
		if !head.done {
			if !r.eof {
				return nil
			}
			r.orphan(head)
		}
		r.queue[0] = nil
		r.queue = r.queue[1:]
		if head.pair != nil {
			return head.pair
		}
	}
	return nil
}

func (r *Reader) orphan(m *pendingMate) {
	log.Error.Printf("%s: mate of %s not found", r.path, m.rec.Name)
	r.stats.Orphans++
	delete(r.pending, m.rec.Name)
	m.done = true
}

func (r *Reader) add(rec *sam.Record) {
	r.stats.Records++
	if !admissible(rec) {
		r.stats.Filtered++
		return
	}
	// A first mate whose mate position has been passed will never be
	// completed.
	for _, head := range r.queue {
		if head.done {
			continue
		}
		if !matePassed(head.rec, rec) {
			break
		}
		r.orphan(head)
	}
	if m, ok := r.pending[rec.Name]; ok {
		delete(r.pending, rec.Name)
		m.done = true
		m.pair = r.newPair(m.rec, rec)
		return
	}
	m := &pendingMate{rec: rec}
	r.pending[rec.Name] = m
	r.queue = append(r.queue, m)
}

// admissible reports whether rec is the primary alignment of a paired read
// whose mates both map to the same reference.
func admissible(rec *sam.Record) bool {
	const rejected = sam.Unmapped | sam.MateUnmapped | sam.Secondary | sam.Supplementary
	switch {
	case rec.Flags&sam.Paired == 0, rec.Flags&rejected != 0:
		return false
	case rec.Ref == nil, rec.MateRef == nil, rec.Ref.ID() != rec.MateRef.ID():
		return false
	case (rec.Flags&sam.Read1 != 0) == (rec.Flags&sam.Read2 != 0):
		return false
	}
	return true
}

// matePassed reports whether cur lies beyond the mate position of first.
func matePassed(first, cur *sam.Record) bool {
	if cur.Ref.ID() != first.MateRef.ID() {
		return cur.Ref.ID() > first.MateRef.ID()
	}
	return cur.Pos > first.MatePos
}

// newPair joins two mates, the first of which arrived first. It returns nil
// if the pair is rejected.
func (r *Reader) newPair(first, second *sam.Record) *collapse.ReadPair {
	r1, r2 := first, second
	if r1.Flags&sam.Read1 == 0 {
		r1, r2 = r2, r1
	}
	if r1.Flags&sam.Read1 == 0 || r2.Flags&sam.Read2 == 0 {
		log.Error.Printf("%s: records named %s are not an R1/R2 pair", r.path, first.Name)
		r.stats.Filtered += 2
		return nil
	}
	for _, rec := range []*sam.Record{r1, r2} {
		n, err := mismatches(rec, r.opts.Reference)
		if err != nil {
			log.Error.Printf("%s: counting mismatches of %s: %v", r.path, rec.Name, err)
		}
		if n > r.opts.SequenceMaxMismatch {
			r.stats.Mismatched++
			return nil
		}
	}
	r.stats.Pairs++
	p := &collapse.ReadPair{
		Name:   first.Name,
		RefID:  first.Ref.ID(),
		Chrom:  first.Ref.Name(),
		Start:  first.Pos + 1,
		Strand: collapse.Plus,
		R1:     sequencingRead(r1),
		R2:     sequencingRead(r2),
	}
	if r1.Flags&sam.Reverse != 0 {
		p.Strand = collapse.Minus
	}
	if r.opts.AdapterInRead {
		p.Adapter1, p.R1 = splitAdapter(p.R1, r.opts.AdapterLen)
		p.Adapter2, p.R2 = splitAdapter(p.R2, r.opts.AdapterLen)
	} else {
		p.Adapter1, p.Adapter2 = nameAdapters(first.Name)
	}
	return p
}
