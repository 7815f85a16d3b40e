package collapse

import (
	"fmt"
	"strings"
)

// SliceIterator is a PairIterator over an in-memory slice of pairs.
type SliceIterator struct {
	pairs []*ReadPair
	cur   int
}

// NewSliceIterator creates a PairIterator that yields pairs in order.
func NewSliceIterator(pairs []*ReadPair) *SliceIterator {
	return &SliceIterator{pairs: pairs, cur: -1}
}

// Scan implements PairIterator.
func (it *SliceIterator) Scan() bool {
	if it.cur+1 >= len(it.pairs) {
		return false
	}
	it.cur++
	return true
}

// Pair implements PairIterator.
func (it *SliceIterator) Pair() *ReadPair { return it.pairs[it.cur] }

// Err implements PairIterator.
func (it *SliceIterator) Err() error { return nil }

// Close implements PairIterator.
func (it *SliceIterator) Close() error { return nil }

// NewTestPair creates a pair on chromosome "chr<refID+1>" whose mates carry
// the given sequence and adapters. Qualities are all 30, and R2 is the same
// sequence as R1.
func NewTestPair(name string, refID, start int, strand Strand, seq, adapter1, adapter2 string) *ReadPair {
	qual := []byte(strings.Repeat(string([]byte{30}), len(seq)))
	return &ReadPair{
		Name:     name,
		RefID:    refID,
		Chrom:    fmt.Sprintf("chr%d", refID+1),
		Start:    start,
		Strand:   strand,
		R1:       Read{Seq: []byte(seq), Qual: qual},
		R2:       Read{Seq: []byte(seq), Qual: append([]byte(nil), qual...)},
		Adapter1: adapter1,
		Adapter2: adapter2,
	}
}
