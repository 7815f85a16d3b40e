package collapse

import (
	"fmt"
)

// ConsensusRead is the synthesized read pair of one molecule class.
type ConsensusRead struct {
	Key   FamilyKey
	Index int
	// Size is the number of pairs the consensus was built from.
	Size     int
	Duplex   bool
	Adapter1 string
	Adapter2 string
	R1, R2   Read
}

// Name returns the read name of c. It encodes the source coordinate, strand,
// class index, class size, and consensus adapters.
func (c *ConsensusRead) Name() string {
	return fmt.Sprintf("%s:%d:%v:%d:%d:%s+%s", c.Key.Chrom, c.Key.Start, c.Key.Strand, c.Index, c.Size,
		c.Adapter1, c.Adapter2)
}

// ConsensusBuilder builds the consensus read of a molecule class by
// per-position majority vote.
type ConsensusBuilder struct{}

// NewConsensusBuilder creates a ConsensusBuilder from cfg.
func NewConsensusBuilder(cfg *Config) *ConsensusBuilder { return &ConsensusBuilder{} }

// Build computes, stores, and returns c.Consensus. Members are assumed to be
// aligned at identical offsets. The consensus has the representative's
// length; members shorter than it stop voting past their end.
//
// At each position the most frequent of A, C, G, T wins; N does not vote and
// a position with no votes is N. Ties go to the representative's base, and
// otherwise to the first tied base in member order. The quality is the mean
// quality, rounded down, of the members agreeing with the consensus base.
func (b *ConsensusBuilder) Build(c *MoleculeClass) *ConsensusRead {
	n := len(c.Members)
	r1 := make([]Read, n)
	r2 := make([]Read, n)
	a1 := make([]Read, n)
	a2 := make([]Read, n)
	for i, m := range c.Members {
		r1[i] = m.Pair.R1
		r2[i] = m.Pair.R2
		a1[i] = Read{Seq: []byte(m.Fingerprint.Mate(0))}
		a2[i] = Read{Seq: []byte(m.Fingerprint.Mate(1))}
	}
	cons := &ConsensusRead{
		Key:      c.Key,
		Index:    c.Index,
		Size:     n,
		Duplex:   c.Duplex != nil,
		R1:       vote(r1),
		R2:       vote(r2),
		Adapter1: string(vote(a1).Seq),
		Adapter2: string(vote(a2).Seq),
	}
	c.Consensus = cons
	return cons
}

// baseIndex maps A, C, G, T to 0..3 and everything else to -1.
var baseIndex = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	t['A'], t['C'], t['G'], t['T'] = 0, 1, 2, 3
	return
}()

var indexBase = [4]byte{'A', 'C', 'G', 'T'}

// vote computes the majority read of reads. reads[0] is the representative.
func vote(reads []Read) Read {
	rep := reads[0]
	out := Read{Seq: make([]byte, len(rep.Seq)), Qual: make([]byte, len(rep.Seq))}
	for p := range rep.Seq {
		var (
			count   [4]int
			qualSum [4]int
			max     int
		)
		for _, r := range reads {
			if p >= len(r.Seq) {
				continue
			}
			bi := baseIndex[r.Seq[p]]
			if bi < 0 {
				continue
			}
			count[bi]++
			qualSum[bi] += qualAt(r, p)
			if count[bi] > max {
				max = count[bi]
			}
		}
		if max == 0 {
			out.Seq[p] = 'N'
			out.Qual[p] = byte(qualAt(rep, p))
			continue
		}
		best := baseIndex[rep.Seq[p]]
		if best < 0 || count[best] != max {
			best = -1
			for _, r := range reads {
				if p >= len(r.Seq) {
					continue
				}
				if bi := baseIndex[r.Seq[p]]; bi >= 0 && count[bi] == max {
					best = bi
					break
				}
			}
		}
		out.Seq[p] = indexBase[best]
		out.Qual[p] = byte(qualSum[best] / count[best])
	}
	return out
}

// qualAt returns the phred quality of r at p, or 0 if it is missing.
func qualAt(r Read, p int) int {
	if p >= len(r.Qual) || r.Qual[p] == 0xff {
		return 0
	}
	return int(r.Qual[p])
}
