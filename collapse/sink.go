package collapse

import (
	"fmt"

	"github.com/grailbio/collapse/encoding/fastq"
)

// Sink receives the consensus reads of finalized molecule classes.
type Sink interface {
	WriteConsensus(c *ConsensusRead) error
}

// OriginalSink receives every member of a finalized molecule class,
// annotated with the class it was assigned to.
type OriginalSink interface {
	WriteOriginal(m *Member, c *MoleculeClass) error
}

// FastqPairWriter writes FASTQ mate pairs. It is satisfied by
// *fastq.PairWriter.
type FastqPairWriter interface {
	Write(r1, r2 *fastq.Read) error
}

// FastqSink writes consensus reads, and optionally annotated original reads,
// as FASTQ pairs.
type FastqSink struct {
	w FastqPairWriter
}

// NewFastqSink creates a FastqSink that writes to w.
func NewFastqSink(w FastqPairWriter) *FastqSink {
	return &FastqSink{w: w}
}

// WriteConsensus implements Sink. The read name carries the class size and a
// DX tag that is 1 for duplex-linked classes.
func (s *FastqSink) WriteConsensus(c *ConsensusRead) error {
	id := fmt.Sprintf("@%s DX:i:%d", c.Name(), boolInt(c.Duplex))
	r1 := fastqRead(id, c.R1)
	r2 := fastqRead(id, c.R2)
	return s.w.Write(&r1, &r2)
}

// WriteOriginal implements OriginalSink. The member's name is annotated with
// the class size (DS), the duplex state of the class (DX) and, for tagged
// chimeras, CH.
func (s *FastqSink) WriteOriginal(m *Member, c *MoleculeClass) error {
	id := fmt.Sprintf("@%s DS:i:%d DX:i:%d", m.Pair.Name, c.Size(), boolInt(c.Duplex != nil))
	if m.Chimeric {
		id += " CH:i:1"
	}
	r1 := fastqRead(id, m.Pair.R1)
	r2 := fastqRead(id, m.Pair.R2)
	return s.w.Write(&r1, &r2)
}

// maxFastqQual is the largest phred score printable in Sanger FASTQ.
const maxFastqQual = 93

func fastqRead(id string, r Read) fastq.Read {
	qual := make([]byte, len(r.Seq))
	for i := range qual {
		q := qualAt(r, i)
		if q > maxFastqQual {
			q = maxFastqQual
		}
		qual[i] = byte(q + 33)
	}
	return fastq.Read{ID: id, Seq: string(r.Seq), Unk: "+", Qual: string(qual)}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
