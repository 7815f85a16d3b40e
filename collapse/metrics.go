package collapse

import (
	"context"
	"fmt"
	"hash"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Metrics contains counts from one collapse run.
type Metrics struct {
	// PairsExamined is the number of pairs delivered by the source.
	PairsExamined int
	// ExtractionFailures is the number of pairs dropped because their
	// adapters could not be extracted.
	ExtractionFailures int
	// ChimericDiscarded is the number of pairs dropped as chimeric.
	ChimericDiscarded int
	// ChimericTagged is the number of chimeric pairs kept but tagged.
	ChimericTagged int

	// Positions is the number of distinct coordinates processed.
	Positions int
	// Families is the number of families processed.
	Families int
	// Classes is the number of molecule classes, which is also the number
	// of consensus pairs emitted.
	Classes int
	// DuplexLinks is the number of plus/minus class links.
	DuplexLinks int
	// ReadsCollapsed is the number of reads removed by collapsing, i.e.
	// the sum over classes of 2*(size-1).
	ReadsCollapsed int

	checksum hash.Hash64
}

func newMetrics() *Metrics {
	return &Metrics{checksum: seahash.New()}
}

// addConsensus folds c into the running checksum of emitted consensus
// reads. Identical input in identical order yields identical checksums.
func (m *Metrics) addConsensus(c *ConsensusRead) {
	for _, b := range [][]byte{[]byte(c.Name()), c.R1.Seq, c.R1.Qual, c.R2.Seq, c.R2.Qual} {
		m.checksum.Write(b) // nolint: errcheck
	}
}

// Checksum returns the seahash of all emitted consensus reads so far.
func (m *Metrics) Checksum() uint64 {
	return m.checksum.Sum64()
}

// String returns a one-line summary of m.
func (m *Metrics) String() string {
	return fmt.Sprintf("pairs %d, extraction failures %d, chimeric discarded %d, chimeric tagged %d, "+
		"positions %d, families %d, classes %d, duplex links %d, reads collapsed %d, checksum %016x",
		m.PairsExamined, m.ExtractionFailures, m.ChimericDiscarded, m.ChimericTagged,
		m.Positions, m.Families, m.Classes, m.DuplexLinks, m.ReadsCollapsed, m.Checksum())
}

func writeMetrics(ctx context.Context, path string, m *Metrics) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "couldn't create metrics file:", path)
	}
	defer func() {
		if e := f.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", path)
		}
	}()
	w := tsv.NewWriter(f.Writer(ctx))
	rows := []struct {
		name  string
		value int
	}{
		{"PAIRS_EXAMINED", m.PairsExamined},
		{"ADAPTER_EXTRACTION_FAILURES", m.ExtractionFailures},
		{"CHIMERIC_DISCARDED", m.ChimericDiscarded},
		{"CHIMERIC_TAGGED", m.ChimericTagged},
		{"POSITIONS", m.Positions},
		{"FAMILIES", m.Families},
		{"MOLECULE_CLASSES", m.Classes},
		{"DUPLEX_LINKS", m.DuplexLinks},
		{"READS_COLLAPSED", m.ReadsCollapsed},
	}
	for _, r := range rows {
		w.WriteString(r.name)
		w.WriteInt64(int64(r.value))
		if err = w.EndLine(); err != nil {
			return errors.E(err, "error writing to metrics file:", path)
		}
	}
	w.WriteString("CONSENSUS_CHECKSUM")
	w.WriteString(fmt.Sprintf("%016x", m.Checksum()))
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	if err = w.Flush(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	return nil
}
