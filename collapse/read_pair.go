package collapse

import (
	"fmt"

	"github.com/grailbio/collapse/adapter"
)

// Strand is the strand a pair's R1 maps to.
type Strand uint8

const (
	// Plus marks pairs whose R1 maps to the forward strand.
	Plus Strand = iota
	// Minus marks pairs whose R1 maps to the reverse strand.
	Minus
)

func (s Strand) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// Read is one mate in sequencing orientation. Qual holds raw phred scores,
// not FASTQ characters.
type Read struct {
	Seq  []byte
	Qual []byte
}

// ReadPair is an aligned read pair as delivered by the alignment source. A
// ReadPair is never modified once it has been read.
type ReadPair struct {
	Name string

	// RefID orders chromosomes; Chrom is used only for naming output.
	RefID int
	Chrom string
	// Start is the 1-based alignment start of the leftmost mate.
	Start  int
	Strand Strand

	R1, R2 Read

	// Adapter1 and Adapter2 are the adapter sequences carried by R1 and R2.
	Adapter1, Adapter2 string
}

// Key returns the family key of p.
func (p *ReadPair) Key() FamilyKey {
	return FamilyKey{RefID: p.RefID, Chrom: p.Chrom, Start: p.Start, Strand: p.Strand}
}

// Fingerprint extracts the adapter fingerprint of p selected by m.
func (p *ReadPair) Fingerprint(m adapter.Mask) (adapter.Fingerprint, error) {
	f, err := adapter.NewFingerprint(p.Adapter1, p.Adapter2, m)
	if err != nil {
		return "", &AdapterExtractionError{Name: p.Name, Err: err}
	}
	return f, nil
}

func (p *ReadPair) String() string {
	return fmt.Sprintf("(%s,%s:%d,%v,%s+%s)", p.Name, p.Chrom, p.Start, p.Strand, p.Adapter1, p.Adapter2)
}

// FamilyKey identifies a family: all pairs that share chromosome, start, and
// strand.
type FamilyKey struct {
	RefID  int
	Chrom  string
	Start  int
	Strand Strand
}

func (k FamilyKey) String() string {
	return fmt.Sprintf("(%s:%d,%v)", k.Chrom, k.Start, k.Strand)
}

// compareCoord orders keys by (RefID, Start). Strand does not participate.
func compareCoord(a, b FamilyKey) int {
	switch {
	case a.RefID < b.RefID:
		return -1
	case a.RefID > b.RefID:
		return 1
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	}
	return 0
}
