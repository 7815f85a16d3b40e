package alignment

import (
	"github.com/grailbio/collapse/encoding/fasta"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

var nmTag = sam.Tag{'N', 'M'}

// mismatches returns the edit distance of rec to the reference: its NM tag
// if present, otherwise the count computed against ref. Mismatched,
// inserted, and deleted bases count one each. Without an NM tag or a
// reference it returns 0.
func mismatches(rec *sam.Record, ref fasta.Fasta) (int, error) {
	if aux := rec.AuxFields.Get(nmTag); aux != nil {
		return auxInt(aux)
	}
	if ref == nil {
		return 0, nil
	}
	seq := rec.Seq.Expand()
	var (
		nm      int
		refPos  = uint64(rec.Pos)
		readPos int
	)
	for _, op := range rec.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			bases, err := ref.Get(rec.Ref.Name(), refPos, refPos+uint64(n))
			if err != nil {
				return 0, errors.Wrapf(err, "reference for %s", rec.Name)
			}
			for i := 0; i < n && readPos+i < len(seq); i++ {
				if upperBase(seq[readPos+i]) != upperBase(bases[i]) {
					nm++
				}
			}
			refPos += uint64(n)
			readPos += n
		case sam.CigarInsertion:
			nm += n
			readPos += n
		case sam.CigarDeletion:
			nm += n
			refPos += uint64(n)
		case sam.CigarSkipped:
			refPos += uint64(n)
		case sam.CigarSoftClipped:
			readPos += n
		}
	}
	return nm, nil
}

func auxInt(aux sam.Aux) (int, error) {
	switch v := aux.Value().(type) {
	case int8:
		return int(v), nil
	case uint8:
		return int(v), nil
	case int16:
		return int(v), nil
	case uint16:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint32:
		return int(v), nil
	}
	return 0, errors.Errorf("tag %s has non-integer value %v", aux.Tag(), aux.Value())
}
