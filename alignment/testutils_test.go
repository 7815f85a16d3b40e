package alignment

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/require"
)

var (
	chr1, _   = sam.NewReference("chr1", "", "", 10000, nil, nil)
	chr2, _   = sam.NewReference("chr2", "", "", 10000, nil, nil)
	header, _ = sam.NewHeader(nil, []*sam.Reference{chr1, chr2})

	r1F = sam.Paired | sam.Read1 | sam.MateReverse
	r1R = sam.Paired | sam.Read1 | sam.Reverse
	r2F = sam.Paired | sam.Read2 | sam.MateReverse
	r2R = sam.Paired | sam.Read2 | sam.Reverse
)

// newRecord creates a fully aligned record whose qualities count up from 10.
func newRecord(name string, ref *sam.Reference, pos int, flags sam.Flags, matePos int, seq string, aux ...sam.Aux) *sam.Record {
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = byte(10 + i)
	}
	return &sam.Record{
		Name:      name,
		Ref:       ref,
		Pos:       pos,
		MateRef:   ref,
		MatePos:   matePos,
		Flags:     flags,
		Cigar:     sam.Cigar{sam.NewCigarOp(sam.CigarMatch, len(seq))},
		Seq:       sam.NewSeq([]byte(seq)),
		Qual:      qual,
		AuxFields: aux,
	}
}

func nm(n uint8) sam.Aux {
	aux, err := sam.NewAux(sam.NewTag("NM"), n)
	if err != nil {
		panic(err)
	}
	return aux
}

// writeBAM writes records to a new BAM file in dir and returns its path.
func writeBAM(t *testing.T, dir string, records ...*sam.Record) string {
	ctx := vcontext.Background()
	path := filepath.Join(dir, "in.bam")
	out, err := file.Create(ctx, path)
	require.NoError(t, err)
	w, err := bam.NewWriter(out.Writer(ctx), header, 1)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close(ctx))
	return path
}
