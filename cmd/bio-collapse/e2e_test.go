package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/collapse/encoding/fastq"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/gosh"
)

func buildCollapse(sh *gosh.Shell) string {
	binDir := sh.MakeTempDir()
	return gosh.BuildGoPkg(sh, binDir, "github.com/grailbio/collapse/cmd/bio-collapse")
}

func TestBinaryWithConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	sh := gosh.NewShell(t)
	defer sh.Cleanup()
	collapseBin := buildCollapse(sh)

	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	bamPath := filepath.Join(dir, "in.bam")
	writeBAM(t, bamPath,
		newRecord("a:ACGT+TTGA", 99, sam.Read1|sam.MateReverse, 109, "ACGTACGTAA"),
		newRecord("b:ACGT+TTGA", 99, sam.Read1|sam.MateReverse, 109, "ACGTACGTAA"),
		newRecord("a:ACGT+TTGA", 109, sam.Read2|sam.Reverse, 99, "GTAAGGGGCC"),
		newRecord("b:ACGT+TTGA", 109, sam.Read2|sam.Reverse, 99, "GTAAGGGGCC"),
	)
	configPath := filepath.Join(dir, "collapse.ini")
	require.NoError(t, ioutil.WriteFile(configPath, []byte(`[config]
strand_position = 1111
duplex_position = 1111
adapter_max_mismatch = 0
duplex_max_mismatch = 0
`), 0644))

	r1 := filepath.Join(dir, "out_R1.fastq")
	r2 := filepath.Join(dir, "out_R2.fastq")
	sh.Cmd(collapseBin,
		"-config", configPath,
		"-bam", bamPath,
		"-output-r1", r1,
		"-output-r2", r2,
	).Run()

	r1s, r2s, err := fastq.ReadAllPairs(vcontext.Background(), r1, r2)
	require.NoError(t, err)
	require.Len(t, r1s, 1)
	require.Len(t, r2s, 1)
	assert.Equal(t, "@chr1:100:+:0:2:ACGT+TTGA DX:i:0", r1s[0].ID)
	assert.Equal(t, "ACGTACGTAA", r1s[0].Seq)
}

func TestBinaryRejectsBadConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	sh := gosh.NewShell(t)
	defer sh.Cleanup()
	collapseBin := buildCollapse(sh)

	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	r1 := filepath.Join(dir, "out_R1.fastq")
	for i, args := range [][]string{
		{"-output-r1", r1, "-output-r2", filepath.Join(dir, "out_R2.fastq")},
		{"-bam", filepath.Join(dir, "x.bam"), "-output-r1", r1, "-output-r2", r1},
		{"-strand-position", "11", "-duplex-position", "111"},
	} {
		cmd := sh.Cmd(collapseBin, args...)
		cmd.ExitErrorIsOk = true
		cmd.Run()
		assert.Error(t, cmd.Err, fmt.Sprintf("case %d", i))
		_, err := os.Stat(r1)
		assert.True(t, os.IsNotExist(err), fmt.Sprintf("case %d", i))
	}
}
