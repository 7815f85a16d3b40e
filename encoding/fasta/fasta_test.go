package fasta_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/collapse/encoding/fasta"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/klauspost/compress/gzip"
)

var fastaData string
var fastaIndex string

func init() {
	fastaData = ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + ">seq2 A viral sequence\n" + "ACGT\n" + "ACGT\n"
	fastaIndex = "seq1\t12\t6\t5\t6\n" + "seq2\t8\t44\t4\t5\n"
}

func TestGet(t *testing.T) {
	tests := []struct {
		seq   string
		start uint64
		end   uint64
		want  string
		err   error
	}{
		{"seq1", 1, 2, "C", nil},
		{"seq1", 1, 6, "CGTAC", nil},
		{"seq1", 0, 12, "ACGTACGTACGT", nil},
		{"seq1", 10, 12, "GT", nil},
		{"seq2", 0, 8, "ACGTACGT", nil},
		{"seq2", 2, 5, "GTA", nil},
		{"seq0", 0, 1, "", fmt.Errorf("sequence not found in index: seq0")},
		{"seq1", 10, 13, "", fmt.Errorf("end is past end of sequence seq1: 12")},
		{"seq1", 4, 3, "", fmt.Errorf("start must be less than end")},
	}
	unindexed, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Errorf("couldn't create Fasta: %v", err)
	}
	indexed, err := fasta.NewIndexed(strings.NewReader(fastaData), strings.NewReader(fastaIndex))
	if err != nil {
		t.Errorf("couldn't read index: %v", err)
	}
	for _, tt := range tests {
		got, err := unindexed.Get(tt.seq, tt.start, tt.end)
		if (err == nil && tt.err != nil) || (err != nil && tt.err == nil) {
			t.Errorf("unexpected error: want %v, got %v", tt.err, err)
		}
		if got != tt.want {
			t.Errorf("unexpected sequence: want %s, got %s", tt.want, got)
		}

		got, err = indexed.Get(tt.seq, tt.start, tt.end)
		if (err == nil && tt.err != nil) || (err != nil && tt.err == nil) {
			t.Errorf("unexpected error: want %v, got %v", tt.err, err)
		}
		if got != tt.want {
			t.Errorf("unexpected sequence: want %s, got %s", tt.want, got)
		}
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		seq  string
		want uint64
		err  error
	}{
		{"seq1", 12, nil},
		{"seq2", 8, nil},
		{"seq0", 0, fmt.Errorf("sequence not found in index: seq0")},
	}
	unindexed, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Errorf("couldn't create Fasta: %v", err)
	}
	indexed, err := fasta.NewIndexed(strings.NewReader(fastaData), strings.NewReader(fastaIndex))
	if err != nil {
		t.Errorf("couldn't read index: %v", err)
	}
	for _, tt := range tests {
		got, err := unindexed.Len(tt.seq)
		if (err == nil && tt.err != nil) || (err != nil && tt.err == nil) {
			t.Errorf("unexpected error: want %v, got %v", tt.err, err)
		}
		if got != tt.want {
			t.Errorf("unexpected length: want %v, got %v", tt.want, got)
		}

		got, err = indexed.Len(tt.seq)
		if (err == nil && tt.err != nil) || (err != nil && tt.err == nil) {
			t.Errorf("unexpected error: want %v, got %v", tt.err, err)
		}
		if got != tt.want {
			t.Errorf("unexpected length: want %v, got %v", tt.want, got)
		}
	}
}

func TestSeqNames(t *testing.T) {
	unindexed, err := fasta.New(strings.NewReader(fastaData))
	if err != nil {
		t.Errorf("couldn't create Fasta: %v", err)
	}
	indexed, err := fasta.NewIndexed(strings.NewReader(fastaData), strings.NewReader(fastaIndex))
	if err != nil {
		t.Errorf("couldn't read index: %v", err)
	}
	want := sort.StringSlice([]string{"seq1", "seq2"})
	want.Sort()
	got := sort.StringSlice(unindexed.SeqNames())
	got.Sort()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got = sort.StringSlice(indexed.SeqNames())
	got.Sort()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGenerateIndex(t *testing.T) {
	generateIndex := func(fa string) (faidx string) {
		idx := bytes.Buffer{}
		assert.NoError(t, fasta.GenerateIndex(&idx, strings.NewReader(fa)))
		return idx.String()
	}

	fa := `>E0
GGTGAAATC
CCTGAAATC
AAAATTGCT
>E1
GTCCCTCCCCAGACATGGCCCTGGGAGGC
>E2
CCGCGCCCGCGCCCCCGCCGCC
>E3
GTCAAGGTTGCACAG
>E4
ATGAATCATGTGGTAAAA
`
	fai := generateIndex(fa)
	assert.EQ(t, fai, `E0	27	4	9	10
E1	29	38	29	30
E2	22	72	22	23
E3	15	99	15	16
E4	18	119	18	19
`)
	// Read using the generated index
	indexed, err := fasta.NewIndexed(strings.NewReader(fa), strings.NewReader(fai))
	assert.NoError(t, err)
	l, err := indexed.Len("E3")
	assert.NoError(t, err)
	assert.EQ(t, l, uint64(15))
	seq, err := indexed.Get("E3", 0, l)
	assert.NoError(t, err)
	assert.EQ(t, seq, "GTCAAGGTTGCACAG")

	// MO-DOS newline encodinng.
	assert.EQ(t, generateIndex(">E0\r\nGGGG\r\n>E1\r\nAAAAA\r\n"),
		`E0	4	5	4	6
E1	5	16	5	7
`)

	// No newline at the end.
	assert.EQ(t, generateIndex(">E0\nGGGG\n>E1\nCCCCC\nAAAAA"),
		`E0	4	4	4	5
E1	10	13	5	6
`)
	// Note: samtools faidx emits "5 13 5 6" for E1, but the .fai format says "5 13 5 5".
	assert.EQ(t, generateIndex(">E0\nGGGG\n>E1\nAAAAA"),
		`E0	4	4	4	5
E1	5	13	5	5
`)

	// A name with no sequence still gets an entry.
	assert.EQ(t, generateIndex(">E0\n>E1\nAC\n"),
		`E0	0	4	0	0
E1	2	8	2	3
`)

	idx := bytes.Buffer{}
	assert.Regexp(t, fasta.GenerateIndex(&idx, strings.NewReader("")), "empty FASTA")
	assert.Regexp(t, fasta.GenerateIndex(&idx, strings.NewReader("ACGT\n>E0\nA\n")), "malformed FASTA")
}

func TestNewIndexedBadIndex(t *testing.T) {
	for _, fai := range []string{
		"seq1\t12\t6\t5\n",
		"seq1\t12\t6\t5\t6\textra\n",
		"seq1\t99999999999999999999999\t6\t5\t6\n",
		"seq1\tx\t6\t5\t6\n",
		"seq1\t12\t6\t0\t1\n",
		"seq1\t12\t6\t5\t4\n",
	} {
		_, err := fasta.NewIndexed(strings.NewReader(fastaData), strings.NewReader(fai))
		assert.HasSubstr(t, err.Error(), "invalid index line", fai)
	}
}

func TestOpen(t *testing.T) {
	ctx := vcontext.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	plain := filepath.Join(dir, "plain.fa")
	assert.NoError(t, ioutil.WriteFile(plain, []byte(fastaData), 0644))

	indexed := filepath.Join(dir, "indexed.fa")
	assert.NoError(t, ioutil.WriteFile(indexed, []byte(fastaData), 0644))
	var idx bytes.Buffer
	assert.NoError(t, fasta.GenerateIndex(&idx, strings.NewReader(fastaData)))
	assert.NoError(t, ioutil.WriteFile(indexed+".fai", idx.Bytes(), 0644))

	compressed := filepath.Join(dir, "compressed.fa.gz")
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(fastaData))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, ioutil.WriteFile(compressed, gz.Bytes(), 0644))

	crlf := filepath.Join(dir, "crlf.fa")
	assert.NoError(t, ioutil.WriteFile(crlf, []byte(strings.Replace(fastaData, "\n", "\r\n", -1)), 0644))

	for _, path := range []string{plain, indexed, compressed, crlf} {
		fa, err := fasta.Open(ctx, path)
		assert.NoError(t, err, path)
		got, err := fa.Get("seq1", 3, 9)
		assert.NoError(t, err, path)
		assert.EQ(t, got, "TACGTA", path)
		n, err := fa.Len("seq2")
		assert.NoError(t, err, path)
		assert.EQ(t, n, uint64(8), path)
		assert.NoError(t, fa.Close(ctx), path)
		assert.NoError(t, fa.Close(ctx), path)
	}

	// The computed index stays in memory.
	_, err = os.Stat(plain + ".fai")
	assert.True(t, os.IsNotExist(err))

	_, err = fasta.Open(ctx, filepath.Join(dir, "missing.fa"))
	assert.NotNil(t, err)

	malformed := filepath.Join(dir, "malformed.fa")
	assert.NoError(t, ioutil.WriteFile(malformed, []byte("ACGT\n>seq1\nACGT\n"), 0644))
	_, err = fasta.Open(ctx, malformed)
	assert.HasSubstr(t, err.Error(), "malformed FASTA")
}

func TestOpenLongSequence(t *testing.T) {
	ctx := vcontext.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// Longer than one read-ahead window, 60 bases per line.
	var seq, data strings.Builder
	data.WriteString(">chr1\n")
	for i := 0; i < 20000; i++ {
		b := "ACGT"[i%4 : i%4+1]
		seq.WriteString(b)
		data.WriteString(b)
		if i%60 == 59 {
			data.WriteString("\n")
		}
	}
	data.WriteString("\n")
	path := filepath.Join(dir, "long.fa")
	assert.NoError(t, ioutil.WriteFile(path, []byte(data.String()), 0644))

	fa, err := fasta.Open(ctx, path)
	assert.NoError(t, err)
	defer fa.Close(ctx) // nolint: errcheck
	want := seq.String()
	for _, r := range [][2]uint64{{0, 1}, {59, 61}, {8000, 8300}, {10, 19990}, {19999, 20000}, {100, 160}} {
		got, err := fa.Get("chr1", r[0], r[1])
		assert.NoError(t, err)
		assert.EQ(t, got, want[r[0]:r[1]], r)
	}
}

func TestNewMalformed(t *testing.T) {
	_, err := fasta.New(strings.NewReader("ACGT\n>seq1\nACGT\n"))
	assert.HasSubstr(t, err.Error(), "malformed FASTA")
	_, err = fasta.New(strings.NewReader(""))
	assert.HasSubstr(t, err.Error(), "empty FASTA")
}
