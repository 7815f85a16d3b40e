package alignment

import (
	"strings"

	"github.com/grailbio/collapse/collapse"
	"github.com/grailbio/hts/sam"
)

// revComp maps a base to its complement. Lowercase input is uppercased, and
// anything that is not A, C, G, or T becomes N.
var revComp = func() (t [256]byte) {
	for i := range t {
		t[i] = 'N'
	}
	for _, p := range []string{"AT", "CG", "GC", "TA", "at", "cg", "gc", "ta"} {
		t[p[0]] = p[1] &^ 0x20
	}
	return
}()

// upperBase uppercases a base. Bytes other than a, c, g, t, and n are
// returned unchanged.
func upperBase(b byte) byte {
	switch b {
	case 'a', 'c', 'g', 't', 'n':
		return b &^ 0x20
	}
	return b
}

// sequencingRead returns the bases and qualities of rec in the orientation
// they were sequenced in. Reverse-strand alignments are stored
// reverse-complemented in BAM.
func sequencingRead(rec *sam.Record) collapse.Read {
	seq := rec.Seq.Expand()
	qual := append([]byte(nil), rec.Qual...)
	if rec.Flags&sam.Reverse == 0 {
		for i, b := range seq {
			seq[i] = upperBase(b)
		}
		return collapse.Read{Seq: seq, Qual: qual}
	}
	n := len(seq)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		seq[i], seq[j] = revComp[seq[j]], revComp[seq[i]]
	}
	if n&1 == 1 {
		seq[n/2] = revComp[seq[n/2]]
	}
	for i, j := 0, len(qual)-1; i < j; i, j = i+1, j-1 {
		qual[i], qual[j] = qual[j], qual[i]
	}
	return collapse.Read{Seq: seq, Qual: qual}
}

// splitAdapter removes the first n bases of r and returns them as the
// adapter. A read shorter than n is returned whole as the adapter, which
// fails adapter extraction downstream.
func splitAdapter(r collapse.Read, n int) (string, collapse.Read) {
	if len(r.Seq) < n {
		return string(r.Seq), collapse.Read{}
	}
	rest := collapse.Read{Seq: r.Seq[n:]}
	if len(r.Qual) >= n {
		rest.Qual = r.Qual[n:]
	}
	return string(r.Seq[:n]), rest
}

// nameAdapters parses the adapters of a read named
// "<anything>:<ADAPTER1>+<ADAPTER2>". It returns empty adapters if the name
// does not end in that form.
func nameAdapters(name string) (string, string) {
	field := name[strings.LastIndexByte(name, ':')+1:]
	i := strings.IndexByte(field, '+')
	if i < 0 {
		return "", ""
	}
	a1, a2 := field[:i], field[i+1:]
	if !isBases(a1) || !isBases(a2) {
		return "", ""
	}
	return strings.ToUpper(a1), strings.ToUpper(a2)
}

func isBases(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch upperBase(s[i]) {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}
