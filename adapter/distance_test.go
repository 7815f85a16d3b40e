package adapter

import (
	"testing"

	"github.com/antzucaro/matchr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(t *testing.T, a1, a2 string, m Mask) Fingerprint {
	f, err := NewFingerprint(a1, a2, m)
	require.NoError(t, err)
	return f
}

func TestParseMask(t *testing.T) {
	m, err := ParseMask("1011")
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, 6, m.Selected())
	assert.Equal(t, "1011", m.String())
	assert.Equal(t, []int{0, 2, 3, 4, 6, 7}, m.idx)

	for _, bad := range []string{"", "10a1", "1 1"} {
		_, err := ParseMask(bad)
		assert.Error(t, err, "mask %q", bad)
	}
}

func TestNewFingerprint(t *testing.T) {
	m := MustParseMask("111")
	f := fp(t, "ACGTT", "GGA", m)
	assert.Equal(t, Fingerprint("ACGGGA"), f)
	assert.Equal(t, "ACG", f.Mate(0))
	assert.Equal(t, "GGA", f.Mate(1))
	assert.Equal(t, Fingerprint("GGAACG"), f.Swapped())

	_, err := NewFingerprint("AC", "GGA", m)
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a1, a2, b1, b2 string
		mask           string
		want           int
	}{
		{"AAAA", "CCCC", "AAAA", "CCCC", "1111", 0},
		{"AAAA", "CCCC", "AAAT", "CCCC", "1111", 1},
		{"AAAA", "CCCC", "AAAT", "CCCG", "1111", 2},
		// Masked positions never count.
		{"AAAA", "CCCC", "AAAT", "CCCG", "1110", 0},
		{"TAAA", "CCCC", "AAAA", "GCCC", "0111", 0},
		{"TAAA", "CCCC", "AAAA", "GCCC", "1000", 2},
	}
	for _, test := range tests {
		m := MustParseMask(test.mask)
		a, b := fp(t, test.a1, test.a2, m), fp(t, test.b1, test.b2, m)
		assert.Equal(t, test.want, Distance(a, b, m), "%v", test)
		assert.Equal(t, test.want, Distance(b, a, m), "distance must be symmetric: %v", test)
		assert.True(t, WithinDistance(a, b, m, test.want))
		if test.want > 0 {
			assert.False(t, WithinDistance(a, b, m, test.want-1))
		}
	}
}

// TestDistanceMatchesHamming checks that a full mask reduces Distance to the
// standard Hamming distance.
func TestDistanceMatchesHamming(t *testing.T) {
	pairs := [][2]string{
		{"ACGTACGT", "ACGTACGT"},
		{"ACGTACGT", "TCGTACGA"},
		{"GGGGCCCC", "CCCCGGGG"},
		{"ANGTACGT", "ACGTANGT"},
	}
	m := FullMask(4)
	for _, p := range pairs {
		want, err := matchr.Hamming(p[0], p[1])
		require.NoError(t, err)
		a, b := fp(t, p[0][:4], p[0][4:], m), fp(t, p[1][:4], p[1][4:], m)
		assert.Equal(t, want, Distance(a, b, m), "%v", p)
	}
}

func TestDistanceLengthMismatch(t *testing.T) {
	m := MustParseMask("11")
	assert.Panics(t, func() { Distance("ACGT", "ACG", m) })
	assert.Panics(t, func() { IUPACDistance("ACGT", "NNNNNN", m) })
}

func TestIUPACDistance(t *testing.T) {
	m := FullMask(4)
	tests := []struct {
		a1, a2  string
		pattern string
		want    int
	}{
		{"ACGT", "TTTT", "NNNN", 0},
		{"NNNN", "NNNN", "NNNN", 0},
		{"ACGT", "ACGT", "ACGT", 0},
		{"ACGT", "ACGA", "ACGT", 1},
		{"AGCT", "GATT", "RRYT", 0},
		{"CGCT", "GATT", "RRYT", 2},
		{"ACGN", "ACGT", "ACGT", 1},
	}
	for _, test := range tests {
		f := fp(t, test.a1, test.a2, m)
		got := IUPACDistance(f, test.pattern+test.pattern, m)
		assert.Equal(t, test.want, got, "%v", test)
	}
}
