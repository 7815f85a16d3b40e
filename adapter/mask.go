// Package adapter compares the degenerate adapter sequences that duplex
// protocols ligate onto both ends of a fragment. An adapter is reduced to a
// Fingerprint, and fingerprints are compared position by position under a
// Mask that selects the informative positions.
package adapter

import (
	"fmt"
	"strings"
)

// Mask selects adapter positions for comparison. A Mask is parsed from a
// bit-string such as "1110011", where '1' means the position participates in
// distance calculations. The same mask applies to the adapter of each mate.
type Mask struct {
	bits []bool
	// idx lists the selected positions across a fingerprint, i.e. across
	// both mate halves.
	idx []int
}

// ParseMask parses a bit-string into a Mask.
func ParseMask(s string) (Mask, error) {
	if len(s) == 0 {
		return Mask{}, fmt.Errorf("empty position mask")
	}
	m := Mask{bits: make([]bool, len(s))}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '1':
			m.bits[i] = true
		case '0':
		default:
			return Mask{}, fmt.Errorf("invalid character %q in position mask %s", s[i], s)
		}
	}
	for half := 0; half < 2; half++ {
		for i, b := range m.bits {
			if b {
				m.idx = append(m.idx, half*len(s)+i)
			}
		}
	}
	return m, nil
}

// MustParseMask is ParseMask that panics on error.
func MustParseMask(s string) Mask {
	m, err := ParseMask(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FullMask returns a mask of length n that selects every position.
func FullMask(n int) Mask {
	return MustParseMask(strings.Repeat("1", n))
}

// Len returns the adapter length covered by the mask.
func (m Mask) Len() int { return len(m.bits) }

// Selected returns the number of fingerprint positions the mask selects.
func (m Mask) Selected() int { return len(m.idx) }

// String returns the bit-string form of m.
func (m Mask) String() string {
	b := make([]byte, len(m.bits))
	for i, v := range m.bits {
		if v {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}
