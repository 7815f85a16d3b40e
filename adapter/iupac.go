package adapter

import "fmt"

// iupac maps each IUPAC nucleotide code to a bitset over A=1, C=2, G=4, T=8.
var iupac = [256]uint8{
	'A': 1, 'C': 2, 'G': 4, 'T': 8,
	'R': 1 | 4, 'Y': 2 | 8, 'S': 2 | 4, 'W': 1 | 8,
	'K': 4 | 8, 'M': 1 | 2, 'B': 2 | 4 | 8, 'D': 1 | 4 | 8,
	'H': 1 | 2 | 8, 'V': 1 | 2 | 4, 'N': 1 | 2 | 4 | 8,
}

// BaseMatch reports whether base is one of the bases represented by the
// IUPAC code. An N base in a read only matches an N code.
//
// Example: BaseMatch('G', 'R') == true because R = {A,G}.
func BaseMatch(base, code byte) bool {
	b := iupac[upper(base)]
	c := iupac[upper(code)]
	if b == 0 || c == 0 {
		return false
	}
	if b == iupac['N'] {
		return c == iupac['N']
	}
	return b&c == b
}

// ValidatePattern checks that every character of p is an IUPAC nucleotide
// code.
func ValidatePattern(p string) error {
	if len(p) == 0 {
		return fmt.Errorf("empty adapter pattern")
	}
	for i := 0; i < len(p); i++ {
		if iupac[upper(p[i])] == 0 {
			return fmt.Errorf("invalid IUPAC code %q in adapter pattern %s", p[i], p)
		}
	}
	return nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
