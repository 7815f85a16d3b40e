package adapter

import "fmt"

// Distance returns the number of positions selected by m at which a and b
// differ. This is a positional count over equal-length fingerprints, not an
// edit distance.
func Distance(a, b Fingerprint, m Mask) int {
	checkLengths(a, string(b), m)
	d := 0
	for _, i := range m.idx {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// WithinDistance reports whether Distance(a, b, m) <= max. It stops
// comparing as soon as the budget is exhausted.
func WithinDistance(a, b Fingerprint, m Mask, max int) bool {
	checkLengths(a, string(b), m)
	d := 0
	for _, i := range m.idx {
		if a[i] != b[i] {
			d++
			if d > max {
				return false
			}
		}
	}
	return true
}

// IUPACDistance returns the number of positions selected by m at which the
// base in f is not one of the bases represented by the IUPAC code at the
// same position of pattern. pattern covers a whole fingerprint, i.e. it is
// the expected adapter repeated for both mates.
func IUPACDistance(f Fingerprint, pattern string, m Mask) int {
	checkLengths(f, pattern, m)
	d := 0
	for _, i := range m.idx {
		if !BaseMatch(f[i], pattern[i]) {
			d++
		}
	}
	return d
}

func checkLengths(f Fingerprint, other string, m Mask) {
	if len(f) != len(other) || len(f) != 2*m.Len() {
		panic(fmt.Sprintf("fingerprints must have equal length twice the mask length %d: '%s', '%s'",
			m.Len(), f, other))
	}
}
