package adapter

import "fmt"

// Fingerprint is the adapter of mate 1 followed by the adapter of mate 2,
// each cut to the mask length. Fingerprints are only ever compared.
type Fingerprint string

// NewFingerprint builds the fingerprint of a pair whose mates carry adapters
// a1 and a2. It fails if either adapter is shorter than the mask.
func NewFingerprint(a1, a2 string, m Mask) (Fingerprint, error) {
	n := m.Len()
	if len(a1) < n || len(a2) < n {
		return "", fmt.Errorf("adapters %q, %q shorter than position mask of length %d", a1, a2, n)
	}
	return Fingerprint(a1[:n] + a2[:n]), nil
}

// Mate returns the adapter half of mate 1 (i == 0) or mate 2 (i == 1).
func (f Fingerprint) Mate(i int) string {
	h := len(f) / 2
	if i == 0 {
		return string(f[:h])
	}
	return string(f[h:])
}

// Swapped returns the fingerprint with the mate halves exchanged. The two
// strands of one duplex molecule carry each other's adapters on opposite
// mates.
func (f Fingerprint) Swapped() Fingerprint {
	h := len(f) / 2
	return f[h:] + f[:h]
}
