package collapse

import (
	"github.com/grailbio/collapse/adapter"
)

// Member is a ReadPair admitted into a family together with what was derived
// from it on admission.
type Member struct {
	Pair        *ReadPair
	Fingerprint adapter.Fingerprint
	// Chimeric is set for pairs whose adapter fails the chimera check
	// when chimeras are tagged rather than discarded.
	Chimeric bool
}

// Family holds every admitted pair that shares chromosome, start, and
// strand, in arrival order. It owns the molecule classes built from it.
type Family struct {
	Key     FamilyKey
	Members []*Member
	Classes []*MoleculeClass
}

// Size returns the number of members of f.
func (f *Family) Size() int { return len(f.Members) }

// Grouper buckets a coordinate-sorted stream of pairs into families. The
// plus and minus families at one coordinate are open together, and both are
// closed once the stream moves past that coordinate.
type Grouper struct {
	open    [2]*Family
	current FamilyKey
	started bool
}

// NewGrouper creates an empty Grouper.
func NewGrouper() *Grouper { return &Grouper{} }

// Add appends m to its family. If m starts a new coordinate, the families
// open at the previous coordinate are returned, plus strand first. Add
// fails with *StreamOrderError if m's coordinate precedes the open one.
func (g *Grouper) Add(m *Member) ([]*Family, error) {
	key := m.Pair.Key()
	var closed []*Family
	if g.started {
		switch c := compareCoord(key, g.current); {
		case c < 0:
			return nil, &StreamOrderError{Name: m.Pair.Name, Got: key, Current: g.current}
		case c > 0:
			closed = g.flush()
		}
	}
	g.current = key
	g.started = true
	f := g.open[key.Strand]
	if f == nil {
		f = &Family{Key: key}
		g.open[key.Strand] = f
	}
	f.Members = append(f.Members, m)
	return closed, nil
}

// Close returns the families still open at the end of input.
func (g *Grouper) Close() []*Family {
	return g.flush()
}

func (g *Grouper) flush() []*Family {
	var closed []*Family
	for i, f := range g.open {
		if f != nil {
			closed = append(closed, f)
			g.open[i] = nil
		}
	}
	return closed
}
