package collapse

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/collapse/adapter"
)

// MoleculeClass is a cluster of family members believed to come from one
// physical molecule. Every member's fingerprint is within
// adapter_max_mismatch of the representative's fingerprint under the strand
// mask.
type MoleculeClass struct {
	Key FamilyKey
	// Index is the creation order of the class within its family.
	Index int
	// Representative is the member that founded the class. It is always
	// Members[0].
	Representative *Member
	Members        []*Member

	// Duplex is the class on the opposite strand linked to this one, or
	// nil.
	Duplex *MoleculeClass
	// Consensus is built once the class is final.
	Consensus *ConsensusRead
}

// Size returns the number of members of c.
func (c *MoleculeClass) Size() int { return len(c.Members) }

// ClusterBuilder groups the members of a family into molecule classes by
// adapter similarity.
type ClusterBuilder struct {
	mask adapter.Mask
	max  int
}

// NewClusterBuilder creates a ClusterBuilder from cfg.
func NewClusterBuilder(cfg *Config) *ClusterBuilder {
	return &ClusterBuilder{mask: cfg.StrandMask, max: cfg.AdapterMaxMismatch}
}

// Build clusters f.Members into f.Classes and returns them.
//
// Clustering is greedy: members are taken in arrival order, and each joins
// the first class, in creation order, whose representative is within the
// mismatch budget; otherwise it founds a new class. The result therefore
// depends on member order, and callers must present members in a stable
// order (the order of the input stream) for the result to be reproducible.
// Cost is O(n*k) for n members and k classes.
func (b *ClusterBuilder) Build(f *Family) []*MoleculeClass {
	classes := make([]*MoleculeClass, 0, 1)
	for _, m := range f.Members {
		var dst *MoleculeClass
		for _, c := range classes {
			if adapter.WithinDistance(m.Fingerprint, c.Representative.Fingerprint, b.mask, b.max) {
				dst = c
				break
			}
		}
		if dst == nil {
			dst = &MoleculeClass{Key: f.Key, Index: len(classes), Representative: m}
			classes = append(classes, dst)
		}
		dst.Members = append(dst.Members, m)
	}
	log.Debug.Printf("family %v: %d members in %d classes", f.Key, len(f.Members), len(classes))
	f.Classes = classes
	return classes
}
