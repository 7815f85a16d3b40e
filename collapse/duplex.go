package collapse

import (
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/collapse/adapter"
)

// DuplexLink records that two molecule classes on opposite strands at one
// coordinate carry matching adapters, i.e. that they are the two strands of
// one double-stranded molecule. Linking never changes either consensus.
type DuplexLink struct {
	Plus, Minus *MoleculeClass
	Distance    int
}

// DuplexReconciler links molecule classes across the plus and minus
// families of one coordinate.
type DuplexReconciler struct {
	mask adapter.Mask
	max  int
}

// NewDuplexReconciler creates a DuplexReconciler from cfg.
func NewDuplexReconciler(cfg *Config) *DuplexReconciler {
	return &DuplexReconciler{mask: cfg.DuplexMask, max: cfg.DuplexMaxMismatch}
}

// Reconcile links the classes of plus and minus, which must be the two
// families of one coordinate; either may be nil. The two strands of a
// molecule carry each other's adapters on the opposite mates, so a plus
// fingerprint is compared with the mate-swapped minus fingerprint under the
// duplex mask.
//
// Links are one-to-one. Among all unlinked plus and minus classes, the pair
// at minimum distance is linked first, ties going to the earlier plus class
// and then the earlier minus class, until no unlinked pair is within
// duplex_max_mismatch. Reconcile sets the Duplex field of linked classes.
func (d *DuplexReconciler) Reconcile(plus, minus *Family) []DuplexLink {
	if plus == nil || minus == nil {
		return nil
	}
	var candidates []DuplexLink
	for _, pc := range plus.Classes {
		for _, mc := range minus.Classes {
			dist := adapter.Distance(pc.Representative.Fingerprint, mc.Representative.Fingerprint.Swapped(), d.mask)
			if dist <= d.max {
				candidates = append(candidates, DuplexLink{Plus: pc, Minus: mc, Distance: dist})
			}
		}
	}
	// Candidates are in (plus, minus) creation order, so a stable sort by
	// distance keeps that order among ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	var links []DuplexLink
	for _, c := range candidates {
		if c.Plus.Duplex != nil || c.Minus.Duplex != nil {
			continue
		}
		c.Plus.Duplex, c.Minus.Duplex = c.Minus, c.Plus
		links = append(links, c)
	}
	log.Debug.Printf("coordinate %v: %d duplex links", plus.Key, len(links))
	return links
}
