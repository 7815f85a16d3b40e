package collapse

import "github.com/grailbio/collapse/adapter"

// chimeraVerdict is the outcome of checking one pair against the expected
// adapter pattern.
type chimeraVerdict uint8

const (
	notChimeric chimeraVerdict = iota
	chimericTagged
	chimericDiscarded
)

// ChimeraFilter rejects or tags pairs whose adapters do not match the
// expected degenerate adapter pattern. A zero pattern disables it.
type ChimeraFilter struct {
	pattern string
	max     int
	discard bool
	mask    adapter.Mask
}

// NewChimeraFilter creates a ChimeraFilter from cfg.
func NewChimeraFilter(cfg *Config) *ChimeraFilter {
	c := &ChimeraFilter{
		pattern: cfg.AdapterPattern,
		max:     cfg.AdapterMaxMismatch,
		discard: cfg.DiscardChimeric,
		mask:    cfg.StrandMask,
	}
	return c
}

// Active reports whether an adapter pattern is configured.
func (c *ChimeraFilter) Active() bool { return c.pattern != "" }

// Distance returns the IUPAC distance between f and the expected pattern
// over the positions selected by strand_position. Unselected positions are
// random molecular barcode bases and never count.
func (c *ChimeraFilter) Distance(f adapter.Fingerprint) int {
	return adapter.IUPACDistance(f, c.pattern, c.mask)
}

func (c *ChimeraFilter) check(f adapter.Fingerprint) chimeraVerdict {
	if !c.Active() || c.Distance(f) <= c.max {
		return notChimeric
	}
	if c.discard {
		return chimericDiscarded
	}
	return chimericTagged
}
