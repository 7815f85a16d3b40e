package collapse

import (
	"context"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/collapse/adapter"
)

// Unset marks an integer option that was not given.
const Unset = -1

// Opts for collapse.
type Opts struct {
	// Commandline options.
	BamFile          string
	ReferenceFile    string
	OutputR1         string
	OutputR2         string
	OriginalOutputR1 string
	OriginalOutputR2 string
	FamilyHistogram  string
	MetricsFile      string
	AdapterInRead    bool

	StrandPosition      string
	DuplexPosition      string
	AdapterMaxMismatch  int
	DuplexMaxMismatch   int
	SequenceMaxMismatch int
	AdapterSequence     string
	DiscardChimeric     bool
}

// DefaultOpts sets the default values to Opts. The mismatch thresholds and
// masks have no defaults and must be given.
var DefaultOpts = Opts{
	AdapterMaxMismatch:  Unset,
	DuplexMaxMismatch:   Unset,
	SequenceMaxMismatch: 20,
}

// Config is the validated, immutable form of the collapsing options. One
// Config is built per run and handed to every component.
type Config struct {
	AdapterMaxMismatch  int
	DuplexMaxMismatch   int
	SequenceMaxMismatch int
	StrandMask          adapter.Mask
	DuplexMask          adapter.Mask

	// AdapterPattern is the expected IUPAC adapter repeated for both
	// mates, or "" when chimera detection is off.
	AdapterPattern  string
	DiscardChimeric bool
}

// NewConfig validates the collapsing options in opts and returns the
// resulting Config. All failures are *ConfigurationError.
func NewConfig(opts *Opts) (*Config, error) {
	if opts.StrandPosition == "" {
		return nil, configErrorf("strand_position", "must be set")
	}
	if opts.DuplexPosition == "" {
		return nil, configErrorf("duplex_position", "must be set")
	}
	if opts.AdapterMaxMismatch < 0 {
		return nil, configErrorf("adapter_max_mismatch", "must be set to a non-negative value")
	}
	if opts.DuplexMaxMismatch < 0 {
		return nil, configErrorf("duplex_max_mismatch", "must be set to a non-negative value")
	}
	if opts.SequenceMaxMismatch < 0 {
		return nil, configErrorf("sequence_max_mismatch", "must be non-negative")
	}
	strandMask, err := adapter.ParseMask(opts.StrandPosition)
	if err != nil {
		return nil, configErrorf("strand_position", "%v", err)
	}
	duplexMask, err := adapter.ParseMask(opts.DuplexPosition)
	if err != nil {
		return nil, configErrorf("duplex_position", "%v", err)
	}
	if strandMask.Len() != duplexMask.Len() {
		return nil, configErrorf("duplex_position", "length %d differs from strand_position length %d",
			duplexMask.Len(), strandMask.Len())
	}
	if opts.DiscardChimeric && opts.AdapterSequence == "" {
		return nil, configErrorf("discard_chimeric", "requires adapter_sequence")
	}
	cfg := &Config{
		AdapterMaxMismatch:  opts.AdapterMaxMismatch,
		DuplexMaxMismatch:   opts.DuplexMaxMismatch,
		SequenceMaxMismatch: opts.SequenceMaxMismatch,
		StrandMask:          strandMask,
		DuplexMask:          duplexMask,
		DiscardChimeric:     opts.DiscardChimeric,
	}
	if opts.AdapterSequence != "" {
		p := strings.ToUpper(opts.AdapterSequence)
		if err := adapter.ValidatePattern(p); err != nil {
			return nil, configErrorf("adapter_sequence", "%v", err)
		}
		if len(p) != strandMask.Len() {
			return nil, configErrorf("adapter_sequence", "length %d differs from strand_position length %d",
				len(p), strandMask.Len())
		}
		cfg.AdapterPattern = p + p
	}
	return cfg, nil
}

// Validate checks opts in full, including the output targets, and returns
// the resulting Config. It creates nothing.
func Validate(ctx context.Context, opts *Opts) (*Config, error) {
	if err := validateFiles(ctx, opts); err != nil {
		return nil, err
	}
	return NewConfig(opts)
}

func validateFiles(ctx context.Context, opts *Opts) error {
	if opts.BamFile == "" {
		return configErrorf("input", "you must specify a bam file with --bam")
	}
	if opts.OutputR1 == "" || opts.OutputR2 == "" {
		return configErrorf("output", "both --output-r1 and --output-r2 must be set")
	}
	if (opts.OriginalOutputR1 == "") != (opts.OriginalOutputR2 == "") {
		return configErrorf("original_output", "both original outputs must be set, or neither")
	}
	outputs := []string{opts.OutputR1, opts.OutputR2, opts.OriginalOutputR1, opts.OriginalOutputR2,
		opts.FamilyHistogram, opts.MetricsFile}
	seen := map[string]bool{}
	for _, path := range outputs {
		if path == "" {
			continue
		}
		if seen[path] {
			return configErrorf("output", "%s is given more than once", path)
		}
		seen[path] = true
		if _, err := file.Stat(ctx, path); err == nil {
			return configErrorf("output", "output file %s already exists", path)
		}
	}
	return nil
}
