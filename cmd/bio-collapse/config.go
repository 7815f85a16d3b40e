package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/collapse/collapse"
	"gopkg.in/ini.v1"
)

// configSection is the section of a configuration file that holds options.
const configSection = "config"

// configAliases maps alternative configuration keys to flag names.
var configAliases = map[string]string{
	"strand_position_mask":       "strand-position",
	"duplex_position_mask":       "duplex-position",
	"discard_chimeric_sequences": "discard-chimeric",
}

// collapseFlags holds the command line flags. Every flag can also be given
// in the [config] section of the file named by -config, with dashes written
// as underscores. Flags given on the command line take precedence.
type collapseFlags struct {
	fs *flag.FlagSet

	config           *string
	bamFile          *string
	referenceFile    *string
	outputR1         *string
	outputR2         *string
	originalOutputR1 *string
	originalOutputR2 *string
	familyHistogram  *string
	metricsFile      *string
	adapterInRead    *bool

	strandPosition      *string
	duplexPosition      *string
	adapterMaxMismatch  *int
	strandMaxMismatch   *int
	duplexMaxMismatch   *int
	sequenceMaxMismatch *int
	adapterSequence     *string
	discardChimeric     *bool
}

func newCollapseFlags(fs *flag.FlagSet) *collapseFlags {
	d := collapse.DefaultOpts
	return &collapseFlags{
		fs:               fs,
		config:           fs.String("config", "", "Configuration file with a [config] section of option = value lines"),
		bamFile:          fs.String("bam", "", "Input coordinate-sorted BAM filename"),
		referenceFile:    fs.String("reference", "", "Reference FASTA, used to count mismatches of records without an NM tag"),
		outputR1:         fs.String("output-r1", "", "Consensus R1 FASTQ output; a .gz suffix compresses"),
		outputR2:         fs.String("output-r2", "", "Consensus R2 FASTQ output; a .gz suffix compresses"),
		originalOutputR1: fs.String("original-output-r1", "", "Annotated original R1 FASTQ output"),
		originalOutputR2: fs.String("original-output-r2", "", "Annotated original R2 FASTQ output"),
		familyHistogram:  fs.String("family-histogram", "", "Molecule class size histogram TSV output"),
		metricsFile:      fs.String("metrics", "", "Output metrics file"),
		adapterInRead:    fs.Bool("adapter-in-read", false, "adapters are the first bases of each read instead of the end of the read name"),

		strandPosition:      fs.String("strand-position", d.StrandPosition, "bit-string selecting the adapter positions compared within a strand, e.g. 1110111"),
		duplexPosition:      fs.String("duplex-position", d.DuplexPosition, "bit-string selecting the adapter positions compared across strands"),
		adapterMaxMismatch:  fs.Int("adapter-max-mismatch", d.AdapterMaxMismatch, "maximum adapter mismatches within a molecule class, and for the chimera check"),
		strandMaxMismatch:   fs.Int("strand-max-mismatch", collapse.Unset, "alias of -adapter-max-mismatch"),
		duplexMaxMismatch:   fs.Int("duplex-max-mismatch", d.DuplexMaxMismatch, "maximum adapter mismatches between duplex partners"),
		sequenceMaxMismatch: fs.Int("sequence-max-mismatch", d.SequenceMaxMismatch, "skip pairs with more alignment mismatches than this on either mate"),
		adapterSequence:     fs.String("adapter-sequence", d.AdapterSequence, "expected adapter as IUPAC codes; enables the chimera check"),
		discardChimeric:     fs.Bool("discard-chimeric", d.DiscardChimeric, "discard chimeric pairs instead of tagging them"),
	}
}

// opts merges the configuration file, if any, under the command line flags
// and returns the resulting options.
func (f *collapseFlags) opts(ctx context.Context) (collapse.Opts, error) {
	given := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { given[fl.Name] = true })
	if *f.config != "" {
		if err := f.loadConfig(ctx, *f.config, given); err != nil {
			return collapse.Opts{}, err
		}
	}
	opts := collapse.Opts{
		BamFile:             *f.bamFile,
		ReferenceFile:       *f.referenceFile,
		OutputR1:            *f.outputR1,
		OutputR2:            *f.outputR2,
		OriginalOutputR1:    *f.originalOutputR1,
		OriginalOutputR2:    *f.originalOutputR2,
		FamilyHistogram:     *f.familyHistogram,
		MetricsFile:         *f.metricsFile,
		AdapterInRead:       *f.adapterInRead,
		StrandPosition:      *f.strandPosition,
		DuplexPosition:      *f.duplexPosition,
		AdapterMaxMismatch:  *f.adapterMaxMismatch,
		DuplexMaxMismatch:   *f.duplexMaxMismatch,
		SequenceMaxMismatch: *f.sequenceMaxMismatch,
		AdapterSequence:     *f.adapterSequence,
		DiscardChimeric:     *f.discardChimeric,
	}
	if *f.strandMaxMismatch != collapse.Unset {
		if *f.adapterMaxMismatch != collapse.Unset {
			return collapse.Opts{}, &collapse.ConfigurationError{
				Option: "strand_max_mismatch",
				Msg:    "cannot be combined with adapter_max_mismatch",
			}
		}
		opts.AdapterMaxMismatch = *f.strandMaxMismatch
	}
	return opts, nil
}

// loadConfig sets every flag named in the config file that was not given on
// the command line.
func (f *collapseFlags) loadConfig(ctx context.Context, path string, given map[string]bool) error {
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	data, err := ioutil.ReadAll(in.Reader(ctx))
	if e := in.Close(ctx); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return err
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return &collapse.ConfigurationError{Option: "config", Msg: fmt.Sprintf("%s: %v", path, err)}
	}
	sec, err := cfg.GetSection(configSection)
	if err != nil {
		return &collapse.ConfigurationError{Option: "config", Msg: fmt.Sprintf("%s has no [%s] section", path, configSection)}
	}
	for _, key := range sec.Keys() {
		name, ok := configAliases[key.Name()]
		if !ok {
			name = strings.Replace(key.Name(), "_", "-", -1)
		}
		if name == "config" || f.fs.Lookup(name) == nil {
			return &collapse.ConfigurationError{Option: key.Name(), Msg: fmt.Sprintf("unknown option in %s", path)}
		}
		if given[name] {
			continue
		}
		if err := f.fs.Set(name, key.String()); err != nil {
			return &collapse.ConfigurationError{Option: key.Name(), Msg: err.Error()}
		}
	}
	return nil
}
