package main

/*
  bio-collapse collapses duplicate read pairs of a duplex sequencing
  library into consensus read pairs. For more information, see
  github.com/grailbio/collapse/collapse/doc.go
*/

import (
	"context"
	"flag"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/collapse/alignment"
	"github.com/grailbio/collapse/collapse"
	"github.com/grailbio/collapse/encoding/fasta"
)

var flags = newCollapseFlags(flag.CommandLine)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}

	ctx := vcontext.Background()
	opts, err := flags.opts(ctx)
	if err != nil {
		log.Fatalf(err.Error())
	}
	metrics, err := run(ctx, &opts)
	if err != nil {
		log.Fatalf(err.Error())
	}
	log.Printf("Total Reads Collapsed: %d", metrics.ReadsCollapsed)
	log.Debug.Printf("exiting")
}

// run checks opts, opens the inputs, and collapses the BAM file into the
// outputs named in opts.
func run(ctx context.Context, opts *collapse.Opts) (*collapse.Metrics, error) {
	cfg, err := collapse.Validate(ctx, opts)
	if err != nil {
		return nil, err
	}
	srcOpts := alignment.Opts{
		SequenceMaxMismatch: cfg.SequenceMaxMismatch,
		AdapterInRead:       opts.AdapterInRead,
		AdapterLen:          cfg.StrandMask.Len(),
	}
	if opts.ReferenceFile != "" {
		ref, err := fasta.Open(ctx, opts.ReferenceFile)
		if err != nil {
			return nil, err
		}
		defer ref.Close(ctx) // nolint: errcheck
		srcOpts.Reference = ref
	}
	src, err := alignment.Open(ctx, opts.BamFile, srcOpts)
	if err != nil {
		return nil, err
	}
	return collapse.SetupAndCollapse(ctx, src, opts)
}
