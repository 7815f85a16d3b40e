package collapse

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/collapse/encoding/fastq"
)

// progressInterval is the number of coordinates between progress messages.
const progressInterval = 100000

// PairIterator yields read pairs in non-decreasing (chromosome, start)
// order.
type PairIterator interface {
	// Scan advances to the next pair. It returns false at the end of
	// input or on error.
	Scan() bool
	// Pair returns the current pair.
	Pair() *ReadPair
	// Err returns the error that stopped Scan, if any.
	Err() error
	Close() error
}

// Collapser runs the collapsing pipeline over a sorted stream of pairs:
// chimera filter, family grouping, adapter clustering, duplex
// reconciliation, consensus building, emission, and family size reporting.
// A coordinate's families are finalized as soon as the stream moves past
// it, so memory is bounded by the largest coordinate, not by the input.
type Collapser struct {
	chimera   *ChimeraFilter
	grouper   *Grouper
	clusters  *ClusterBuilder
	consensus *ConsensusBuilder
	duplex    *DuplexReconciler
	cfg       *Config

	sink      Sink
	originals OriginalSink
	reporter  FamilySizeReporter
	metrics   *Metrics
}

// NewCollapser creates a Collapser. originals and reporter may be nil.
func NewCollapser(cfg *Config, sink Sink, originals OriginalSink, reporter FamilySizeReporter) *Collapser {
	return &Collapser{
		chimera:   NewChimeraFilter(cfg),
		grouper:   NewGrouper(),
		clusters:  NewClusterBuilder(cfg),
		consensus: NewConsensusBuilder(cfg),
		duplex:    NewDuplexReconciler(cfg),
		cfg:       cfg,
		sink:      sink,
		originals: originals,
		reporter:  reporter,
		metrics:   newMetrics(),
	}
}

// Metrics returns the counts accumulated so far.
func (c *Collapser) Metrics() *Metrics { return c.metrics }

// Add admits p. Pairs whose adapters cannot be extracted are dropped with a
// warning, and chimeric pairs are dropped or tagged. Add returns an error
// only for fatal conditions: unsorted input or a failing sink.
func (c *Collapser) Add(p *ReadPair) error {
	c.metrics.PairsExamined++
	f, err := p.Fingerprint(c.cfg.StrandMask)
	if err != nil {
		log.Error.Printf("dropping pair: %v", err)
		c.metrics.ExtractionFailures++
		return nil
	}
	m := &Member{Pair: p, Fingerprint: f}
	switch c.chimera.check(f) {
	case chimericDiscarded:
		log.Debug.Printf("discarding chimeric pair %v", p)
		c.metrics.ChimericDiscarded++
		return nil
	case chimericTagged:
		m.Chimeric = true
		c.metrics.ChimericTagged++
	}
	closed, err := c.grouper.Add(m)
	if err != nil {
		return err
	}
	return c.finalize(closed)
}

// Close finalizes the families still open at the end of input.
func (c *Collapser) Close() error {
	return c.finalize(c.grouper.Close())
}

// Run drains iter through the pipeline and closes it.
func (c *Collapser) Run(iter PairIterator) (err error) {
	defer func() {
		if e := iter.Close(); e != nil && err == nil {
			err = e
		}
	}()
	for iter.Scan() {
		if err = c.Add(iter.Pair()); err != nil {
			return err
		}
	}
	if err = iter.Err(); err != nil {
		return err
	}
	if err = c.Close(); err != nil {
		return err
	}
	log.Printf("positions processed: %d", c.metrics.Positions)
	log.Printf("total reads collapsed: %d", c.metrics.ReadsCollapsed)
	return nil
}

// finalize processes the families of one coordinate.
func (c *Collapser) finalize(families []*Family) error {
	if len(families) == 0 {
		return nil
	}
	var plus, minus *Family
	for _, f := range families {
		c.clusters.Build(f)
		if f.Key.Strand == Plus {
			plus = f
		} else {
			minus = f
		}
	}
	c.metrics.DuplexLinks += len(c.duplex.Reconcile(plus, minus))

	for _, f := range families {
		for _, class := range f.Classes {
			cons := c.consensus.Build(class)
			if err := c.sink.WriteConsensus(cons); err != nil {
				return err
			}
			c.metrics.addConsensus(cons)
			c.metrics.Classes++
			c.metrics.ReadsCollapsed += 2 * (class.Size() - 1)
			if c.originals == nil {
				continue
			}
			for _, m := range class.Members {
				if err := c.originals.WriteOriginal(m, class); err != nil {
					return err
				}
			}
		}
		if c.reporter != nil {
			if err := c.reporter.ReportFamily(f.Key, newClassSizes(f.Classes)); err != nil {
				return err
			}
		}
		c.metrics.Families++
	}
	c.metrics.Positions++
	if c.metrics.Positions%progressInterval == 0 {
		log.Printf("positions processed: %d", c.metrics.Positions)
	}
	return nil
}

// SetupAndCollapse validates opts, creates the outputs named in opts, and
// collapses the pairs from iter into them. It returns *ConfigurationError
// before creating any output if opts are invalid.
func SetupAndCollapse(ctx context.Context, iter PairIterator, opts *Opts) (metrics *Metrics, err error) {
	cfg, err := Validate(ctx, opts)
	if err != nil {
		iter.Close() // nolint: errcheck
		return nil, err
	}

	e := errors.Once{}
	defer func() {
		if err == nil {
			err = e.Err()
		}
	}()
	consensusOut, err := fastq.CreatePair(ctx, opts.OutputR1, opts.OutputR2)
	if err != nil {
		iter.Close() // nolint: errcheck
		return nil, err
	}
	defer func() { e.Set(consensusOut.Close(ctx)) }()
	var originals OriginalSink
	if opts.OriginalOutputR1 != "" {
		originalOut, err := fastq.CreatePair(ctx, opts.OriginalOutputR1, opts.OriginalOutputR2)
		if err != nil {
			iter.Close() // nolint: errcheck
			return nil, err
		}
		defer func() { e.Set(originalOut.Close(ctx)) }()
		originals = NewFastqSink(originalOut)
	}
	var (
		hist     *Histogram
		reporter FamilySizeReporter
	)
	if opts.FamilyHistogram != "" {
		hist = NewHistogram()
		reporter = hist
	}

	log.Printf("starting collapse of %s", opts.BamFile)
	c := NewCollapser(cfg, NewFastqSink(consensusOut), originals, reporter)
	if err := c.Run(iter); err != nil {
		return nil, err
	}
	log.Printf("collapse done: %v", c.Metrics())
	if hist != nil {
		if err := writeHistogram(ctx, opts.FamilyHistogram, hist); err != nil {
			return nil, err
		}
	}
	if opts.MetricsFile != "" {
		if err := writeMetrics(ctx, opts.MetricsFile, c.Metrics()); err != nil {
			return nil, err
		}
	}
	return c.Metrics(), nil
}
