package collapse

import (
	"context"
	"io"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// ClassSizes yields the molecule class sizes of one family, one at a time.
type ClassSizes struct {
	classes []*MoleculeClass
	cur     int
}

func newClassSizes(classes []*MoleculeClass) *ClassSizes {
	return &ClassSizes{classes: classes, cur: -1}
}

// Scan advances to the next class. It returns false when all classes have
// been seen.
func (s *ClassSizes) Scan() bool {
	if s.cur+1 >= len(s.classes) {
		return false
	}
	s.cur++
	return true
}

// Size returns the size of the current class.
//
// REQUIRES: the last call to Scan returned true.
func (s *ClassSizes) Size() int { return s.classes[s.cur].Size() }

// FamilySizeReporter receives the class sizes of every finalized family. It
// sees only counts, and the sizes of a family are valid only during the
// call.
type FamilySizeReporter interface {
	ReportFamily(key FamilyKey, sizes *ClassSizes) error
}

type sizeBin struct {
	size      int
	abundance int64
}

func (b *sizeBin) Compare(c llrb.Comparable) int {
	return b.size - c.(*sizeBin).size
}

// Histogram is a FamilySizeReporter that counts molecule classes by size.
type Histogram struct {
	bins llrb.Tree
}

// NewHistogram creates an empty Histogram.
func NewHistogram() *Histogram { return &Histogram{} }

// ReportFamily implements FamilySizeReporter.
func (h *Histogram) ReportFamily(key FamilyKey, sizes *ClassSizes) error {
	for sizes.Scan() {
		h.Add(sizes.Size())
	}
	return nil
}

// Add counts one molecule class of the given size.
func (h *Histogram) Add(size int) {
	if b, ok := h.bins.Get(&sizeBin{size: size}).(*sizeBin); ok {
		b.abundance++
		return
	}
	h.bins.Insert(&sizeBin{size: size, abundance: 1})
}

// Abundance returns the number of classes of the given size.
func (h *Histogram) Abundance(size int) int64 {
	if b, ok := h.bins.Get(&sizeBin{size: size}).(*sizeBin); ok {
		return b.abundance
	}
	return 0
}

// Do calls fn for every size with a nonzero abundance, in increasing size
// order.
func (h *Histogram) Do(fn func(size int, abundance int64)) {
	h.bins.Do(func(c llrb.Comparable) bool {
		b := c.(*sizeBin)
		fn(b.size, b.abundance)
		return false
	})
}

// Write writes h as a two-column TSV with a header line.
func (h *Histogram) Write(w io.Writer) error {
	out := tsv.NewWriter(w)
	out.WriteString("class_size")
	out.WriteString("abundance")
	if err := out.EndLine(); err != nil {
		return err
	}
	var err error
	h.Do(func(size int, abundance int64) {
		out.WriteInt64(int64(size))
		out.WriteInt64(abundance)
		if e := out.EndLine(); e != nil && err == nil {
			err = e
		}
	})
	if err != nil {
		return err
	}
	return out.Flush()
}

func writeHistogram(ctx context.Context, path string, h *Histogram) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "couldn't create family histogram file:", path)
	}
	defer func() {
		if e := f.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", path)
		}
	}()
	if err = h.Write(f.Writer(ctx)); err != nil {
		return errors.E(err, "error writing to family histogram file:", path)
	}
	return nil
}
