package collapse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func familyNames(f *Family) []string {
	var names []string
	for _, m := range f.Members {
		names = append(names, m.Pair.Name)
	}
	return names
}

func TestGrouper(t *testing.T) {
	g := NewGrouper()
	add := func(m *Member) []*Family {
		closed, err := g.Add(m)
		require.NoError(t, err)
		return closed
	}

	assert.Empty(t, add(member(t, "a", 100, Minus, "AC", "GT")))
	assert.Empty(t, add(member(t, "b", 100, Plus, "AC", "GT")))
	assert.Empty(t, add(member(t, "c", 100, Minus, "AC", "GT")))

	closed := add(member(t, "d", 200, Plus, "AC", "GT"))
	require.Len(t, closed, 2)
	assert.Equal(t, Plus, closed[0].Key.Strand)
	assert.Equal(t, []string{"b"}, familyNames(closed[0]))
	assert.Equal(t, Minus, closed[1].Key.Strand)
	assert.Equal(t, []string{"a", "c"}, familyNames(closed[1]))
	assert.Equal(t, 2, closed[1].Size())

	assert.Empty(t, add(member(t, "e", 200, Plus, "AC", "GT")))

	closed = g.Close()
	require.Len(t, closed, 1)
	assert.Equal(t, FamilyKey{RefID: 0, Chrom: "chr1", Start: 200, Strand: Plus}, closed[0].Key)
	assert.Equal(t, []string{"d", "e"}, familyNames(closed[0]))
	assert.Empty(t, g.Close())
}

func TestGrouperChromosomeChange(t *testing.T) {
	g := NewGrouper()
	_, err := g.Add(member(t, "a", 5000, Plus, "AC", "GT"))
	require.NoError(t, err)

	next := NewTestPair("b", 1, 10, Plus, "ACGT", "AC", "GT")
	closed, err := g.Add(&Member{Pair: next, Fingerprint: "ACGT"})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, 5000, closed[0].Key.Start)
}

func TestGrouperStreamOrder(t *testing.T) {
	tests := []struct {
		name  string
		first *ReadPair
		next  *ReadPair
	}{
		{
			"earlier start",
			NewTestPair("a", 0, 2000, Plus, "ACGT", "AC", "GT"),
			NewTestPair("b", 0, 1999, Minus, "ACGT", "AC", "GT"),
		},
		{
			"earlier chromosome",
			NewTestPair("a", 1, 10, Plus, "ACGT", "AC", "GT"),
			NewTestPair("b", 0, 5000, Plus, "ACGT", "AC", "GT"),
		},
	}
	for _, test := range tests {
		g := NewGrouper()
		_, err := g.Add(&Member{Pair: test.first, Fingerprint: "ACGT"})
		require.NoError(t, err, test.name)
		closed, err := g.Add(&Member{Pair: test.next, Fingerprint: "ACGT"})
		assert.Nil(t, closed, test.name)
		require.Error(t, err, test.name)
		assert.True(t, IsStreamOrderError(err), test.name)
		assert.Contains(t, err.Error(), "not coordinate sorted", test.name)

		// The open family is untouched by the rejected pair.
		remaining := g.Close()
		require.Len(t, remaining, 1, test.name)
		assert.Equal(t, []string{"a"}, familyNames(remaining[0]), test.name)
	}
}
