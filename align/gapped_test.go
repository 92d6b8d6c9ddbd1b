// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

func defaultHeuristicParams() HeuristicParameters {
	return HeuristicParameters{
		KmerLenForAlignment: 4,
		PaddingLength:        0,
		SeedAffixTrimLength:  0,
		Backend:              PathAligner,
		Linear:               LinearAlignerParams{MatchScore: 2, MismatchScore: -4, GapScore: -4},
		Affine:               AffineParams{MatchScore: 2, MismatchScore: -4, GapOpenScore: -4, GapExtendScore: -2},
		NPolicy:              NMatchesBoth,
		Boundary:             BoundaryGlobal,
		MaxRepeatsPerNode:    4,
		MaxCandidates:        16,
	}
}

func TestGappedAlignerExactSpanningMatch(t *testing.T) {
	g, err := graph.MakeSTRGraph("TTAAGGCC", "CAG", "GTCATGCA")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 4)
	require.NoError(t, err)

	a := NewGappedAligner(g, idx, defaultHeuristicParams())
	query := "GGCCCAGGTCA"
	results := a.Align(query)
	require.NotEmpty(t, results)

	best := results[0]
	s := best.Summary()
	assert.Equal(t, len(query), s.Matched)
	assert.Equal(t, 0, s.Mismatched)
	assert.Equal(t, 0, s.Inserted)
	assert.Equal(t, 0, s.Deleted)
	assert.Equal(t, len(query), best.QueryLength())
}

func TestGappedAlignerScenarioSTRGaplessAlignment(t *testing.T) {
	// spec.md §8 scenario 2. The unique 3-mer seed "CCG" (query[2:5])
	// sits entirely inside the repeat node; extending it backward by 2
	// bases (into the left flank's last two bases) and forward by 5
	// bases (through a second repeat-node visit and into the right
	// flank's first two bases) reproduces the query exactly, with zero
	// mismatches or gaps.
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 3)
	require.NoError(t, err)

	params := defaultHeuristicParams()
	params.KmerLenForAlignment = 3
	a := NewGappedAligner(g, idx, params)

	query := "CCCCGCCGAT"
	results := a.Align(query)
	require.Len(t, results, 1)
	assert.Equal(t, "0[2M]1[3M]1[3M]2[2M]", results[0].GenerateCigar())
}

func TestGappedAlignerNoSeedIsEmptyNotError(t *testing.T) {
	g, err := graph.MakeSTRGraph("TTAAGGCC", "CAG", "GTCATGCA")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 4)
	require.NoError(t, err)

	a := NewGappedAligner(g, idx, defaultHeuristicParams())
	results := a.Align("NNNNNNNNNNNN")
	assert.Empty(t, results)
}

func TestGappedAlignerToleratesMismatch(t *testing.T) {
	g, err := graph.MakeSTRGraph("TTAAGGCC", "CAG", "GTCATGCA")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 4)
	require.NoError(t, err)

	params := defaultHeuristicParams()
	params.PaddingLength = 2
	a := NewGappedAligner(g, idx, params)

	query := "GGCCCAGGTCA"
	mutated := "GGCCCTGGTCA" // single mismatch inside the repeat unit
	results := a.Align(mutated)
	require.NotEmpty(t, results)
	best := results[0]
	s := best.Summary()
	assert.Equal(t, len(query)-1, s.Matched)
	assert.Equal(t, 1, s.Mismatched)
}

func TestGappedAlignerDagBackendProducesGraphAlignment(t *testing.T) {
	g, err := graph.MakeSTRGraph("TTAAGGCC", "CAG", "GTCATGCA")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 4)
	require.NoError(t, err)

	params := defaultHeuristicParams()
	params.Backend = DagAligner
	a := NewGappedAligner(g, idx, params)

	// Same query as TestGappedAlignerExactSpanningMatch: an exact spanning
	// match anchored from the graph's root (LF), run this time through the
	// DagAligner backend instead of the seed-and-extend PathAligner.
	query := "GGCCCAGGTCA"
	results := a.Align(query)
	require.Len(t, results, 1)

	best := results[0]
	s := best.Summary()
	assert.Equal(t, 11, s.Matched)
	assert.Equal(t, 0, s.Mismatched)
	assert.Equal(t, 0, s.Inserted)
	// LF's first 4 bases ("TTAA") are upstream of the query and must be
	// consumed as leading deletions: a global-boundary alignment has no
	// free ride onto the repeat node.
	assert.Equal(t, 4, s.Deleted)
	assert.Equal(t, len(query), best.QueryLength())

	path := best.Path()
	assert.Equal(t, []graph.NodeID{0, 1, 2}, path.NodeIDs())
	assert.Equal(t, 0, path.StartOffset())
	assert.Equal(t, 4, path.EndOffset())
}

func TestGappedAlignerAlignWholeUsesDAGAligner(t *testing.T) {
	g := graph.New()
	_, err := g.AddNode("flank", "ACGTACGT")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 4)
	require.NoError(t, err)

	a := NewGappedAligner(g, idx, defaultHeuristicParams())
	res, err := a.AlignWhole(0, "ACGTACGT")
	require.NoError(t, err)
	assert.Equal(t, 16, res.BestScore)
}
