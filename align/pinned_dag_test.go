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

func TestPinnedDAGAlignerExactMatchSingleNode(t *testing.T) {
	g := graph.New()
	_, err := g.AddNode("flank", "ACGTACGT")
	require.NoError(t, err)

	a := NewPinnedDAGAligner(AffineParams{MatchScore: 1, MismatchScore: -1, GapOpenScore: -2, GapExtendScore: -1}, NMatchesBoth, BoundaryGlobal, 4)
	res, err := a.AlignFromNode(g, 0, "ACGTACGT")
	require.NoError(t, err)
	assert.Equal(t, 8, res.BestScore)
	require.NotEmpty(t, res.Cigars)
	assert.Equal(t, "0[8M]", res.Cigars[0])
}

func TestPinnedDAGAlignerScenarioGappedDAGAlignment(t *testing.T) {
	// spec.md §8 scenario 3. Under BoundaryLocal the best alignment
	// starts three bases into the left flank (its first three bases,
	// "ATA", are never visited at all, not even as a deletion), matches
	// "TT" there, deletes the flank's last base, matches the repeat
	// node whole once, partially matches-then-deletes a second repeat
	// visit, and finishes with three matches into the right flank.
	g, err := graph.MakeSTRGraph("ATATTA", "CG", "TATTT")
	require.NoError(t, err)

	a := NewPinnedDAGAligner(AffineParams{MatchScore: 5, MismatchScore: -4, GapOpenScore: -8, GapExtendScore: 0}, NMatchesBoth, BoundaryLocal, 4)
	res, err := a.AlignFromNode(g, 0, "TTCGCTAT")
	require.NoError(t, err)
	require.NotEmpty(t, res.Cigars)
	assert.Contains(t, res.Cigars, "0[2M1D]1[2M]1[1M1D]2[3M]")
}

func TestPinnedDAGAlignerScenarioAffineCaseInsensitive(t *testing.T) {
	// spec.md §8 scenario 5: a soft-masked (mixed-case) query against a
	// single flat target, scored with an expensive affine gap extend
	// (gapOpen=0, gapExtend=-8) that makes gaps costly relative to
	// mismatches. Bases compare case-insensitively (grounded on the
	// original aligner's PenaltyMatrix translation table, which maps
	// both cases of each base to the same oligo code), so the query's
	// lowercase runs score identically to their uppercase target bases.
	// The best alignment deletes one target base (position 16, a 'T'
	// with no matching query base nearby) rather than paying for two
	// separate mismatches, for a best score of 37.
	g := graph.New()
	_, err := g.AddNode("flank", "TGCAGTCCCGCCCCGTCCC")
	require.NoError(t, err)

	a := NewPinnedDAGAligner(AffineParams{MatchScore: 5, MismatchScore: -4, GapOpenScore: 0, GapExtendScore: -8}, NMatchesBoth, BoundaryGlobal, 4)
	res, err := a.AlignFromNode(g, 0, "tgCccgcCCcCCCCcccC")
	require.NoError(t, err)
	assert.Equal(t, 37, res.BestScore)
	require.NotEmpty(t, res.Cigars)
	// spec.md's literal CIGAR "0[3=3X3=1X4=1X1D3=]" translated into this
	// codebase's CIGAR dialect, which renders Match as "M" rather than "=".
	assert.Contains(t, res.Cigars, "0[3M3X3M1X4M1X1D3M]")
}

func TestPinnedDAGAlignerRepeatUnroll(t *testing.T) {
	// spec.md §8 scenario 6: a single-base left flank deleted (cost
	// open+extend = -2), then an exact match across two repeat-node
	// occurrences and the right flank's first two bases (8 matches),
	// for a best score of 8 - 2 = 6.
	g, err := graph.MakeSTRGraph("G", "TCC", "AAAAA")
	require.NoError(t, err)

	a := NewPinnedDAGAligner(AffineParams{MatchScore: 1, MismatchScore: -1, GapOpenScore: 0, GapExtendScore: -2}, NMatchesBoth, BoundaryGlobal, 4)
	res, err := a.AlignFromNode(g, 0, "TCCTCCAA")
	require.NoError(t, err)
	assert.Equal(t, 6, res.BestScore)
	require.NotEmpty(t, res.Cigars)

	// The optimal alignment walks the repeat node (id 1) twice before
	// entering the right flank (id 2), never returning to it afterward.
	occurrences := map[int]bool{}
	sawRightFlank := false
	for _, step := range res.Trace {
		if step.NodeID == 2 {
			sawRightFlank = true
		}
		if step.NodeID == 1 {
			require.False(t, sawRightFlank, "repeat node revisited after right flank")
			occurrences[step.Occurrence] = true
		}
	}
	assert.Len(t, occurrences, 2)
}
