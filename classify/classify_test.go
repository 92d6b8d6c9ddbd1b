// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Illumina/ExpansionHunter-sub003/align"
	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

func mustAlignment(t *testing.T, g *graph.Graph, ids []graph.NodeID, start, end int) *align.GraphAlignment {
	t.Helper()
	p, err := graph.NewPath(g, start, ids, end)
	require.NoError(t, err)

	alignments := make([]*align.LinearAlignment, len(ids))
	for i := range ids {
		n := p.OverlapLengthOnNodeAtIndex(i)
		la, err := align.NewLinearAlignment(0, []align.Operation{{Kind: align.Match, Length: n}})
		require.NoError(t, err)
		alignments[i] = la
	}
	ga, err := align.NewGraphAlignment(p, alignments)
	require.NoError(t, err)
	return ga
}

func TestNewVariantClassifierInvalidBundle(t *testing.T) {
	_, err := NewVariantClassifier(nil)
	assert.ErrorIs(t, err, ErrInvalidBundle)

	_, err = NewVariantClassifier([]graph.NodeID{1, 3})
	assert.ErrorIs(t, err, ErrInvalidBundle)
}

func TestVariantClassifierDecisionTable(t *testing.T) {
	g, err := graph.MakeSTRGraph("TTAAGGCC", "CAG", "GTCATGCA")
	require.NoError(t, err)
	// node 0 = left flank, node 1 = repeat (self-loop), node 2 = right flank.
	c, err := NewVariantClassifier([]graph.NodeID{1})
	require.NoError(t, err)

	spanning := mustAlignment(t, g, []graph.NodeID{0, 1, 2}, 0, 8)
	c.Classify(spanning)
	assert.Equal(t, 1, c.SpanningCounts()[1])

	upstream := mustAlignment(t, g, []graph.NodeID{0, 1}, 0, 3)
	c.Classify(upstream)
	assert.Equal(t, 1, c.UpstreamCounts()[1])

	downstream := mustAlignment(t, g, []graph.NodeID{1, 2}, 0, 8)
	c.Classify(downstream)
	assert.Equal(t, 1, c.DownstreamCounts()[1])

	onlyFlanks := mustAlignment(t, g, []graph.NodeID{0}, 0, 8)
	c.Classify(onlyFlanks)
	assert.Equal(t, 0, c.Bypassing())
}

func TestVariantClassifierInsideIsUncounted(t *testing.T) {
	g, err := graph.MakeSTRGraph("TTAAGGCC", "CAG", "GTCATGCA")
	require.NoError(t, err)
	c, err := NewVariantClassifier([]graph.NodeID{1})
	require.NoError(t, err)

	// Alignment confined entirely to the repeat node: overlaps the
	// bundle but reaches neither flank. Per spec, this "inside" bucket
	// is not counted anywhere.
	inside := mustAlignment(t, g, []graph.NodeID{1}, 0, 3)
	c.Classify(inside)
	assert.Empty(t, c.SpanningCounts())
	assert.Empty(t, c.UpstreamCounts())
	assert.Empty(t, c.DownstreamCounts())
	assert.Equal(t, 0, c.Bypassing())
}

// buildRegexGraph builds the six-node graph spec.md §8 scenario 1
// derives from the regex AC(T|G)CT(CA)?TGTGT: node0 "AC", a (T|G)
// branch at nodes 1/2, node3 "CT", an optional "CA" at node4, and
// node5 "TGTGT".
func buildRegexGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, seq := range []string{"AC", "T", "G", "CT", "CA", "TGTGT"} {
		_, err := g.AddNode(seq, seq)
		require.NoError(t, err)
	}
	for _, e := range [][2]graph.NodeID{{0, 1}, {0, 2}, {1, 3}, {2, 3}, {3, 4}, {3, 5}, {4, 5}} {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestVariantClassifierScenarioDeletionGraph(t *testing.T) {
	g := buildRegexGraph(t)
	c, err := NewVariantClassifier([]graph.NodeID{4})
	require.NoError(t, err)

	upstream := mustAlignment(t, g, []graph.NodeID{0, 1, 3}, 0, 2)
	c.Classify(upstream)

	downstream := mustAlignment(t, g, []graph.NodeID{5}, 0, 4)
	c.Classify(downstream)

	spanning := mustAlignment(t, g, []graph.NodeID{0, 1, 3, 4, 5}, 0, 4)
	c.Classify(spanning)

	bypassing := mustAlignment(t, g, []graph.NodeID{0, 1, 3, 5}, 0, 3)
	c.Classify(bypassing)

	assert.Equal(t, map[graph.NodeID]int{4: 1}, c.UpstreamCounts())
	assert.Equal(t, map[graph.NodeID]int{4: 1}, c.DownstreamCounts())
	assert.Equal(t, map[graph.NodeID]int{4: 1}, c.SpanningCounts())
	assert.Equal(t, 1, c.Bypassing())
}

func TestVariantClassifierBypassing(t *testing.T) {
	g := graph.New()
	_, err := g.AddNode("a", "AAAA")
	require.NoError(t, err)
	_, err = g.AddNode("b", "CCCC")
	require.NoError(t, err)
	_, err = g.AddNode("c", "GGGG")
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(0, 2))

	c, err := NewVariantClassifier([]graph.NodeID{1})
	require.NoError(t, err)

	ga := mustAlignment(t, g, []graph.NodeID{0, 2}, 2, 2)
	c.Classify(ga)
	assert.Equal(t, 1, c.Bypassing())
}
