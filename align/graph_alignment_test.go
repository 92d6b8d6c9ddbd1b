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

func buildStrAlignment(t *testing.T) (*graph.Graph, *GraphAlignment) {
	t.Helper()
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)

	p, err := graph.NewPath(g, 4, []graph.NodeID{0, 1, 1, 2}, 2)
	require.NoError(t, err)

	mk := func(ref, n int) *LinearAlignment {
		la, err := NewLinearAlignment(ref, []Operation{{Match, n}})
		require.NoError(t, err)
		return la
	}
	ga, err := NewGraphAlignment(p, []*LinearAlignment{mk(4, 2), mk(0, 3), mk(0, 3), mk(0, 2)})
	require.NoError(t, err)
	return g, ga
}

func TestGraphAlignmentCigar(t *testing.T) {
	_, ga := buildStrAlignment(t)
	assert.Equal(t, "0[2M]1[3M]1[3M]2[2M]", ga.GenerateCigar())
	assert.Equal(t, 10, ga.QueryLength())
	assert.Equal(t, 10, ga.ReferenceLength())
	assert.Equal(t, 10, ga.NumMatches())
}

func TestGraphAlignmentInconsistent(t *testing.T) {
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	p, err := graph.NewPath(g, 4, []graph.NodeID{0}, 6)
	require.NoError(t, err)
	la, err := NewLinearAlignment(0, []Operation{{Match, 1}})
	require.NoError(t, err)
	_, err = NewGraphAlignment(p, []*LinearAlignment{la})
	assert.ErrorIs(t, err, ErrAlignmentInconsistent)
}

func TestGraphAlignmentShrinkEndPartial(t *testing.T) {
	_, ga := buildStrAlignment(t)
	shrunk, err := ga.ShrinkEnd(1)
	require.NoError(t, err)
	assert.Equal(t, "0[2M]1[3M]1[3M]2[1M1S]", shrunk.GenerateCigar())
	assert.Equal(t, 9, shrunk.ReferenceLength())
	assert.Equal(t, 10, shrunk.QueryLength())
}

func TestGraphAlignmentShrinkEndWholeNode(t *testing.T) {
	_, ga := buildStrAlignment(t)
	shrunk, err := ga.ShrinkEnd(2)
	require.NoError(t, err)
	assert.Equal(t, "0[2M]1[3M]1[3M]", shrunk.GenerateCigar())
	assert.Equal(t, 8, shrunk.ReferenceLength())
}

func TestGraphAlignmentShrinkStartPartial(t *testing.T) {
	_, ga := buildStrAlignment(t)
	shrunk, err := ga.ShrinkStart(1)
	require.NoError(t, err)
	assert.Equal(t, "0[1S1M]1[3M]1[3M]2[2M]", shrunk.GenerateCigar())
	assert.Equal(t, 9, shrunk.ReferenceLength())
}
