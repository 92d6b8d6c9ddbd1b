// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strGraph(t *testing.T) (*Graph, NodeID, NodeID, NodeID) {
	t.Helper()
	g, err := MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	return g, 0, 1, 2
}

func TestPathSeqSingleNode(t *testing.T) {
	g, left, _, _ := strGraph(t)
	p, err := NewPath(g, 2, []NodeID{left}, 4)
	require.NoError(t, err)
	assert.Equal(t, "AA", p.Seq())
	assert.Equal(t, 2, p.Length())
}

func TestPathSeqMultiNode(t *testing.T) {
	g, left, repeat, right := strGraph(t)
	// 0[4,6)CCG CCG A[0,2) == "CC" + "CCG" + "CCG" + "AT"
	p, err := NewPath(g, 4, []NodeID{left, repeat, repeat, right}, 2)
	require.NoError(t, err)
	assert.Equal(t, "CCCCGCCGAT", p.Seq())
}

func TestPathInvalidEdge(t *testing.T) {
	g, left, _, right := strGraph(t)
	_, err := NewPath(g, 0, []NodeID{left, right}, 1)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestPathInvalidOffsets(t *testing.T) {
	g, left, _, _ := strGraph(t)
	_, err := NewPath(g, 10, []NodeID{left}, 2)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = NewPath(g, 4, []NodeID{left}, 2)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestPathExtendEndBy(t *testing.T) {
	g, left, repeat, right := strGraph(t)
	p, err := NewPath(g, 0, []NodeID{left}, 6)
	require.NoError(t, err)

	// left has a single successor (repeat), so extending exactly to its
	// boundary is unambiguous.
	exts, err := p.ExtendEndBy(3)
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, []NodeID{left, repeat}, exts[0].NodeIDs())
	assert.Equal(t, 3, exts[0].EndOffset())

	// From the repeat/repeat boundary, Successors(repeat) = {repeat,
	// right}: the self-loop makes the next 3 bases ambiguous between
	// "loop again" and "enter the right flank", so both are enumerated.
	exts2, err := exts[0].ExtendEndBy(3)
	require.NoError(t, err)
	require.Len(t, exts2, 2)
	var sawLoop, sawFlank bool
	for _, e := range exts2 {
		switch e.NodeIDs()[len(e.NodeIDs())-1] {
		case repeat:
			sawLoop = true
			assert.Equal(t, []NodeID{left, repeat, repeat}, e.NodeIDs())
			assert.Equal(t, 3, e.EndOffset())
		case right:
			sawFlank = true
			assert.Equal(t, []NodeID{left, repeat, right}, e.NodeIDs())
			assert.Equal(t, 3, e.EndOffset())
		}
		assert.Equal(t, 12, e.Length())
	}
	assert.True(t, sawLoop && sawFlank)
}

func TestPathExtendStartBy(t *testing.T) {
	g, left, repeat, right := strGraph(t)
	p, err := NewPath(g, 0, []NodeID{right}, 4)
	require.NoError(t, err)

	// right has a single predecessor (repeat), so extending exactly to
	// its boundary is unambiguous.
	exts, err := p.ExtendStartBy(3)
	require.NoError(t, err)
	require.Len(t, exts, 1)
	assert.Equal(t, []NodeID{repeat, right}, exts[0].NodeIDs())
	assert.Equal(t, 0, exts[0].StartOffset())

	// From the repeat/right boundary, Predecessors(repeat) = {left,
	// repeat}: the self-loop makes the next 3 bases ambiguous, so both
	// continuations are enumerated.
	exts2, err := exts[0].ExtendStartBy(3)
	require.NoError(t, err)
	require.Len(t, exts2, 2)
	var sawLoop, sawFlank bool
	for _, e := range exts2 {
		switch e.NodeIDs()[0] {
		case repeat:
			sawLoop = true
			assert.Equal(t, []NodeID{repeat, repeat, right}, e.NodeIDs())
			assert.Equal(t, 0, e.StartOffset())
		case left:
			sawFlank = true
			assert.Equal(t, []NodeID{left, repeat, right}, e.NodeIDs())
			assert.Equal(t, 3, e.StartOffset())
		}
		assert.Equal(t, 10, e.Length())
	}
	assert.True(t, sawLoop && sawFlank)
}

func TestPathShrinkStartAndEnd(t *testing.T) {
	g, left, repeat, right := strGraph(t)
	p, err := NewPath(g, 4, []NodeID{left, repeat, repeat, right}, 2)
	require.NoError(t, err)

	shrunk, err := p.ShrinkStartBy(2)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{repeat, repeat, right}, shrunk.NodeIDs())
	assert.Equal(t, 0, shrunk.StartOffset())

	shrunkEnd, err := p.ShrinkEndBy(2)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{left, repeat, repeat}, shrunkEnd.NodeIDs())
	assert.Equal(t, 3, shrunkEnd.EndOffset())
}

func TestPathSplitBy(t *testing.T) {
	g, left, repeat, right := strGraph(t)
	p, err := NewPath(g, 4, []NodeID{left, repeat, repeat, right}, 2)
	require.NoError(t, err)

	parts, err := p.SplitBy(p.Seq())
	require.NoError(t, err)
	assert.Equal(t, []string{"CC", "CCG", "CCG", "AT"}, parts)
}

func TestPathLessTotalOrder(t *testing.T) {
	g, left, repeat, _ := strGraph(t)
	p1, err := NewPath(g, 0, []NodeID{left, repeat}, 3)
	require.NoError(t, err)
	p2, err := NewPath(g, 1, []NodeID{left, repeat}, 3)
	require.NoError(t, err)
	assert.True(t, p1.Less(p2))
	assert.False(t, p2.Less(p1))
}
