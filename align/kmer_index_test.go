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

func TestKmerIndexContainsEverySubstring(t *testing.T) {
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 3)
	require.NoError(t, err)

	// Every 3-mer of a concrete walk through the graph must be found,
	// and every stored path for it must have a matching sequence.
	for _, kmer := range []string{"AAA", "AAC", "ACC", "CCG", "CGC", "GCC", "CGA", "GAT", "ATT", "TTT"} {
		require.Truef(t, idx.Contains(kmer), "expected %q to be indexed", kmer)
		for _, p := range idx.Paths(kmer) {
			assert.Equal(t, kmer, p.Seq())
		}
	}
}

func TestKmerIndexRejectsWrongLengthOrAmbiguous(t *testing.T) {
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 3)
	require.NoError(t, err)

	assert.False(t, idx.Contains("AA"))
	assert.False(t, idx.Contains("AAAA"))
	assert.False(t, idx.Contains("NNN"))
}

func TestKmerIndexTooLong(t *testing.T) {
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	_, err = NewKmerIndex(g, 64)
	assert.ErrorIs(t, err, ErrKmerTooLong)
}

func TestKmerIndexUniqueness(t *testing.T) {
	g, err := graph.MakeSTRGraph("AAAACC", "CCG", "ATTT")
	require.NoError(t, err)
	idx, err := NewKmerIndex(g, 3)
	require.NoError(t, err)

	// "ACC" occurs at exactly one (node, offset) position: the end of
	// the left flank.
	assert.Equal(t, 1, len(idx.Paths("ACC")))
	assert.Greater(t, idx.UniqueKmerCountOnNode(0), 0)
}
