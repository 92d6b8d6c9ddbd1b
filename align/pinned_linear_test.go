// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLinearParams() LinearAlignerParams {
	return LinearAlignerParams{MatchScore: 2, MismatchScore: -4, GapScore: -4}
}

func TestPinnedLinearPrefixAlignExact(t *testing.T) {
	a := NewPinnedLinearAligner(defaultLinearParams(), NMatchesBoth)
	la, err := a.PrefixAlign("ACGT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, "4M", la.GenerateCigar())
	assert.Equal(t, 0, la.ReferenceStart())
}

func TestPinnedLinearPrefixAlignTrailingSoftclip(t *testing.T) {
	a := NewPinnedLinearAligner(defaultLinearParams(), NMatchesBoth)
	la, err := a.PrefixAlign("ACGTTTT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, "4M3S", la.GenerateCigar())
}

func TestPinnedLinearPrefixAlignMismatch(t *testing.T) {
	a := NewPinnedLinearAligner(defaultLinearParams(), NMatchesBoth)
	la, err := a.PrefixAlign("ACXT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, "2M1X1M", la.GenerateCigar())
}

func TestPinnedLinearPrefixAlignNWildcard(t *testing.T) {
	a := NewPinnedLinearAligner(defaultLinearParams(), NMatchesBoth)
	la, err := a.PrefixAlign("ACNT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, "4M", la.GenerateCigar())
	assert.Equal(t, 4, la.NumMatches())
}

func TestPinnedLinearSuffixAlign(t *testing.T) {
	a := NewPinnedLinearAligner(defaultLinearParams(), NMatchesBoth)
	la, err := a.SuffixAlign("TTTTACGT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, "4S4M", la.GenerateCigar())
	assert.Equal(t, 0, la.ReferenceStart())
}

func TestPinnedLinearReusableAcrossCalls(t *testing.T) {
	a := NewPinnedLinearAligner(defaultLinearParams(), NMatchesBoth)
	_, err := a.PrefixAlign("AC", "AC")
	require.NoError(t, err)
	la, err := a.PrefixAlign("ACGTACGT", "ACGTACGT")
	require.NoError(t, err)
	assert.Equal(t, "8M", la.GenerateCigar())
}
