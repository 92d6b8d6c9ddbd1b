// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCigarRoundTrip(t *testing.T) {
	for _, cigar := range []string{"3M", "2S5M1I3M2D4M3S", "4M"} {
		la, err := ParseCigar(10, cigar)
		require.NoError(t, err)
		assert.Equal(t, cigar, la.GenerateCigar())
	}
}

func TestParseCigarInvalid(t *testing.T) {
	for _, cigar := range []string{"", "M3", "3Q", "-3M"} {
		_, err := ParseCigar(0, cigar)
		assert.ErrorIs(t, err, ErrInvalidCigar)
	}
}

func TestSoftclipOnlyAtEnds(t *testing.T) {
	_, err := NewLinearAlignment(0, []Operation{{Match, 3}, {Softclip, 2}, {Match, 1}})
	assert.ErrorIs(t, err, ErrInvalidCigar)
}

func TestReverseLaw(t *testing.T) {
	la, err := ParseCigar(5, "3M1I2M1D4M")
	require.NoError(t, err)
	refLen := la.referenceStart + la.ReferenceLength() + 10

	once, err := la.Reverse(refLen)
	require.NoError(t, err)
	twice, err := once.Reverse(refLen)
	require.NoError(t, err)

	assert.Equal(t, la.referenceStart, twice.referenceStart)
	assert.Equal(t, la.GenerateCigar(), twice.GenerateCigar())
}

func TestSplitLaw(t *testing.T) {
	la, err := ParseCigar(0, "4M2D3M1I2M")
	require.NoError(t, err)

	for p := 0; p <= la.ReferenceLength(); p++ {
		prefix, suffix, err := la.SplitAtReferencePosition(p)
		require.NoErrorf(t, err, "split at %d", p)
		joined, err := prefix.Append(suffix)
		require.NoError(t, err)
		assert.Equalf(t, la.GenerateCigar(), joined.GenerateCigar(), "split at %d", p)
	}
}

func TestApplyConsistency(t *testing.T) {
	la, err := NewLinearAlignment(0, []Operation{{Match, 3}, {Insertion, 2}, {Deletion, 1}, {Match, 2}})
	require.NoError(t, err)
	reference := "AACGGTT"
	query, err := la.Apply(reference, "AACTTGT")
	require.NoError(t, err)
	assert.Equal(t, "AACTTGT", query)
}
