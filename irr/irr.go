// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package irr finds in-repeat read pairs: fragments whose mates never
// touch the reference graph because both are fully embedded inside a
// repeat expansion (spec §4.11).
package irr

import (
	"errors"

	"github.com/Illumina/ExpansionHunter-sub003/align"
)

// ErrInvalidMotif is returned by NewRepeatAnalyzer for an empty motif.
var ErrInvalidMotif = errors.New("irr: empty repeat motif")

// ErrIRRBinding is returned by NewLocusIRRFinder when the supplied
// analyzer set does not contain exactly one analyzer for the target
// motif.
var ErrIRRBinding = errors.New("irr: locus must bind exactly one matching repeat analyzer")

// defaultMinCoveredFraction is the fraction of a sequence that must be
// covered by tiled copies of a motif (or its rotations/reverse
// complement) for the sequence to be called in-repeat. Chosen so a
// near-pure STR expansion passes while a random sequence of the same
// length does not.
const defaultMinCoveredFraction = 0.90

// RepeatAnalyzer classifies reads as in-repeat for one target motif and
// tallies in-repeat read pairs attributed to it.
type RepeatAnalyzer struct {
	motif               string
	minCoveredFraction  float64
	rotations           []string
	inRepeatPairCount   int
}

// NewRepeatAnalyzer builds a RepeatAnalyzer for motif, using
// defaultMinCoveredFraction as the tiling-coverage threshold.
func NewRepeatAnalyzer(motif string) (*RepeatAnalyzer, error) {
	return NewRepeatAnalyzerWithFraction(motif, defaultMinCoveredFraction)
}

// NewRepeatAnalyzerWithFraction builds a RepeatAnalyzer with an
// explicit minimum covered fraction.
func NewRepeatAnalyzerWithFraction(motif string, minCoveredFraction float64) (*RepeatAnalyzer, error) {
	if motif == "" {
		return nil, ErrInvalidMotif
	}
	return &RepeatAnalyzer{
		motif:              motif,
		minCoveredFraction: minCoveredFraction,
		rotations:          candidatePatterns(motif),
	}, nil
}

// Motif returns the analyzer's target repeat motif.
func (a *RepeatAnalyzer) Motif() string { return a.motif }

// InRepeatPairCount returns the number of mate pairs counted as
// in-repeat for this analyzer so far.
func (a *RepeatAnalyzer) InRepeatPairCount() int { return a.inRepeatPairCount }

// IsInRepeat reports whether s is covered, to at least the configured
// fraction, by a tiled run of some cyclic rotation of the motif or its
// reverse complement.
func (a *RepeatAnalyzer) IsInRepeat(s string) bool {
	if len(s) == 0 {
		return false
	}
	best := 0
	for _, pattern := range a.rotations {
		if n := tiledCoverage(s, pattern); n > best {
			best = n
		}
	}
	return float64(best)/float64(len(s)) >= a.minCoveredFraction
}

// CheckPair classifies the pair (r1, r2) as in-repeat only if both
// mates individually pass IsInRepeat, incrementing the analyzer's pair
// count on success.
func (a *RepeatAnalyzer) CheckPair(r1, r2 string) bool {
	if a.IsInRepeat(r1) && a.IsInRepeat(r2) {
		a.inRepeatPairCount++
		return true
	}
	return false
}

// candidatePatterns returns every cyclic rotation of motif together
// with every cyclic rotation of its reverse complement.
func candidatePatterns(motif string) []string {
	out := make([]string, 0, 2*len(motif))
	out = append(out, rotations(motif)...)
	out = append(out, rotations(align.ReverseComplementSeq(motif))...)
	return out
}

func rotations(motif string) []string {
	n := len(motif)
	out := make([]string, n)
	doubled := motif + motif
	for i := 0; i < n; i++ {
		out[i] = doubled[i : i+n]
	}
	return out
}

// tiledCoverage returns the number of bases of s that a greedy,
// left-to-right tiling of pattern (restarting at every position where
// the tiling breaks) manages to cover.
func tiledCoverage(s, pattern string) int {
	n := len(pattern)
	if n == 0 {
		return 0
	}
	covered := 0
	i := 0
	for i < len(s) {
		if i+n <= len(s) && s[i:i+n] == pattern {
			covered += n
			i += n
			continue
		}
		// Allow a single mismatched base to keep tiling (tolerant of
		// sequencing error inside a long expansion) but don't count it.
		if i+n <= len(s) && hammingWithinOne(s[i:i+n], pattern) {
			covered += n - 1
			i += n
			continue
		}
		i++
	}
	return covered
}

func hammingWithinOne(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatches := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			mismatches++
			if mismatches > 1 {
				return false
			}
		}
	}
	return true
}

// LocusIRRFinder binds exactly one RepeatAnalyzer, selected by motif,
// for use by the locus driver's off-target in-repeat-pair path.
type LocusIRRFinder struct {
	analyzer *RepeatAnalyzer
}

// NewLocusIRRFinder selects, from analyzers, the single one whose motif
// equals targetMotif. It fails with ErrIRRBinding if zero or more than
// one match.
func NewLocusIRRFinder(targetMotif string, analyzers []*RepeatAnalyzer) (*LocusIRRFinder, error) {
	var bound *RepeatAnalyzer
	for _, a := range analyzers {
		if a.Motif() == targetMotif {
			if bound != nil {
				return nil, ErrIRRBinding
			}
			bound = a
		}
	}
	if bound == nil {
		return nil, ErrIRRBinding
	}
	return &LocusIRRFinder{analyzer: bound}, nil
}

// Analyzer returns the bound RepeatAnalyzer.
func (f *LocusIRRFinder) Analyzer() *RepeatAnalyzer { return f.analyzer }

// TryPair attempts to classify (r1, r2) as an in-repeat pair against
// the bound analyzer, incrementing its count on success.
func (f *LocusIRRFinder) TryPair(r1, r2 string) bool {
	return f.analyzer.CheckPair(r1, r2)
}
