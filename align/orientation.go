// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

// Orientation is the outcome of comparing a query's forward and
// reverse-complement k-mer hit counts against a graph's KmerIndex.
type Orientation int

const (
	// OriginalOrientation means the query, read as given, is the better
	// match to the graph.
	OriginalOrientation Orientation = iota
	// ReverseComplement means the query's reverse complement is the
	// better match and should be aligned instead.
	ReverseComplement
	// DoesNotAlign means neither orientation cleared the minimum
	// distinct-kmer-match threshold.
	DoesNotAlign
)

func (o Orientation) String() string {
	switch o {
	case OriginalOrientation:
		return "OriginalOrientation"
	case ReverseComplement:
		return "ReverseComplement"
	case DoesNotAlign:
		return "DoesNotAlign"
	default:
		return "Unknown"
	}
}

var complementBase = map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N'}

// ReverseComplementSeq returns the reverse complement of s under the
// A<->T, C<->G, N<->N mapping. Bytes outside that alphabet pass through
// unchanged, reversed in position only.
func ReverseComplementSeq(s string) string {
	n := len(s)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b := s[n-1-i]
		if c, ok := complementBase[b]; ok {
			out[i] = c
		} else {
			out[i] = b
		}
	}
	return string(out)
}

// OrientationPredictor decides whether a query should be aligned as
// given or reverse-complemented, by counting how many of its distinct
// k-mers the index recognizes in each orientation (spec §4.9).
type OrientationPredictor struct {
	idx                  *KmerIndex
	minKmerMatchesToPass int
}

// NewOrientationPredictor builds a predictor over idx. minMatches is the
// minimum number of distinct recognized k-mers an orientation needs to
// be considered a candidate at all.
func NewOrientationPredictor(idx *KmerIndex, minMatches int) *OrientationPredictor {
	return &OrientationPredictor{idx: idx, minKmerMatchesToPass: minMatches}
}

// Predict returns the orientation call for query.
func (p *OrientationPredictor) Predict(query string) Orientation {
	fwd := p.distinctMatchCount(query)
	rev := p.distinctMatchCount(ReverseComplementSeq(query))

	fwdPasses := fwd >= p.minKmerMatchesToPass
	revPasses := rev >= p.minKmerMatchesToPass

	switch {
	case !fwdPasses && !revPasses:
		return DoesNotAlign
	case revPasses && rev > fwd:
		return ReverseComplement
	default:
		return OriginalOrientation
	}
}

// distinctMatchCount counts distinct k-mers of s that are present in the
// index. Overlapping k-mer positions sharing the same sequence count
// once.
func (p *OrientationPredictor) distinctMatchCount(s string) int {
	k := p.idx.K()
	if len(s) < k {
		return 0
	}
	seen := make(map[string]bool)
	count := 0
	for i := 0; i+k <= len(s); i++ {
		kmer := s[i : i+k]
		if seen[kmer] {
			continue
		}
		seen[kmer] = true
		if p.idx.Contains(kmer) {
			count++
		}
	}
	return count
}
