// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"
	"strings"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// GraphAlignment pairs a Path through a sequence graph with a per-node
// LinearAlignment, one per node in the path's NodeIDs, in order.
type GraphAlignment struct {
	path       *graph.Path
	alignments []*LinearAlignment
}

// NewGraphAlignment validates that there is one LinearAlignment per
// path node and that each one's reference span equals the path's
// overlap length on that node, then returns the combined
// GraphAlignment. Query lengths are not checked.
func NewGraphAlignment(path *graph.Path, alignments []*LinearAlignment) (*GraphAlignment, error) {
	if len(alignments) != path.NumNodes() {
		return nil, fmt.Errorf("%w: %d nodes but %d alignments", ErrAlignmentInconsistent, path.NumNodes(), len(alignments))
	}
	for i, la := range alignments {
		want := path.OverlapLengthOnNodeAtIndex(i)
		if la.ReferenceLength() != want {
			return nil, fmt.Errorf("%w: node %d reference length %d, want %d", ErrAlignmentInconsistent, i, la.ReferenceLength(), want)
		}
	}
	return &GraphAlignment{path: path, alignments: append([]*LinearAlignment(nil), alignments...)}, nil
}

// Path returns the path the alignment walks.
func (ga *GraphAlignment) Path() *graph.Path { return ga.path }

// Alignments returns the per-node LinearAlignments, in path order. The
// caller must not mutate the returned slice.
func (ga *GraphAlignment) Alignments() []*LinearAlignment { return ga.alignments }

// QueryLength returns the sum of query lengths across all per-node
// alignments.
func (ga *GraphAlignment) QueryLength() int {
	n := 0
	for _, la := range ga.alignments {
		n += la.QueryLength()
	}
	return n
}

// ReferenceLength returns ga.Path().Length().
func (ga *GraphAlignment) ReferenceLength() int { return ga.path.Length() }

// NumMatches returns the total number of matched bases across all
// per-node alignments.
func (ga *GraphAlignment) NumMatches() int {
	n := 0
	for _, la := range ga.alignments {
		n += la.NumMatches()
	}
	return n
}

// Summary tallies match/mismatch/indel/clip/missing bases across every
// per-node alignment, independent of how the read was bucketed by the
// classifier. This supplements the genotyper's read-weighting step,
// mirroring the original implementation's alignment-summary helper.
type Summary struct {
	Matched, Mismatched, Inserted, Deleted, Clipped, Missing int
}

// Summary computes the aggregate Summary for ga.
func (ga *GraphAlignment) Summary() Summary {
	var s Summary
	for _, la := range ga.alignments {
		s.Matched += la.Matched()
		s.Mismatched += la.Mismatched()
		s.Inserted += la.Inserted()
		s.Deleted += la.Deleted()
		s.Clipped += la.Clipped()
		s.Missing += la.Missing()
	}
	return s
}

// OverlapsNode reports whether id appears anywhere in the path.
func (ga *GraphAlignment) OverlapsNode(id graph.NodeID) bool {
	for _, n := range ga.path.NodeIDs() {
		if n == id {
			return true
		}
	}
	return false
}

// IndexesOfNode returns every position in the path's node list at which
// id occurs (relevant for repeat nodes visited via a self-loop).
func (ga *GraphAlignment) IndexesOfNode(id graph.NodeID) []int {
	var idx []int
	for i, n := range ga.path.NodeIDs() {
		if n == id {
			idx = append(idx, i)
		}
	}
	return idx
}

// GenerateCigar emits "nodeId[perNodeCigar]..." for each node in path
// order.
func (ga *GraphAlignment) GenerateCigar() string {
	var b strings.Builder
	for i, id := range ga.path.NodeIDs() {
		fmt.Fprintf(&b, "%d[%s]", id, ga.alignments[i].GenerateCigar())
	}
	return b.String()
}

// ShrinkStart removes k reference bases from the beginning of the
// alignment: the corresponding query bases are soft-clipped and the
// path is trimmed by the same amount.
func (ga *GraphAlignment) ShrinkStart(k int) (*GraphAlignment, error) {
	return ga.shrink(k, true)
}

// ShrinkEnd removes k reference bases from the end of the alignment,
// soft-clipping the corresponding query bases.
func (ga *GraphAlignment) ShrinkEnd(k int) (*GraphAlignment, error) {
	return ga.shrink(k, false)
}

func (ga *GraphAlignment) shrink(k int, fromStart bool) (*GraphAlignment, error) {
	if k < 0 || k > ga.ReferenceLength() {
		return nil, fmt.Errorf("align: shrink length %d out of range", k)
	}
	if k == 0 {
		return ga, nil
	}

	newAlignments := append([]*LinearAlignment(nil), ga.alignments...)
	remaining := k
	if fromStart {
		for remaining > 0 {
			la := newAlignments[0]
			refLen := la.ReferenceLength()
			if refLen <= remaining {
				clip, err := clipWhole(la, true)
				if err != nil {
					return nil, err
				}
				newAlignments[0] = clip
				remaining -= refLen
				if remaining > 0 {
					newAlignments = newAlignments[1:]
				}
				continue
			}
			_, suffix, err := la.SplitAtReferencePosition(remaining)
			if err != nil {
				return nil, err
			}
			clippedPrefixLen := remaining
			clip := Operation{Kind: Softclip, Length: queryLenOfFirst(la, clippedPrefixLen)}
			ops := append([]Operation{clip}, suffix.Operations()...)
			merged, err := NewLinearAlignment(suffix.ReferenceStart(), mergeAdjacent(ops))
			if err != nil {
				return nil, err
			}
			newAlignments[0] = merged
			remaining = 0
		}
	} else {
		for remaining > 0 {
			last := len(newAlignments) - 1
			la := newAlignments[last]
			refLen := la.ReferenceLength()
			if refLen <= remaining {
				clip, err := clipWhole(la, false)
				if err != nil {
					return nil, err
				}
				newAlignments[last] = clip
				remaining -= refLen
				if remaining > 0 {
					newAlignments = newAlignments[:last]
				}
				continue
			}
			prefix, _, err := la.SplitAtReferencePosition(refLen - remaining)
			if err != nil {
				return nil, err
			}
			clip := Operation{Kind: Softclip, Length: queryLenOfLast(la, remaining)}
			ops := append(append([]Operation(nil), prefix.Operations()...), clip)
			merged, err := NewLinearAlignment(prefix.ReferenceStart(), mergeAdjacent(ops))
			if err != nil {
				return nil, err
			}
			newAlignments[last] = merged
			remaining = 0
		}
	}

	var newPath *graph.Path
	var err error
	if fromStart {
		newPath, err = ga.path.ShrinkStartBy(k)
	} else {
		newPath, err = ga.path.ShrinkEndBy(k)
	}
	if err != nil {
		return nil, err
	}
	if fromStart {
		newAlignments = newAlignments[len(newAlignments)-newPath.NumNodes():]
	} else {
		newAlignments = newAlignments[:newPath.NumNodes()]
	}
	return NewGraphAlignment(newPath, newAlignments)
}

// clipWhole converts an entire per-node LinearAlignment into a single
// Softclip spanning its query length (used when a shrink consumes an
// entire node's alignment).
func clipWhole(la *LinearAlignment, fromStart bool) (*LinearAlignment, error) {
	q := la.QueryLength()
	if q == 0 {
		return NewLinearAlignment(la.ReferenceStart()+la.ReferenceLength(), nil)
	}
	start := la.ReferenceStart()
	if fromStart {
		start = la.ReferenceStart() + la.ReferenceLength()
	}
	return NewLinearAlignment(start, []Operation{{Kind: Softclip, Length: q}})
}

func queryLenOfFirst(la *LinearAlignment, refBases int) int {
	prefix, _, err := la.SplitAtReferencePosition(refBases)
	if err != nil {
		return 0
	}
	return prefix.QueryLength()
}

func queryLenOfLast(la *LinearAlignment, refBases int) int {
	_, suffix, err := la.SplitAtReferencePosition(la.ReferenceLength() - refBases)
	if err != nil {
		return 0
	}
	return suffix.QueryLength()
}

func mergeAdjacent(ops []Operation) []Operation {
	var out []Operation
	for _, op := range ops {
		if n := len(out); n > 0 && out[n-1].Kind == op.Kind {
			out[n-1].Length += op.Length
			continue
		}
		out = append(out, op)
	}
	return out
}

// Less provides the total order over GraphAlignments (by path, then by
// per-node alignments) used to deduplicate co-optimal alignments.
func (ga *GraphAlignment) Less(other *GraphAlignment) bool {
	if !ga.path.Equal(other.path) {
		return ga.path.Less(other.path)
	}
	for i := range ga.alignments {
		if i >= len(other.alignments) {
			return false
		}
		c := ga.alignments[i].GenerateCigar()
		d := other.alignments[i].GenerateCigar()
		if c != d {
			return c < d
		}
	}
	return false
}

// Equal reports whether ga and other describe the same path and
// per-node CIGARs.
func (ga *GraphAlignment) Equal(other *GraphAlignment) bool {
	if other == nil || !ga.path.Equal(other.path) || len(ga.alignments) != len(other.alignments) {
		return false
	}
	for i := range ga.alignments {
		if ga.alignments[i].GenerateCigar() != other.alignments[i].GenerateCigar() {
			return false
		}
	}
	return true
}
