// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classify buckets graph alignments against a target bundle of
// nodes: spanning, upstream-flanking, downstream-flanking or bypassing
// (spec §4.10).
package classify

import (
	"errors"
	"fmt"

	"github.com/Illumina/ExpansionHunter-sub003/align"
	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// ErrInvalidBundle is returned by NewVariantClassifier when the target
// node list is empty or not strictly consecutive ascending ids.
var ErrInvalidBundle = errors.New("classify: invalid node bundle")

// Inside names the classification bucket for an alignment that overlaps
// the target bundle without reaching upstream or downstream of it
// (startsUpstream == endsDownstream == false, overlapsTarget == true) —
// a read lying entirely inside the bundle. Classify does not count
// alignments into this bucket today; the constant exists so that bucket
// has a name to grow into rather than remaining an unlabeled fallthrough.
const Inside = "inside"

// VariantClassifier buckets GraphAlignments against the contiguous
// target node range [firstBundleNode, lastBundleNode].
type VariantClassifier struct {
	first, last graph.NodeID

	upstream   map[graph.NodeID]int
	downstream map[graph.NodeID]int
	spanning   map[graph.NodeID]int
	bypassing  int
}

// NewVariantClassifier validates nodeIDs and builds a VariantClassifier
// targeting it. nodeIDs must be non-empty and strictly consecutive
// ascending (e.g. [5,6,7]), matching the contiguous bundle of nodes a
// single variant spans within its locus graph.
func NewVariantClassifier(nodeIDs []graph.NodeID) (*VariantClassifier, error) {
	if len(nodeIDs) == 0 {
		return nil, fmt.Errorf("%w: empty node list", ErrInvalidBundle)
	}
	for i := 1; i < len(nodeIDs); i++ {
		if nodeIDs[i] != nodeIDs[i-1]+1 {
			return nil, fmt.Errorf("%w: %d -> %d not consecutive", ErrInvalidBundle, nodeIDs[i-1], nodeIDs[i])
		}
	}
	return &VariantClassifier{
		first:      nodeIDs[0],
		last:       nodeIDs[len(nodeIDs)-1],
		upstream:   make(map[graph.NodeID]int),
		downstream: make(map[graph.NodeID]int),
		spanning:   make(map[graph.NodeID]int),
	}, nil
}

// Classify inspects ga's path and updates the appropriate count table
// (or the bypass counter), per the decision table in spec §4.10.
func (c *VariantClassifier) Classify(ga *align.GraphAlignment) {
	var startsUpstream, endsDownstream, overlapsTarget bool
	var targetNodeOverlapped graph.NodeID

	for _, id := range ga.Path().NodeIDs() {
		switch {
		case id < c.first:
			startsUpstream = true
		case id > c.last:
			endsDownstream = true
		default:
			if !overlapsTarget {
				targetNodeOverlapped = id
			}
			overlapsTarget = true
		}
	}

	switch {
	case startsUpstream && endsDownstream && overlapsTarget:
		c.spanning[targetNodeOverlapped]++
	case startsUpstream && endsDownstream && !overlapsTarget:
		c.bypassing++
	case startsUpstream && !endsDownstream && overlapsTarget:
		c.upstream[targetNodeOverlapped]++
	case !startsUpstream && endsDownstream && overlapsTarget:
		c.downstream[targetNodeOverlapped]++
	case !startsUpstream && !endsDownstream && overlapsTarget:
		// Inside: never counted. Preserved as an intentional no-op.
	}
}

// UpstreamCounts returns a copy of the upstream-flanking count table,
// keyed by the first target node the alignment overlapped.
func (c *VariantClassifier) UpstreamCounts() map[graph.NodeID]int {
	return copyCounts(c.upstream)
}

// DownstreamCounts returns a copy of the downstream-flanking count
// table.
func (c *VariantClassifier) DownstreamCounts() map[graph.NodeID]int {
	return copyCounts(c.downstream)
}

// SpanningCounts returns a copy of the spanning count table.
func (c *VariantClassifier) SpanningCounts() map[graph.NodeID]int {
	return copyCounts(c.spanning)
}

// Bypassing returns the number of alignments that started upstream,
// ended downstream, and never touched the target bundle.
func (c *VariantClassifier) Bypassing() int { return c.bypassing }

func copyCounts(m map[graph.NodeID]int) map[graph.NodeID]int {
	out := make(map[graph.NodeID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
