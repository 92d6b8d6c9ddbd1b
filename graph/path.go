// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned whenever a Path operation would produce a
// result violating the path invariants of spec §3.
var ErrInvalidPath = errors.New("graph: invalid path")

// Path is a contiguous walk through a Directed graph, pinned by a start
// offset into the first node's sequence and an end offset into the last
// node's sequence. Path holds a non-owning reference to its graph: the
// graph must outlive every Path built from it.
type Path struct {
	g           Directed
	startOffset int
	nodeIDs     []NodeID
	endOffset   int
}

// NewPath constructs a Path over g. It validates every invariant in
// spec §3 and returns ErrInvalidPath on violation.
func NewPath(g Directed, startOffset int, nodeIDs []NodeID, endOffset int) (*Path, error) {
	p := &Path{g: g, startOffset: startOffset, nodeIDs: append([]NodeID(nil), nodeIDs...), endOffset: endOffset}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Path) validate() error {
	if len(p.nodeIDs) == 0 {
		return fmt.Errorf("%w: empty node list", ErrInvalidPath)
	}
	for i := 1; i < len(p.nodeIDs); i++ {
		if !p.g.HasEdge(p.nodeIDs[i-1], p.nodeIDs[i]) {
			return fmt.Errorf("%w: no edge %d -> %d", ErrInvalidPath, p.nodeIDs[i-1], p.nodeIDs[i])
		}
	}
	firstLen := p.g.NodeLen(p.nodeIDs[0])
	if p.startOffset < 0 || p.startOffset >= firstLen {
		return fmt.Errorf("%w: startOffset %d out of [0,%d)", ErrInvalidPath, p.startOffset, firstLen)
	}
	lastLen := p.g.NodeLen(p.nodeIDs[len(p.nodeIDs)-1])
	if p.endOffset < 0 || p.endOffset > lastLen {
		return fmt.Errorf("%w: endOffset %d out of [0,%d]", ErrInvalidPath, p.endOffset, lastLen)
	}
	if p.endOffset != lastLen {
		// Strictly inside the node: fine for any length; nothing further
		// to check here beyond the bounds test above.
	}
	if len(p.nodeIDs) == 1 && p.startOffset > p.endOffset {
		return fmt.Errorf("%w: single-node path has startOffset %d > endOffset %d", ErrInvalidPath, p.startOffset, p.endOffset)
	}
	return nil
}

// NodeIDs returns the path's node list. The caller must not mutate it.
func (p *Path) NodeIDs() []NodeID { return p.nodeIDs }

// StartOffset returns the 0-based offset into the first node's sequence.
func (p *Path) StartOffset() int { return p.startOffset }

// EndOffset returns the 0-based, exclusive end offset into the last
// node's sequence: the path covers the last node's bases before it, so
// it equals the node length when the path runs to the node's end.
func (p *Path) EndOffset() int { return p.endOffset }

// Graph returns the graph this path was built over.
func (p *Path) Graph() Directed { return p.g }

// NumNodes returns len(NodeIDs()).
func (p *Path) NumNodes() int { return len(p.nodeIDs) }

// OverlapLengthOnNodeAtIndex returns how many bases of the path lie on
// the node at position i of NodeIDs().
func (p *Path) OverlapLengthOnNodeAtIndex(i int) int {
	switch {
	case len(p.nodeIDs) == 1:
		return p.endOffset - p.startOffset
	case i == 0:
		return p.g.NodeLen(p.nodeIDs[0]) - p.startOffset
	case i == len(p.nodeIDs)-1:
		return p.endOffset
	default:
		return p.g.NodeLen(p.nodeIDs[i])
	}
}

// Length returns the total number of bases spanned by the path.
func (p *Path) Length() int {
	total := 0
	for i := range p.nodeIDs {
		total += p.OverlapLengthOnNodeAtIndex(i)
	}
	return total
}

// Seq returns the concatenation of the node-slice sequences the path
// walks across.
func (p *Path) Seq() string {
	var b strings.Builder
	b.Grow(p.Length())
	for i, id := range p.nodeIDs {
		seq := p.g.NodeSeq(id)
		switch {
		case len(p.nodeIDs) == 1:
			b.WriteString(seq[p.startOffset:p.endOffset])
		case i == 0:
			b.WriteString(seq[p.startOffset:])
		case i == len(p.nodeIDs)-1:
			b.WriteString(seq[:p.endOffset])
		default:
			b.WriteString(seq)
		}
	}
	return b.String()
}

// SplitBy returns, for a sequence of length Length(), the per-node slice
// substrings the path walks across. sequence need not equal Seq(); the
// split only uses the path's node-length geometry.
func (p *Path) SplitBy(sequence string) ([]string, error) {
	if len(sequence) != p.Length() {
		return nil, fmt.Errorf("graph: splitBy length mismatch: have %d want %d", len(sequence), p.Length())
	}
	out := make([]string, len(p.nodeIDs))
	pos := 0
	for i := range p.nodeIDs {
		n := p.OverlapLengthOnNodeAtIndex(i)
		out[i] = sequence[pos : pos+n]
		pos += n
	}
	return out, nil
}

// clone returns a deep-enough copy of p for mutation by the extend/shrink
// family, which always returns new Paths rather than mutating in place.
func (p *Path) clone() *Path {
	return &Path{
		g:           p.g,
		startOffset: p.startOffset,
		nodeIDs:     append([]NodeID(nil), p.nodeIDs...),
		endOffset:   p.endOffset,
	}
}

// MoveStartBy moves the start offset within the first node by delta
// (positive shrinks the path, negative grows it), without changing the
// node list.
func (p *Path) MoveStartBy(delta int) (*Path, error) {
	q := p.clone()
	q.startOffset += delta
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// MoveEndBy moves the end offset within the last node by delta, without
// changing the node list.
func (p *Path) MoveEndBy(delta int) (*Path, error) {
	q := p.clone()
	q.endOffset += delta
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// ExtendStartNodeTo prepends id to the path, provided id -> nodeIDs[0] is
// a valid edge. The new start offset is 0 (consuming all of id).
func (p *Path) ExtendStartNodeTo(id NodeID) (*Path, error) {
	if !p.g.HasEdge(id, p.nodeIDs[0]) {
		return nil, fmt.Errorf("%w: no edge %d -> %d", ErrInvalidPath, id, p.nodeIDs[0])
	}
	q := p.clone()
	q.nodeIDs = append([]NodeID{id}, q.nodeIDs...)
	q.startOffset = 0
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// ExtendEndNodeTo appends id to the path, provided nodeIDs[len-1] -> id is
// a valid edge. The new end offset is the full length of id.
func (p *Path) ExtendEndNodeTo(id NodeID) (*Path, error) {
	last := p.nodeIDs[len(p.nodeIDs)-1]
	if !p.g.HasEdge(last, id) {
		return nil, fmt.Errorf("%w: no edge %d -> %d", ErrInvalidPath, last, id)
	}
	q := p.clone()
	q.nodeIDs = append(q.nodeIDs, id)
	q.endOffset = q.g.NodeLen(id)
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// ExtendStartBy enumerates every valid predecessor continuation that adds
// exactly n bases before the current start, depth-first: each
// predecessor's continuations are listed in full before the next
// predecessor's. The result is materialized (not an open-ended iterator)
// and is always finite since every step consumes at least one base.
func (p *Path) ExtendStartBy(n int) ([]*Path, error) {
	if n == 0 {
		return []*Path{p}, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative extension length %d", ErrInvalidPath, n)
	}
	avail := p.startOffset
	if n <= avail {
		q, err := p.MoveStartBy(-n)
		if err != nil {
			return nil, err
		}
		return []*Path{q}, nil
	}
	remaining := n - avail
	var out []*Path
	first := p.nodeIDs[0]
	for _, pred := range p.g.Predecessors(first) {
		// pred == first is a self-loop on a repeat node: another
		// iteration over the same node, handled uniformly below.
		extended, err := p.ExtendStartNodeTo(pred)
		if err != nil {
			continue
		}
		predLen := p.g.NodeLen(pred)
		consume := remaining
		if consume > predLen {
			consume = predLen
		}
		moved, err := extended.MoveStartBy(predLen - consume)
		if err != nil {
			continue
		}
		if consume == remaining {
			out = append(out, moved)
			continue
		}
		deeper, err := moved.ExtendStartBy(remaining - consume)
		if err != nil {
			continue
		}
		out = append(out, deeper...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no predecessor continuation of length %d", ErrInvalidPath, n)
	}
	return out, nil
}

// ExtendEndBy is the symmetric counterpart of ExtendStartBy, enumerating
// every valid successor continuation of total added length n.
func (p *Path) ExtendEndBy(n int) ([]*Path, error) {
	if n == 0 {
		return []*Path{p}, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative extension length %d", ErrInvalidPath, n)
	}
	last := p.nodeIDs[len(p.nodeIDs)-1]
	lastLen := p.g.NodeLen(last)
	avail := lastLen - p.endOffset
	if n <= avail {
		q, err := p.MoveEndBy(n)
		if err != nil {
			return nil, err
		}
		return []*Path{q}, nil
	}
	remaining := n - avail
	var out []*Path
	for _, succ := range p.g.Successors(last) {
		extended, err := p.ExtendEndNodeTo(succ)
		if err != nil {
			continue
		}
		succLen := p.g.NodeLen(succ)
		consume := remaining
		if consume > succLen {
			consume = succLen
		}
		moved, err := extended.MoveEndBy(consume - succLen)
		if err != nil {
			continue
		}
		if consume == remaining {
			out = append(out, moved)
			continue
		}
		deeper, err := moved.ExtendEndBy(remaining - consume)
		if err != nil {
			continue
		}
		out = append(out, deeper...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no successor continuation of length %d", ErrInvalidPath, n)
	}
	return out, nil
}

// ShrinkStartBy removes n bases from the start of the path, dropping
// nodes as needed.
func (p *Path) ShrinkStartBy(n int) (*Path, error) {
	if n < 0 || n > p.Length() {
		return nil, fmt.Errorf("%w: shrink length %d out of range", ErrInvalidPath, n)
	}
	q := p.clone()
	remaining := n
	for remaining > 0 {
		avail := q.OverlapLengthOnNodeAtIndex(0)
		if remaining < avail {
			q.startOffset += remaining
			remaining = 0
			break
		}
		remaining -= avail
		if len(q.nodeIDs) == 1 {
			q.startOffset += avail
			break
		}
		q.nodeIDs = q.nodeIDs[1:]
		q.startOffset = 0
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// ShrinkEndBy removes n bases from the end of the path, dropping nodes as
// needed.
func (p *Path) ShrinkEndBy(n int) (*Path, error) {
	if n < 0 || n > p.Length() {
		return nil, fmt.Errorf("%w: shrink length %d out of range", ErrInvalidPath, n)
	}
	q := p.clone()
	remaining := n
	for remaining > 0 {
		last := len(q.nodeIDs) - 1
		avail := q.OverlapLengthOnNodeAtIndex(last)
		if remaining < avail {
			q.endOffset -= remaining
			remaining = 0
			break
		}
		remaining -= avail
		if len(q.nodeIDs) == 1 {
			q.endOffset -= avail
			break
		}
		q.nodeIDs = q.nodeIDs[:last]
		q.endOffset = q.g.NodeLen(q.nodeIDs[len(q.nodeIDs)-1])
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// RemoveStartNode drops the first node from the path. The path must have
// more than one node.
func (p *Path) RemoveStartNode() (*Path, error) {
	if len(p.nodeIDs) < 2 {
		return nil, fmt.Errorf("%w: cannot remove the only node", ErrInvalidPath)
	}
	q := p.clone()
	q.nodeIDs = q.nodeIDs[1:]
	q.startOffset = 0
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// RemoveEndNode drops the last node from the path. The path must have
// more than one node.
func (p *Path) RemoveEndNode() (*Path, error) {
	if len(p.nodeIDs) < 2 {
		return nil, fmt.Errorf("%w: cannot remove the only node", ErrInvalidPath)
	}
	q := p.clone()
	q.nodeIDs = q.nodeIDs[:len(q.nodeIDs)-1]
	q.endOffset = q.g.NodeLen(q.nodeIDs[len(q.nodeIDs)-1])
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Concat appends other to p, requiring that the last node of p equals
// the first node of other. The offsets on that shared node are not
// compared: the result keeps p's start offset and takes other's end
// offset.
func (p *Path) Concat(other *Path) (*Path, error) {
	if p.nodeIDs[len(p.nodeIDs)-1] != other.nodeIDs[0] {
		return nil, fmt.Errorf("%w: concat requires a shared boundary node", ErrInvalidPath)
	}
	q := p.clone()
	q.nodeIDs = append(q.nodeIDs, other.nodeIDs[1:]...)
	q.endOffset = other.endOffset
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// String implements fmt.Stringer for debugging.
func (p *Path) String() string {
	parts := make([]string, len(p.nodeIDs))
	for i, id := range p.nodeIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%d[%s]%d", p.startOffset, strings.Join(parts, ","), p.endOffset)
}

// Equal reports whether p and other describe the same walk (ignoring
// which Directed instance they were built over).
func (p *Path) Equal(other *Path) bool {
	if other == nil || p.startOffset != other.startOffset || p.endOffset != other.endOffset {
		return false
	}
	if len(p.nodeIDs) != len(other.nodeIDs) {
		return false
	}
	for i := range p.nodeIDs {
		if p.nodeIDs[i] != other.nodeIDs[i] {
			return false
		}
	}
	return true
}

// Less provides a total order over paths (by start offset, then node
// list, then end offset), used to deduplicate co-optimal alignments.
func (p *Path) Less(other *Path) bool {
	if p.startOffset != other.startOffset {
		return p.startOffset < other.startOffset
	}
	for i := 0; i < len(p.nodeIDs) && i < len(other.nodeIDs); i++ {
		if p.nodeIDs[i] != other.nodeIDs[i] {
			return p.nodeIDs[i] < other.nodeIDs[i]
		}
	}
	if len(p.nodeIDs) != len(other.nodeIDs) {
		return len(p.nodeIDs) < len(other.nodeIDs)
	}
	return p.endOffset < other.endOffset
}
