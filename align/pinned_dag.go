// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"
	"strings"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// AffineParams holds affine-gap scoring parameters for the pinned DAG
// aligner (C7).
type AffineParams struct {
	MatchScore     int
	MismatchScore  int
	GapOpenScore   int
	GapExtendScore int
}

// BoundaryMode controls how the pinned DAG aligner treats leading
// target bases consumed before any query base is used.
type BoundaryMode int

const (
	// BoundaryGlobal penalizes leading deletions with the usual
	// affine chain (alignment pinned to the unrolled DAG's root).
	BoundaryGlobal BoundaryMode = iota
	// BoundaryLocal treats any point in the target as a free starting
	// point (no penalty for skipped leading target bases).
	BoundaryLocal
)

const negInfScore = -(1 << 30)

// unrolledNode is one base-resolution node instance in the flattened
// target produced by unrolling self-loops.
type unrolledNode struct {
	origID   graph.NodeID
	seq      string
	startCol int // 1-based column of this node's first base
	preds    []int
}

type unrolledGraph struct {
	nodes    []unrolledNode
	totalLen int
	colNode  []int // colNode[t] is the index into nodes owning column t (0 unused)
}

// index builds colNode once the node list is complete, turning
// baseAt/nodeAt/predsOfColumn into O(1) lookups for the DP's inner loop.
func (u *unrolledGraph) index() {
	u.colNode = make([]int, u.totalLen+1)
	for i, n := range u.nodes {
		for off := 0; off < len(n.seq); off++ {
			u.colNode[n.startCol+off] = i
		}
	}
}

// predsOfColumn returns the predecessor column(s) of flat column t
// (1-based). Column 0 is the virtual root with no predecessors.
func (u *unrolledGraph) predsOfColumn(t int) []int {
	if t == 0 {
		return nil
	}
	n := u.nodes[u.colNode[t]]
	if t > n.startCol {
		return []int{t - 1}
	}
	if len(n.preds) == 0 {
		return []int{0}
	}
	out := make([]int, len(n.preds))
	for i, p := range n.preds {
		if p < 0 {
			out[i] = 0
			continue
		}
		out[i] = u.nodes[p].startCol + len(u.nodes[p].seq) - 1
	}
	return out
}

func (u *unrolledGraph) baseAt(t int) byte {
	n := u.nodes[u.colNode[t]]
	return n.seq[t-n.startCol]
}

func (u *unrolledGraph) nodeAt(t int) int { return u.colNode[t] }

// unroll builds an unrolledGraph over the nodes reachable from start,
// replacing every self-loop repeat node with up to maxRepeats chained
// copies, each of which (plus the node's incoming predecessors) feeds
// the node's real successors — so zero through maxRepeats copies of
// the repeat unit are all representable in the unrolled DAG.
func unroll(g graph.Directed, start graph.NodeID, maxRepeats int) (*unrolledGraph, error) {
	reachable := map[graph.NodeID]bool{start: true}
	queue := []graph.NodeID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, s := range g.Successors(id) {
			if !reachable[s] {
				reachable[s] = true
				queue = append(queue, s)
			}
		}
	}
	ordered, err := topologicalOrder(g, reachable, start)
	if err != nil {
		return nil, err
	}

	ug := &unrolledGraph{totalLen: 0}
	exitIdx := make(map[graph.NodeID][]int)

	for _, id := range ordered {
		var preds []int
		if id == start {
			preds = []int{-1}
		} else {
			for _, p := range g.Predecessors(id) {
				if p == id {
					continue
				}
				if !reachable[p] {
					continue
				}
				preds = append(preds, exitIdx[p]...)
			}
		}
		isLoop := g.IsRepeatNode(id) && g.HasEdge(id, id)
		if !isLoop {
			n := unrolledNode{origID: id, seq: g.NodeSeq(id), startCol: ug.totalLen + 1, preds: preds}
			if len(n.seq) == 0 {
				return nil, fmt.Errorf("%w: empty sequence on node %d", graph.ErrInvalidSequence, id)
			}
			ug.nodes = append(ug.nodes, n)
			ug.totalLen += len(n.seq)
			exitIdx[id] = []int{len(ug.nodes) - 1}
			continue
		}
		var exits []int
		exits = append(exits, preds...)
		cur := preds
		for r := 0; r < maxRepeats; r++ {
			n := unrolledNode{origID: id, seq: g.NodeSeq(id), startCol: ug.totalLen + 1, preds: cur}
			ug.nodes = append(ug.nodes, n)
			ug.totalLen += len(n.seq)
			idx := len(ug.nodes) - 1
			cur = []int{idx}
			exits = append(exits, idx)
		}
		exitIdx[id] = exits
	}
	ug.index()
	return ug, nil
}

// topologicalOrder returns reachable in dependency order, the way the
// teacher's press tools (cmd/press, cmd/press-global) lean on
// gonum.org/v1/gonum/graph/topo for their own graph-ordering passes
// rather than hand-rolling Kahn's algorithm. Self-loop edges are left
// out of the gonum graph entirely — unroll's caller handles repeat
// expansion separately, and a repeat node's own loop would otherwise
// register as a cycle and make the reachable set unorderable.
func topologicalOrder(g graph.Directed, reachable map[graph.NodeID]bool, start graph.NodeID) ([]graph.NodeID, error) {
	dg := simple.NewDirectedGraph()
	for id := range reachable {
		dg.AddNode(simple.Node(int64(id)))
	}
	for id := range reachable {
		for _, s := range g.Successors(id) {
			if s == id || !reachable[s] {
				continue
			}
			dg.SetEdge(simple.Edge{F: simple.Node(int64(id)), T: simple.Node(int64(s))})
		}
	}
	sorted, err := topo.SortStabilized(dg, func(a, b gonumgraph.Node) bool { return a.ID() < b.ID() })
	if err != nil {
		return nil, fmt.Errorf("align: graph reachable from node %d is not a DAG once self-loops are removed: %w", start, err)
	}
	ordered := make([]graph.NodeID, len(sorted))
	for i, n := range sorted {
		ordered[i] = graph.NodeID(n.ID())
	}
	return ordered, nil
}

// PinnedDAGAligner aligns a query string against an unrolled copy of a
// graph, starting from a fixed node, using affine-gap scoring. Its DP
// buffers are reused across calls by reset, matching the thread-local
// reuse contract described for C6/C7.
type PinnedDAGAligner struct {
	params     AffineParams
	policy     NPolicy
	boundary   BoundaryMode
	maxRepeats int

	v, g, e, f [][]int
}

// NewPinnedDAGAligner returns a PinnedDAGAligner with the given
// configuration.
func NewPinnedDAGAligner(params AffineParams, policy NPolicy, boundary BoundaryMode, maxRepeats int) *PinnedDAGAligner {
	if maxRepeats <= 0 {
		maxRepeats = 1
	}
	return &PinnedDAGAligner{params: params, policy: policy, boundary: boundary, maxRepeats: maxRepeats}
}

func (a *PinnedDAGAligner) reset(rows, cols int) {
	grow := func(m *[][]int) {
		if len(*m) < rows {
			*m = make([][]int, rows)
		}
		for i := 0; i < rows; i++ {
			if len((*m)[i]) < cols {
				(*m)[i] = make([]int, cols)
			}
		}
	}
	grow(&a.v)
	grow(&a.g)
	grow(&a.e)
	grow(&a.f)
}

// DAGAlignResult is the outcome of a PinnedDAGAligner run: the best and
// second-best score, and every co-optimal graph-CIGAR found (bounded by
// maxRepeats).
type DAGAlignResult struct {
	BestScore, SecondBestScore int
	Cigars                     []string
	// Trace holds the per-base operations of the first co-optimal
	// alignment found, one entry per consumed column, in the order a
	// Path would walk them: consecutive entries on the same repeat-node
	// occurrence are NOT merged across distinct self-loop visits, so
	// the gapped aligner can rebuild an exact node list from it.
	Trace []TraceStep
}

// TraceStep is one base-resolution operation of a DAGAlignResult.Trace,
// identifying both the original node and which unrolled occurrence of
// it (for self-loop nodes visited more than once) the operation
// belongs to.
type TraceStep struct {
	NodeID    graph.NodeID
	Occurrence int
	Kind      OpKind
}

// AlignFromNode runs the affine-gap DP of query against the unrolled
// DAG rooted at start, returning the best score(s) and co-optimal
// graph-CIGARs.
func (a *PinnedDAGAligner) AlignFromNode(g graph.Directed, start graph.NodeID, query string) (*DAGAlignResult, error) {
	ug, err := unroll(g, start, a.maxRepeats)
	if err != nil {
		return nil, err
	}
	rows, cols := len(query)+1, ug.totalLen+1
	a.reset(rows, cols)

	negAll := func(m [][]int, i int) {
		for j := 0; j < cols; j++ {
			m[i][j] = negInfScore
		}
	}
	negAll(a.g, 0)
	negAll(a.e, 0)
	negAll(a.f, 0)
	a.v[0][0] = 0

	for t := 1; t < cols; t++ {
		preds := ug.predsOfColumn(t)
		best := negInfScore
		for _, p := range preds {
			cand := max2(a.e[0][p]+a.params.GapExtendScore, a.v[0][p]+a.params.GapOpenScore+a.params.GapExtendScore)
			best = max2(best, cand)
		}
		a.e[0][t] = best
		a.g[0][t] = negInfScore
		a.f[0][t] = negInfScore
		if a.boundary == BoundaryLocal {
			a.v[0][t] = 0
		} else {
			a.v[0][t] = best
		}
	}

	for q := 1; q < rows; q++ {
		a.f[q][0] = max2(a.f[q-1][0]+a.params.GapExtendScore, a.v[q-1][0]+a.params.GapOpenScore+a.params.GapExtendScore)
		a.g[q][0] = negInfScore
		a.e[q][0] = negInfScore
		a.v[q][0] = a.f[q][0]
	}

	for q := 1; q < rows; q++ {
		for t := 1; t < cols; t++ {
			preds := ug.predsOfColumn(t)
			bestG := negInfScore
			sc := baseScore(a.params.linear(), a.policy, query[q-1], ug.baseAt(t))
			for _, p := range preds {
				bestG = max2(bestG, a.v[q-1][p]+sc)
			}
			a.g[q][t] = bestG

			bestE := negInfScore
			for _, p := range preds {
				bestE = max2(bestE, max2(a.e[q][p]+a.params.GapExtendScore, a.v[q][p]+a.params.GapOpenScore+a.params.GapExtendScore))
			}
			a.e[q][t] = bestE

			a.f[q][t] = max2(a.f[q-1][t]+a.params.GapExtendScore, a.v[q-1][t]+a.params.GapOpenScore+a.params.GapExtendScore)

			a.v[q][t] = max2(max2(a.g[q][t], a.e[q][t]), a.f[q][t])
		}
	}

	bestScore, secondBest := negInfScore, negInfScore
	bestQ, bestT := rows-1, 0
	for t := 0; t < cols; t++ {
		s := a.v[rows-1][t]
		if s > bestScore {
			secondBest = bestScore
			bestScore, bestQ, bestT = s, rows-1, t
		} else if s > secondBest && s < bestScore {
			secondBest = s
		}
	}

	cigars, trace := a.traceback(ug, query, bestQ, bestT, a.maxRepeats)
	return &DAGAlignResult{BestScore: bestScore, SecondBestScore: secondBest, Cigars: cigars, Trace: trace}, nil
}

func (params AffineParams) linear() LinearAlignerParams {
	return LinearAlignerParams{MatchScore: params.MatchScore, MismatchScore: params.MismatchScore}
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type dagOp struct {
	nodeID     graph.NodeID
	unrolledID int
	kind       OpKind
}

// traceback performs a bounded DFS over co-optimal cells, emitting
// graph-CIGAR strings ("nodeId[cigar]..." concatenation, one bracket
// group per visited node occurrence, so separate visits to a self-loop
// node get separate groups) for each distinct path found, up to limit results. It also
// returns the ungrouped per-base TraceStep list for the first path
// found, keyed by unrolled node occurrence rather than original node
// ID alone.
func (a *PinnedDAGAligner) traceback(ug *unrolledGraph, query string, q, t, limit int) ([]string, []TraceStep) {
	var results []string
	var trace []TraceStep
	var walk func(q, t int, ops []dagOp)
	walk = func(q, t int, ops []dagOp) {
		if len(results) >= limit {
			return
		}
		// Under BoundaryLocal every column of the root row is a valid
		// free starting point (a.v[0][t] is forced to 0 there), not
		// just t == 0: the walk must stop as soon as q reaches 0,
		// rather than trying to explain a.v[0][t] via the real
		// e/v recurrence it was never computed from.
		if q == 0 && (t == 0 || a.boundary == BoundaryLocal) {
			results = append(results, renderGraphCigar(ops))
			if trace == nil {
				trace = buildTrace(ops)
			}
			return
		}
		if t == 0 {
			if q > 0 {
				op := dagOp{kind: Softclip, unrolledID: -1}
				walk(q-1, 0, append([]dagOp{op}, ops...))
			}
			return
		}
		node := ug.nodeAt(t)
		origID := ug.nodes[node].origID
		score := a.v[q][t]
		if q > 0 {
			sc := baseScore(a.params.linear(), a.policy, query[q-1], ug.baseAt(t))
			for _, p := range ug.predsOfColumn(t) {
				if a.v[q-1][p]+sc == score {
					kind := Match
					if !matchesUnderPolicy(a.policy, query[q-1], ug.baseAt(t)) {
						kind = Mismatch
					}
					walk(q-1, p, append([]dagOp{{nodeID: origID, unrolledID: node, kind: kind}}, ops...))
					if len(results) >= limit {
						return
					}
				}
			}
		}
		for _, p := range ug.predsOfColumn(t) {
			if max2(a.e[q][p]+a.params.GapExtendScore, a.v[q][p]+a.params.GapOpenScore+a.params.GapExtendScore) == score {
				walk(q, p, append([]dagOp{{nodeID: origID, unrolledID: node, kind: Deletion}}, ops...))
				if len(results) >= limit {
					return
				}
			}
		}
		if q > 0 {
			if max2(a.f[q-1][t]+a.params.GapExtendScore, a.v[q-1][t]+a.params.GapOpenScore+a.params.GapExtendScore) == score {
				walk(q-1, t, append([]dagOp{{nodeID: origID, unrolledID: node, kind: Insertion}}, ops...))
			}
		}
	}
	walk(q, t, nil)
	return results, trace
}

// buildTrace converts a raw dagOp list (as built by traceback, already
// in forward order) into the public TraceStep form, numbering each
// distinct unrolled occurrence of a node in the order it is first
// visited so repeated self-loop visits get distinct Occurrence values.
func buildTrace(ops []dagOp) []TraceStep {
	occurrence := make(map[int]int)
	next := make(map[graph.NodeID]int)
	out := make([]TraceStep, 0, len(ops))
	for _, op := range ops {
		if op.unrolledID < 0 {
			out = append(out, TraceStep{Kind: op.kind, Occurrence: -1})
			continue
		}
		occ, ok := occurrence[op.unrolledID]
		if !ok {
			occ = next[op.nodeID]
			next[op.nodeID] = occ + 1
			occurrence[op.unrolledID] = occ
		}
		out = append(out, TraceStep{NodeID: op.nodeID, Occurrence: occ, Kind: op.kind})
	}
	return out
}

func renderGraphCigar(ops []dagOp) string {
	if len(ops) == 0 {
		return ""
	}
	var b strings.Builder
	i := 0
	for i < len(ops) {
		j := i
		id := ops[i].nodeID
		u := ops[i].unrolledID
		var nodeOps []Operation
		for j < len(ops) && ops[j].nodeID == id && (u < 0 || ops[j].unrolledID < 0 || ops[j].unrolledID == u) {
			if u < 0 {
				u = ops[j].unrolledID
			}
			if n := len(nodeOps); n > 0 && nodeOps[n-1].Kind == ops[j].kind {
				nodeOps[n-1].Length++
			} else {
				nodeOps = append(nodeOps, Operation{Kind: ops[j].kind, Length: 1})
			}
			j++
		}
		fmt.Fprintf(&b, "%d[", id)
		for _, op := range nodeOps {
			fmt.Fprintf(&b, "%d%s", op.Length, op.Kind)
		}
		b.WriteString("]")
		i = j
	}
	return b.String()
}
