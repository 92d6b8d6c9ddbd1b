// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// AlignerBackend selects which pipeline Align runs: seed-and-extend
// with the discrete per-path Smith-Waterman aligner (C6), or one pass of
// the affine-gap DAG aligner over the unrolled graph (C7).
type AlignerBackend int

const (
	// PathAligner seeds the query and extends every candidate discrete
	// path with C6.
	PathAligner AlignerBackend = iota
	// DagAligner aligns the whole query with C7 from the graph's root.
	// It does no seed search and does not extend seeds.
	DagAligner
)

// HeuristicParameters configures the gapped graph aligner, mirroring
// the external HeuristicParameters contract of spec §6.
type HeuristicParameters struct {
	KmerLenForAlignment int
	PaddingLength       int
	SeedAffixTrimLength int
	Backend             AlignerBackend
	Linear              LinearAlignerParams
	Affine              AffineParams
	NPolicy             NPolicy
	Boundary            BoundaryMode
	MaxRepeatsPerNode   int
	// MaxCandidates bounds how many seed/extension branches are
	// explored before the search is truncated, guarding against
	// combinatorial blowup in heavily branching graphs.
	MaxCandidates int
}

func (p HeuristicParameters) maxCandidates() int {
	if p.MaxCandidates <= 0 {
		return 32
	}
	return p.MaxCandidates
}

// GappedAligner implements the seed-and-extend pipeline of spec §4.8:
// k-mer seed search, seed trimming, bidirectional extension via C6 or
// C7, and assembly into full GraphAlignments.
type GappedAligner struct {
	g      *graph.Graph
	idx    *KmerIndex
	params HeuristicParameters
	linear *PinnedLinearAligner
	dag    *PinnedDAGAligner
}

// NewGappedAligner returns a GappedAligner over g, seeded by idx, using
// params. The returned aligner owns thread-local DP buffers and is not
// safe for concurrent use by multiple goroutines (spec §5's
// AlignerSelector contract: one instance per worker).
func NewGappedAligner(g *graph.Graph, idx *KmerIndex, params HeuristicParameters) *GappedAligner {
	return &GappedAligner{
		g:      g,
		idx:    idx,
		params: params,
		linear: NewPinnedLinearAligner(params.Linear, params.NPolicy),
		dag:    NewPinnedDAGAligner(params.Affine, params.NPolicy, params.Boundary, params.MaxRepeatsPerNode),
	}
}

// AlignWhole runs the affine-gap DAG aligner (C7) directly from start
// over the entire query, bypassing seed search, and returns the raw
// DAGAlignResult (scores, graph-CIGAR strings and trace) without
// building a GraphAlignment. Align with Backend set to DagAligner runs
// the same kind of pass from the graph's root and does build a
// GraphAlignment from its trace.
func (a *GappedAligner) AlignWhole(start graph.NodeID, query string) (*DAGAlignResult, error) {
	return a.dag.AlignFromNode(a.g, start, query)
}

// dagBackendAlign is the Backend: DagAligner entry point for Align: it
// runs the affine-gap DAG aligner (C7) once from the graph's root over
// the whole query, then rebuilds a single GraphAlignment from the
// result's per-occurrence Trace — keeping every self-loop visit to a
// repeat node distinct via TraceStep.Occurrence, rather than merging
// same-node runs the way GenerateCigar's string rendering does. It
// returns nil if the DAG aligner errors or finds nothing to trace.
func (a *GappedAligner) dagBackendAlign(query string) []*GraphAlignment {
	root := rootNode(a.g)
	result, err := a.dag.AlignFromNode(a.g, root, query)
	if err != nil || len(result.Trace) == 0 {
		return nil
	}
	path, alignments, err := buildGraphAlignmentFromTrace(a.g, result.Trace)
	if err != nil {
		return nil
	}
	ga, err := NewGraphAlignment(path, alignments)
	if err != nil {
		return nil
	}
	return []*GraphAlignment{ga}
}

// rootNode returns the lowest-numbered node with no predecessors, the
// conventional entry point of a flank-repeat-flank locus graph. It
// falls back to node 0 if every node has a predecessor.
func rootNode(g graph.Directed) graph.NodeID {
	for id := graph.NodeID(0); int(id) < g.NumNodes(); id++ {
		if len(g.Predecessors(id)) == 0 {
			return id
		}
	}
	return 0
}

// buildGraphAlignmentFromTrace converts a DAGAlignResult.Trace into a
// Path and its per-node LinearAlignments. Trace is in forward order and
// covers every column from the root's first base up to the final
// occurrence's last consumed base; any leading Softclip entries
// (Occurrence == -1, emitted before the root node's first column is
// ever reached) are attached as the first operation of the first real
// node's LinearAlignment, the one place Softclip is allowed to appear
// other than at the very end.
func buildGraphAlignmentFromTrace(g graph.Directed, trace []TraceStep) (*graph.Path, []*LinearAlignment, error) {
	i := 0
	leadingClip := 0
	for i < len(trace) && trace[i].Occurrence == -1 {
		leadingClip++
		i++
	}
	rest := trace[i:]
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf("%w: trace has no node-attributed steps", ErrAlignmentInconsistent)
	}

	var nodeIDs []graph.NodeID
	var groups [][]TraceStep
	for _, step := range rest {
		if n := len(groups); n > 0 {
			head := groups[n-1][0]
			if head.NodeID == step.NodeID && head.Occurrence == step.Occurrence {
				groups[n-1] = append(groups[n-1], step)
				continue
			}
		}
		nodeIDs = append(nodeIDs, step.NodeID)
		groups = append(groups, []TraceStep{step})
	}

	alignments := make([]*LinearAlignment, len(groups))
	pos, endOffset, firstOverlap := 0, 0, 0
	for gi, grp := range groups {
		var ops []Operation
		if gi == 0 && leadingClip > 0 {
			ops = append(ops, Operation{Kind: Softclip, Length: leadingClip})
		}
		for _, step := range grp {
			if n := len(ops); n > 0 && ops[n-1].Kind == step.Kind {
				ops[n-1].Length++
			} else {
				ops = append(ops, Operation{Kind: step.Kind, Length: 1})
			}
		}
		la, err := NewLinearAlignment(pos, ops)
		if err != nil {
			return nil, nil, err
		}
		alignments[gi] = la

		overlap := 0
		for _, op := range ops {
			if op.ConsumesReference() {
				overlap += op.Length
			}
		}
		if gi == 0 {
			firstOverlap = overlap
		}
		pos += overlap
		endOffset = overlap
	}

	// Under BoundaryLocal the trace can start partway through the first
	// node (any unrolled column is a free starting point), so the first
	// node's overlap may be shorter than its full length: recover the
	// start offset that implies, rather than always pinning to column 0.
	// A single-node path has no independent signal for where within that
	// one occurrence the alignment begins, so it keeps the prior
	// always-0 start offset.
	startOffset := 0
	if len(nodeIDs) > 1 {
		startOffset = g.NodeLen(nodeIDs[0]) - firstOverlap
	}

	path, err := graph.NewPath(g, startOffset, nodeIDs, endOffset)
	if err != nil {
		return nil, nil, err
	}
	return path, alignments, nil
}

// Align runs the full seed-and-extend pipeline for query, returning
// every co-optimal GraphAlignment found. A failed seed search (NoSeed)
// is the one recovered condition of spec §7: it yields an empty
// result, never a failure. HeuristicParameters.Backend
// selects which pipeline runs: DagAligner dispatches to
// dagBackendAlign (C7 run once from the graph's root, skipping seed
// search entirely); anything else runs the PathAligner seed-and-extend
// pipeline below.
func (a *GappedAligner) Align(query string) []*GraphAlignment {
	if a.params.Backend == DagAligner {
		return a.dagBackendAlign(query)
	}
	k := a.idx.K()
	seedPos, seeds := a.findSeed(query, k)
	if seeds == nil {
		return nil
	}

	var candidates []*GraphAlignment
	limit := a.params.maxCandidates()
outer:
	for _, seed := range seeds {
		trimmed := a.trimSeed(seed)
		for _, ga := range a.assemble(query, seedPos, k, trimmed) {
			candidates = append(candidates, ga)
			if len(candidates) >= limit {
				break outer
			}
		}
	}
	return dedupeBest(candidates, a.params.Linear)
}

// findSeed scans query for the first k-mer with a unique path match;
// if none is unique, it returns the first match with the fewest paths.
// Returns (pos, nil) if no k-mer in query is indexed at all.
func (a *GappedAligner) findSeed(query string, k int) (int, []*graph.Path) {
	bestPos, bestPaths := -1, []*graph.Path(nil)
	for pos := 0; pos+k <= len(query); pos++ {
		kmer := query[pos : pos+k]
		if !a.idx.Contains(kmer) {
			continue
		}
		paths := a.idx.Paths(kmer)
		if len(paths) == 1 {
			return pos, paths
		}
		if bestPaths == nil || len(paths) < len(bestPaths) {
			bestPos, bestPaths = pos, paths
		}
	}
	if bestPaths == nil {
		return 0, nil
	}
	return bestPos, bestPaths
}

// trimSeed drops seedAffixTrimLength bases from both ends of seed,
// falling back to a smaller or zero trim if the path cannot shrink
// that far.
func (a *GappedAligner) trimSeed(seed *graph.Path) *graph.Path {
	trim := a.params.SeedAffixTrimLength
	if trim <= 0 {
		return seed
	}
	for t := trim; t >= 0; t-- {
		if 2*t >= seed.Length() {
			continue
		}
		s, err := seed.ShrinkStartBy(t)
		if err != nil {
			continue
		}
		s, err = s.ShrinkEndBy(t)
		if err != nil {
			continue
		}
		return s
	}
	return seed
}

// assemble extends seed backward and forward by the query bases
// outside it (plus padding), exploring every branch the graph offers
// in each direction, aligns each flank with the pinned linear aligner
// (C6), and stitches prefix+seed+suffix into a GraphAlignment per branch
// pair, capped by HeuristicParameters.MaxCandidates.
func (a *GappedAligner) assemble(query string, seedQueryPos, k int, seed *graph.Path) []*GraphAlignment {
	coreStart := seedQueryPos + (k-seed.Length())/2
	if coreStart < 0 {
		coreStart = 0
	}
	coreEnd := coreStart + seed.Length()
	if coreEnd > len(query) {
		coreEnd = len(query)
	}
	prefixQuery := query[:coreStart]
	suffixQuery := query[coreEnd:]

	prefixLen := len(prefixQuery) + a.params.PaddingLength
	suffixLen := len(suffixQuery) + a.params.PaddingLength

	limit := a.params.maxCandidates()
	var out []*GraphAlignment
	for _, started := range extendStartUpTo(seed, prefixLen) {
		prefixTargetLen := started.Length() - seed.Length()
		for _, merged := range extendEndUpTo(started, suffixLen) {
			ga, err := a.assembleOne(prefixQuery, suffixQuery, seed, merged, prefixTargetLen)
			if err == nil && ga != nil {
				out = append(out, ga)
			}
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func (a *GappedAligner) assembleOne(prefixQuery, suffixQuery string, seed, merged *graph.Path, prefixTargetLen int) (*GraphAlignment, error) {
	mergedSeq := merged.Seq()
	coreTarget := mergedSeq[prefixTargetLen : prefixTargetLen+seed.Length()]
	prefixTarget := mergedSeq[:prefixTargetLen]
	suffixTarget := mergedSeq[prefixTargetLen+seed.Length():]

	var prefixLA, suffixLA *LinearAlignment
	var err error
	if len(prefixTarget) == 0 {
		prefixLA, err = NewLinearAlignment(0, nil)
	} else {
		prefixLA, err = a.linear.SuffixAlign(prefixQuery, prefixTarget)
	}
	if err != nil {
		return nil, err
	}
	if len(suffixTarget) == 0 {
		suffixLA, err = NewLinearAlignment(0, nil)
	} else {
		suffixLA, err = a.linear.PrefixAlign(suffixQuery, suffixTarget)
	}
	if err != nil {
		return nil, err
	}

	coreOps := []Operation(nil)
	if len(coreTarget) > 0 {
		coreOps = append(coreOps, Operation{Kind: Match, Length: len(coreTarget)})
	}
	coreLA, err := NewLinearAlignment(0, coreOps)
	if err != nil {
		return nil, err
	}

	unusedLeading := prefixLA.ReferenceStart()
	unusedTrailing := len(suffixTarget) - suffixLA.ReferenceLength()

	trimmed, err := merged.ShrinkStartBy(unusedLeading)
	if err != nil {
		return nil, err
	}
	trimmed, err = trimmed.ShrinkEndBy(unusedTrailing)
	if err != nil {
		return nil, err
	}

	combinedOps := append(append(append([]Operation(nil), prefixLA.Operations()...), coreLA.Operations()...), suffixLA.Operations()...)
	combined, err := NewLinearAlignment(0, mergeAdjacent(combinedOps))
	if err != nil {
		return nil, err
	}

	perNode, err := splitPerNode(trimmed, combined)
	if err != nil {
		return nil, err
	}
	return NewGraphAlignment(trimmed, perNode)
}

// splitPerNode decomposes a flat LinearAlignment, whose reference span
// equals path.Length(), into one LinearAlignment per node of path.
func splitPerNode(path *graph.Path, la *LinearAlignment) ([]*LinearAlignment, error) {
	out := make([]*LinearAlignment, path.NumNodes())
	rest := la
	pos := 0
	for i := 0; i < path.NumNodes(); i++ {
		n := path.OverlapLengthOnNodeAtIndex(i)
		prefix, suffix, err := rest.SplitAtReferencePosition(n)
		if err != nil {
			return nil, err
		}
		shifted, err := NewLinearAlignment(pos, prefix.Operations())
		if err != nil {
			return nil, err
		}
		out[i] = shifted
		rest, err = NewLinearAlignment(0, suffix.Operations())
		if err != nil {
			return nil, err
		}
		pos += n
	}
	return out, nil
}

func dedupeBest(cands []*GraphAlignment, lp LinearAlignerParams) []*GraphAlignment {
	if len(cands) == 0 {
		return nil
	}
	best := negInfScore
	for _, c := range cands {
		if s := scoreOf(c, lp); s > best {
			best = s
		}
	}
	var kept []*GraphAlignment
	for _, c := range cands {
		if scoreOf(c, lp) != best {
			continue
		}
		dup := false
		for _, k := range kept {
			if k.Equal(c) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}

func scoreOf(ga *GraphAlignment, lp LinearAlignerParams) int {
	s := ga.Summary()
	return s.Matched*lp.MatchScore + s.Mismatched*lp.MismatchScore + (s.Inserted+s.Deleted)*lp.GapScore
}

// extendStartUpTo extends p backward by up to n bases, tolerating a
// graph boundary short of n bases by extending as far as possible
// instead of failing (unlike Path.ExtendStartBy's exact-length
// contract).
func extendStartUpTo(p *graph.Path, n int) []*graph.Path {
	if n <= 0 {
		return []*graph.Path{p}
	}
	avail := p.StartOffset()
	if n <= avail {
		q, err := p.MoveStartBy(-n)
		if err != nil {
			return []*graph.Path{p}
		}
		return []*graph.Path{q}
	}
	remaining := n - avail
	preds := p.Graph().Predecessors(p.NodeIDs()[0])
	if len(preds) == 0 {
		q, err := p.MoveStartBy(-avail)
		if err != nil {
			return []*graph.Path{p}
		}
		return []*graph.Path{q}
	}
	var out []*graph.Path
	for _, pred := range preds {
		extended, err := p.ExtendStartNodeTo(pred)
		if err != nil {
			continue
		}
		predLen := p.Graph().NodeLen(pred)
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
		out = append(out, extendStartUpTo(moved, remaining-consume)...)
	}
	if len(out) == 0 {
		q, err := p.MoveStartBy(-avail)
		if err != nil {
			return []*graph.Path{p}
		}
		return []*graph.Path{q}
	}
	return out
}

// extendEndUpTo is the symmetric counterpart of extendStartUpTo.
func extendEndUpTo(p *graph.Path, n int) []*graph.Path {
	if n <= 0 {
		return []*graph.Path{p}
	}
	last := p.NodeIDs()[len(p.NodeIDs())-1]
	lastLen := p.Graph().NodeLen(last)
	avail := lastLen - p.EndOffset()
	if n <= avail {
		q, err := p.MoveEndBy(n)
		if err != nil {
			return []*graph.Path{p}
		}
		return []*graph.Path{q}
	}
	remaining := n - avail
	succs := p.Graph().Successors(last)
	if len(succs) == 0 {
		q, err := p.MoveEndBy(avail)
		if err != nil {
			return []*graph.Path{p}
		}
		return []*graph.Path{q}
	}
	var out []*graph.Path
	for _, succ := range succs {
		extended, err := p.ExtendEndNodeTo(succ)
		if err != nil {
			continue
		}
		succLen := p.Graph().NodeLen(succ)
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
		out = append(out, extendEndUpTo(moved, remaining-consume)...)
	}
	if len(out) == 0 {
		q, err := p.MoveEndBy(avail)
		if err != nil {
			return []*graph.Path{p}
		}
		return []*graph.Path{q}
	}
	return out
}
