// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

// LinearAlignerParams holds the Smith-Waterman-style scoring parameters
// shared by the pinned linear aligner (C6) and the pinned DAG aligner
// (C7), mirroring HeuristicParameters' score fields (spec §6).
type LinearAlignerParams struct {
	MatchScore    int
	MismatchScore int
	GapScore      int // linear gap penalty used by the pinned linear aligner
}

// NPolicy configures how the wildcard base 'N' is scored.
type NPolicy int

const (
	// NMatchesNeither never treats N as a wildcard.
	NMatchesNeither NPolicy = iota
	// NMatchesQuery treats a query N as matching any target base.
	NMatchesQuery
	// NMatchesTarget treats a target N as matching any query base.
	NMatchesTarget
	// NMatchesBoth treats N as a wildcard on either side.
	NMatchesBoth
)

// toUpperBase folds a lowercase (soft-masked) base to uppercase, the
// way the original aligner's PenaltyMatrix translation table maps both
// cases of A/C/G/T to the same oligo code: soft-masked bases are
// scored identically to their unmasked counterparts.
func toUpperBase(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// basesMatch reports whether q and t are the same base once
// soft-masking case is folded away.
func basesMatch(q, t byte) bool {
	return toUpperBase(q) == toUpperBase(t)
}

// matchesUnderPolicy reports whether q and t count as a match under
// policy: the same base once soft-masking case is folded away, or an N
// that policy treats as a wildcard.
func matchesUnderPolicy(policy NPolicy, q, t byte) bool {
	if basesMatch(q, t) {
		return true
	}
	q, t = toUpperBase(q), toUpperBase(t)
	if (policy == NMatchesQuery || policy == NMatchesBoth) && q == 'N' {
		return true
	}
	return (policy == NMatchesTarget || policy == NMatchesBoth) && t == 'N'
}

func baseScore(params LinearAlignerParams, policy NPolicy, q, t byte) int {
	q, t = toUpperBase(q), toUpperBase(t)
	if q == t {
		return params.MatchScore
	}
	if (policy == NMatchesQuery || policy == NMatchesBoth) && q == 'N' {
		return params.MatchScore
	}
	if (policy == NMatchesTarget || policy == NMatchesBoth) && t == 'N' {
		return params.MatchScore
	}
	return params.MismatchScore
}

// PinnedLinearAligner is a thread-local, reusable Smith-Waterman-style
// pinned aligner: its DP buffers are allocated on first use and resized
// by reset, never freed between calls, matching the AlignerSelector
// reuse contract of spec §5.
type PinnedLinearAligner struct {
	params LinearAlignerParams
	policy NPolicy

	v          [][]int
	trace      [][]byte
	lastTarget string
}

const (
	traceNone byte = iota
	traceDiag
	traceUp
	traceLeft
)

// NewPinnedLinearAligner returns a PinnedLinearAligner with the given
// scoring parameters and N policy.
func NewPinnedLinearAligner(params LinearAlignerParams, policy NPolicy) *PinnedLinearAligner {
	return &PinnedLinearAligner{params: params, policy: policy}
}

func (a *PinnedLinearAligner) reset(rows, cols int) {
	if len(a.v) < rows {
		a.v = make([][]int, rows)
		a.trace = make([][]byte, rows)
	}
	for i := 0; i < rows; i++ {
		if len(a.v[i]) < cols {
			a.v[i] = make([]int, cols)
			a.trace[i] = make([]byte, cols)
		}
	}
}

// negInf is a sentinel low enough that no real score chain can exceed
// it, used to block paths that would violate the top-left pin.
const negInf = -(1 << 30)

// PrefixAlign aligns query against target, pinned at the top-left
// corner: the alignment is forced to begin at query position 0 and
// target position 0, and is free to end wherever query or target is
// exhausted first. If target runs out first, the traceback continues
// along the last target column to wherever best explains the rest of
// the query; any query bases left over past that point are
// soft-clipped. If query runs out first, the remainder of target is
// simply left unconsumed.
func (a *PinnedLinearAligner) PrefixAlign(query, target string) (*LinearAlignment, error) {
	rows, cols := len(query)+1, len(target)+1
	a.reset(rows, cols)
	a.lastTarget = target

	a.v[0][0] = 0
	a.trace[0][0] = traceNone
	for j := 1; j < cols; j++ {
		a.v[0][j] = negInf
		a.trace[0][j] = traceNone
	}
	for i := 1; i < rows; i++ {
		a.v[i][0] = negInf
		a.trace[i][0] = traceNone
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			diag := a.v[i-1][j-1] + baseScore(a.params, a.policy, query[i-1], target[j-1])
			up := a.v[i-1][j] + a.params.GapScore
			left := a.v[i][j-1] + a.params.GapScore
			best, tb := diag, traceDiag
			// Ties prefer diagonal over vertical over horizontal.
			if up > best {
				best, tb = up, traceUp
			}
			if left > best {
				best, tb = left, traceLeft
			}
			a.v[i][j] = best
			a.trace[i][j] = tb
		}
	}

	bestI, bestJ, bestScore := rows-1, 0, a.v[rows-1][0]
	for j := 0; j < cols; j++ {
		if a.v[rows-1][j] > bestScore {
			bestScore, bestI, bestJ = a.v[rows-1][j], rows-1, j
		}
	}
	for i := 0; i < rows; i++ {
		if a.v[i][cols-1] > bestScore {
			bestScore, bestI, bestJ = a.v[i][cols-1], i, cols-1
		}
	}

	return a.traceback(query, bestI, bestJ)
}

// SuffixAlign aligns query against target, pinned at the bottom-right
// corner, by reversing both strings, running PrefixAlign, and reversing
// the resulting LinearAlignment back.
func (a *PinnedLinearAligner) SuffixAlign(query, target string) (*LinearAlignment, error) {
	la, err := a.PrefixAlign(reverseBytes(query), reverseBytes(target))
	if err != nil {
		return nil, err
	}
	return la.Reverse(len(target))
}

// traceback walks trace[][] back from (i,j), which must lie on the last
// row or last column, to (0,0). Any query bases beyond i (only possible
// when j is the last column, i.e. target was exhausted first) are
// soft-clipped at the end.
func (a *PinnedLinearAligner) traceback(query string, i, j int) (*LinearAlignment, error) {
	var ops []Operation
	if i < len(query) {
		ops = append(ops, Operation{Kind: Softclip, Length: len(query) - i})
	}
	for i > 0 || j > 0 {
		switch a.trace[i][j] {
		case traceDiag:
			kind := Match
			if !matchesUnderPolicy(a.policy, query[i-1], a.lastTarget[j-1]) {
				kind = Mismatch
			}
			ops = append(ops, Operation{Kind: kind, Length: 1})
			i--
			j--
		case traceUp:
			ops = append(ops, Operation{Kind: Insertion, Length: 1})
			i--
		case traceLeft:
			ops = append(ops, Operation{Kind: Deletion, Length: 1})
			j--
		default:
			return nil, ErrAlignmentInconsistent
		}
	}
	reverseOps(ops)
	return NewLinearAlignment(0, mergeAdjacent(ops))
}

func reverseOps(ops []Operation) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}

func reverseBytes(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
