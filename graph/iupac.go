// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

// iupacCodes maps each IUPAC ambiguity code to the set of concrete bases
// it represents. This mirrors the redundancy table biogo/biogo/alphabet
// uses for its ambiguity codes, reproduced here because sequence
// expansion is invariant-bearing core logic (spec §3) rather than an I/O
// concern, and must not depend on guessing an external package's exact
// enumeration order.
var iupacCodes = map[byte][]byte{
	'A': {'A'},
	'C': {'C'},
	'G': {'G'},
	'T': {'T'},
	'R': {'A', 'G'},
	'Y': {'C', 'T'},
	'S': {'G', 'C'},
	'W': {'A', 'T'},
	'K': {'G', 'T'},
	'M': {'A', 'C'},
	'B': {'C', 'G', 'T'},
	'D': {'A', 'G', 'T'},
	'H': {'A', 'C', 'T'},
	'V': {'A', 'C', 'G'},
	'N': {'A', 'C', 'G', 'T'},
}

// maxExpansion bounds the number of concrete realizations a single
// sequence may expand to, preventing pathological ambiguity strings
// (e.g. long runs of N) from exhausting memory.
const maxExpansion = 4096

// expandSequence enumerates every concrete ACGT realization of seq,
// which may contain IUPAC ambiguity codes. The result is bounded by
// maxExpansion: once the limit is hit, expansion stops early and returns
// the partial (but still valid) set along with ok=false.
func expandSequence(seq string) (expansions []string, ok bool) {
	if seq == "" {
		return nil, true
	}
	cur := []byte{}
	var rec func(i int) bool
	results := make([]string, 0, 1)
	rec = func(i int) bool {
		if i == len(seq) {
			if len(results) >= maxExpansion {
				return false
			}
			results = append(results, string(cur))
			return true
		}
		bases, known := iupacCodes[upper(seq[i])]
		if !known {
			bases = []byte{upper(seq[i])}
		}
		for _, b := range bases {
			cur = append(cur, b)
			if !rec(i + 1) {
				cur = cur[:len(cur)-1]
				return false
			}
			cur = cur[:len(cur)-1]
		}
		return true
	}
	complete := rec(0)
	return results, complete
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// isACGT reports whether s consists only of unambiguous A/C/G/T bases.
func isACGT(s string) bool {
	for i := 0; i < len(s); i++ {
		switch upper(s[i]) {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}
