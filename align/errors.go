// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align implements the linear and graph alignment
// representations, the k-mer index, the pinned linear and DAG aligners,
// the gapped graph aligner, and the orientation predictor.
package align

import "errors"

var (
	// ErrInvalidCigar is returned by ParseCigar for a malformed CIGAR
	// string.
	ErrInvalidCigar = errors.New("align: invalid cigar string")

	// ErrAlignmentInconsistent is returned by NewGraphAlignment when the
	// path's per-node overlap lengths disagree with the supplied
	// per-node LinearAlignments' reference spans.
	ErrAlignmentInconsistent = errors.New("align: path and per-node alignments disagree")

	// ErrKmerTooLong is returned by NewKmerIndex when k*2 bits would not
	// fit the index key type.
	ErrKmerTooLong = errors.New("align: kmer length too long for index")

	// errNoSeed names the no-seed condition of the gapped aligner. No
	// function returns it: the seed search reports a missing seed with a
	// nil path list, which GappedAligner.Align turns into an empty
	// alignment set (spec §7).
	errNoSeed = errors.New("align: no seed k-mer found")
)
