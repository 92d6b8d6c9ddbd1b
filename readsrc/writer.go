// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package readsrc

import (
	"fmt"
	"io"

	"github.com/Illumina/ExpansionHunter-sub003/align"
)

// CigarWriter implements locus.AlignmentWriter by emitting one
// tab-separated line per aligned mate: fragment id, mate index, graph
// CIGAR.
type CigarWriter struct {
	w io.Writer
}

// NewCigarWriter wraps w as a CigarWriter.
func NewCigarWriter(w io.Writer) *CigarWriter {
	return &CigarWriter{w: w}
}

// Write implements locus.AlignmentWriter.
func (cw *CigarWriter) Write(readID string, mateIndex int, ga *align.GraphAlignment) {
	fmt.Fprintf(cw.w, "%s\t%d\t%s\n", readID, mateIndex, ga.GenerateCigar())
}
