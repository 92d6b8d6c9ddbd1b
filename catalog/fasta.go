// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// ReferenceFasta indexes a multi-FASTA reference file by record ID, so
// that a NodeSpec's "reference" key can be resolved to the actual
// sequence it names rather than carrying the sequence inline.
type ReferenceFasta struct {
	seqs map[string]string
}

// LoadReferenceFasta reads every record in r into memory, keyed by
// FASTA id.
func LoadReferenceFasta(r io.Reader) (*ReferenceFasta, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	seqs := make(map[string]string)
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			continue
		}
		raw := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			raw[i] = byte(l)
		}
		seqs[s.ID] = string(raw)
	}
	if sc.Error() != nil {
		return nil, fmt.Errorf("catalog: read reference fasta: %w", sc.Error())
	}
	return &ReferenceFasta{seqs: seqs}, nil
}

// Lookup returns the sequence recorded under id, and whether it was
// found.
func (rf *ReferenceFasta) Lookup(id string) (string, bool) {
	s, ok := rf.seqs[id]
	return s, ok
}

// BuildWithReference is like GraphSpec.Build, but resolves any node
// whose Sequence is empty and Reference is set by looking Reference up
// in ref first.
func (gs GraphSpec) BuildWithReference(ref *ReferenceFasta) (*graph.Graph, error) {
	resolved := make([]NodeSpec, len(gs.Nodes))
	for i, n := range gs.Nodes {
		if n.Sequence == "" && n.Reference != "" {
			seq, ok := ref.Lookup(n.Reference)
			if !ok {
				return nil, fmt.Errorf("catalog: reference id %q not found for node %q", n.Reference, n.Name)
			}
			n.Sequence = seq
		}
		resolved[i] = n
	}
	gs.Nodes = resolved
	return gs.Build()
}
