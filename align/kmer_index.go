// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"fmt"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// maxKmerLen bounds k so that a 2-bit-per-base encoding of the kmer fits
// a uint64 index key (spec §4.5: "k chosen so that k x 2 bits fits the
// index key type").
const maxKmerLen = 32

// KmerIndex maps every k-mer found in a Graph to the set of Paths whose
// sequence equals that k-mer. Two per-graph aggregates support seed
// uniqueness scoring for the gapped aligner.
type KmerIndex struct {
	k int
	g *graph.Graph

	paths map[uint64][]*graph.Path

	uniqueOnNode map[graph.NodeID]int
	uniqueOnEdge map[[2]graph.NodeID]int
}

// NewKmerIndex builds a KmerIndex for the given k over g. It fails with
// ErrKmerTooLong if k*2 bits would not fit the uint64 key.
func NewKmerIndex(g *graph.Graph, k int) (*KmerIndex, error) {
	if k <= 0 || k > maxKmerLen {
		return nil, fmt.Errorf("%w: k=%d", ErrKmerTooLong, k)
	}
	idx := &KmerIndex{
		k:            k,
		g:            g,
		paths:        make(map[uint64][]*graph.Path),
		uniqueOnNode: make(map[graph.NodeID]int),
		uniqueOnEdge: make(map[[2]graph.NodeID]int),
	}
	if err := idx.build(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *KmerIndex) build() error {
	for id := graph.NodeID(0); int(id) < idx.g.NumNodes(); id++ {
		nodeLen := idx.g.NodeLen(id)
		for start := 0; start < nodeLen; start++ {
			seed, err := graph.NewPath(idx.g, start, []graph.NodeID{id}, start)
			if err != nil {
				continue
			}
			exts, err := seed.ExtendEndBy(idx.k)
			if err != nil {
				continue
			}
			for _, p := range exts {
				if p.Length() != idx.k {
					continue
				}
				idx.insertPath(p)
			}
		}
	}
	idx.computeUniqueness()
	return nil
}

func (idx *KmerIndex) insertPath(p *graph.Path) {
	expansions, _ := expandSequence(p.Seq())
	seen := make(map[uint64]bool, len(expansions))
	for _, concrete := range expansions {
		if !isACGT(concrete) || len(concrete) != idx.k {
			continue
		}
		key, ok := encodeKmer(concrete)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		idx.paths[key] = append(idx.paths[key], p)
	}
}

func (idx *KmerIndex) computeUniqueness() {
	for _, paths := range idx.paths {
		if len(paths) != 1 {
			continue
		}
		p := paths[0]
		ids := p.NodeIDs()
		for _, id := range uniqueNodeIDs(ids) {
			idx.uniqueOnNode[id]++
		}
		for i := 0; i+1 < len(ids); i++ {
			idx.uniqueOnEdge[[2]graph.NodeID{ids[i], ids[i+1]}]++
		}
	}
}

func uniqueNodeIDs(ids []graph.NodeID) []graph.NodeID {
	seen := make(map[graph.NodeID]bool, len(ids))
	var out []graph.NodeID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// K returns the index's fixed k-mer length.
func (idx *KmerIndex) K() int { return idx.k }

// Contains reports whether kmer is present in the index. It is false for
// any kmer whose length is not k or which contains a non-ACGT character.
func (idx *KmerIndex) Contains(kmer string) bool {
	if len(kmer) != idx.k || !isACGT(kmer) {
		return false
	}
	key, ok := encodeKmer(kmer)
	if !ok {
		return false
	}
	_, found := idx.paths[key]
	return found
}

// Paths returns every Path whose sequence equals kmer.
func (idx *KmerIndex) Paths(kmer string) []*graph.Path {
	if len(kmer) != idx.k || !isACGT(kmer) {
		return nil
	}
	key, ok := encodeKmer(kmer)
	if !ok {
		return nil
	}
	return idx.paths[key]
}

// UniqueKmerCountOnNode returns the number of stored k-mers whose path
// list has size 1 and touches id.
func (idx *KmerIndex) UniqueKmerCountOnNode(id graph.NodeID) int {
	return idx.uniqueOnNode[id]
}

// UniqueKmerCountOnEdge returns the number of stored k-mers whose path
// list has size 1 and crosses the edge (u,v).
func (idx *KmerIndex) UniqueKmerCountOnEdge(u, v graph.NodeID) int {
	return idx.uniqueOnEdge[[2]graph.NodeID{u, v}]
}

var baseCode = map[byte]uint64{'A': 0, 'C': 1, 'G': 2, 'T': 3}

// encodeKmer packs an ACGT-only string into a 2-bit-per-base uint64 key.
func encodeKmer(kmer string) (uint64, bool) {
	var key uint64
	for i := 0; i < len(kmer); i++ {
		code, ok := baseCode[kmer[i]]
		if !ok {
			return 0, false
		}
		key = key<<2 | code
	}
	return key, true
}
