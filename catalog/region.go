// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"github.com/biogo/store/interval"
)

// RegionIndex answers on-target/off-target routing queries (spec
// §4.1/§5's per-locus region windows) by contig: does a genomic
// position fall inside one of this locus's target regions, or one of
// its off-target regions.
type RegionIndex struct {
	target    map[string]*interval.IntTree
	offTarget map[string]*interval.IntTree
}

// NewRegionIndex builds the two interval trees (one per contig, per
// region set) from a LocusSpecification's TargetRegions and
// OffTargetRegions.
func NewRegionIndex(spec *LocusSpecification) *RegionIndex {
	idx := &RegionIndex{
		target:    buildTrees(spec.TargetRegions),
		offTarget: buildTrees(spec.OffTargetRegions),
	}
	return idx
}

func buildTrees(regions []Region) map[string]*interval.IntTree {
	trees := make(map[string]*interval.IntTree)
	for i, r := range regions {
		t, ok := trees[r.Chrom]
		if !ok {
			t = &interval.IntTree{}
			trees[r.Chrom] = t
		}
		t.Insert(regionInterval{Region: r, id: uintptr(i) + 1}, true)
	}
	for _, t := range trees {
		t.AdjustRanges()
	}
	return trees
}

// IsOnTarget reports whether [pos, pos+1) on chrom overlaps one of the
// locus's target regions.
func (idx *RegionIndex) IsOnTarget(chrom string, pos int) bool {
	return overlapsAny(idx.target, chrom, pos)
}

// IsOffTarget reports whether [pos, pos+1) on chrom overlaps one of the
// locus's explicitly configured off-target regions (spec §4.1's
// "off-target mate anchored in a homologous region" case).
func (idx *RegionIndex) IsOffTarget(chrom string, pos int) bool {
	return overlapsAny(idx.offTarget, chrom, pos)
}

func overlapsAny(trees map[string]*interval.IntTree, chrom string, pos int) bool {
	t, ok := trees[chrom]
	if !ok {
		return false
	}
	hits := t.Get(regionInterval{Region: Region{Start: pos, End: pos + 1}})
	return len(hits) > 0
}

type regionInterval struct {
	Region
	id uintptr
}

func (r regionInterval) ID() uintptr { return r.id }

func (r regionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: r.Start, End: r.End}
}

func (r regionInterval) Overlap(b interval.IntRange) bool {
	return r.End > b.Start && r.Start < b.End
}
