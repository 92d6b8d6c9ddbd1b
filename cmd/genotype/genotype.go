// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// genotype wires the core graph-alignment and read-classification
// engine to a BAM input and a locus catalog, printing per-variant
// count tables to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Illumina/ExpansionHunter-sub003/align"
	"github.com/Illumina/ExpansionHunter-sub003/catalog"
	"github.com/Illumina/ExpansionHunter-sub003/classify"
	"github.com/Illumina/ExpansionHunter-sub003/irr"
	"github.com/Illumina/ExpansionHunter-sub003/locus"
	"github.com/Illumina/ExpansionHunter-sub003/readsrc"
)

var (
	bamPath     = flag.String("bam", "", "input BAM file name (required)")
	catalogPath = flag.String("catalog", "", "locus specification YAML file name (required)")
	kmerLen     = flag.Int("kmer-len", 16, "k-mer length used for seeding and orientation voting")
	minKmerHits = flag.Int("min-kmer-hits", 2, "minimum distinct k-mer matches to call an orientation")
	padding     = flag.Int("padding", 4, "extra bases of context probed beyond each seed extension")
)

func main() {
	flag.Parse()
	if *bamPath == "" || *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	spec, err := catalog.LoadLocusSpecificationFile(*catalogPath)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	g, err := spec.Graph.Build()
	if err != nil {
		log.Fatalf("failed to build graph for locus %s: %v", spec.LocusID, err)
	}

	idx, err := align.NewKmerIndex(g, *kmerLen)
	if err != nil {
		log.Fatalf("failed to build kmer index for locus %s: %v", spec.LocusID, err)
	}

	heuristics := align.HeuristicParameters{
		KmerLenForAlignment: *kmerLen,
		PaddingLength:       *padding,
		Backend:             align.PathAligner,
		Linear:              align.LinearAlignerParams{MatchScore: 2, MismatchScore: -4, GapScore: -4},
		Affine:              align.AffineParams{MatchScore: 2, MismatchScore: -4, GapOpenScore: -4, GapExtendScore: -2},
		NPolicy:             align.NMatchesBoth,
		Boundary:            align.BoundaryGlobal,
		MaxRepeatsPerNode:   20,
		MaxCandidates:       32,
	}

	var analyzers []locus.VariantAnalyzer
	var repeatAnalyzers []*irr.RepeatAnalyzer
	for _, v := range spec.Variants {
		vc, err := classify.NewVariantClassifier(v.NodeIDsAsGraph())
		if err != nil {
			log.Fatalf("failed to build classifier for variant %s: %v", v.ID, err)
		}
		analyzers = append(analyzers, vc)
		if v.Classification.Type == catalog.Repeat {
			motif := v.Classification.Subtype
			ra, err := irr.NewRepeatAnalyzer(motif)
			if err != nil {
				log.Fatalf("failed to build repeat analyzer for variant %s: %v", v.ID, err)
			}
			repeatAnalyzers = append(repeatAnalyzers, ra)
		}
	}

	var irrFinder *irr.LocusIRRFinder
	if len(repeatAnalyzers) > 0 {
		irrFinder, err = irr.NewLocusIRRFinder(repeatAnalyzers[0].Motif(), repeatAnalyzers)
		if err != nil {
			log.Fatalf("failed to bind IRR finder for locus %s: %v", spec.LocusID, err)
		}
	}

	bamFile, err := os.Open(*bamPath)
	if err != nil {
		log.Fatalf("failed to open bam: %v", err)
	}
	defer bamFile.Close()

	src, err := readsrc.OpenBAM(bamFile)
	if err != nil {
		log.Fatalf("failed to read bam: %v", err)
	}
	defer src.Close()

	writer := readsrc.NewCigarWriter(os.Stdout)
	orient := align.NewOrientationPredictor(idx, *minKmerHits)
	gapped := align.NewGappedAligner(g, idx, heuristics)
	driver := locus.NewDriver(gapped, orient, analyzers, irrFinder, writer)
	regions := catalog.NewRegionIndex(spec)

	for {
		frag, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to read fragment: %v", err)
		}
		switch {
		case frag.Mate1 != nil && frag.Mate2 != nil:
			onTarget := regions.IsOnTarget(frag.Chrom1, frag.Pos1) || regions.IsOnTarget(frag.Chrom2, frag.Pos2)
			offTarget := regions.IsOffTarget(frag.Chrom1, frag.Pos1) && regions.IsOffTarget(frag.Chrom2, frag.Pos2)
			switch {
			case onTarget:
				driver.ProcessPair(frag.ID, frag.Mate1, frag.Mate2)
			case offTarget:
				driver.ProcessOffTargetPair(frag.Mate1, frag.Mate2)
			default:
				driver.ProcessPair(frag.ID, frag.Mate1, frag.Mate2)
			}
		case frag.Mate1 != nil:
			driver.ProcessSingle(frag.ID, frag.Mate1)
		}
	}

	fmt.Printf("# locus %s\n", spec.LocusID)
	fmt.Printf("aligned_pairs\t%d\n", driver.Stats.AlignedPairs)
	fmt.Printf("unaligned_pairs\t%d\n", driver.Stats.UnalignedPairs)
	for i, v := range spec.Variants {
		vc, ok := analyzers[i].(*classify.VariantClassifier)
		if !ok {
			continue
		}
		fmt.Printf("variant\t%s\tbypassing\t%d\n", v.ID, vc.Bypassing())
		for node, count := range vc.SpanningCounts() {
			fmt.Printf("variant\t%s\tspanning\t%d\t%d\n", v.ID, node, count)
		}
	}
	if irrFinder != nil {
		fmt.Printf("in_repeat_pairs\t%d\n", irrFinder.Analyzer().InRepeatPairCount())
	}
}
