// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package locus implements the per-locus read driver (C11): it orients
// each mate, aligns it with the gapped graph aligner, dispatches
// successful alignments to the locus's variant analyzers, and falls
// back to in-repeat-pair detection when neither mate aligns.
package locus

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Illumina/ExpansionHunter-sub003/align"
	"github.com/Illumina/ExpansionHunter-sub003/irr"
)

// Read is one sequenced mate: its bases, matching quality string, and
// whether it has been reverse-complemented relative to how it was
// read off the instrument.
type Read struct {
	ID         string
	Seq        string
	Qual       string
	IsReversed bool
}

// oriented returns r as predicted by o: r itself, unchanged, for
// OriginalOrientation, and a new reverse-complemented Read (sequence, quality, and the
// IsReversed flag flipped) for ReverseComplement.
func (r *Read) oriented(o align.Orientation) *Read {
	if o != align.ReverseComplement {
		return r
	}
	return &Read{
		ID:         r.ID,
		Seq:        align.ReverseComplementSeq(r.Seq),
		Qual:       reverseString(r.Qual),
		IsReversed: !r.IsReversed,
	}
}

func reverseString(s string) string {
	n := len(s)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = s[n-1-i]
	}
	return string(out)
}

// VariantAnalyzer receives every successfully aligned mate's
// GraphAlignment. *classify.VariantClassifier satisfies this
// interface.
type VariantAnalyzer interface {
	Classify(ga *align.GraphAlignment)
}

// AlignmentWriter is invoked once per successfully aligned mate (spec
// §6's alignment-writer sink).
type AlignmentWriter interface {
	Write(readID string, mateIndex int, ga *align.GraphAlignment)
}

// CoverageStats accumulates the locus-level bookkeeping the driver
// updates as fragments are processed; it feeds the external genotyper
// alongside the classifier/IRR count tables.
type CoverageStats struct {
	AlignedPairs          int
	AlignedMates          int
	AlignedQueryBases     int
	SingleMateCount       int
	UnalignedPairs        int
	InRepeatPairsAttempted int

	alignedLengths    []float64
	singleMateLengths []float64
}

func (s *CoverageStats) recordAlignedMate(ga *align.GraphAlignment) {
	s.AlignedMates++
	n := ga.QueryLength()
	s.AlignedQueryBases += n
	s.alignedLengths = append(s.alignedLengths, float64(n))
}

func (s *CoverageStats) recordSingleMate(length int) {
	s.SingleMateCount++
	s.singleMateLengths = append(s.singleMateLengths, float64(length))
}

// MeanAlignedQueryLength returns the mean query length across every
// aligned mate recorded so far (0 if none have been recorded).
func (s *CoverageStats) MeanAlignedQueryLength() float64 {
	if len(s.alignedLengths) == 0 {
		return 0
	}
	return stat.Mean(s.alignedLengths, nil)
}

// StdDevAlignedQueryLength returns the sample standard deviation of
// aligned mate query lengths (0 if fewer than two have been recorded).
func (s *CoverageStats) StdDevAlignedQueryLength() float64 {
	if len(s.alignedLengths) < 2 {
		return 0
	}
	return stat.StdDev(s.alignedLengths, nil)
}

// MeanSingleMateLength returns the mean read length across fragments
// where only one mate aligned (0 if none have been recorded).
func (s *CoverageStats) MeanSingleMateLength() float64 {
	if len(s.singleMateLengths) == 0 {
		return 0
	}
	return stat.Mean(s.singleMateLengths, nil)
}

// Driver orchestrates one locus's per-fragment processing per spec
// §4.12. Its fields other than the read-only Graph/KmerIndex are
// exclusively owned by the worker running this locus (spec §5).
type Driver struct {
	orient   *align.OrientationPredictor
	aligner  *align.GappedAligner
	analyzers []VariantAnalyzer
	irrFinder *irr.LocusIRRFinder
	writer    AlignmentWriter

	Stats CoverageStats
}

// NewDriver builds a locus Driver. irrFinder and writer may be nil: a
// nil irrFinder disables the off-target/unaligned-pair recovery path; a
// nil writer disables alignment emission.
func NewDriver(aligner *align.GappedAligner, orient *align.OrientationPredictor, analyzers []VariantAnalyzer, irrFinder *irr.LocusIRRFinder, writer AlignmentWriter) *Driver {
	return &Driver{
		orient:    orient,
		aligner:   aligner,
		analyzers: analyzers,
		irrFinder: irrFinder,
		writer:    writer,
	}
}

// alignMate orients r and attempts to align it, returning the resulting
// GraphAlignment (nil if orientation says DoesNotAlign or the gapped
// aligner finds nothing) and the oriented read actually used.
func (d *Driver) alignMate(r *Read) (*align.GraphAlignment, *Read) {
	o := d.orient.Predict(r.Seq)
	if o == align.DoesNotAlign {
		return nil, r
	}
	oriented := r.oriented(o)
	results := d.aligner.Align(oriented.Seq)
	if len(results) == 0 {
		return nil, oriented
	}
	return results[0], oriented
}

// dispatch sends ga to every registered variant analyzer and, if a
// writer is configured, emits it.
func (d *Driver) dispatch(readID string, mateIndex int, ga *align.GraphAlignment) {
	for _, a := range d.analyzers {
		a.Classify(ga)
	}
	if d.writer != nil {
		d.writer.Write(readID, mateIndex, ga)
	}
}

// ProcessPair runs the five-step on-target fragment pipeline of spec
// §4.12 for one read pair sharing fragment id.
func (d *Driver) ProcessPair(id string, mate1, mate2 *Read) {
	ga1, oriented1 := d.alignMate(mate1)
	ga2, oriented2 := d.alignMate(mate2)

	switch {
	case ga1 != nil && ga2 != nil:
		d.Stats.AlignedPairs++
		d.Stats.recordAlignedMate(ga1)
		d.Stats.recordAlignedMate(ga2)
		d.dispatch(id, 1, ga1)
		d.dispatch(id, 2, ga2)

	case ga1 == nil && ga2 == nil:
		d.Stats.UnalignedPairs++
		if d.irrFinder != nil {
			d.Stats.InRepeatPairsAttempted++
			d.irrFinder.TryPair(oriented1.Seq, oriented2.Seq)
		}

	case ga1 != nil:
		d.Stats.recordSingleMate(len(oriented2.Seq))

	default:
		d.Stats.recordSingleMate(len(oriented1.Seq))
	}
}

// ProcessSingle handles a fragment with no mate present (an
// orphan/solo read still in the on-target region): it is aligned and
// classified like any lone mate, with no pair-level bookkeeping.
func (d *Driver) ProcessSingle(id string, mate *Read) {
	ga, _ := d.alignMate(mate)
	if ga == nil {
		return
	}
	d.Stats.recordAlignedMate(ga)
	d.dispatch(id, 1, ga)
}

// ProcessOffTargetPair runs only the IRR recovery path, per spec
// §4.12's "for off-target reads, only the IRR path applies."
func (d *Driver) ProcessOffTargetPair(mate1, mate2 *Read) bool {
	if d.irrFinder == nil {
		return false
	}
	d.Stats.InRepeatPairsAttempted++
	return d.irrFinder.TryPair(mate1.Seq, mate2.Seq)
}
