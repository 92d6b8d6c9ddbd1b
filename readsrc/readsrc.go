// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package readsrc adapts a BAM/SAM file, read with biogo/hts, to the
// core's read-source contract (spec §6): next() -> (read, optional
// mate), presenting orientation-agnostic sequence/quality strings and a
// stable fragment id.
package readsrc

import (
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/Illumina/ExpansionHunter-sub003/locus"
)

// recordReader is satisfied by both *sam.Reader and *bam.Reader,
// mirroring how the teacher's own BAM/SAM tools abstract over the two
// formats.
type recordReader interface {
	Read() (*sam.Record, error)
}

// Source reads BAM or SAM records and groups them into fragments (pairs
// or solo reads) keyed by query name, handing each fragment to the
// driver exactly once both mates have been seen (or immediately, for
// reads with no mate expected).
type Source struct {
	r        recordReader
	closer   io.Closer
	pending  map[string]*sam.Record
}

// OpenBAM starts streaming BAM records from f.
func OpenBAM(f io.Reader) (*Source, error) {
	br, err := bam.NewReader(f, 0)
	if err != nil {
		return nil, fmt.Errorf("readsrc: open bam: %w", err)
	}
	return &Source{r: br, closer: br, pending: make(map[string]*sam.Record)}, nil
}

// OpenSAM starts streaming SAM records from f.
func OpenSAM(f io.Reader) (*Source, error) {
	sr, err := sam.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("readsrc: open sam: %w", err)
	}
	return &Source{r: sr, pending: make(map[string]*sam.Record)}, nil
}

// Close releases the underlying file handle, if the format requires
// one (BAM does; plain SAM does not own the reader passed to it).
func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Fragment is one sequenced template: a single read, or a read plus its
// mate, as delivered by Next. Chrom1/Pos1 and Chrom2/Pos2 carry each
// mate's alignment position in the original reference coordinate
// system, letting the caller route the fragment through a
// catalog.RegionIndex before handing it to the locus driver.
type Fragment struct {
	ID    string
	Mate1 *locus.Read
	Mate2 *locus.Read

	Chrom1, Chrom2 string
	Pos1, Pos2     int
}

// Next returns the next complete fragment from the underlying
// BAM/SAM stream, or io.EOF once exhausted. Paired records are held
// back in s.pending until their mate arrives; a mate that never
// arrives (its partner absent from the file, or unmapped and filtered
// upstream) is eventually flushed alone when the stream ends.
func (s *Source) Next() (*Fragment, error) {
	for {
		rec, err := s.r.Read()
		if err == io.EOF {
			return s.flushOne()
		}
		if err != nil {
			return nil, err
		}
		if rec.Flags&sam.Secondary != 0 || rec.Flags&sam.Supplementary != 0 {
			continue
		}
		if rec.Flags&sam.Paired == 0 {
			chrom, pos := refPos(rec)
			return &Fragment{ID: rec.Name, Mate1: toRead(rec), Chrom1: chrom, Pos1: pos}, nil
		}
		if prev, ok := s.pending[rec.Name]; ok {
			delete(s.pending, rec.Name)
			frag := &Fragment{ID: rec.Name}
			recChrom, recPos := refPos(rec)
			prevChrom, prevPos := refPos(prev)
			if rec.Flags&sam.Read1 != 0 {
				frag.Mate1, frag.Mate2 = toRead(rec), toRead(prev)
				frag.Chrom1, frag.Pos1 = recChrom, recPos
				frag.Chrom2, frag.Pos2 = prevChrom, prevPos
			} else {
				frag.Mate1, frag.Mate2 = toRead(prev), toRead(rec)
				frag.Chrom1, frag.Pos1 = prevChrom, prevPos
				frag.Chrom2, frag.Pos2 = recChrom, recPos
			}
			return frag, nil
		}
		s.pending[rec.Name] = rec
	}
}

// flushOne drains one leftover unpaired record after the stream ends,
// returning io.EOF once s.pending is empty.
func (s *Source) flushOne() (*Fragment, error) {
	for name, rec := range s.pending {
		delete(s.pending, name)
		chrom, pos := refPos(rec)
		return &Fragment{ID: name, Mate1: toRead(rec), Chrom1: chrom, Pos1: pos}, nil
	}
	return nil, io.EOF
}

// refPos returns rec's reference name and 0-based position, or ("", -1)
// for an unmapped record with no reference assigned.
func refPos(rec *sam.Record) (string, int) {
	if rec.Ref == nil {
		return "", -1
	}
	return rec.Ref.Name(), rec.Pos
}

func toRead(rec *sam.Record) *locus.Read {
	seq := rec.Seq.Expand()
	qual := make([]byte, len(rec.Qual))
	for i, q := range rec.Qual {
		qual[i] = q + 33
	}
	isReversed := rec.Flags&sam.Reverse != 0
	return &locus.Read{
		ID:         rec.Name,
		Seq:        string(seq),
		Qual:       string(qual),
		IsReversed: isReversed,
	}
}
