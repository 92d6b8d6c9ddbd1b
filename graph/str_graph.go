// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

// MakeSTRGraph builds the canonical three-node left-flank/repeat/right-
// flank graph used throughout the alignment test scenarios of spec §8:
// a left flank node, a self-looping repeat-unit node, and a right flank
// node, connected left -> repeat -> right plus the repeat's self-loop.
func MakeSTRGraph(leftFlank, repeatUnit, rightFlank string) (*Graph, error) {
	g := New()
	left, err := g.AddNode("LF", leftFlank)
	if err != nil {
		return nil, err
	}
	repeat, err := g.AddNode("STR", repeatUnit)
	if err != nil {
		return nil, err
	}
	right, err := g.AddNode("RF", rightFlank)
	if err != nil {
		return nil, err
	}
	if err := g.MarkRepeatNode(repeat); err != nil {
		return nil, err
	}
	if err := g.AddEdge(left, repeat); err != nil {
		return nil, err
	}
	if err := g.AddEdge(repeat, repeat); err != nil {
		return nil, err
	}
	if err := g.AddEdge(repeat, right); err != nil {
		return nil, err
	}
	return g, nil
}
