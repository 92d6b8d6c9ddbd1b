// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

// Directed is the minimal adjacency contract both Graph and Reverse
// satisfy, letting Path and the gapped aligner share code regardless of
// which direction they walk.
type Directed interface {
	NumNodes() int
	NodeSeq(id NodeID) string
	NodeLen(id NodeID) int
	Successors(u NodeID) []NodeID
	Predecessors(v NodeID) []NodeID
	HasEdge(u, v NodeID) bool
	IsRepeatNode(id NodeID) bool
}

var (
	_ Directed = (*Graph)(nil)
	_ Directed = (*Reverse)(nil)
)

// Reverse is a non-owning view over a Graph that flips the direction of
// every adjacency query and yields node sequences reversed (not
// complemented), so a graph can be walked tail-to-head. The aligners
// do not use it: suffix alignment reverses the query and target
// strings itself.
type Reverse struct {
	g *Graph
}

// ReverseOf returns a Reverse view over g. g must outlive the view.
func ReverseOf(g *Graph) *Reverse { return &Reverse{g: g} }

func (r *Reverse) NumNodes() int { return r.g.NumNodes() }

func (r *Reverse) NodeSeq(id NodeID) string {
	s := r.g.NodeSeq(id)
	return reverseString(s)
}

func (r *Reverse) NodeLen(id NodeID) int { return r.g.NodeLen(id) }

func (r *Reverse) Successors(u NodeID) []NodeID { return r.g.Predecessors(u) }

func (r *Reverse) Predecessors(v NodeID) []NodeID { return r.g.Successors(v) }

func (r *Reverse) HasEdge(u, v NodeID) bool { return r.g.HasEdge(v, u) }

func (r *Reverse) IsRepeatNode(id NodeID) bool { return r.g.IsRepeatNode(id) }

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
