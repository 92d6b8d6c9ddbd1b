// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import "errors"

// Errors returned by Graph construction and mutation. Callers that need
// to distinguish a specific failure should use errors.Is.
var (
	// ErrEdgeOrder is returned by AddEdge when u > v and the edge is not
	// a self-loop on a repeat node.
	ErrEdgeOrder = errors.New("graph: edge violates topological order")

	// ErrDuplicateEdge is returned by AddEdge when the edge already exists.
	ErrDuplicateEdge = errors.New("graph: edge already exists")

	// ErrInvalidSequence is returned by SetNodeSeq for an empty sequence.
	ErrInvalidSequence = errors.New("graph: node sequence must not be empty")

	// ErrUnknownNode is returned when an operation references a NodeID
	// that has not been added to the graph.
	ErrUnknownNode = errors.New("graph: unknown node id")

	// ErrNotRepeatNode is returned by AddEdge for a self-loop on a node
	// that has not been designated as a repeat node.
	ErrNotRepeatNode = errors.New("graph: self-loop on non-repeat node")
)
