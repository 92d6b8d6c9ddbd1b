// Copyright ©2024 The ExpansionHunter-sub003 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package catalog loads LocusSpecifications and their graphs from the
// external JSON/YAML schema documented in spec §6: a Graph described as
// `{nodes:[{name,sequence|reference}], edges:[{from,to,labels?}],
// graph_id?}`, embedded in a YAML locus specification carrying target
// regions, per-variant sub-specs, and genotyper parameters.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Illumina/ExpansionHunter-sub003/graph"
)

// GraphSpec is the external JSON representation of a Graph.
type GraphSpec struct {
	GraphID string      `json:"graph_id,omitempty" yaml:"graph_id,omitempty"`
	Nodes   []NodeSpec  `json:"nodes" yaml:"nodes"`
	Edges   []EdgeSpec  `json:"edges" yaml:"edges"`
}

// NodeSpec describes one node. Sequence is used verbatim if present;
// Reference is an alternate key accepted for nodes copied straight
// from a reference FASTA by an external tool.
type NodeSpec struct {
	Name      string `json:"name" yaml:"name"`
	Sequence  string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
}

func (n NodeSpec) seq() string {
	if n.Sequence != "" {
		return n.Sequence
	}
	return n.Reference
}

// EdgeSpec describes one edge; From/To are indices into GraphSpec.Nodes.
type EdgeSpec struct {
	From   int      `json:"from" yaml:"from"`
	To     int      `json:"to" yaml:"to"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Build constructs a graph.Graph from gs. Nodes are added in order
// (their index becomes their NodeID); any node that is the endpoint of
// a self-loop edge is marked as a repeat node before that edge is
// added, since graph.Graph requires MarkRepeatNode before AddEdge
// accepts a self-loop.
func (gs GraphSpec) Build() (*graph.Graph, error) {
	g := graph.New()
	for _, n := range gs.Nodes {
		if _, err := g.AddNode(n.Name, n.seq()); err != nil {
			return nil, fmt.Errorf("catalog: node %q: %w", n.Name, err)
		}
	}
	for _, e := range gs.Edges {
		if e.From == e.To {
			if err := g.MarkRepeatNode(graph.NodeID(e.From)); err != nil {
				return nil, fmt.Errorf("catalog: mark repeat node %d: %w", e.From, err)
			}
		}
	}
	for _, e := range gs.Edges {
		if err := g.AddEdge(graph.NodeID(e.From), graph.NodeID(e.To)); err != nil {
			return nil, fmt.Errorf("catalog: edge %d -> %d: %w", e.From, e.To, err)
		}
		for _, label := range e.Labels {
			if err := g.AddLabelToEdge(graph.NodeID(e.From), graph.NodeID(e.To), label); err != nil {
				return nil, fmt.Errorf("catalog: label edge %d -> %d: %w", e.From, e.To, err)
			}
		}
	}
	return g, nil
}

// LoadGraphJSON reads a GraphSpec from JSON bytes and builds it.
func LoadGraphJSON(data []byte) (*graph.Graph, error) {
	var gs GraphSpec
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("catalog: parse graph json: %w", err)
	}
	return gs.Build()
}

// VariantClassification names a variant's kind and, for repeats, its
// motif-period subtype.
type VariantClassification struct {
	Type    string `json:"type" yaml:"type"`
	Subtype string `json:"subtype,omitempty" yaml:"subtype,omitempty"`
}

// Repeat and SmallVariant are the two VariantClassification.Type values
// the core recognizes.
const (
	Repeat       = "Repeat"
	SmallVariant = "SmallVariant"
)

// VariantSpec is one variant's sub-specification within a locus.
type VariantSpec struct {
	ID             string                 `json:"id" yaml:"id"`
	Classification VariantClassification  `json:"classification" yaml:"classification"`
	NodeIDs        []int                  `json:"nodes" yaml:"nodes"`
	ReferenceNode  *int                   `json:"reference_node,omitempty" yaml:"reference_node,omitempty"`
}

// Region is a half-open interval on a reference contig.
type Region struct {
	Chrom string `json:"chrom" yaml:"chrom"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// GenotyperParams is passed through unmodified for the external
// genotyper; the core does not interpret its fields.
type GenotyperParams map[string]interface{}

// LocusSpecification is the full external description of one locus.
type LocusSpecification struct {
	LocusID        string          `json:"locus_id" yaml:"locus_id"`
	PloidyClass    string          `json:"ploidy_class" yaml:"ploidy_class"`
	TargetRegions  []Region        `json:"target_regions" yaml:"target_regions"`
	OffTargetRegions []Region      `json:"off_target_regions,omitempty" yaml:"off_target_regions,omitempty"`
	Graph          GraphSpec       `json:"graph" yaml:"graph"`
	Variants       []VariantSpec   `json:"variants" yaml:"variants"`
	GenotyperParams GenotyperParams `json:"genotyper_params,omitempty" yaml:"genotyper_params,omitempty"`
}

// LoadLocusSpecificationYAML parses one LocusSpecification from YAML
// bytes, the format the external catalog tool emits for a locus
// catalog entry.
func LoadLocusSpecificationYAML(data []byte) (*LocusSpecification, error) {
	var spec LocusSpecification
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("catalog: parse locus yaml: %w", err)
	}
	return &spec, nil
}

// LoadLocusSpecificationFile reads and parses a LocusSpecification from
// a YAML file at path.
func LoadLocusSpecificationFile(path string) (*LocusSpecification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return LoadLocusSpecificationYAML(data)
}

// NodeIDsAsGraph converts a VariantSpec's plain-int node list into
// graph.NodeIDs, for use with classify.NewVariantClassifier.
func (v VariantSpec) NodeIDsAsGraph() []graph.NodeID {
	out := make([]graph.NodeID, len(v.NodeIDs))
	for i, n := range v.NodeIDs {
		out[i] = graph.NodeID(n)
	}
	return out
}
