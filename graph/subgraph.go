package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Node is one vertex of a visualization subgraph. IDs are request-local
// sequential indices, not persisted graph identifiers.
type Node struct {
	ID         int    `json:"id"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is one relationship of a visualization subgraph. Source and Target
// always reference node IDs present in the same subgraph.
type Edge struct {
	Source     int    `json:"source"`
	Target     int    `json:"target"`
	Type       string `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// SubgraphResult is a bounded neighborhood of nodes and relationships selected
// for visualization.
type SubgraphResult struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether the subgraph holds no nodes.
func (s SubgraphResult) Empty() bool {
	return len(s.Nodes) == 0
}

const subgraphQuery = `
MATCH (n)
WHERE any(term IN $terms WHERE
    toLower(coalesce(n.name, toString(n.value), '')) CONTAINS term)
WITH DISTINCT n
LIMIT $maxNodes
WITH collect(n) AS selected
UNWIND selected AS a
OPTIONAL MATCH (a)-[r]->(b)
WHERE b IN selected
WITH selected, collect(DISTINCT r) AS rels
RETURN selected AS nodes, rels AS relationships`

// Subgraph fetches a bounded neighborhood around the named entities. Matching
// is fuzzy: case-insensitive substring comparison against node name or value
// properties. The node set is bounded by maxNodes via a distinct-collect-then-
// limit step, and returned relationships are restricted to those whose both
// endpoints fall inside the selected node set, which guarantees that no edge
// references a node absent from the result.
func (c *Client) Subgraph(ctx context.Context, entityNames []string, maxNodes int) SubgraphResult {
	if len(entityNames) == 0 || maxNodes <= 0 {
		return SubgraphResult{}
	}

	terms := make([]string, 0, len(entityNames))
	for _, name := range entityNames {
		if trimmed := strings.TrimSpace(strings.ToLower(name)); trimmed != "" {
			terms = append(terms, trimmed)
		}
	}
	if len(terms) == 0 {
		return SubgraphResult{}
	}

	records := c.run(ctx, "subgraph", subgraphQuery, map[string]any{
		"terms":    terms,
		"maxNodes": maxNodes,
	})
	if len(records) == 0 {
		return SubgraphResult{}
	}

	return assembleSubgraph(collectNodes(records[0]), collectRelationships(records[0]))
}

// assembleSubgraph converts driver entities into the visualization payload,
// assigning sequential node IDs and dropping any relationship whose endpoint
// is outside the node set.
func assembleSubgraph(nodes []neo4j.Node, rels []neo4j.Relationship) SubgraphResult {
	out := SubgraphResult{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(rels)),
	}

	index := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if _, seen := index[n.ElementId]; seen {
			continue
		}
		id := len(out.Nodes)
		index[n.ElementId] = id
		out.Nodes = append(out.Nodes, Node{
			ID:         id,
			Label:      nodeLabel(n),
			Type:       nodeType(n),
			Properties: n.Props,
		})
	}

	for _, r := range rels {
		source, okSource := index[r.StartElementId]
		target, okTarget := index[r.EndElementId]
		if !okSource || !okTarget {
			continue
		}
		out.Edges = append(out.Edges, Edge{
			Source:     source,
			Target:     target,
			Type:       r.Type,
			Properties: r.Props,
		})
	}
	return out
}

// nodeLabel derives a display label from the node's name or value property,
// falling back to its first graph label.
func nodeLabel(n neo4j.Node) string {
	if s, ok := n.Props["name"].(string); ok && s != "" {
		return s
	}
	if v, ok := n.Props["value"]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return nodeType(n)
}

func nodeType(n neo4j.Node) string {
	if len(n.Labels) > 0 {
		return n.Labels[0]
	}
	return "Node"
}

func collectNodes(record Record) []neo4j.Node {
	items, ok := record["nodes"].([]any)
	if !ok {
		return nil
	}
	out := make([]neo4j.Node, 0, len(items))
	for _, item := range items {
		if n, ok := item.(neo4j.Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func collectRelationships(record Record) []neo4j.Relationship {
	items, ok := record["relationships"].([]any)
	if !ok {
		return nil
	}
	out := make([]neo4j.Relationship, 0, len(items))
	for _, item := range items {
		if r, ok := item.(neo4j.Relationship); ok {
			out = append(out, r)
		}
	}
	return out
}
