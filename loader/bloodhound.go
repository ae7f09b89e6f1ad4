package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
)

// ErrInvalidLabel indicates a node label or relationship type that is not a
// plain identifier. Labels are interpolated into Cypher, so anything else is
// rejected outright.
var ErrInvalidLabel = errors.New("loader: invalid label")

var labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GraphNode is one node entry of a line-delimited directory export.
type GraphNode struct {
	ID         int64
	Labels     []string
	Properties map[string]any
}

// GraphRel is one relationship entry of a line-delimited directory export.
// Endpoints reference node export identifiers.
type GraphRel struct {
	Label      string
	StartID    int64
	EndID      int64
	Properties map[string]any
}

// exportLine is the raw shape of one line: a node or a relationship,
// discriminated by the type field.
type exportLine struct {
	Type       string         `json:"type"`
	ID         int64          `json:"id"`
	Labels     []string       `json:"labels"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	Start      *exportRef     `json:"start"`
	End        *exportRef     `json:"end"`
}

type exportRef struct {
	ID int64 `json:"id"`
}

// ParseExport reads a line-delimited JSON directory export. Lines that do not
// parse or carry an unknown type are skipped; the returned counts reflect
// accepted entries only.
func ParseExport(r io.Reader) ([]GraphNode, []GraphRel, error) {
	var nodes []GraphNode
	var rels []GraphRel

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry exportLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		switch entry.Type {
		case "node":
			nodes = append(nodes, GraphNode{
				ID:         entry.ID,
				Labels:     entry.Labels,
				Properties: entry.Properties,
			})
		case "relationship":
			if entry.Start == nil || entry.End == nil {
				continue
			}
			rels = append(rels, GraphRel{
				Label:      entry.Label,
				StartID:    entry.Start.ID,
				EndID:      entry.End.ID,
				Properties: entry.Properties,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading export: %w", err)
	}
	return nodes, rels, nil
}

// Nodes are keyed by their export identifier so relationships can reference
// them after import without relying on store-internal ids.
const mergeExportNodesQuery = `
UNWIND $nodes AS node
MERGE (n:%s {import_id: node.id})
SET n += node.properties`

const mergeExportRelsQuery = `
UNWIND $rels AS rel
MATCH (source {import_id: rel.start})
MATCH (target {import_id: rel.end})
MERGE (source)-[r:%s]->(target)
SET r += rel.properties`

// LoadExport writes a parsed directory export: nodes grouped by their first
// label, then relationships grouped by type. Returns the number of nodes and
// relationships written.
func (l *Loader) LoadExport(ctx context.Context, nodes []GraphNode, rels []GraphRel) (int, int, error) {
	byLabel := make(map[string][]map[string]any)
	for _, node := range nodes {
		if len(node.Labels) == 0 {
			continue
		}
		label := node.Labels[0]
		byLabel[label] = append(byLabel[label], map[string]any{
			"id":         node.ID,
			"properties": node.Properties,
		})
	}

	written := 0
	for _, label := range sortedKeys(byLabel) {
		if !labelPattern.MatchString(label) {
			return written, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		batch := byLabel[label]
		query := fmt.Sprintf(mergeExportNodesQuery, label)
		if err := l.writer.Write(ctx, query, map[string]any{"nodes": batch}); err != nil {
			return written, 0, fmt.Errorf("merging %s nodes: %w", label, err)
		}
		written += len(batch)
		l.log.Info("export nodes written", "label", label, "count", len(batch))
	}

	byType := make(map[string][]map[string]any)
	for _, rel := range rels {
		label := rel.Label
		if label == "" {
			label = "RELATED_TO"
		}
		props := rel.Properties
		if props == nil {
			props = map[string]any{}
		}
		byType[label] = append(byType[label], map[string]any{
			"start":      rel.StartID,
			"end":        rel.EndID,
			"properties": props,
		})
	}

	relsWritten := 0
	for _, relType := range sortedKeys(byType) {
		if !labelPattern.MatchString(relType) {
			return written, relsWritten, fmt.Errorf("%w: %q", ErrInvalidLabel, relType)
		}
		batch := byType[relType]
		query := fmt.Sprintf(mergeExportRelsQuery, relType)
		if err := l.writer.Write(ctx, query, map[string]any{"rels": batch}); err != nil {
			return written, relsWritten, fmt.Errorf("merging %s relationships: %w", relType, err)
		}
		relsWritten += len(batch)
		l.log.Info("export relationships written", "type", relType, "count", len(batch))
	}
	return written, relsWritten, nil
}

// LoadExportFile parses and loads a line-delimited export in one call.
func (l *Loader) LoadExportFile(ctx context.Context, r io.Reader) (int, int, error) {
	nodes, rels, err := ParseExport(r)
	if err != nil {
		return 0, 0, err
	}
	return l.LoadExport(ctx, nodes, rels)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
