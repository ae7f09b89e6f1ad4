// Package prompt converts graph records into the structured text block
// consumed by the generator. Formatting is deterministic: section order
// follows input record order, and an empty record list always yields the
// fixed sentinel rather than an empty string.
package prompt

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/kgchat/graph"
)

// NoContextSentinel is returned by FormatRecords when there are no records to
// format. The generator still receives a non-empty context block.
const NoContextSentinel = "No relevant information found in the knowledge graph."

// FormatRecords renders one titled section per record: primary name, label
// set, optional description, and a humanized line per related item. The
// section order equals the input order.
func FormatRecords(records []graph.Record) string {
	if len(records) == 0 {
		return NoContextSentinel
	}

	sections := make([]string, 0, len(records))
	for i, record := range records {
		sections = append(sections, formatSection(i+1, record))
	}
	return strings.Join(sections, "\n")
}

func formatSection(position int, record graph.Record) string {
	var b strings.Builder

	name := record.PrimaryName()
	if name == "" {
		name = "Unknown"
	}
	fmt.Fprintf(&b, "Entity %d: %s\n", position, name)
	fmt.Fprintf(&b, "Type: %s\n", labelLine(record))

	if desc := record.Description(); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}

	if rels := record.Relationships(); len(rels) > 0 {
		b.WriteString("Related entities:\n")
		for _, rel := range rels {
			relName := rel.PrimaryName()
			if relName == "" {
				continue
			}
			relType, _ := rel["type"].(string)
			fmt.Fprintf(&b, "- %s: %s", humanizeRelType(relType), relName)
			if desc := rel.Description(); desc != "" {
				fmt.Fprintf(&b, " (%s)", desc)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func labelLine(record graph.Record) string {
	labels := record.Labels()
	if len(labels) == 0 {
		return "Unknown"
	}
	return strings.Join(labels, ", ")
}

// humanizeRelType turns a relationship type like "MEMBER_OF" into a readable
// phrase: underscores become spaces and each word is title-cased.
func humanizeRelType(relType string) string {
	if relType == "" {
		return "Related To"
	}
	words := strings.Split(strings.ReplaceAll(relType, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
