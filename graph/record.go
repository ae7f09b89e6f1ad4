package graph

import "sort"

// Record is a flat mapping of field name to scalar or array value returned by
// one graph query. Records carry no identity beyond their position in a result
// list and are owned by the call that produced them.
type Record map[string]any

// nameKeys are the record fields checked, in order, when deriving a record's
// primary display name.
var nameKeys = []string{
	"name", "computer", "username", "user", "group_name",
	"computer_name", "attackType", "value",
}

// noiseKeys are fields excluded when harvesting candidate entity names for
// visualization: descriptions and property bags add noise, not names.
var noiseKeys = map[string]struct{}{
	"description": {},
	"properties":  {},
}

// PrimaryName returns the record's display name: the first non-empty string
// among the well-known name fields, else the lexically first string field.
// Returns empty when the record holds no string value at all.
func (r Record) PrimaryName() string {
	for _, key := range nameKeys {
		if s, ok := r[key].(string); ok && s != "" {
			return s
		}
	}

	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, noise := noiseKeys[k]; noise {
			continue
		}
		if s, ok := r[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ScalarStrings returns every scalar string field of the record, excluding
// description and properties fields. The result order follows sorted keys so
// repeated calls are deterministic.
func (r Record) ScalarStrings() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		if _, noise := noiseKeys[k]; noise {
			continue
		}
		if s, ok := r[k].(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Description returns the record's description field, if present.
func (r Record) Description() string {
	s, _ := r["description"].(string)
	return s
}

// Labels returns the record's label list, if present. Neo4j returns label
// collections as []any of strings.
func (r Record) Labels() []string {
	switch v := r["labels"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Relationships returns the record's related-item list, if present. Each item
// is a map with type, name and description fields, matching the shape produced
// by the search queries.
func (r Record) Relationships() []Record {
	items, ok := r["relationships"].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
