// Package loader bulk-imports knowledge graph data.
//
// Two input formats are supported: a CSV of global cybersecurity threat
// incidents, one incident per row, and a line-delimited JSON export of
// Active Directory objects and relationships. Both loaders write through the
// graph access layer in batches using MERGE semantics, so reloading the same
// file is idempotent for entity nodes.
package loader
