// Package extract provides heuristic entity extraction from natural language
// queries about a cybersecurity knowledge graph.
//
// The extractor recognizes three kinds of hints inside a query string:
//
//   - Principals: user-like identities, detected by the presence of "@" in a
//     token or a fixed domain suffix (e.g. "alice@corp.local").
//   - Hosts: machine names, detected either as short all-uppercase tokens
//     ("DC01") or as fully-qualified names with a known top-level suffix
//     ("dc01.testcompany.local").
//   - Keywords: lowercased, stopword-filtered query tokens, with known
//     cybersecurity glossary terms ranked ahead of generic tokens.
//
// Extraction is a total function: it never fails. When no principal or host
// candidate is found the extractor substitutes a configurable placeholder so
// that targeted graph lookups always have a subject. The placeholders default
// to demo identities and should be overridden in production deployments; see
// Options.
package extract
