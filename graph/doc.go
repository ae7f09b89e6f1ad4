// Package graph provides the access layer for the cybersecurity knowledge
// graph stored in Neo4j.
//
// The package exposes a small set of parameterized query operations against a
// property graph of Active-Directory-style objects (User, Computer, Group,
// Domain) and threat-intelligence entities (Incident, AttackType, Country,
// Industry, Vulnerability, Defense, Year). User-controlled values always bind
// through query parameters; only label and relationship names from the fixed
// schema vocabulary are ever interpolated into query text.
//
// # Degraded reads
//
// Read operations used by the retrieval pipeline never propagate errors: a
// connectivity or query failure is logged and surfaced as an empty result set,
// so a partial graph outage degrades answers instead of failing requests.
// Write operations (schema provisioning, bulk loading) return errors normally.
//
// # Sessions
//
// Every operation acquires its own session, uses it for exactly one logical
// query, and releases it on all exit paths before returning.
package graph
