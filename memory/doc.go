// Package memory stores per-session conversation history.
//
// A session is identified by an opaque client-chosen string. History is an
// ordered list of conversation turns, oldest first, capped at a fixed number
// of most recent turns. Two implementations are provided: an in-process store
// for single-node deployments and tests, and a Redis-backed store for
// deployments where sessions must survive restarts or span replicas.
package memory
