// Package route classifies queries into a retrieval intent and executes the
// resulting plan against the graph access layer.
//
// Classification evaluates three mutually exclusive classes in fixed priority
// order against the lowercased query text:
//
//  1. Analytical: the query carries an aggregate-intent phrase and matches a
//     canned analytical query by name keyword. The canned query's rows are
//     wrapped into a single synthetic record.
//  2. Targeted: the query carries specific trigger terms, each mapping to one
//     graph operation. Multiple triggers concatenate their results. A
//     targeted plan that produces no rows falls through to the generic class.
//  3. Generic: a keyword relevance search across all node types.
//
// Plans are a closed set of tagged step variants dispatched through an
// exhaustive handler table; no caller-controlled text is ever interpolated
// into a query body. Execution is total: underlying graph errors have already
// been degraded to empty results by the access layer, so routing never aborts
// the pipeline.
package route
