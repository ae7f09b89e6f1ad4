// Package llm adapts a pluggable text generator into the structured-answer
// contract used by the retrieval pipeline.
//
// The package separates two concerns:
//
//   - Completer: the strategy interface for a backend that turns one prompt
//     string into one text completion. Two implementations ship with the
//     package: a deterministic mock for tests and offline use, and a hosted
//     backend built on langchaingo's OpenAI-compatible client. The backend is
//     selected once at process start from configuration, never per request.
//
//   - Generator: builds the full instruction (domain preamble, structured
//     output directive, serialized chat history, knowledge graph context, and
//     the raw query), invokes the Completer, and parses the completion into a
//     StructuredAnswer via the ENTITIES delimiter convention.
//
// Generation is total: backend failures are caught at this boundary and
// converted into a fixed apology answer with an empty entity list. A
// completion lacking the ENTITIES delimiter is not an error; the whole text
// becomes the answer.
package llm
