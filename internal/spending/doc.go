// Package spending aggregates a user's transactions into per-category totals
// over a lookback window and flags categories that exceed their spend limit.
//
// The pipeline is Filter, Aggregate, Classify, Build. Summarize runs all of
// it for one input. Every function is pure: no I/O, no shared state, and the
// caller supplies "now".
package spending
