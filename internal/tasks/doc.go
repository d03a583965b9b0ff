// Package tasks runs many flight searches at once with progress reporting.
//
// # Batch Search
//
// [BatchSearch] feeds queries to a small worker pool behind a [rate.Limiter] so a batch
// stays under the provider's request quota. Results come back in input order, and a failed
// search is recorded in its [BatchResult] without stopping the others.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, a message and the finished [BatchResult].
// Updates use select with default to prevent blocking.
//
// # Input
//
// [ParseQueries] reads the CSV batch files accepted by "qaren search batch".
package tasks
