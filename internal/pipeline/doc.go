// Package pipeline sequences the relay stages for one request.
//
// A request runs through admission, sniffing, fetching, and injection
// as ordered Steps; the first failing step terminates the pipeline and
// its error becomes the request's single outcome. No step is ever
// retried: every failure is either a caller input error or a remote
// condition that a retry within the request's time budget is unlikely
// to fix.
//
// Design decision: Steps are an interface rather than function values
// because steps carry configuration (HTTP clients, size ceilings, the
// timezone block) and a Name() for logging and the per-request stage
// trail. The Processor composes the standard four-step pipeline; the
// BatchProcessor runs many URLs concurrently for one-shot CLI use.
package pipeline
