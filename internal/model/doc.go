// Package model defines the data types shared across the relay:
// the per-request RelayReport accumulator, the closed Outcome
// classification derived from the relay error set, and the AuditRecord
// persisted by the optional request audit store.
//
// Types here are plain data with no I/O so every other package can
// depend on them without import cycles.
package model
