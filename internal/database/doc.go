// Package database provides SQLite-based storage for the relay's
// request audit log.
//
// This package implements the AuditDB, which stores one row per
// processed URL: timestamp, source host, outcome, error message,
// bytes fetched, and duration. It never stores fetched calendar
// content or full source URLs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
