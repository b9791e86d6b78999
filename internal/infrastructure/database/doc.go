// Package database manages the SQLite connection backing the power-action
// audit trail.
//
// chassisd's authorization topology lives in memory; SQLite stores only the
// append-mostly audit log, so the pool is tuned for a single writer with
// WAL mode for concurrent reads. Schema changes ship as embedded SQL
// migrations applied at startup.
package database
