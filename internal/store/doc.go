// Package store persists habits, schedules, the completion ledger and
// daily logs in SQLite.
//
// The ledger's idempotency lives here as a hard constraint, not an
// application check: completions carry UNIQUE(habit_id, local_date), and
// idempotent writes use INSERT ... ON CONFLICT DO NOTHING so concurrent
// creators converge on a single row. Reads that feed streak recomputes run
// on the same *Tx as the mutation that triggered them.
package store
