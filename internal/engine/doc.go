// Package engine is the operation surface of the habit tracker: habit
// lifecycle, the completion ledger with idempotent create/delete/toggle,
// streak recomputes, and the read-side aggregations.
//
// Every ledger mutation and the streak recompute it triggers run inside one
// store transaction: callers either see the new completion row together
// with fresh counters, or neither. The pure pieces (date bucketing,
// schedule evaluation, the streak walk) live in their own packages and
// never touch the store.
package engine
