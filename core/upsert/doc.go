// Package upsert is the reconciliation engine: it makes a relational table
// match an incoming row batch with the minimal set of deletes, inserts, and
// updates.
//
// A TableSpec declares the target: name, columns, primary key (single or
// composite), reconciliation mode, and the change-detection column subset.
// Three modes exist:
//
//   - WipeReplace: truncate and reload, verified by an in-transaction count.
//   - Incremental: delete stale keys, insert new rows, update changed rows.
//   - Append: upsert without pruning, for rolling-window tables.
//
// Incoming rows are sanitized first (invalid numerics zeroed, null text
// emptied, null timestamps stamped) with every substitution logged, so
// upstream data quality issues stay visible.
//
// All SQL text comes from one parameterized statement builder: chunk sizes,
// conflict clauses, and quoting are implemented exactly once. Each call takes
// exactly one transaction; a post-write count check surfaces IntegrityError
// when final row membership does not match the batch.
package upsert
