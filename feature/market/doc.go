// Package market is the calling layer of the pipeline: it knows which
// tables exist, how provider payloads map onto their rows, and in what order
// a cycle reconciles them.
//
// Table shapes are declared as upsert.TableSpec values: marketorders is
// key-diffed against the full regional snapshot each cycle, market_history
// is an append-only rolling window fed by conditional fetches, and
// marketstats is wiped and rebuilt by the reporting layer through
// Service.UpsertStats.
package market
