// Package esi provides a rate-limited concurrent fetch client for the ESI
// market API.
//
// The client coordinates many logical requests under a single global rate
// budget (token bucket, evenly spaced departures) and a bounded concurrency
// pool. Requests attach conditional validators (If-None-Match,
// If-Modified-Since) supplied by the caller's cache so unchanged resources
// come back as cheap 304 responses.
//
// # Failure handling
//
// Transient conditions (5xx, timeouts, connection errors, 429) are retried
// with exponential backoff up to a total elapsed limit. Other 4xx responses
// are permanent and surface immediately. If the provider reports its error
// allowance reaching zero the whole in-flight batch is abandoned: completed
// results are discarded, never partially applied.
//
// # Pagination
//
// Listings that span multiple pages (signaled via the X-Pages header) are
// followed sequentially, optionally capped for constrained test runs.
package esi
