// Package etagcache persists per-resource conditional-request validators
// (ETag, Last-Modified) so unchanged provider data is never re-fetched.
//
// The cache is keyed by the composite resource key (type id, region id) and
// carries no TTL: an entry stays valid until a later 200 response overwrites
// it. It lives in its own local-only sqlite file so the replica sync cannot
// wipe it.
package etagcache
