// Package database manages the market database pair: a local embedded
// sqlite file and the remote managed replica it synchronizes with.
//
// Handles is the explicit connection context for one pipeline run. When a
// replica URL is configured the local file is opened as an embedded replica:
// reads stay local, writes are forwarded to the primary, and Sync pulls
// outstanding frames down. Replication progress ({generation,
// durable_frame_num} from the metadata sidecar) is logged around each pull
// for drift visibility only.
//
// The file and its sidecar must exist together or not at all. NeedsInit is
// the pure predicate; VerifyAndRepair removes whichever half is orphaned and
// bootstraps via sync, never syncing over a file that lacks its sidecar.
//
// Validate compares a watermark column between local and remote; EnsureFresh
// re-syncs once on mismatch and surfaces StaleStateError if the mismatch
// persists.
package database
