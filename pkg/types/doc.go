// Package types defines the syncable record model shared between Tickit
// clients and the sync server: the four entity kinds, deletion tombstones,
// the SyncRecord change envelope, the sync request/response wire types, and
// the standard errors returned by the storage and engine layers.
package types
