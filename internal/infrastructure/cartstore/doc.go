// Package cartstore provides cart.SnapshotStore implementations: one JSON
// file per key, a redis key per session, a database row per session and an
// in-process map.
package cartstore
