// Package store persists snapshots as self-describing JSON documents
// on disk, indexed by a sqlite catalog that is safe to lose.
package store
