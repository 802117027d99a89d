// Package snapshot defines the serialized fabric snapshot document:
// per-device collection results plus the metadata needed to compare
// two captures later.
package snapshot
