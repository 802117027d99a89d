// Package header defines the common resource header carried by stored
// fabricsnap artifacts (snapshots, comparison reports, validation results).
package header
