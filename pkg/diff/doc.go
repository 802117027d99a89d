// Package diff compares two fabric snapshots structurally and
// produces an ordered, categorized change report. Matching is by
// identity keys, never by position, and the output ordering is fully
// deterministic.
package diff
