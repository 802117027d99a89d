// Package collector orchestrates a bounded, retried collection pass
// over a fabric inventory, producing a sealed snapshot even when some
// devices fail or the run deadline truncates the pass.
package collector
