// Package render serializes snapshots, change reports, and listings
// to JSON, YAML, tables, or CSV.
package render
