// Package defaults centralizes timeout and limit constants shared across
// fabricsnap components, so operational tuning lives in one place.
package defaults
