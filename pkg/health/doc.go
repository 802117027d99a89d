// Package health classifies a collected snapshot into one of three
// tiers (healthy, warning, critical) from its device outcomes and the
// open faults in its records.
package health
