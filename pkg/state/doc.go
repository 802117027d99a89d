// Package state defines the validated typed tree that device data takes at
// the core boundary: a Record of scalar attributes plus named keyed
// collections whose elements carry declared identity keys.
//
// Loosely-typed payloads from device wire protocols are converted into this
// tree by the device clients; untyped maps never reach the comparison engine.
package state
