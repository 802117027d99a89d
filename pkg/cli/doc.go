// Package cli implements the fabricsnap command-line interface.
//
// # Commands
//
// collect - Capture a fabric snapshot:
//
//	fabricsnap collect --inventory fabric.yaml [--label NAME] [--baseline] [--mock]
//
// Queries every inventory device concurrently, with retries and
// timeouts, and stores the sealed snapshot under the snapshots
// directory.
//
// compare - Diff two snapshots:
//
//	fabricsnap compare --before baseline --after post-change [--ignore PATTERN]
//
// Emits an ordered change report grouped by category. References can
// be ids, id prefixes, labels, file paths, or "baseline".
//
// list - Show stored snapshots:
//
//	fabricsnap list [--format table|json|yaml|csv]
//
// validate - Check snapshots or an inventory file structurally:
//
//	fabricsnap validate [snapshot-ref ...]
//	fabricsnap validate --inventory fabric.yaml
//
// # Exit Codes
//
//	0  Success
//	1  Error: invalid arguments, a required (controller) device failed
//	   during collect, or a structural validation error
package cli
