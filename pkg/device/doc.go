// Package device defines the fetch capability the collection orchestrator
// consumes, and its implementations: the APIC REST client for controllers,
// the NX-OS SSH client for leaf and spine switches, and a scripted mock
// client for dry-run mode and tests.
//
// Each device role has an ordered query set whose first class is primary:
// a device is only recorded as failed when its primary class never succeeds.
package device
