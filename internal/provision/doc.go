// SPDX-License-Identifier: MPL-2.0

// Package provision creates and populates the app's isolated environment.
//
// Provisioning is idempotent: the presence of the environment's interpreter is
// the gate, and a second Ensure call performs no filesystem writes. The
// environment is built in a staging directory next to its final location and
// renamed into place only on full success, so an interrupted run never leaves
// a half-built environment that passes the gate. Concurrent first runs are
// serialized with an exclusive file lock where the host supports it.
//
// Dependency-install failures follow the configured policy: best-effort keeps
// the environment (the app may start under-provisioned; the receipt records
// the gap so 'bootlace setup' can repair it), fail-fast discards it.
package provision
