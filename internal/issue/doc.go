// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// This package defines error types that include remediation steps and Markdown-formatted
// guidance, improving the user experience when a launch fails. Every fatal condition the
// launcher can hit (no base interpreter, environment creation failure, no usable launcher)
// has a catalog entry with concrete install instructions.
package issue
