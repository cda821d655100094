// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling for the forge CLI.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue holds longer markdown guides, rendered with glamour
// under script failures and host errors.
package issue
