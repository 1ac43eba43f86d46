//go:build hubdebug

package registry

// debugChecks enables the O(n) free-list scan in IdentityManager.Free,
// which cross-checks the per-slot allocation flags.
const debugChecks = true
