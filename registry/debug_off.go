//go:build !hubdebug

package registry

const debugChecks = false
