//go:build loxdebug

package bytecode

const debugChecks = true
