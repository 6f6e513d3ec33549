//go:build twinprime

// Build with -tags twinprime to restrict the emitted k to k = 3 (mod
// 6), the companion sweep for twin-prime-style searches spec.md §9's
// Open Question mentions but leaves out of the CLI surface. Not
// reachable through any flag — switching sweeps is a rebuild, not a
// runtime choice, matching how spec.md scopes it.
package sieve

const (
	twinKStep   = 6
	twinKOffset = 3
)

func effectiveKStep() uint64   { return twinKStep }
func effectiveKOffset() uint64 { return twinKOffset }
