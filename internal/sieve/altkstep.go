//go:build !twinprime

package sieve

// effectiveKStep and effectiveKOffset select the odd-k sweep (kstep=2,
// koffset=1), the only path wired to the CLI and orchestrator.
func effectiveKStep() uint64   { return DefaultKStep }
func effectiveKOffset() uint64 { return DefaultKOffset }
