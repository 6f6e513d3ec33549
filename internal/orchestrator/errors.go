package orchestrator

import "errors"

// Sentinel errors for the integrity-failure taxonomy of spec.md §7.
// All are fatal: the caller should report and exit nonzero, relying on
// the last successful checkpoint for the next invocation.
var (
	ErrChecksumMismatch = errors.New("integrity check failed: recomputed residue does not match incremental one")
	ErrPrimeOverflow    = errors.New("integrity check failed: prime buffer overflow")
	ErrFactorOverflow   = errors.New("integrity check failed: factor count exceeded 1e6")
	ErrInvalidFactor    = errors.New("integrity check failed: invalid factor survived to verification")
)
