// Package smallprimes provides the fixed table of odd primes that
// mont.TryAllFactors trial-divides candidates by (spec §4.1). The
// segmented generator in internal/primegen sieves its own base primes.
package smallprimes

import "sync"

// Count is the number of primes the table holds, per spec §4.1.
const Count = 3514

var (
	once  sync.Once
	table [Count]uint32
)

// Table returns the ascending table of the first Count odd primes
// starting at 11. 3, 5 and 7 are not in the table, so a candidate whose
// k*2^n+c is divisible only by those small primes is not filtered out
// by mont.TryAllFactors.
// Built once, lazily, via a plain sieve of Eratosthenes.
func Table() [Count]uint32 {
	once.Do(buildTable)
	return table
}

func buildTable() {
	// Upper bound generous enough to contain 3514 primes starting at 11;
	// the 3514th prime is under 33000, by the prime counting function.
	const upperBound = 40000

	composite := make([]bool, upperBound+1)
	for i := 2; i*i <= upperBound; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j <= upperBound; j += i {
			composite[j] = true
		}
	}

	idx := 0
	for n := 11; n <= upperBound && idx < Count; n++ {
		if !composite[n] {
			table[idx] = uint32(n)
			idx++
		}
	}
	if idx < Count {
		panic("smallprimes: upperBound too small to produce the full table")
	}
}
