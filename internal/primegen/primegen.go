// Package primegen implements the segmented, mod-30-wheel prime
// generator of spec.md §4.3: given [a, b) with b <= 2^62, it produces
// the dense ascending list of primes in that range.
//
// Dispatch is expressed through internal/device.Device.Launch, one task
// per 60-wide window (spec §4.3's dispatch granularity — a window
// covers exactly two mod-30 wheel cycles), so the same code drives
// either the goroutine pool or (once something smarter than "mark, then
// let the CPU still do the branching" exists) an MLX-backed device.
package primegen

import (
	"math"
	"sort"
	"sync"

	"github.com/luxfi/prothsieve/internal/device"
)

// wheelResidues are the eight residues mod 30 coprime to 30: every
// prime greater than 5 is congruent to one of these.
var wheelResidues = [8]uint64{1, 7, 11, 13, 17, 19, 23, 29}

// windowWidth is the dispatch granularity: one task per 60-wide window,
// i.e. two wheel cycles, per spec §4.3.
const windowWidth = 60

// Generate returns the ascending list of primes in [a, b). b must be
// <= 2^62 per spec's modulus bound. Small primes (2, 3, 5) sit off the
// wheel and are added separately, only if they fall in range; the
// orchestrator's validated parameters (pmin > nmax >= 65) keep them out
// of its batches.
func Generate(a, b uint64, dev device.Device) []uint64 {
	if b <= a {
		return nil
	}

	base := basePrimesUpTo(isqrt(b))

	numWindows := int((b - a + windowWidth - 1) / windowWidth)
	perWindow := make([][]uint64, numWindows)

	dev.Launch(numWindows, func(w int) {
		winStart := a + uint64(w)*windowWidth
		winEnd := winStart + windowWidth
		if winEnd > b {
			winEnd = b
		}
		perWindow[w] = sieveWindow(winStart, winEnd, base, a, b)
	})
	dev.Sync()

	total := 0
	for _, w := range perWindow {
		total += len(w)
	}
	out := make([]uint64, 0, total)
	for _, w := range perWindow {
		out = append(out, w...)
	}
	return out
}

// sieveWindow returns the primes among the wheel-30 candidates of
// [winStart, winEnd) intersected with [lo, hi), by trial division
// against base.
func sieveWindow(winStart, winEnd uint64, base []uint64, lo, hi uint64) []uint64 {
	var out []uint64
	cycleBase := (winStart / 30) * 30
	for off := cycleBase; off < winEnd+30; off += 30 {
		for _, r := range wheelResidues {
			n := off + r
			if n < winStart || n >= winEnd {
				continue
			}
			if n < lo || n >= hi {
				continue
			}
			if isPrimeAgainst(n, base) {
				out = append(out, n)
			}
		}
	}
	// small primes 2, 3, 5 are off the wheel; only the very first
	// window of the very first call can contain them.
	for _, p := range []uint64{2, 3, 5} {
		if p >= winStart && p < winEnd && p >= lo && p < hi {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isPrimeAgainst(n uint64, base []uint64) bool {
	if n < 2 {
		return false
	}
	for _, p := range base {
		if p*p > n {
			break
		}
		if n%p == 0 {
			return n == p
		}
	}
	return true
}

// isqrt returns floor(sqrt(n)) for n fitting in a uint64, correcting
// the one-off errors math.Sqrt's float64 rounding can introduce near
// perfect squares.
func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

var (
	baseMu        sync.Mutex
	baseLimit     uint64
	basePrimeList []uint64
)

// basePrimesUpTo returns the ascending primes <= limit. The orchestrator
// calls this once per batch with a monotonically growing b (so a
// monotonically growing limit), so the result is cached by the single
// largest limit sieved so far rather than keyed per exact value: a
// request for a limit at or below what's cached is satisfied with a
// slice of the existing table, and only a request above it triggers a
// resieve, up to the larger of the request and twice the previous limit
// so a steadily growing p-range doesn't resieve on every batch either.
func basePrimesUpTo(limit uint64) []uint64 {
	baseMu.Lock()
	defer baseMu.Unlock()

	if limit > baseLimit {
		grow := limit
		if grow < baseLimit*2 {
			grow = baseLimit * 2
		}
		basePrimeList = sieveUpTo(grow)
		baseLimit = grow
	}

	if limit >= baseLimit {
		return basePrimeList
	}
	cut := sort.Search(len(basePrimeList), func(i int) bool { return basePrimeList[i] > limit })
	return basePrimeList[:cut]
}

func sieveUpTo(limit uint64) []uint64 {
	if limit < 2 {
		return nil
	}
	sieve := make([]bool, limit+1)
	var primes []uint64
	for i := uint64(2); i <= limit; i++ {
		if sieve[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= limit && j >= i; j += i {
			sieve[j] = true
		}
	}
	return primes
}
