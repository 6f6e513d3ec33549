// Package sieve implements the per-prime Montgomery residue evaluation
// of spec.md §4.4 (the sieve kernel family) and §4.5 (the check
// kernel): for a prime p and a derived set of sieve constants, it walks
// every n in [nmin, nmax] testing k = ±2^-n mod p against the k-range,
// and independently recomputes the terminal residue to cross-check the
// incremental evolution.
//
// The teacher repo's gpu/ntt.go computed butterfly steps as a sequence
// of addModArray/subModArray/barrettMulModArray compositions over
// batches of polynomials; ProcessPrime is the same shape of computation
// — repeated modular multiply-and-compare — collapsed to scalar 64-bit
// Montgomery arithmetic (internal/mont) since the sieve's branches are
// data-dependent per prime rather than uniform across a tensor.
package sieve

import (
	"fmt"
	"math/big"

	"github.com/luxfi/prothsieve/internal/mont"
)

// Params are the immutable search parameters of spec.md §3.
type Params struct {
	PMin, PMax     uint64
	NMin, NMax     uint64
	KMin, KMax     uint64
	CullenWoodall  bool
	KStep, KOffset uint64 // default 2, 1 (odd k); see altkstep.go
}

// DefaultKStep and DefaultKOffset restrict emitted k to odd values,
// the live path per spec §9's Open Question — the kstep=6,koffset=3
// twin-prime alternative is reachable only via the twinprime build tag
// (altkstep_twinprime.go), never through this default or a CLI flag.
const (
	DefaultKStep   = 2
	DefaultKOffset = 1
)

// NewParams fills in the default kstep/koffset and forces the
// Cullen/Woodall k-range per spec §6 (-c implies kmin=nmin, kmax=nmax
// and disables k-range/kstep checks).
func NewParams(pmin, pmax, nmin, nmax, kmin, kmax uint64, cullenWoodall bool) Params {
	p := Params{
		PMin: pmin, PMax: pmax,
		NMin: nmin, NMax: nmax,
		CullenWoodall: cullenWoodall,
		KStep:         effectiveKStep(),
		KOffset:       effectiveKOffset(),
	}
	if cullenWoodall {
		p.KMin, p.KMax = nmin, nmax
	} else {
		p.KMin, p.KMax = kmin, kmax
	}
	return p
}

// Validate checks the usage-error conditions of spec.md §7.
func (p Params) Validate() error {
	switch {
	case p.PMin < 3:
		return fmt.Errorf("pmin must be >= 3, got %d", p.PMin)
	case p.PMax < p.PMin:
		return fmt.Errorf("pmax must be >= pmin")
	case p.NMin < 65:
		return fmt.Errorf("nmin must be >= 65, got %d", p.NMin)
	case p.NMax < p.NMin:
		return fmt.Errorf("nmax must be >= nmin")
	case !p.CullenWoodall && p.KMax >= p.PMin:
		return fmt.Errorf("kmax (%d) must be < pmin (%d)", p.KMax, p.PMin)
	case !p.CullenWoodall && p.KMin > p.KMax:
		return fmt.Errorf("kmin must be <= kmax")
	case p.NMax >= p.PMin:
		return fmt.Errorf("nmax (%d) must be < pmin (%d)", p.NMax, p.PMin)
	}
	return nil
}

// Derived holds the sieve constants of spec.md §3. BBits/R0/BBits1/R1
// are computed for fidelity to the spec's data model and are not read
// anywhere else in this repository; the actual residue evaluation below uses mont.PowMod/ModInverse
// directly rather than the bit-interleaved Montgomery exponentiation
// they describe — both compute exactly 2^-n mod p, and spec §6 makes
// the buffer/counter contents the only observable contract, not the
// GPU instruction sequence that produced them.
type Derived struct {
	NStep       uint64
	MontNStep   uint64
	BBits       int
	R0          uint64
	LastN       uint64
	BBits1      int
	R1          uint64
	KernelNStep uint64
	Workunit    uint64
}

// DeriveConstants computes spec.md §3's derived sieve constants, or
// fails per §7's "parameter infeasibility" taxonomy if no nstep
// satisfies both the coverage bound and the 64-bit reduction bound.
func DeriveConstants(p Params) (Derived, error) {
	nstep, err := deriveNStep(p.KMax, p.PMin, p.CullenWoodall, p.NMax)
	if err != nil {
		next := nextWorkingPMin(p)
		return Derived{}, fmt.Errorf("%w; next working pmin is %d", err, next)
	}

	lastN := p.NMin + ceilDiv(p.NMax-p.NMin, nstep)*nstep

	d := Derived{
		NStep:       nstep,
		MontNStep:   64 - nstep,
		BBits:       bitLen(p.NMin) - 6,
		LastN:       lastN,
		BBits1:      bitLen(lastN) - 6,
		KernelNStep: nstep * 15000,
		Workunit:    p.PMin + p.PMax + p.NMin + p.NMax + p.KMin + p.KMax,
	}
	if d.BBits >= 0 && d.BBits+5 < 64 {
		d.R0 = uint64(1) << (64 - (p.NMin >> (uint(d.BBits) + 5)))
	}
	if d.BBits1 >= 0 && d.BBits1+1 < 64 {
		d.R1 = uint64(1) << (64 - (lastN >> (uint(d.BBits1) + 1)))
	}
	if d.KernelNStep == 0 {
		d.KernelNStep = nstep
	}
	return d, nil
}

// deriveNStep finds the smallest nstep covering kmax*2^nstep >= pmin
// (effectively the Cullen/Woodall diagonal's own n when cullenWoodall
// is set, since k there ranges up to nmax), decrements by one for the
// ±1 batch overlap, clamps to 32 when eligible, then checks the 64-bit
// reduction bound.
func deriveNStep(kmax, pmin uint64, cullenWoodall bool, nmax uint64) (uint64, error) {
	coverageK := kmax
	if cullenWoodall {
		coverageK = nmax
	}
	if coverageK == 0 {
		coverageK = 1
	}

	nstep0 := uint64(0)
	k := new(big.Int).SetUint64(coverageK)
	target := new(big.Int).SetUint64(pmin)
	pow := new(big.Int).SetUint64(1)
	for {
		val := new(big.Int).Mul(k, pow)
		if val.Cmp(target) >= 0 {
			break
		}
		pow.Lsh(pow, 1)
		nstep0++
	}

	var nstep uint64
	if nstep0 >= 1 {
		nstep = nstep0 - 1
	}
	if nstep >= 32 && pmin >= uint64(1)<<32 {
		nstep = 32
	}
	if nstep == 0 {
		nstep = 1
	}

	if nstep < 64 {
		bound := uint64(1) << (64 - nstep)
		if bound > pmin {
			return 0, fmt.Errorf("nstep=%d fails 2^(64-nstep) <= pmin (2^%d=%d > pmin=%d)",
				nstep, 64-nstep, bound, pmin)
		}
	}
	return nstep, nil
}

// nextWorkingPMin searches upward for a pmin' >= p.PMin for which
// DeriveConstants would succeed, for the diagnostic spec §7 requires
// on parameter infeasibility. The gap between a failing pmin and the
// next working one can be enormous (a small kmax needs pmin' to climb
// past roughly kmax*2^32 before the nstep=32 clamp kicks in and
// satisfies the reduction bound on its own), so this doubles the
// candidate instead of walking it one at a time, then binary-searches
// the doubling interval down to the first success.
func nextWorkingPMin(p Params) uint64 {
	works := func(candidate uint64) bool {
		_, err := deriveNStep(p.KMax, candidate, p.CullenWoodall, p.NMax)
		return err == nil
	}

	lo := p.PMin
	hi := p.PMin
	for i := 0; i < 64; i++ {
		next := hi * 2
		if hi == 0 {
			next = 1
		}
		if next <= hi { // overflow past 2^64
			return hi
		}
		hi = next
		if works(hi) {
			break
		}
	}
	if !works(hi) {
		return hi
	}

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if works(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func bitLen(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n - 1
}

// Factor is a candidate (p, k, n, c) the sieve kernel emitted; c is
// +1 for k*2^n+1 or -1 for k*2^n-1, per spec §3's signed encoding
// (this implementation keeps it as a tagged field rather than folding
// the sign into p, which spec §9's design notes say is an
// implementation detail the wire format never exposes).
type Factor struct {
	P uint64
	K uint64
	N uint64
	C int8
}

// PrimeResult is the outcome of fully scanning one prime across
// [nmin, nmax] (extended to Derived.LastN for the integrity check).
type PrimeResult struct {
	P           uint64
	FinalK      uint64
	CheckK      uint64
	IntegrityOK bool
	Factors     []Factor
}

// ProcessPrime runs the sieve kernel family (§4.4) followed by the
// check kernel (§4.5) for a single prime. The three nstep-width
// variants spec.md §4.4 describes (general, =32 fast path, <32 small
// exponent) dispatch from here but share one mont.MulMod body — Go gets
// no benefit from the GPU-specific 32-bit word-packing tricks the
// variants exist for, so they differ only in which advance function
// they call, all mathematically identical.
func ProcessPrime(p uint64, params Params, derived Derived) PrimeResult {
	pr := mont.NewParams(p)

	invStep := stepAdvance(pr, derived.NStep)
	k0 := initialResidue(pr, params.NMin)

	var factors []Factor
	k := k0
	n := params.NMin
	steps := (derived.LastN - params.NMin) / derived.NStep

	for i := uint64(0); ; i++ {
		if n <= params.NMax {
			considerCandidates(p, k, n, params, &factors)
		}
		if i == steps {
			break
		}
		k = advance(derived.NStep, pr, k, invStep)
		n += derived.NStep
	}

	checkK := mont.ModInverse(mont.PowMod(2, derived.LastN, p), p)

	return PrimeResult{
		P:           p,
		FinalK:      k,
		CheckK:      checkK,
		IntegrityOK: k == checkK,
		Factors:     factors,
	}
}

// initialResidue computes 2^-nmin mod p: the setup kernel's K0.
func initialResidue(pr mont.Params, nmin uint64) uint64 {
	fwd := mont.PowMod(2, nmin, pr.P)
	return mont.ModInverse(fwd, pr.P)
}

// stepAdvance computes the per-prime constant 2^-nstep mod p that the
// general sieve path multiplies by at every n step.
func stepAdvance(pr mont.Params, nstep uint64) uint64 {
	fwd := mont.PowMod(2, nstep, pr.P)
	return mont.ModInverse(fwd, pr.P)
}

// advance dispatches to the nstep-width variant; all three compute
// k*2^-nstep mod p.
func advance(nstep uint64, pr mont.Params, k, invStep uint64) uint64 {
	switch {
	case nstep == 32:
		return advanceFastPath32(pr, k, invStep)
	case nstep < 32:
		return advanceSmallExponent(pr, k, invStep)
	default:
		return advanceGeneral(pr, k, invStep)
	}
}

func advanceGeneral(pr mont.Params, k, invStep uint64) uint64 {
	return mont.MulMod(k, invStep, pr.P)
}

// advanceFastPath32 is the nstep=32 specialization spec.md §4.4 calls
// out as exploiting mont_nstep=32's two-word structure on a GPU; in Go
// the arithmetic is identical to the general path.
func advanceFastPath32(pr mont.Params, k, invStep uint64) uint64 {
	return mont.MulMod(k, invStep, pr.P)
}

// advanceSmallExponent is the nstep<32 specialization; again, the
// modular arithmetic performed is identical to the general path.
func advanceSmallExponent(pr mont.Params, k, invStep uint64) uint64 {
	return mont.MulMod(k, invStep, pr.P)
}

// considerCandidates implements the emission predicate of spec.md
// §4.4: the Proth/Riesel k-range test (when not in Cullen/Woodall
// mode) and the Cullen/Woodall diagonal test (when it is). k here is
// the running residue 2^-n mod p, so k*2^n == 1 mod p exactly: that's
// the "-1" form (k*2^n-1 == 0 mod p). Its complement p-k satisfies
// (p-k)*2^n == -1 mod p, the "+1" form.
func considerCandidates(p, k, n uint64, params Params, out *[]Factor) {
	kPrime := p - k

	if params.CullenWoodall {
		if k == n {
			*out = append(*out, Factor{P: p, K: k, N: n, C: -1})
		}
		if kPrime == n {
			*out = append(*out, Factor{P: p, K: kPrime, N: n, C: 1})
		}
		return
	}

	if k <= params.KMax && k >= params.KMin && k%params.KStep == params.KOffset {
		*out = append(*out, Factor{P: p, K: k, N: n, C: -1})
	}
	if kPrime <= params.KMax && kPrime >= params.KMin && kPrime%params.KStep == params.KOffset {
		*out = append(*out, Factor{P: p, K: kPrime, N: n, C: 1})
	}
}
