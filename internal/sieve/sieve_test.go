package sieve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveConstantsFeasible(t *testing.T) {
	p := NewParams(1<<40, 1<<41, 100, 1000, 1, 9999, false)
	d, err := DeriveConstants(p)
	require.NoError(t, err)
	require.Greater(t, d.NStep, uint64(0))
	require.GreaterOrEqual(t, d.LastN, p.NMax)
	require.Equal(t, uint64(0), (d.LastN-p.NMin)%d.NStep)
}

func TestDeriveConstantsInfeasibleReportsNextPMin(t *testing.T) {
	p := NewParams(3, 1<<21, 65, 200, 1, 1, false)
	_, err := DeriveConstants(p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "next working pmin is 4294967297")
}

func TestProcessPrimeFindsKnownFactor(t *testing.T) {
	// 67280421310721 is a prime factor of 2^64+1, so 2^128 == 1 mod p and
	// 1*2^128-1 is divisible by it; n=128 lies on the nstep=32 grid from
	// nmin=96. Every reported factor must also satisfy the congruence.
	const f6 = 67280421310721
	p := NewParams(f6, f6, 96, 200, 1, 1, false)
	d, err := DeriveConstants(p)
	require.NoError(t, err)

	res := ProcessPrime(f6, p, d)
	require.True(t, res.IntegrityOK)
	require.Contains(t, res.Factors, Factor{P: f6, K: 1, N: 128, C: -1})

	for _, f := range res.Factors {
		verifyFactorBigInt(t, f)
	}
}

func TestProcessPrimeCullenWoodall(t *testing.T) {
	const f6 = 67280421310721
	p := NewParams(f6, f6, 65, 200, 0, 0, true)
	d, err := DeriveConstants(p)
	require.NoError(t, err)

	res := ProcessPrime(f6, p, d)
	require.True(t, res.IntegrityOK)
	for _, f := range res.Factors {
		require.Equal(t, f.K, f.N)
		verifyFactorBigInt(t, f)
	}
}

func TestProcessPrimeIntegrityAcrossRanges(t *testing.T) {
	// The five smallest primes above 2^40.
	for _, pp := range []uint64{1099511627791, 1099511627803, 1099511627831, 1099511627873, 1099511627891} {
		p := NewParams(pp, pp, 65, 500, 1, 9999, false)
		d, err := DeriveConstants(p)
		require.NoError(t, err)
		res := ProcessPrime(pp, p, d)
		require.True(t, res.IntegrityOK, "prime %d", pp)
	}
}

// verifyFactorBigInt independently checks k*2^n mod p == (p-1) or 1,
// matching the +1/-1 sign convention, using math/big as ground truth.
func verifyFactorBigInt(t *testing.T, f Factor) {
	t.Helper()
	k := new(big.Int).SetUint64(f.K)
	two := big.NewInt(2)
	n := new(big.Int).SetUint64(f.N)
	pBig := new(big.Int).SetUint64(f.P)

	pow := new(big.Int).Exp(two, n, pBig)
	val := new(big.Int).Mul(k, pow)
	val.Mod(val, pBig)

	want := big.NewInt(1)
	if f.C > 0 {
		want = new(big.Int).Sub(pBig, big.NewInt(1))
	}
	require.Equal(t, want.String(), val.String(), "factor %+v", f)
}
