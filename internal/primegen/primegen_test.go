package primegen

import (
	"testing"

	"github.com/luxfi/prothsieve/internal/device"
	"github.com/stretchr/testify/require"
)

func TestGenerateMatchesTrialDivision(t *testing.T) {
	dev := device.New()
	got := Generate(100, 200, dev)

	var want []uint64
	for n := uint64(100); n < 200; n++ {
		if isPrimeRef(n) {
			want = append(want, n)
		}
	}
	require.Equal(t, want, got)
}

func TestGenerateIncludesSmallPrimesAtLowEnd(t *testing.T) {
	dev := device.New()
	got := Generate(2, 12, dev)
	require.Equal(t, []uint64{2, 3, 5, 7, 11}, got)
}

func TestGenerateEmptyRange(t *testing.T) {
	dev := device.New()
	require.Nil(t, Generate(10, 10, dev))
	require.Nil(t, Generate(10, 5, dev))
}

func TestGenerateAscending(t *testing.T) {
	dev := device.New()
	got := Generate(1_000_000, 1_001_000, dev)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1], got[i])
	}
	require.NotEmpty(t, got)
}

func isPrimeRef(n uint64) bool {
	if n < 2 {
		return false
	}
	for d := uint64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}
