package smallprimes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableStartsAtEleven(t *testing.T) {
	tbl := Table()
	require.Equal(t, uint32(11), tbl[0])
	require.Equal(t, uint32(13), tbl[1])
}

func TestTableAscendingAndPrime(t *testing.T) {
	tbl := Table()
	for i := 1; i < len(tbl); i++ {
		require.Less(t, tbl[i-1], tbl[i])
		require.True(t, isPrime(tbl[i]), "%d not prime", tbl[i])
	}
}

func TestTableLength(t *testing.T) {
	require.Len(t, Table(), Count)
}

func isPrime(n uint32) bool {
	if n < 2 {
		return false
	}
	for d := uint32(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}
