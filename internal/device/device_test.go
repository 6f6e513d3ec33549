package device

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLaunchCoversEveryIndex(t *testing.T) {
	dev := New()
	const n = 10000
	seen := make([]int32, n)

	dev.Launch(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	dev.Sync()

	for i, v := range seen {
		require.EqualValues(t, 1, v, "index %d", i)
	}
}

func TestLaunchZero(t *testing.T) {
	dev := New()
	called := false
	dev.Launch(0, func(i int) { called = true })
	require.False(t, called)
}

func TestStatsReportsParallelism(t *testing.T) {
	dev := New()
	st := dev.Stats()
	require.NotEmpty(t, st.Backend)
	require.Greater(t, st.Parallelism, 0)
}
