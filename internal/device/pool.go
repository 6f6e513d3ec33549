package device

import (
	"runtime"
	"sync"
)

// workerPool splits an indexed task of n units across GOMAXPROCS
// goroutines. It has no build tag: both the cpu and mlx devices use it,
// the mlx device because MLX's tensor-op model has no way to express
// the data-dependent branches in the sieve's inner loop (see mlx.go),
// so indexed work always ends up running here regardless of backend.
type workerPool struct {
	workers int
}

func newWorkerPool() *workerPool {
	w := runtime.GOMAXPROCS(0)
	if w < 1 {
		w = 1
	}
	return &workerPool{workers: w}
}

func (wp *workerPool) launch(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := wp.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
