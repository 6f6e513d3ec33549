//go:build cgo

// Package device, MLX-backed variant. This mirrors gpu/engine.go's use
// of github.com/luxfi/mlx for device discovery and memory reporting in
// the teacher repo. MLX's lazy tensor-array model is a good fit for the
// teacher's NTT butterflies (shape-uniform elementwise ops), but the
// sieve's inner loop branches on data (k-range membership, the Cullen/
// Woodall diagonal test, kstep/koffset) in a way MLX's graph can't
// express without per-element control flow MLX doesn't offer. So this
// backend uses MLX only for what it's actually good for here — identity
// and memory-budget reporting — and still dispatches indexed work
// through the same goroutine pool the cpu backend uses.
package device

import (
	"fmt"

	"github.com/luxfi/mlx"
)

// New returns the MLX-aware Device. Construction never fails: if no
// accelerator is present, mlx.GetBackend/mlx.GetDevice report the CPU
// fallback the same way they do inside gpu.New in the teacher repo.
func New() Device {
	return &mlxDevice{
		pool:    newWorkerPool(),
		backend: mlx.GetBackend(),
		dev:     mlx.GetDevice(),
	}
}

type mlxDevice struct {
	pool    *workerPool
	backend mlx.Backend
	dev     *mlx.Device
}

func (d *mlxDevice) Launch(n int, fn func(i int)) { d.pool.launch(n, fn) }

func (d *mlxDevice) Sync() { mlx.Synchronize() }

func (d *mlxDevice) Stats() Stats {
	return Stats{
		Backend:     fmt.Sprintf("mlx:%s/%s", d.backend, d.dev.Name),
		Parallelism: d.pool.workers,
	}
}
