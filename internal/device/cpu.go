//go:build !cgo

package device

// New returns the goroutine-backed Device. It is compiled only when cgo
// is disabled (CGO_ENABLED=0); with cgo enabled, mlx.go supplies New
// instead.
func New() Device {
	return &cpuDevice{pool: newWorkerPool()}
}

type cpuDevice struct {
	pool *workerPool
}

func (d *cpuDevice) Launch(n int, fn func(i int)) { d.pool.launch(n, fn) }

func (d *cpuDevice) Sync() {}

func (d *cpuDevice) Stats() Stats {
	return Stats{Backend: "cpu", Parallelism: d.pool.workers}
}
