// Package device abstracts the "parallel execution substrate capable of
// running indexed compute tasks over large flat arrays of 64-bit
// integers" that spec.md §1 assumes as an external collaborator. It
// mirrors the split the teacher repo (luxfi/tfhe's gpu package) uses
// between an MLX-accelerated backend and a pure Go fallback: an MLX
// device is built when cgo is enabled (device/mlx.go), a goroutine
// worker pool backs builds with cgo disabled (device/cpu.go).
//
// Both backends implement the same narrow Device interface so
// internal/primegen and internal/sieve never branch on which one is
// active — exactly the contract spec.md §1 asks the core to depend on.
package device

// Device dispatches indexed compute tasks and reports backend identity,
// standing in for the GPU kernel-launch + device-stats surface of the
// out-of-scope compute-runtime.
type Device interface {
	// Launch runs fn(i) for every i in [0, n), distributing the work
	// across the device's available parallelism. It blocks until all
	// invocations complete — the host↔device synchronization point
	// spec.md §5 describes as the polled completion wait.
	Launch(n int, fn func(i int))

	// Sync blocks until any outstanding device-side work is visible to
	// the host. The goroutine-backed device has no async work outside
	// Launch, so this is a no-op there; the MLX device forwards to
	// mlx.Synchronize.
	Sync()

	// Stats reports backend identity and available parallelism, the
	// rough equivalent of gpu.Engine.GetStats in the teacher repo.
	Stats() Stats
}

// Stats describes a device's identity and capacity.
type Stats struct {
	Backend     string
	Parallelism int
}
