package orchestrator

// Reporter receives progress and trickle-up notifications, mirroring
// the collaborator API of spec.md §6: a fractional-progress callback
// and a periodic message carrying progress/cputime/runtime. Consumers
// that don't need either can embed NopReporter.
type Reporter interface {
	Progress(fraction float64)
	Trickle(progress, cpuTime, runTime float64)
	CheckpointCompleted()
}

// NopReporter discards every notification.
type NopReporter struct{}

func (NopReporter) Progress(float64)                  {}
func (NopReporter) Trickle(float64, float64, float64) {}
func (NopReporter) CheckpointCompleted()              {}
