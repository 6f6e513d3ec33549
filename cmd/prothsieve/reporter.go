package main

import "log/slog"

// logReporter logs progress/trickle/checkpoint notifications at info
// level, standing in for the distributed-computing host's collaborator
// API (spec.md §6) that a standalone CLI run has no substrate for.
type logReporter struct {
	logger *slog.Logger
}

func newLogReporter(logger *slog.Logger) *logReporter {
	return &logReporter{logger: logger}
}

func (r *logReporter) Progress(fraction float64) {
	r.logger.Info("progress", "fraction", fraction)
}

func (r *logReporter) Trickle(progress, cpuTime, runTime float64) {
	r.logger.Info("trickle", "progress", progress, "cputime", cpuTime, "runtime", runTime)
}

func (r *logReporter) CheckpointCompleted() {
	r.logger.Debug("checkpoint completed")
}
