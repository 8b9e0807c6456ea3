// Package sim is the scheduling simulation kernel.
//
// Start with these three files to understand it:
//   - task.go / job.go: the periodic task model and the per-activation job
//     lifecycle (Pending → Ready → Running → Completed)
//   - queue.go: the pluggable ready-set orderings that distinguish the
//     EDF, RM and FIFO policies
//   - engine.go: the tick-stepped dispatch loop shared by all policies
//
// The engine performs no I/O and never errors during a run: overload,
// starvation and deadline misses are recorded as data. analyze.go turns the
// completed-job stream and timeline into aggregate statistics; utility.go
// provides the real-time value curves collaborators may score jobs with.
package sim
