package sim

import (
	"strconv"

	"github.com/me/wisched/pkg/model"
)

// JobState represents the lifecycle state of a Job.
type JobState string

const (
	JobStatePending   JobState = "PENDING"
	JobStateReady     JobState = "READY"
	JobStateRunning   JobState = "RUNNING"
	JobStateCompleted JobState = "COMPLETED"
)

// String returns the string representation of the job state.
func (s JobState) String() string {
	return string(s)
}

// unset marks a start/finish/response value that has not been stamped yet.
const unset = -1

// Job is one periodic activation of a Task. The absolute deadline is fixed
// at creation and never recomputed; Remaining counts the execution budget
// down from WCET to zero.
type Job struct {
	Task             *Task
	Number           int // per-task activation counter, starting at 1
	Arrival          int
	AbsoluteDeadline int
	Remaining        int
	State            JobState
	Start            int // first-dispatch tick, unset until Running
	Finish           int // completion tick, unset until Completed
	Response         int // Finish - Arrival, unset until Completed
	Missed           bool

	// seq is the admission tie-break: position in the generated,
	// arrival-ordered job population.
	seq int
}

func newJob(task *Task, arrival, number int) *Job {
	return &Job{
		Task:             task,
		Number:           number,
		Arrival:          arrival,
		AbsoluteDeadline: arrival + task.Deadline,
		Remaining:        task.WCET,
		State:            JobStatePending,
		Start:            unset,
		Finish:           unset,
		Response:         unset,
	}
}

// ID returns the "<task>_<number>" identifier, e.g. "Ultra_3".
func (j *Job) ID() string {
	return j.Task.Name + "_" + strconv.Itoa(j.Number)
}

// Started reports whether the job has been dispatched at least once.
func (j *Job) Started() bool {
	return j.Start != unset
}

// Completed reports whether the job has finished executing.
func (j *Job) Completed() bool {
	return j.State == JobStateCompleted
}

// Lateness returns Finish minus the absolute deadline. Only meaningful for
// completed jobs; non-positive means the deadline was met.
func (j *Job) Lateness() int {
	return j.Finish - j.AbsoluteDeadline
}

// OutranksEDF reports whether j has a strictly earlier absolute deadline
// than other.
func (j *Job) OutranksEDF(other *Job) bool {
	return j.AbsoluteDeadline < other.AbsoluteDeadline
}

// Record converts a completed job into its exportable form.
func (j *Job) Record(runID string) model.JobRecord {
	return model.JobRecord{
		RunID:    runID,
		Task:     j.Task.Name,
		Number:   j.Number,
		Arrival:  j.Arrival,
		Start:    j.Start,
		Finish:   j.Finish,
		Deadline: j.AbsoluteDeadline,
		Response: j.Response,
		Missed:   j.Missed,
	}
}
