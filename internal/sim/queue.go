package sim

import "container/heap"

// readyQueue is the pluggable ready-set ordering that distinguishes the
// dispatch policies. Push/Pop/Peek maintain policy order; Jobs exposes the
// ready set for the per-tick deadline scan; Outranks is the strict priority
// comparison used to decide preemption (always false for a non-preemptive
// ordering).
type readyQueue interface {
	Push(j *Job)
	Pop() *Job
	Peek() *Job
	Len() int
	Jobs() []*Job
	Outranks(a, b *Job) bool
}

// newReadyQueue returns the ordering for a policy: EarliestDeadline for EDF,
// SmallestPeriod for RM, ArrivalOrder for FIFO.
func newReadyQueue(p Policy) readyQueue {
	switch p {
	case PolicyRM:
		return newPriorityQueue(byPeriod)
	case PolicyFIFO:
		return &arrivalQueue{}
	default:
		return newPriorityQueue(byDeadline)
	}
}

// byDeadline is the EDF priority: strictly earlier absolute deadline.
func byDeadline(a, b *Job) bool {
	return a.OutranksEDF(b)
}

// byPeriod is the RM priority: strictly smaller task period.
func byPeriod(a, b *Job) bool {
	return a.Task.Period < b.Task.Period
}

// tieBreak orders jobs of equal primary priority: earliest arrival first,
// then generation sequence (task enumeration order at equal arrival).
func tieBreak(a, b *Job) bool {
	if a.Arrival != b.Arrival {
		return a.Arrival < b.Arrival
	}
	return a.seq < b.seq
}

// priorityQueue is a heap-ordered ready set for the preemptive policies.
// outranks is the strict primary comparison; the heap ordering extends it
// with the deterministic tie-break.
type priorityQueue struct {
	h        jobHeap
	outranks func(a, b *Job) bool
}

func newPriorityQueue(outranks func(a, b *Job) bool) *priorityQueue {
	q := &priorityQueue{outranks: outranks}
	q.h.less = func(a, b *Job) bool {
		if outranks(a, b) {
			return true
		}
		if outranks(b, a) {
			return false
		}
		return tieBreak(a, b)
	}
	return q
}

func (q *priorityQueue) Push(j *Job) { heap.Push(&q.h, j) }

func (q *priorityQueue) Pop() *Job { return heap.Pop(&q.h).(*Job) }

func (q *priorityQueue) Peek() *Job {
	if len(q.h.jobs) == 0 {
		return nil
	}
	return q.h.jobs[0]
}

func (q *priorityQueue) Len() int { return len(q.h.jobs) }

func (q *priorityQueue) Jobs() []*Job { return q.h.jobs }

func (q *priorityQueue) Outranks(a, b *Job) bool { return q.outranks(a, b) }

// jobHeap implements container/heap for the priority orderings.
type jobHeap struct {
	jobs []*Job
	less func(a, b *Job) bool
}

func (h jobHeap) Len() int           { return len(h.jobs) }
func (h jobHeap) Less(i, j int) bool { return h.less(h.jobs[i], h.jobs[j]) }
func (h jobHeap) Swap(i, j int)      { h.jobs[i], h.jobs[j] = h.jobs[j], h.jobs[i] }
func (h *jobHeap) Push(x any)        { h.jobs = append(h.jobs, x.(*Job)) }
func (h *jobHeap) Pop() any {
	old := h.jobs
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	h.jobs = old[:n-1]
	return x
}

// arrivalQueue is the ArrivalOrder ready set backing FIFO. Jobs are admitted
// in arrival order (the generator sorts them), so a plain queue suffices.
// It never preempts.
type arrivalQueue struct {
	jobs []*Job
}

func (q *arrivalQueue) Push(j *Job) {
	q.jobs = append(q.jobs, j)
}

func (q *arrivalQueue) Pop() *Job {
	j := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return j
}

func (q *arrivalQueue) Peek() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[0]
}

func (q *arrivalQueue) Len() int { return len(q.jobs) }

func (q *arrivalQueue) Jobs() []*Job { return q.jobs }

func (q *arrivalQueue) Outranks(a, b *Job) bool { return false }
