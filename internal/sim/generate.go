package sim

import "sort"

// GenerateJobs produces every job activation with arrival < horizon for the
// given task set, ordered ascending by arrival with ties broken by task
// enumeration order. It is deterministic and side-effect-free so different
// policies can be compared against an identical job population.
//
// For a task with period P, activations occur at 0, P, 2P, ... strictly
// below the horizon. Job numbers per task start at 1 and increase per
// activation.
func GenerateJobs(tasks []*Task, horizon int) []*Job {
	var jobs []*Job
	for _, t := range tasks {
		number := 0
		for arrival := 0; arrival < horizon; arrival += t.Period {
			number++
			jobs = append(jobs, newJob(t, arrival, number))
		}
	}

	// Stable sort keeps equal-arrival jobs in task enumeration order.
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Arrival < jobs[j].Arrival
	})
	for i, j := range jobs {
		j.seq = i
	}
	return jobs
}
