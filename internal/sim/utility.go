package sim

import "math"

// UtilityModel selects a real-time value curve mapping a completed job's
// lateness or latency to a value in [0,1]. Utility is a reporting concern:
// it never influences dispatch.
type UtilityModel string

const (
	// UtilityHard gives full value on time, nothing late.
	UtilityHard UtilityModel = "hard"
	// UtilitySoft degrades exponentially past the deadline.
	UtilitySoft UtilityModel = "soft"
	// UtilityFirm degrades linearly up to the deadline, nothing after.
	UtilityFirm UtilityModel = "firm"
	// UtilityDelaySensitive is the step-threshold curve for emergency M2M
	// traffic.
	UtilityDelaySensitive UtilityModel = "delay_sensitive"
	// UtilityDelayTolerant is the graceful exponential-decay curve for
	// monitoring M2M traffic.
	UtilityDelayTolerant UtilityModel = "delay_tolerant"
)

// delay-sensitive traffic keeps full value below 70% of the deadline and a
// reduced 0.3 shoulder up to it; delay-tolerant traffic decays with rate 0.3
// against half the deadline.
const (
	sensitiveThreshold = 0.7
	sensitiveShoulder  = 0.3
	tolerantDecayRate  = 0.3
	tolerantHalfPoint  = 0.5
)

// Utility scores a completed job under the given value model. Jobs without a
// defined response time score zero.
func (j *Job) Utility(m UtilityModel) float64 {
	if !j.Completed() {
		return 0
	}
	return UtilityValue(m, j.Lateness(), j.Response, j.Task.Deadline)
}

// ClassUtility scores a completed job under its task's traffic-class curve.
// Tasks default to delay-sensitive.
func (j *Job) ClassUtility() float64 {
	if j.Task.Class == ClassDelayTolerant {
		return j.Utility(UtilityDelayTolerant)
	}
	return j.Utility(UtilityDelaySensitive)
}

// UtilityValue is the curve family itself, on raw tick values so that
// collaborators holding exported job records (rather than engine jobs) can
// score them too. lateness is finish minus absolute deadline, latency is the
// response time, deadline is the task's relative deadline.
func UtilityValue(m UtilityModel, lateness, latency, deadline int) float64 {
	d := float64(deadline)
	switch m {
	case UtilitySoft:
		if lateness <= 0 {
			return 1.0
		}
		return math.Exp(-float64(lateness) / d)

	case UtilityFirm:
		if lateness > 0 {
			return 0
		}
		// Value shrinks from 1.0 toward 0.7 as completion approaches the
		// deadline.
		slack := float64(-lateness)
		return 1.0 - 0.3*(d-slack)/d

	case UtilityDelaySensitive:
		l := float64(latency)
		switch {
		case l < sensitiveThreshold*d:
			return 1.0
		case l <= d:
			return sensitiveShoulder
		default:
			return 0
		}

	case UtilityDelayTolerant:
		u := math.Exp(-tolerantDecayRate * float64(latency) / (tolerantHalfPoint * d))
		return math.Max(0, u)

	default: // hard
		if lateness <= 0 {
			return 1.0
		}
		return 0
	}
}

// MeanUtility averages a value model over a completed-job list. Empty input
// scores zero.
func MeanUtility(jobs []*Job, m UtilityModel) float64 {
	if len(jobs) == 0 {
		return 0
	}
	var sum float64
	for _, j := range jobs {
		sum += j.Utility(m)
	}
	return sum / float64(len(jobs))
}
