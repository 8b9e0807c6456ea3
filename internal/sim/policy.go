package sim

import (
	"fmt"
	"strings"
)

// Policy selects the dispatch discipline for an engine run.
type Policy string

const (
	// PolicyEDF is earliest-deadline-first: preemptive, dynamic priority by
	// absolute deadline.
	PolicyEDF Policy = "EDF"
	// PolicyRM is rate-monotonic: preemptive, static priority by period.
	PolicyRM Policy = "RM"
	// PolicyFIFO is first-in-first-out: non-preemptive, arrival order.
	PolicyFIFO Policy = "FIFO"
)

// Policies lists all supported disciplines in canonical order.
var Policies = []Policy{PolicyEDF, PolicyRM, PolicyFIFO}

// String returns the policy name.
func (p Policy) String() string {
	return string(p)
}

// Preemptive reports whether the policy may displace a running job.
func (p Policy) Preemptive() bool {
	return p == PolicyEDF || p == PolicyRM
}

// ParsePolicy converts a string to a Policy, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EDF":
		return PolicyEDF, nil
	case "RM":
		return PolicyRM, nil
	case "FIFO":
		return PolicyFIFO, nil
	}
	return "", fmt.Errorf("unknown policy %q (want EDF, RM or FIFO)", s)
}
