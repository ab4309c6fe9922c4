package sim

import "fmt"

// AdmissionPolicy decides whether the next pending courier is admitted to
// the floor. Used by the Simulator's streaming step: it is asked repeatedly
// within one tick until it refuses or the pending queue is empty, and the
// elapsed timer resets after every admission.
type AdmissionPolicy interface {
	Admit(pending int, sinceLastMs float64) (admitted bool, reason string)
}

// AlwaysAdmit admits every pending courier on the tick they appear.
type AlwaysAdmit struct{}

func (a *AlwaysAdmit) Admit(pending int, _ float64) (bool, string) {
	if pending == 0 {
		return false, "no pending couriers"
	}
	return true, ""
}

// IntervalAdmission streams couriers one at a time, at most one per interval.
type IntervalAdmission struct {
	intervalMs float64
}

// NewIntervalAdmission creates an IntervalAdmission with the given interval.
func NewIntervalAdmission(intervalMs float64) *IntervalAdmission {
	return &IntervalAdmission{intervalMs: intervalMs}
}

// Admit returns true once sinceLastMs has reached the interval.
func (ia *IntervalAdmission) Admit(pending int, sinceLastMs float64) (bool, string) {
	if pending == 0 {
		return false, "no pending couriers"
	}
	if sinceLastMs < ia.intervalMs {
		return false, "interval not elapsed"
	}
	return true, ""
}

// ValidAdmissionPolicies is the set of recognized admission policy names.
// Shared by Validate() and NewAdmissionPolicy() to avoid duplication.
var ValidAdmissionPolicies = map[string]bool{"": true, "interval": true, "always-admit": true}

// IsValidAdmissionPolicy reports whether name is a recognized policy.
func IsValidAdmissionPolicy(name string) bool {
	return ValidAdmissionPolicies[name]
}

// NewAdmissionPolicy creates an admission policy by name.
// An empty string defaults to interval streaming.
// Panics on unrecognized names.
func NewAdmissionPolicy(name string, intervalMs float64) AdmissionPolicy {
	if !IsValidAdmissionPolicy(name) {
		panic(fmt.Sprintf("unknown admission policy %q", name))
	}
	switch name {
	case "", "interval":
		return NewIntervalAdmission(intervalMs)
	case "always-admit":
		return &AlwaysAdmit{}
	default:
		panic(fmt.Sprintf("unhandled admission policy %q", name))
	}
}
