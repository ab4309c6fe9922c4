// Package trace provides decision-trace recording for queue and calendar analysis.
// This package has no dependencies on sim/: it stores pure data types.
package trace

// ClaimRecord captures a single slot claim attempt.
type ClaimRecord struct {
	Courier string
	Clock   string // display time, e.g. "Monday 08:01"
	Claimed bool
	Row     int // -1 when the claim failed
	Reason  string
}

// PickupRecord captures boxes drained from the pile by the holder of a slot 0.
type PickupRecord struct {
	Courier   string
	Clock     string
	Row       int
	Boxes     int
	PileAfter int
}

// AdmissionRecord captures a courier streamed onto the floor.
type AdmissionRecord struct {
	Courier string
	Clock   string
	Pending int // couriers still waiting after this admission
}

// EventRecord captures a calendar event firing.
type EventRecord struct {
	Name   string
	Clock  string
	Detail string
}
