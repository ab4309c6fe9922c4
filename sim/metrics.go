// Tracks facility-wide counters: truck deliveries, queue pressure and boxes
// moved from the pile into vehicles.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	TrucksSpawned   int `json:"trucks_spawned"`
	TrucksDespawned int `json:"trucks_despawned"`
	BoxesDelivered  int `json:"boxes_delivered"` // unloaded onto the pile
	BoxesPicked     int `json:"boxes_picked"`    // taken off the pile
	BoxesLoaded     int `json:"boxes_loaded"`    // deposited into vehicles
	BoxesReturned   int `json:"boxes_returned"`  // carried boxes put back when a roster retires
	Pickups         int `json:"pickups"`

	ClaimAttempts int `json:"claim_attempts"`
	ClaimFailures int `json:"claim_failures"`

	CouriersSpawned    int `json:"couriers_spawned"`
	CouriersAdmitted   int `json:"couriers_admitted"`
	CouriersUnassigned int `json:"couriers_unassigned"` // spawned without a vehicle
	VehicleSpawns      int `json:"vehicle_spawns"`

	PeakQueueOccupancy int `json:"peak_queue_occupancy"` // max slots held at once

	CyclePayloads map[string]int `json:"cycle_payloads"` // cycle name -> boxes delivered
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{CyclePayloads: make(map[string]int)}
}

// ObserveQueue records the current number of held slots.
func (m *Metrics) ObserveQueue(occupied int) {
	m.PeakQueueOccupancy = max(m.PeakQueueOccupancy, occupied)
}

// ClaimSuccessRate returns the fraction of claim attempts that got a slot.
func (m *Metrics) ClaimSuccessRate() float64 {
	if m.ClaimAttempts == 0 {
		return 0
	}
	return float64(m.ClaimAttempts-m.ClaimFailures) / float64(m.ClaimAttempts)
}

// Print writes aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Trucks Spawned       : %d\n", m.TrucksSpawned)
	fmt.Fprintf(w, "Trucks Despawned     : %d\n", m.TrucksDespawned)
	fmt.Fprintf(w, "Boxes Delivered      : %d\n", m.BoxesDelivered)
	fmt.Fprintf(w, "Boxes Picked         : %d\n", m.BoxesPicked)
	fmt.Fprintf(w, "Boxes Loaded         : %d\n", m.BoxesLoaded)
	if m.BoxesReturned > 0 {
		fmt.Fprintf(w, "Boxes Returned       : %d\n", m.BoxesReturned)
	}
	fmt.Fprintf(w, "Pickups              : %d\n", m.Pickups)
	fmt.Fprintf(w, "Couriers Admitted    : %d / %d\n", m.CouriersAdmitted, m.CouriersSpawned)
	if m.CouriersUnassigned > 0 {
		fmt.Fprintf(w, "Couriers Unassigned  : %d\n", m.CouriersUnassigned)
	}
	if m.ClaimAttempts > 0 {
		fmt.Fprintf(w, "Claim Success Rate   : %.2f (%d attempts)\n", m.ClaimSuccessRate(), m.ClaimAttempts)
	}
	fmt.Fprintf(w, "Peak Queue Occupancy : %d slots\n", m.PeakQueueOccupancy)
	if len(m.CyclePayloads) > 0 {
		fmt.Fprintln(w, "=== Cycle Payloads ===")
		names := make([]string, 0, len(m.CyclePayloads))
		for name := range m.CyclePayloads {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-8s: %d boxes\n", name, m.CyclePayloads[name])
		}
	}
}
