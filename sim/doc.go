// Package sim provides the tick-driven simulation core for a parcel-sorting
// facility.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - courier.go: Courier lifecycle (OFF_WORK → REPORTING → IDLE → MOVE_TO_QUEUE → QUEUING → SORTING) and state table
//   - event.go: Calendar events that drive the simulation (daily reset, vehicle, courier and truck spawns)
//   - simulator.go: The per-tick orchestration order and the resources couriers touch
//
// # Architecture
//
// The Simulator owns every arena: the courier roster, the vehicle pool, the
// slot pool and the trucks on the road. Agents refer to each other through
// integer handles (CourierID, VehicleID, SlotRef), never pointers, and every
// operation that changes an owner also changes the back-reference in the
// same call. Nothing in the core blocks or spawns goroutines; callers drive
// it with Step(elapsedMs).
//
// Sub-packages:
//   - sim/trace/: Decision trace recording (slot claims, pickups, calendar events)
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Event: a calendar entry with a guard and an action
//   - AdmissionPolicy: stream spawned couriers onto the floor
//   - CourierEnv: the world as seen by one courier while it updates
//   - Dock: where a truck's payload goes
package sim
