package sim

import "fmt"

// Event is one entry of the facility calendar. Events are evaluated every
// tick in registration order; Due is a pure guard and Execute performs the
// action once the guard holds.
type Event interface {
	Name() string
	Due(*Simulator) bool
	Execute(*Simulator)
}

// DailyResetEvent opens a new working day: it clears the per-day flags,
// regenerates the idle grids and, on the vehicle day, the per-week flags.
type DailyResetEvent struct {
	At         TimeOfDay
	VehicleDay Weekday
}

func (e *DailyResetEvent) Name() string { return "daily-reset" }

// Due holds once per calendar day, at or after the reset time.
func (e *DailyResetEvent) Due(sim *Simulator) bool {
	return !sim.Scheduler.openedToday(sim.Clock.Day()) && sim.Clock.Reached(e.At)
}

func (e *DailyResetEvent) Execute(sim *Simulator) {
	day := sim.Clock.Day()
	sim.Scheduler.openDay(day, day == e.VehicleDay)
	sim.resetIdleGrids()
	sim.recordEvent(e.Name(), day.String())
}

// VehicleSpawnEvent rebuilds the fleet once per week.
type VehicleSpawnEvent struct {
	Day Weekday
	At  TimeOfDay
}

func (e *VehicleSpawnEvent) Name() string { return "vehicle-spawn" }

func (e *VehicleSpawnEvent) Due(sim *Simulator) bool {
	return sim.Scheduler.openedToday(sim.Clock.Day()) &&
		sim.Clock.Day() == e.Day &&
		sim.Clock.Reached(e.At) &&
		!sim.Scheduler.FiredThisWeek(e.Name())
}

func (e *VehicleSpawnEvent) Execute(sim *Simulator) {
	sim.Scheduler.markWeek(e.Name())
	sim.spawnVehicles()
	sim.recordEvent(e.Name(), fmt.Sprintf("%d vans, %d cars", sim.Vehicles.Count(KindVan), sim.Vehicles.Count(KindCar)))
}

// CourierSpawnEvent replaces the roster once per day.
type CourierSpawnEvent struct {
	At TimeOfDay
}

func (e *CourierSpawnEvent) Name() string { return "courier-spawn" }

func (e *CourierSpawnEvent) Due(sim *Simulator) bool {
	return sim.Scheduler.openedToday(sim.Clock.Day()) &&
		sim.Clock.Reached(e.At) &&
		!sim.Scheduler.FiredToday(e.Name())
}

func (e *CourierSpawnEvent) Execute(sim *Simulator) {
	sim.Scheduler.markToday(e.Name())
	n := sim.spawnCouriers()
	sim.recordEvent(e.Name(), fmt.Sprintf("%d couriers", n))
}

// TruckSpawnEvent sends one loaded truck for a cycle once per day.
type TruckSpawnEvent struct {
	Cycle CycleConfig
}

func (e *TruckSpawnEvent) Name() string { return "truck:" + e.Cycle.Name }

func (e *TruckSpawnEvent) Due(sim *Simulator) bool {
	return sim.Scheduler.openedToday(sim.Clock.Day()) &&
		sim.Clock.Reached(e.Cycle.At) &&
		!sim.Scheduler.FiredToday(e.Name())
}

func (e *TruckSpawnEvent) Execute(sim *Simulator) {
	sim.Scheduler.markToday(e.Name())
	t := sim.spawnTruck(e.Cycle)
	sim.recordEvent(e.Name(), fmt.Sprintf("%s payload %d", t.ID, t.Payload))
}
