package sim

import (
	"errors"
	"fmt"
	"slices"
)

// Role is the employment class of a courier. It decides which vehicle kind
// the courier drives and which queue rows admit it.
type Role string

const (
	RoleStaff  Role = "staff"
	RoleSubcon Role = "subcon"
)

// ValidRoles is the set of recognized role names. Shared by Validate() and
// the queue row configuration ("" means any role).
var ValidRoles = map[Role]bool{RoleStaff: true, RoleSubcon: true}

// CourierID is a handle into the simulator's roster arena.
type CourierID int

// NoCourier marks a free slot or an unoccupied vehicle.
const NoCourier CourierID = -1

// CourierState is the courier lifecycle state.
type CourierState string

const (
	StateOffWork     CourierState = "OFF_WORK"
	StateReporting   CourierState = "REPORTING"
	StateIdle        CourierState = "IDLE"
	StateMoveToQueue CourierState = "MOVE_TO_QUEUE"
	StateQueuing     CourierState = "QUEUING"
	StateSorting     CourierState = "SORTING"
	StateDelivering  CourierState = "DELIVERING" // reserved, no transitions yet
)

// ErrIllegalTransition is returned by Courier.SetState for a transition the
// courier state table does not allow.
var ErrIllegalTransition = errors.New("illegal courier state transition")

var courierTransitions = map[CourierState][]CourierState{
	StateOffWork:     {StateReporting},
	StateReporting:   {StateIdle},
	StateIdle:        {StateMoveToQueue},
	StateMoveToQueue: {StateQueuing},
	StateQueuing:     {StateSorting},
	StateSorting:     {StateIdle},
	StateDelivering:  nil,
}

// CanTransition reports whether from -> to is an allowed courier transition.
func CanTransition(from, to CourierState) bool {
	return slices.Contains(courierTransitions[from], to)
}

// CourierEnv is the slice of the world a courier touches while updating.
// Every call that mutates a shared resource also updates the courier's
// back-reference in the same call.
type CourierEnv interface {
	// PileReady reports whether a box pile exists.
	PileReady() bool
	// ClaimSlot tries to give c a tail slot and sets c.Slot on success.
	ClaimSlot(c *Courier) bool
	// SlotPosition returns where a slot stands.
	SlotPosition(ref SlotRef) Vec2
	// Pickup drains boxes for the holder of a row's slot 0, releases the
	// slot and clears c.Slot. Returns the number of boxes taken; zero means
	// the courier must keep waiting.
	Pickup(c *Courier) int
	// VehiclePosition returns where a vehicle currently is.
	VehiclePosition(id VehicleID) (Vec2, bool)
	// Deposit moves n carried boxes into c's vehicle.
	Deposit(c *Courier, n int)
	// Epsilon is the arrival distance.
	Epsilon() float64
	// PollInterval is the claim retry cooldown in milliseconds.
	PollInterval() float64
}

// Courier is one member of the daily roster.
type Courier struct {
	ID       CourierID
	Name     string // S_<Day>_<i> or SC_<Day>_<i>
	Role     Role
	State    CourierState
	Position Vec2
	Target   Vec2
	Speed    float64
	Carrying int

	Vehicle  VehicleID // NoVehicle when unassigned
	Slot     SlotRef   // NoSlot when not queuing
	IdleCell int       // index into the role's idle grid, -1 when none
	IdleSpot Vec2

	pollCooldown float64 // ms until the next claim attempt
}

// NewCourier creates an OFF_WORK courier standing at entry.
func NewCourier(id CourierID, name string, role Role, entry Vec2, speed float64) *Courier {
	return &Courier{
		ID:       id,
		Name:     name,
		Role:     role,
		State:    StateOffWork,
		Position: entry,
		Target:   entry,
		Speed:    speed,
		Vehicle:  NoVehicle,
		Slot:     NoSlot,
		IdleCell: -1,
	}
}

// SetState moves the courier to next if the transition table allows it.
// A rejected transition leaves the state unchanged.
func (c *Courier) SetState(next CourierState) error {
	if !CanTransition(c.State, next) {
		log.WithField("courier", c.Name).Warnf("rejected transition %s -> %s", c.State, next)
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.State, next)
	}
	log.WithField("courier", c.Name).Tracef("%s -> %s", c.State, next)
	c.State = next
	return nil
}

// mustSetState is used on transitions the FSM itself guarantees.
func (c *Courier) mustSetState(next CourierState) {
	if err := c.SetState(next); err != nil {
		panic(err)
	}
}

// Report sends an admitted courier to its idle cell.
func (c *Courier) Report(spot Vec2, cell int) error {
	if err := c.SetState(StateReporting); err != nil {
		return err
	}
	c.IdleSpot = spot
	c.IdleCell = cell
	c.Target = spot
	return nil
}

// HasVehicle reports whether the courier was matched with a vehicle.
func (c *Courier) HasVehicle() bool { return c.Vehicle != NoVehicle }

// Update advances the courier by dtMs milliseconds.
func (c *Courier) Update(dtMs float64, env CourierEnv) {
	eps := env.Epsilon()
	switch c.State {
	case StateOffWork, StateDelivering:
		return

	case StateReporting:
		if c.step(dtMs, eps) {
			c.mustSetState(StateIdle)
			c.pollCooldown = 0
		}

	case StateIdle:
		c.step(dtMs, eps)
		// unassigned couriers have nowhere to take boxes
		if !c.HasVehicle() {
			return
		}
		c.pollCooldown -= dtMs
		if c.pollCooldown > 0 {
			return
		}
		if !env.PileReady() || !env.ClaimSlot(c) {
			c.pollCooldown = env.PollInterval()
			return
		}
		c.Target = env.SlotPosition(c.Slot)
		c.mustSetState(StateMoveToQueue)

	case StateMoveToQueue:
		// compaction may move the slot forward while walking
		c.Target = env.SlotPosition(c.Slot)
		if c.step(dtMs, eps) {
			c.mustSetState(StateQueuing)
			c.tryPickup(env)
		}

	case StateQueuing:
		c.Target = env.SlotPosition(c.Slot)
		if c.step(dtMs, eps) {
			c.tryPickup(env)
		}

	case StateSorting:
		if pos, ok := env.VehiclePosition(c.Vehicle); ok {
			c.Target = pos
			if !c.step(dtMs, eps) {
				return
			}
		}
		env.Deposit(c, c.Carrying)
		c.Carrying = 0
		c.Target = c.IdleSpot
		c.pollCooldown = 0
		c.mustSetState(StateIdle)

	default:
		log.WithField("courier", c.Name).Warnf("unknown state %s, skipping update", c.State)
	}
}

// tryPickup runs once the courier is standing on its slot.
func (c *Courier) tryPickup(env CourierEnv) {
	if c.Slot.Index != 0 {
		return
	}
	n := env.Pickup(c)
	if n == 0 {
		return
	}
	c.Carrying += n
	if pos, ok := env.VehiclePosition(c.Vehicle); ok {
		c.Target = pos
	}
	c.mustSetState(StateSorting)
}

// step moves toward Target and reports arrival.
func (c *Courier) step(dtMs, eps float64) bool {
	var arrived bool
	c.Position, arrived = MoveTowards(c.Position, c.Target, c.Speed, dtMs, eps)
	return arrived
}
