package sim

import "fmt"

// TruckState is the truck lifecycle state.
type TruckState string

const (
	TruckApproaching TruckState = "Approaching"
	TruckArrived     TruckState = "Arrived"
	TruckUnloading   TruckState = "Unloading"
	TruckDeparting   TruckState = "Departing"
	TruckDespawned   TruckState = "Despawned"
)

var truckTransitions = map[TruckState]TruckState{
	TruckApproaching: TruckArrived,
	TruckArrived:     TruckUnloading,
	TruckUnloading:   TruckDeparting,
	TruckDeparting:   TruckDespawned,
}

// Dock receives a truck's payload. Implemented by the simulator, which owns
// the box pile.
type Dock interface {
	Receive(cycle string, boxes int, stop Vec2)
}

// Truck delivers one cycle's payload to the pile and leaves.
type Truck struct {
	ID       string
	Cycle    string
	State    TruckState
	Position Vec2
	Stop     Vec2
	Exit     Vec2
	Speed    float64
	Payload  int

	unloadMs  float64 // delay between Unloading and the transfer
	unloadFor float64
	eps       float64
}

// NewTruck creates a loaded truck at cfg's start position heading for the stop.
func NewTruck(id, cycle string, payload int, cfg TruckConfig) *Truck {
	start := V(cfg.StartX, cfg.Y)
	return &Truck{
		ID:       id,
		Cycle:    cycle,
		State:    TruckApproaching,
		Position: start,
		Stop:     V(cfg.StopX, cfg.Y),
		Exit:     start,
		Speed:    cfg.Speed,
		Payload:  payload,
		unloadMs: cfg.UnloadMs,
		eps:      cfg.Epsilon,
	}
}

func (t *Truck) advance() {
	next, ok := truckTransitions[t.State]
	if !ok {
		panic(fmt.Sprintf("Truck.advance: no transition out of %s", t.State))
	}
	log.WithField("truck", t.ID).Debugf("%s -> %s", t.State, next)
	t.State = next
}

// Update advances the truck by dtMs. Arrived moves to Unloading on the next
// tick; the payload is handed to dock and cleared exactly once.
func (t *Truck) Update(dtMs float64, dock Dock) {
	switch t.State {
	case TruckApproaching:
		var arrived bool
		t.Position, arrived = MoveTowards(t.Position, t.Stop, t.Speed, dtMs, t.eps)
		if arrived {
			t.advance()
		}
	case TruckArrived:
		t.advance()
	case TruckUnloading:
		t.unloadFor += dtMs
		if t.unloadFor < t.unloadMs {
			return
		}
		dock.Receive(t.Cycle, t.Payload, t.Stop)
		t.Payload = 0
		t.advance()
	case TruckDeparting:
		var arrived bool
		t.Position, arrived = MoveTowards(t.Position, t.Exit, t.Speed, dtMs, t.eps)
		if arrived {
			t.advance()
		}
	case TruckDespawned:
	}
}

// Despawned reports whether the orchestrator should drop the truck.
func (t *Truck) Despawned() bool { return t.State == TruckDespawned }
