package sim

import (
	"maps"

	"github.com/samber/lo"
)

// CourierView is the read-only picture of one courier.
type CourierView struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Role     Role         `json:"role"`
	State    CourierState `json:"state"`
	Position Vec2         `json:"position"`
	Carrying int          `json:"carrying"`
	Vehicle  int          `json:"vehicle"` // -1 when unassigned
	Slot     SlotRef      `json:"slot"`
	Scene    string       `json:"scene"`
}

// VehicleView is the read-only picture of one vehicle.
type VehicleView struct {
	ID       int         `json:"id"`
	Kind     VehicleKind `json:"kind"`
	Position Vec2        `json:"position"`
	Parked   bool        `json:"parked"`
	Occupied bool        `json:"occupied"`
	Driver   int         `json:"driver"` // -1 when free
	Loaded   int         `json:"loaded"`
	Scene    string      `json:"scene"`
}

// TruckView is the read-only picture of one truck.
type TruckView struct {
	ID       string     `json:"id"`
	Cycle    string     `json:"cycle"`
	State    TruckState `json:"state"`
	Position Vec2       `json:"position"`
	Payload  int        `json:"payload"`
	Scene    string     `json:"scene"`
}

// PileView is the read-only picture of the box pile.
type PileView struct {
	Position Vec2   `json:"position"`
	Boxes    int    `json:"boxes"`
	Scene    string `json:"scene"`
}

// Snapshot is a value copy of everything a renderer needs for one frame.
// It shares no memory with the simulator.
type Snapshot struct {
	RunID     string        `json:"run_id"`
	Clock     string        `json:"clock"`
	Day       string        `json:"day"`
	Hour      int           `json:"hour"`
	Minute    int           `json:"minute"`
	ElapsedMs float64       `json:"elapsed_ms"`
	Scene     string        `json:"scene"`
	Couriers  []CourierView `json:"couriers"`
	Pending   int           `json:"pending"`
	Vehicles  []VehicleView `json:"vehicles"`
	Trucks    []TruckView   `json:"trucks"`
	Pile      *PileView     `json:"pile,omitempty"`
	Queue     [][]int       `json:"queue"` // courier id per slot, -1 when free
	Metrics   Metrics       `json:"metrics"`
}

// Snapshot captures the current state.
func (s *Simulator) Snapshot() Snapshot {
	snap := Snapshot{
		RunID:     s.RunID,
		Clock:     s.Clock.String(),
		Day:       s.Clock.Day().String(),
		Hour:      s.Clock.Hour(),
		Minute:    s.Clock.Minute(),
		ElapsedMs: s.elapsedMs,
		Scene:     s.scenes.Current(),
		Pending:   len(s.pending),
		Metrics:   *s.Metrics,
	}
	snap.Metrics.CyclePayloads = maps.Clone(s.Metrics.CyclePayloads)

	snap.Couriers = lo.Map(s.couriers, func(c *Courier, _ int) CourierView {
		return CourierView{
			ID:       int(c.ID),
			Name:     c.Name,
			Role:     c.Role,
			State:    c.State,
			Position: c.Position,
			Carrying: c.Carrying,
			Vehicle:  int(c.Vehicle),
			Slot:     c.Slot,
			Scene:    SceneSortingArea,
		}
	})
	snap.Vehicles = lo.Map(s.Vehicles.All(), func(v *Vehicle, _ int) VehicleView {
		return VehicleView{
			ID:       int(v.ID),
			Kind:     v.Kind,
			Position: v.Position,
			Parked:   v.Parked(),
			Occupied: v.Occupied,
			Driver:   int(v.Driver),
			Loaded:   v.Loaded,
			Scene:    SceneCarpark,
		}
	})
	snap.Trucks = lo.Map(s.trucks, func(t *Truck, _ int) TruckView {
		return TruckView{
			ID:       t.ID,
			Cycle:    t.Cycle,
			State:    t.State,
			Position: t.Position,
			Payload:  t.Payload,
			Scene:    SceneSortingArea,
		}
	})
	if s.Pile != nil {
		snap.Pile = &PileView{Position: s.Pile.Position, Boxes: s.Pile.Boxes, Scene: SceneSortingArea}
	}
	snap.Queue = lo.Map(s.Slots.Occupancy(), func(row []CourierID, _ int) []int {
		return lo.Map(row, func(id CourierID, _ int) int { return int(id) })
	})
	return snap
}

// InScene keeps only the entities that belong to scene.
func (snap Snapshot) InScene(scene string) Snapshot {
	out := snap
	out.Couriers = lo.Filter(snap.Couriers, func(c CourierView, _ int) bool { return c.Scene == scene })
	out.Vehicles = lo.Filter(snap.Vehicles, func(v VehicleView, _ int) bool { return v.Scene == scene })
	out.Trucks = lo.Filter(snap.Trucks, func(t TruckView, _ int) bool { return t.Scene == scene })
	if snap.Pile != nil && snap.Pile.Scene != scene {
		out.Pile = nil
	}
	return out
}
