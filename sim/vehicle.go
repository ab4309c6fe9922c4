package sim

import (
	"fmt"

	"github.com/samber/lo"
)

// VehicleKind distinguishes the two fleet types.
type VehicleKind string

const (
	KindVan VehicleKind = "van"
	KindCar VehicleKind = "car"
)

// KindFor returns the vehicle kind a courier role drives: Staff take vans,
// Subcon take cars.
func KindFor(role Role) VehicleKind {
	if role == RoleSubcon {
		return KindCar
	}
	return KindVan
}

// VehicleID is a handle into the VehiclePool arena.
type VehicleID int

// NoVehicle marks a courier without an assigned vehicle.
const NoVehicle VehicleID = -1

// Vehicle is a parked van or car that one courier loads for the day.
// Occupied is true exactly when Driver is set.
type Vehicle struct {
	ID       VehicleID
	Kind     VehicleKind
	Position Vec2
	Parking  Vec2 // resting grid cell
	Speed    float64
	Occupied bool
	Driver   CourierID
	Loaded   int // boxes loaded since the weekly spawn
}

// Parked reports whether the vehicle has reached its grid cell.
func (v *Vehicle) Parked() bool {
	return v.Position == v.Parking
}

// VehiclePool owns the fleet. Vehicles are claimed exclusively, first free
// vehicle of the requested kind in spawn order.
type VehiclePool struct {
	vehicles []*Vehicle
	eps      float64
}

// NewVehiclePool returns an empty pool; the fleet appears at the weekly spawn.
func NewVehiclePool(eps float64) *VehiclePool {
	return &VehiclePool{eps: eps}
}

// Spawn discards the current fleet and lays out a fresh one: a van grid of
// cfg.Rows x cfg.Cols anchored at cfg.Origin growing left and down, and a car
// grid of the same shape below it separated by cfg.Gap. Every vehicle starts
// off-screen at y = cfg.EntryY above its cell.
func (p *VehiclePool) Spawn(cfg FleetConfig) {
	p.vehicles = p.vehicles[:0]
	p.layout(KindVan, cfg.Origin, cfg)
	carOrigin := cfg.Origin.Add(V(0, float64(cfg.Rows)*cfg.Spacing+cfg.Gap))
	p.layout(KindCar, carOrigin, cfg)
}

func (p *VehiclePool) layout(kind VehicleKind, origin Vec2, cfg FleetConfig) {
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			cell := V(origin.X-float64(col)*cfg.Spacing, origin.Y+float64(row)*cfg.Spacing)
			p.vehicles = append(p.vehicles, &Vehicle{
				ID:       VehicleID(len(p.vehicles)),
				Kind:     kind,
				Position: V(cell.X, cfg.EntryY),
				Parking:  cell,
				Speed:    cfg.Speed,
				Driver:   NoCourier,
			})
		}
	}
}

// Claim assigns the first unoccupied vehicle of kind to driver.
// Returns NoVehicle and false when the kind is exhausted.
func (p *VehiclePool) Claim(kind VehicleKind, driver CourierID) (VehicleID, bool) {
	for _, v := range p.vehicles {
		if v.Kind == kind && !v.Occupied {
			v.Occupied = true
			v.Driver = driver
			return v.ID, true
		}
	}
	return NoVehicle, false
}

// Release frees a vehicle. Panics if driver does not hold it.
func (p *VehiclePool) Release(id VehicleID, driver CourierID) {
	v, ok := p.Get(id)
	if !ok {
		panic(fmt.Sprintf("VehiclePool.Release: unknown vehicle %d", id))
	}
	if v.Driver != driver {
		panic(fmt.Sprintf("VehiclePool.Release: courier %d does not drive vehicle %d (driver %d)", driver, id, v.Driver))
	}
	v.Occupied = false
	v.Driver = NoCourier
}

// Get looks up a vehicle by handle.
func (p *VehiclePool) Get(id VehicleID) (*Vehicle, bool) {
	if id < 0 || int(id) >= len(p.vehicles) {
		return nil, false
	}
	return p.vehicles[id], true
}

// Load adds n boxes to a vehicle's load. Unknown handles are ignored.
func (p *VehiclePool) Load(id VehicleID, n int) bool {
	v, ok := p.Get(id)
	if !ok || n <= 0 {
		return false
	}
	v.Loaded += n
	return true
}

// Update drives every vehicle toward its parking cell.
func (p *VehiclePool) Update(dtMs float64) {
	for _, v := range p.vehicles {
		if v.Parked() {
			continue
		}
		v.Position, _ = MoveTowards(v.Position, v.Parking, v.Speed, dtMs, p.eps)
	}
}

// All returns the fleet in spawn order. Callers must not modify the slice.
func (p *VehiclePool) All() []*Vehicle {
	return p.vehicles
}

// Count returns how many vehicles of kind exist.
func (p *VehiclePool) Count(kind VehicleKind) int {
	return lo.CountBy(p.vehicles, func(v *Vehicle) bool { return v.Kind == kind })
}

// Occupied returns how many vehicles currently have a driver.
func (p *VehiclePool) Occupied() int {
	return lo.CountBy(p.vehicles, func(v *Vehicle) bool { return v.Occupied })
}
