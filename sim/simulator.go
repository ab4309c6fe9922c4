package sim

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/parcel-sim/parcel-sim/sim/trace"
)

var log = logrus.WithField("module", "sim")

// Simulator is the orchestrator: it owns the clock, the calendar, every agent
// arena and the shared resources, and advances them in a fixed order per tick.
//
// Thread-safety: NOT thread-safe. Step, SwitchScene and Snapshot must be
// called from one goroutine at a time.
type Simulator struct {
	RunID     string
	Clock     *Clock
	Scheduler *SpawnScheduler
	Vehicles  *VehiclePool
	Slots     *SlotPool
	Pile      *BoxPile // nil until the first truck unloads
	Metrics   *Metrics
	Trace     *trace.SimulationTrace

	cfg       Config
	rng       *PartitionedRNG
	admission AdmissionPolicy
	scenes    *SceneManager
	idle      map[Role]*IdleGrid

	couriers     []*Courier // roster arena, indexed by CourierID
	pending      []CourierID
	sinceAdmitMs float64
	trucks       []*Truck
	truckSeq     int
	elapsedMs    float64

	log *logrus.Entry
}

// NewSimulator validates cfg and builds a simulator at the configured start
// time. The same cfg and seed stepped with the same deltas produce the same
// snapshots, run id included.
func NewSimulator(cfg Config, seed int64) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	runID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("parcel-sim/"+strconv.FormatInt(seed, 10))).String()
	level := trace.TraceLevel(cfg.TraceLevel)
	if level == "" {
		level = trace.TraceLevelNone
	}
	s := &Simulator{
		RunID:     runID,
		Clock:     NewClock(cfg.Clock.StartDay, cfg.Clock.Start.Hour, cfg.Clock.Start.Minute, cfg.Clock.Speed),
		Scheduler: NewSpawnScheduler(cfg.Schedule),
		Vehicles:  NewVehiclePool(cfg.Fleet.Epsilon),
		Slots:     NewSlotPool(cfg.Queue),
		Metrics:   NewMetrics(),
		cfg:       cfg,
		rng:       NewPartitionedRNG(seed),
		admission: NewAdmissionPolicy(cfg.Admission.Policy, cfg.Admission.IntervalMs),
		scenes:    NewSceneManager(cfg.Scene),
		log:       log.WithField("run", runID[:8]),
	}
	if level == trace.TraceLevelDecisions {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	}
	s.resetIdleGrids()
	s.log.Debugf("simulator ready at %s, seed %d", s.Clock, seed)
	return s, nil
}

// Step advances the world by elapsedMs of real time. Order per tick:
// clock, calendar, admission stream, couriers, vehicles, trucks, queue
// compaction, then removal of despawned trucks. Negative, NaN and infinite
// deltas count as 0.
func (s *Simulator) Step(elapsedMs float64) {
	dt := 0.0
	if validDelta(elapsedMs) {
		dt = elapsedMs
	}
	s.elapsedMs += dt

	s.Clock.Tick(dt)
	s.Scheduler.Tick(s)
	s.admit(dt)

	env := &floor{sim: s}
	for _, c := range s.couriers {
		c.Update(dt, env)
	}

	s.Vehicles.Update(dt)
	for _, t := range s.trucks {
		t.Update(dt, s)
	}

	s.Slots.Compact(func(id CourierID, _, to SlotRef) {
		s.couriers[id].Slot = to
	})
	s.Metrics.ObserveQueue(s.Slots.Occupied())

	s.trucks = lo.Reject(s.trucks, func(t *Truck, _ int) bool {
		if t.Despawned() {
			s.Metrics.TrucksDespawned++
			s.log.Debugf("truck %s despawned", t.ID)
			return true
		}
		return false
	})
}

// Run steps the simulator in frames of frameMs until totalMs of real time
// has elapsed. The last frame is shortened so the total is exact.
func (s *Simulator) Run(totalMs, frameMs float64) {
	if frameMs <= 0 {
		panic(fmt.Sprintf("Simulator.Run: frameMs must be positive, got %f", frameMs))
	}
	for done := 0.0; done < totalMs; done += frameMs {
		s.Step(min(frameMs, totalMs-done))
	}
}

// SwitchScene records a scene-switch intent. Unknown scenes are ignored.
func (s *Simulator) SwitchScene(name string) bool {
	return s.scenes.Switch(name)
}

// Scene returns the current scene name.
func (s *Simulator) Scene() string { return s.scenes.Current() }

// ElapsedMs returns the total real time stepped so far.
func (s *Simulator) ElapsedMs() float64 { return s.elapsedMs }

// Couriers returns the current roster in id order. Callers must not modify it.
func (s *Simulator) Couriers() []*Courier { return s.couriers }

// Pending returns how many spawned couriers still wait for admission.
func (s *Simulator) Pending() int { return len(s.pending) }

// Trucks returns the trucks currently on the road.
func (s *Simulator) Trucks() []*Truck { return s.trucks }

// Courier looks up a roster member by handle.
func (s *Simulator) Courier(id CourierID) (*Courier, bool) {
	if id < 0 || int(id) >= len(s.couriers) {
		return nil, false
	}
	return s.couriers[id], true
}

// Receive implements Dock: the payload lands on the pile, which is created
// on first use and otherwise moved next to the truck stop.
func (s *Simulator) Receive(cycle string, boxes int, stop Vec2) {
	pos := stop.Add(s.cfg.Queue.PileOffset)
	if s.Pile == nil {
		s.Pile = &BoxPile{Position: pos}
		s.log.Infof("box pile created at %s", pos)
	}
	s.Pile.Position = pos
	s.Slots.SetOrigin(pos)
	s.Pile.Add(boxes)
	s.Metrics.BoxesDelivered += boxes
	s.Metrics.CyclePayloads[cycle] += boxes
	s.log.Infof("%s unloaded %d boxes, pile now %d", cycle, boxes, s.Pile.Boxes)
}

func (s *Simulator) resetIdleGrids() {
	s.idle = map[Role]*IdleGrid{
		RoleStaff:  NewIdleGrid(s.cfg.Roster.StaffIdle),
		RoleSubcon: NewIdleGrid(s.cfg.Roster.SubconIdle),
	}
}

// retireRoster releases every resource the current roster holds and drops it.
// Carried boxes go back on the pile.
func (s *Simulator) retireRoster() {
	for _, c := range s.couriers {
		if c.Slot.Held() {
			s.Slots.Release(c.Slot, c.ID)
			c.Slot = NoSlot
		}
		if c.HasVehicle() {
			s.Vehicles.Release(c.Vehicle, c.ID)
			c.Vehicle = NoVehicle
		}
		if c.IdleCell >= 0 {
			s.idle[c.Role].Release(c.IdleCell)
			c.IdleCell = -1
		}
		if c.Carrying > 0 && s.Pile != nil {
			s.Pile.Add(c.Carrying)
			s.Metrics.BoxesReturned += c.Carrying
			c.Carrying = 0
		}
	}
	if len(s.couriers) > 0 {
		s.log.Debugf("retired %d couriers", len(s.couriers))
	}
	s.couriers = nil
	s.pending = nil
}

// spawnVehicles replaces the fleet and re-matches the current roster to it
// in roster order. Couriers keep their slots, idle cells and carried boxes.
func (s *Simulator) spawnVehicles() {
	s.Vehicles.Spawn(s.cfg.Fleet)
	s.Metrics.VehicleSpawns++
	for _, c := range s.couriers {
		c.Vehicle = NoVehicle
		if vid, ok := s.Vehicles.Claim(KindFor(c.Role), c.ID); ok {
			c.Vehicle = vid
		} else {
			s.log.Warnf("no free %s for %s after fleet respawn", KindFor(c.Role), c.Name)
		}
	}
	if len(s.couriers) > 0 {
		s.log.Debugf("re-matched %d couriers to the new fleet", len(s.couriers))
	}
}

// spawnCouriers replaces the roster with today's Staff and Subcon couriers,
// each matched to the first free vehicle of its kind. Returns the roster size.
func (s *Simulator) spawnCouriers() int {
	s.retireRoster()
	day := s.Clock.Day()
	add := func(prefix string, role Role, n int) {
		for i := 0; i < n; i++ {
			id := CourierID(len(s.couriers))
			c := NewCourier(id, fmt.Sprintf("%s_%s_%d", prefix, day, i), role, s.entryPoint(), s.cfg.Roster.Speed)
			if vid, ok := s.Vehicles.Claim(KindFor(role), id); ok {
				c.Vehicle = vid
			} else {
				s.Metrics.CouriersUnassigned++
				s.log.Warnf("no free %s for %s", KindFor(role), c.Name)
			}
			s.couriers = append(s.couriers, c)
			s.pending = append(s.pending, id)
		}
	}
	add("S", RoleStaff, s.cfg.Roster.Staff)
	add("SC", RoleSubcon, s.cfg.Roster.Subcon)
	s.Metrics.CouriersSpawned += len(s.couriers)
	return len(s.couriers)
}

// entryPoint is the roster entry with a uniform horizontal jitter of up to
// EntryJitter pixels either way. No draw is made when the jitter is zero.
func (s *Simulator) entryPoint() Vec2 {
	entry := s.cfg.Roster.Entry
	if j := s.cfg.Roster.EntryJitter; j > 0 {
		entry.X += (s.rng.ForSubsystem(SubsystemRoster).Float64()*2 - 1) * j
	}
	return entry
}

func (s *Simulator) spawnTruck(cy CycleConfig) *Truck {
	s.truckSeq++
	id := fmt.Sprintf("T_%s_%s_%d", cy.Name, s.Clock.Day(), s.truckSeq)
	t := NewTruck(id, cy.Name, cy.Payload, s.cfg.Truck)
	s.trucks = append(s.trucks, t)
	s.Metrics.TrucksSpawned++
	return t
}

// admit streams pending couriers onto the floor as the policy allows.
func (s *Simulator) admit(dtMs float64) {
	s.sinceAdmitMs += dtMs
	for len(s.pending) > 0 {
		if ok, _ := s.admission.Admit(len(s.pending), s.sinceAdmitMs); !ok {
			return
		}
		id := s.pending[0]
		s.pending = s.pending[1:]
		s.sinceAdmitMs = 0

		c := s.couriers[id]
		cell, spot, ok := s.idle[c.Role].Claim()
		if !ok {
			// grid full: wait at the entry point
			spot = s.cfg.Roster.Entry
		}
		if err := c.Report(spot, cell); err != nil {
			s.log.Errorf("admitting %s: %v", c.Name, err)
			continue
		}
		s.Metrics.CouriersAdmitted++
		if s.Trace.Enabled() {
			s.Trace.RecordAdmission(trace.AdmissionRecord{Courier: c.Name, Clock: s.Clock.String(), Pending: len(s.pending)})
		}
	}
}

func (s *Simulator) recordEvent(name, detail string) {
	if s.Trace.Enabled() {
		s.Trace.RecordEvent(trace.EventRecord{Name: name, Clock: s.Clock.String(), Detail: detail})
	}
}

// floor is the CourierEnv the simulator hands to its couriers. Every method
// updates the shared resource and the courier's back-reference together.
type floor struct {
	sim *Simulator
}

func (f *floor) PileReady() bool { return f.sim.Pile != nil }

func (f *floor) ClaimSlot(c *Courier) bool {
	s := f.sim
	s.Metrics.ClaimAttempts++
	ref, ok := s.Slots.Claim(c.ID, c.Role, s.rng.ForSubsystem(SubsystemQueue))
	if ok {
		c.Slot = ref
		s.log.WithField("courier", c.Name).Tracef("claimed %v", ref)
	} else {
		s.Metrics.ClaimFailures++
	}
	if s.Trace.Enabled() {
		rec := trace.ClaimRecord{Courier: c.Name, Clock: s.Clock.String(), Claimed: ok, Row: ref.Row}
		if !ok {
			rec.Reason = "no free tail"
		}
		s.Trace.RecordClaim(rec)
	}
	return ok
}

func (f *floor) SlotPosition(ref SlotRef) Vec2 { return f.sim.Slots.Position(ref) }

func (f *floor) Pickup(c *Courier) int {
	s := f.sim
	if s.Pile == nil || s.Pile.Boxes == 0 || c.Slot.Index != 0 {
		return 0
	}
	row := c.Slot.Row
	n := s.Pile.Take(s.cfg.Queue.PickupBatch)
	s.Slots.Release(c.Slot, c.ID)
	c.Slot = NoSlot
	s.Metrics.Pickups++
	s.Metrics.BoxesPicked += n
	s.log.WithField("courier", c.Name).Debugf("picked %d boxes from row %d, pile now %d", n, row, s.Pile.Boxes)
	if s.Trace.Enabled() {
		s.Trace.RecordPickup(trace.PickupRecord{Courier: c.Name, Clock: s.Clock.String(), Row: row, Boxes: n, PileAfter: s.Pile.Boxes})
	}
	return n
}

func (f *floor) VehiclePosition(id VehicleID) (Vec2, bool) {
	v, ok := f.sim.Vehicles.Get(id)
	if !ok {
		return Vec2{}, false
	}
	return v.Position, true
}

func (f *floor) Deposit(c *Courier, n int) {
	s := f.sim
	if n <= 0 {
		return
	}
	if s.Vehicles.Load(c.Vehicle, n) {
		s.Metrics.BoxesLoaded += n
		return
	}
	// vehicle gone: the boxes go back on the pile
	if s.Pile != nil {
		s.Pile.Add(n)
		s.Metrics.BoxesReturned += n
	}
}

func (f *floor) Epsilon() float64 { return f.sim.cfg.Roster.Epsilon }

func (f *floor) PollInterval() float64 { return f.sim.cfg.Roster.PollIntervalMs }
