package sim

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/parcel-sim/parcel-sim/sim/trace"
)

// ClockConfig sets where the week starts and how fast it runs.
type ClockConfig struct {
	StartDay Weekday   `yaml:"start_day"`
	Start    TimeOfDay `yaml:"start"`
	Speed    float64   `yaml:"speed"` // simulated minutes per real second
}

// CycleConfig is one named truck delivery window.
type CycleConfig struct {
	Name    string    `yaml:"name"`
	At      TimeOfDay `yaml:"at"`
	Payload int       `yaml:"payload"` // boxes on the truck (must be >= 0)
}

// ScheduleConfig groups the calendar.
type ScheduleConfig struct {
	DailyReset   TimeOfDay     `yaml:"daily_reset"`
	VehicleDay   Weekday       `yaml:"vehicle_day"`
	VehicleSpawn TimeOfDay     `yaml:"vehicle_spawn"`
	CourierSpawn TimeOfDay     `yaml:"courier_spawn"`
	Cycles       []CycleConfig `yaml:"cycles"`
}

// IdleGridConfig lays out one role's waiting cells, right to left from Origin.
type IdleGridConfig struct {
	Cols    int     `yaml:"cols"`
	Rows    int     `yaml:"rows"`
	Spacing float64 `yaml:"spacing"`
	Origin  Vec2    `yaml:"origin"`
}

// RosterConfig groups the daily courier roster.
type RosterConfig struct {
	Staff          int            `yaml:"staff"`
	Subcon         int            `yaml:"subcon"`
	Entry          Vec2           `yaml:"entry"`
	EntryJitter    float64        `yaml:"entry_jitter"` // max horizontal offset from Entry, pixels
	Speed          float64        `yaml:"speed"`        // pixels per second
	Epsilon        float64        `yaml:"epsilon"`      // arrival distance
	PollIntervalMs float64        `yaml:"poll_interval_ms"`
	StaffIdle      IdleGridConfig `yaml:"staff_idle"`
	SubconIdle     IdleGridConfig `yaml:"subcon_idle"`
}

// FleetConfig lays out the weekly van and car grids.
type FleetConfig struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Spacing float64 `yaml:"spacing"`
	Gap     float64 `yaml:"gap"`    // vertical space between the van and car grids
	Origin  Vec2    `yaml:"origin"` // top-right van cell
	EntryY  float64 `yaml:"entry_y"`
	Speed   float64 `yaml:"speed"`
	Epsilon float64 `yaml:"epsilon"`
}

// QueueRowConfig is one queue row leaving the pile.
type QueueRowConfig struct {
	Direction Vec2 `yaml:"direction"`
	Role      Role `yaml:"role"` // "" admits every role
}

// QueueConfig groups the slot pool and pile parameters.
type QueueConfig struct {
	Rows        []QueueRowConfig `yaml:"rows"`
	Slots       int              `yaml:"slots"` // slots per row
	Spacing     float64          `yaml:"spacing"`
	PickupBatch int              `yaml:"pickup_batch"` // boxes taken per pickup
	PileOffset  Vec2             `yaml:"pile_offset"`  // pile position relative to the truck stop
}

// TruckConfig groups truck motion parameters.
type TruckConfig struct {
	StartX   float64 `yaml:"start_x"`
	StopX    float64 `yaml:"stop_x"`
	Y        float64 `yaml:"y"`
	Speed    float64 `yaml:"speed"`
	Epsilon  float64 `yaml:"epsilon"`
	UnloadMs float64 `yaml:"unload_ms"`
}

// AdmissionConfig selects the streaming admission policy.
type AdmissionConfig struct {
	Policy     string  `yaml:"policy"` // "interval" (default) or "always-admit"
	IntervalMs float64 `yaml:"interval_ms"`
}

// Config is everything NewSimulator needs besides the seed.
type Config struct {
	Clock      ClockConfig     `yaml:"clock"`
	Schedule   ScheduleConfig  `yaml:"schedule"`
	Roster     RosterConfig    `yaml:"roster"`
	Fleet      FleetConfig     `yaml:"fleet"`
	Queue      QueueConfig     `yaml:"queue"`
	Truck      TruckConfig     `yaml:"truck"`
	Admission  AdmissionConfig `yaml:"admission"`
	Scene      string          `yaml:"scene"`       // initial scene, "" = Carpark
	TraceLevel string          `yaml:"trace_level"` // "none" (default) or "decisions"
}

// DefaultConfig returns the stock facility: Monday 06:00 at 1x, three truck
// cycles, a 5x8 van grid over a 5x8 car grid, five Staff and three Subcon.
func DefaultConfig() Config {
	return Config{
		Clock: ClockConfig{StartDay: Monday, Start: At(6, 0), Speed: 1},
		Schedule: ScheduleConfig{
			DailyReset:   At(6, 0),
			VehicleDay:   Monday,
			VehicleSpawn: At(6, 1),
			CourierSpawn: At(7, 0),
			Cycles: []CycleConfig{
				{Name: "ACycle", At: At(8, 0), Payload: 20},
				{Name: "BCycle", At: At(13, 0), Payload: 30},
				{Name: "NCycle", At: At(18, 0), Payload: 40},
			},
		},
		Roster: RosterConfig{
			Staff:          5,
			Subcon:         3,
			Entry:          V(640, -40),
			EntryJitter:    20,
			Speed:          300,
			Epsilon:        2,
			PollIntervalMs: 100,
			StaffIdle:      IdleGridConfig{Cols: 15, Rows: 2, Spacing: 35, Origin: V(1230, 80)},
			SubconIdle:     IdleGridConfig{Cols: 15, Rows: 2, Spacing: 35, Origin: V(1230, 185)},
		},
		Fleet: FleetConfig{
			Rows: 5, Cols: 8, Spacing: 50, Gap: 50,
			Origin: V(1280-50, 60), EntryY: -100, Speed: 120, Epsilon: 1,
		},
		Queue: QueueConfig{
			Rows: []QueueRowConfig{
				{Direction: V(1, 0)},
				{Direction: V(0, -1)},
				{Direction: V(0, 1)},
			},
			Slots:       6,
			Spacing:     30,
			PickupBatch: 1,
			PileOffset:  V(80, 0),
		},
		Truck: TruckConfig{
			StartX: -150, StopX: -150 + 96*2, Y: 300,
			Speed: 120, Epsilon: 1, UnloadMs: 0,
		},
		Admission:  AdmissionConfig{Policy: "interval", IntervalMs: 300},
		Scene:      SceneCarpark,
		TraceLevel: string(trace.TraceLevelNone),
	}
}

// Validate checks ranges and names. NewSimulator refuses a config that fails.
func (c *Config) Validate() error {
	if err := validateFinitePositive("clock.speed", c.Clock.Speed); err != nil {
		return err
	}
	if !c.Clock.Start.Valid() {
		return fmt.Errorf("clock.start out of range: %s", c.Clock.Start)
	}
	if err := c.Schedule.validate(); err != nil {
		return err
	}
	if err := c.Roster.validate(); err != nil {
		return err
	}
	if err := c.Fleet.validate(); err != nil {
		return err
	}
	if err := c.Queue.validate(); err != nil {
		return err
	}
	if err := c.Truck.validate(); err != nil {
		return err
	}
	if !IsValidAdmissionPolicy(c.Admission.Policy) {
		return fmt.Errorf("unknown admission policy %q; valid: interval, always-admit", c.Admission.Policy)
	}
	if c.Admission.IntervalMs < 0 {
		return fmt.Errorf("admission.interval_ms must be non-negative, got %f", c.Admission.IntervalMs)
	}
	if c.Scene != "" && !IsValidScene(c.Scene) {
		return fmt.Errorf("unknown scene %q", c.Scene)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q; valid: none, decisions", c.TraceLevel)
	}
	return nil
}

func (s *ScheduleConfig) validate() error {
	for name, t := range map[string]TimeOfDay{
		"schedule.daily_reset":   s.DailyReset,
		"schedule.vehicle_spawn": s.VehicleSpawn,
		"schedule.courier_spawn": s.CourierSpawn,
	} {
		if !t.Valid() {
			return fmt.Errorf("%s out of range: %s", name, t)
		}
	}
	if s.VehicleDay < 0 || int(s.VehicleDay) >= DaysPerWeek {
		return fmt.Errorf("schedule.vehicle_day out of range: %d", s.VehicleDay)
	}
	seen := make(map[string]bool, len(s.Cycles))
	for i, cy := range s.Cycles {
		prefix := fmt.Sprintf("schedule.cycles[%d]", i)
		if cy.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if seen[cy.Name] {
			return fmt.Errorf("%s: duplicate cycle %q", prefix, cy.Name)
		}
		seen[cy.Name] = true
		if !cy.At.Valid() {
			return fmt.Errorf("%s: time out of range: %s", prefix, cy.At)
		}
		if cy.Payload < 0 {
			return fmt.Errorf("%s: payload must be non-negative, got %d", prefix, cy.Payload)
		}
	}
	return nil
}

func (r *RosterConfig) validate() error {
	if r.Staff < 0 || r.Subcon < 0 {
		return fmt.Errorf("roster sizes must be non-negative, got staff=%d subcon=%d", r.Staff, r.Subcon)
	}
	if r.EntryJitter < 0 || math.IsNaN(r.EntryJitter) || math.IsInf(r.EntryJitter, 0) {
		return fmt.Errorf("roster.entry_jitter must be a finite non-negative number, got %v", r.EntryJitter)
	}
	for name, v := range map[string]float64{
		"roster.speed":            r.Speed,
		"roster.epsilon":          r.Epsilon,
		"roster.poll_interval_ms": r.PollIntervalMs,
	} {
		if err := validateFinitePositive(name, v); err != nil {
			return err
		}
	}
	for name, g := range map[string]IdleGridConfig{"roster.staff_idle": r.StaffIdle, "roster.subcon_idle": r.SubconIdle} {
		if g.Cols <= 0 || g.Rows <= 0 {
			return fmt.Errorf("%s: cols and rows must be positive, got cols=%d rows=%d", name, g.Cols, g.Rows)
		}
	}
	return nil
}

func (f *FleetConfig) validate() error {
	if f.Rows <= 0 || f.Cols <= 0 {
		return fmt.Errorf("fleet rows and cols must be positive, got rows=%d cols=%d", f.Rows, f.Cols)
	}
	if err := validateFinitePositive("fleet.speed", f.Speed); err != nil {
		return err
	}
	return validateFinitePositive("fleet.epsilon", f.Epsilon)
}

func (q *QueueConfig) validate() error {
	if len(q.Rows) == 0 {
		return fmt.Errorf("queue.rows: at least one row required")
	}
	if q.Slots <= 0 {
		return fmt.Errorf("queue.slots must be positive, got %d", q.Slots)
	}
	if err := validateFinitePositive("queue.spacing", q.Spacing); err != nil {
		return err
	}
	if q.PickupBatch <= 0 {
		return fmt.Errorf("queue.pickup_batch must be positive, got %d", q.PickupBatch)
	}
	for i, row := range q.Rows {
		if row.Direction.Len() == 0 {
			return fmt.Errorf("queue.rows[%d]: direction must be non-zero", i)
		}
		if row.Role != "" && !ValidRoles[row.Role] {
			return fmt.Errorf("queue.rows[%d]: unknown role %q; valid: staff, subcon, or empty", i, row.Role)
		}
	}
	// a role no row admits could never pick up
	for _, role := range []Role{RoleStaff, RoleSubcon} {
		if !lo.SomeBy(q.Rows, func(r QueueRowConfig) bool { return r.Role == "" || r.Role == role }) {
			return fmt.Errorf("queue.rows: no row admits role %q", role)
		}
	}
	return nil
}

func (t *TruckConfig) validate() error {
	if err := validateFinitePositive("truck.speed", t.Speed); err != nil {
		return err
	}
	if err := validateFinitePositive("truck.epsilon", t.Epsilon); err != nil {
		return err
	}
	if t.UnloadMs < 0 {
		return fmt.Errorf("truck.unload_ms must be non-negative, got %f", t.UnloadMs)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
