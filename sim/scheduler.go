package sim

import "github.com/samber/lo"

// SpawnScheduler owns the calendar: the ordered event list and the
// idempotence flags that make each event fire once per day or week.
//
// Thread-safety: NOT thread-safe. Owned by the tick goroutine.
type SpawnScheduler struct {
	events []Event

	lastSeen      Weekday
	seen          bool // false until the first daily reset
	firedToday    map[string]bool
	firedThisWeek map[string]bool
}

// NewSpawnScheduler registers the calendar in evaluation order: daily reset,
// weekly vehicle spawn, daily courier spawn, then one truck per cycle.
func NewSpawnScheduler(cfg ScheduleConfig) *SpawnScheduler {
	s := &SpawnScheduler{
		firedToday:    make(map[string]bool),
		firedThisWeek: make(map[string]bool),
	}
	s.events = []Event{
		&DailyResetEvent{At: cfg.DailyReset, VehicleDay: cfg.VehicleDay},
		&VehicleSpawnEvent{Day: cfg.VehicleDay, At: cfg.VehicleSpawn},
		&CourierSpawnEvent{At: cfg.CourierSpawn},
	}
	for _, cy := range cfg.Cycles {
		s.events = append(s.events, &TruckSpawnEvent{Cycle: cy})
	}
	return s
}

// Tick runs every due event once, in registration order. Later events see
// the effects of earlier ones in the same tick.
func (s *SpawnScheduler) Tick(sim *Simulator) {
	for _, ev := range s.events {
		if ev.Due(sim) {
			sim.log.Infof("<< %s at %s", ev.Name(), sim.Clock)
			ev.Execute(sim)
		}
	}
}

// Events returns the registered event names in evaluation order.
func (s *SpawnScheduler) Events() []string {
	return lo.Map(s.events, func(ev Event, _ int) string { return ev.Name() })
}

// FiredToday reports whether a daily event already ran today.
func (s *SpawnScheduler) FiredToday(name string) bool { return s.firedToday[name] }

// FiredThisWeek reports whether a weekly event already ran this week.
func (s *SpawnScheduler) FiredThisWeek(name string) bool { return s.firedThisWeek[name] }

// LastSeen returns the day of the most recent daily reset.
func (s *SpawnScheduler) LastSeen() (Weekday, bool) { return s.lastSeen, s.seen }

func (s *SpawnScheduler) openedToday(day Weekday) bool {
	return s.seen && s.lastSeen == day
}

func (s *SpawnScheduler) openDay(day Weekday, newWeek bool) {
	clear(s.firedToday)
	if newWeek {
		clear(s.firedThisWeek)
	}
	s.lastSeen = day
	s.seen = true
}

func (s *SpawnScheduler) markToday(name string) { s.firedToday[name] = true }

func (s *SpawnScheduler) markWeek(name string) { s.firedThisWeek[name] = true }
