package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcel-sim/parcel-sim/sim/trace"
)

// newTestSimulator builds a simulator from cfg and fails the test on error.
func newTestSimulator(t *testing.T, cfg Config) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, 42)
	require.NoError(t, err)
	return s
}

// runMinutes steps s in one-second frames for the given simulated minutes at 1x.
func runMinutes(s *Simulator, minutes int) {
	s.Run(float64(minutes)*1000/s.Clock.Speed, 1000)
}

func TestSpawnScheduler_EventOrder(t *testing.T) {
	s := newTestSimulator(t, DefaultConfig())

	assert.Equal(t, []string{
		"daily-reset", "vehicle-spawn", "courier-spawn",
		"truck:ACycle", "truck:BCycle", "truck:NCycle",
	}, s.Scheduler.Events())
}

func TestSpawnScheduler_NothingFiresBeforeTheFirstTick(t *testing.T) {
	s := newTestSimulator(t, DefaultConfig())

	_, seen := s.Scheduler.LastSeen()
	assert.False(t, seen)
	assert.Equal(t, 0, s.Metrics.VehicleSpawns)
}

func TestSpawnScheduler_MorningSequence(t *testing.T) {
	// GIVEN Monday 06:00 with decision tracing on
	cfg := DefaultConfig()
	cfg.TraceLevel = string(trace.TraceLevelDecisions)
	s := newTestSimulator(t, cfg)

	// WHEN one simulated hour passes in one-second frames
	runMinutes(s, 60)

	// THEN the reset and the fleet came at 06:01 and the roster at 07:00
	assert.Equal(t, "Monday 07:00", s.Clock.String())
	require.Len(t, s.Trace.Events, 3)
	assert.Equal(t, trace.EventRecord{Name: "daily-reset", Clock: "Monday 06:01", Detail: "Monday"}, s.Trace.Events[0])
	assert.Equal(t, "vehicle-spawn", s.Trace.Events[1].Name)
	assert.Equal(t, "Monday 06:01", s.Trace.Events[1].Clock)
	assert.Equal(t, "40 vans, 40 cars", s.Trace.Events[1].Detail)
	assert.Equal(t, "courier-spawn", s.Trace.Events[2].Name)
	assert.Equal(t, "Monday 07:00", s.Trace.Events[2].Clock)

	assert.Equal(t, 1, s.Metrics.VehicleSpawns)
	assert.Equal(t, 8, s.Metrics.CouriersSpawned)
	assert.True(t, s.Scheduler.FiredToday("courier-spawn"))
	assert.True(t, s.Scheduler.FiredThisWeek("vehicle-spawn"))
	day, seen := s.Scheduler.LastSeen()
	assert.True(t, seen)
	assert.Equal(t, Monday, day)
}

func TestSpawnScheduler_DailyEventsFireOncePerDay(t *testing.T) {
	// GIVEN Monday 06:00
	s := newTestSimulator(t, DefaultConfig())

	// WHEN the whole day and the next morning run
	runMinutes(s, 25*60)

	// THEN every daily event fired once per day and the fleet only once
	assert.Equal(t, "Tuesday 07:00", s.Clock.String())
	assert.Equal(t, 1, s.Metrics.VehicleSpawns)
	assert.Equal(t, 16, s.Metrics.CouriersSpawned)
	assert.Equal(t, 3, s.Metrics.TrucksSpawned)
	assert.Equal(t, map[string]int{"ACycle": 20, "BCycle": 30, "NCycle": 40}, s.Metrics.CyclePayloads)
	assert.False(t, s.Scheduler.FiredToday("truck:ACycle"), "flags cleared by Tuesday's reset")
	assert.True(t, s.Scheduler.FiredThisWeek("vehicle-spawn"), "weekly flag survives a non-vehicle day")
}

func TestSpawnScheduler_FleetRespawnsNextWeek(t *testing.T) {
	// GIVEN Friday evening after a week that already had its fleet
	cfg := DefaultConfig()
	cfg.Clock.StartDay = Friday
	cfg.Clock.Start = At(23, 0)
	s := newTestSimulator(t, cfg)

	// WHEN the clock wraps into Monday morning
	runMinutes(s, 7*60+2)

	// THEN Monday's reset opens a new week and the fleet spawns at 06:01
	assert.Equal(t, "Monday 06:02", s.Clock.String())
	assert.Equal(t, 1, s.Metrics.VehicleSpawns)
	assert.Equal(t, 40, s.Vehicles.Count(KindVan))
}

func TestSpawnScheduler_StartAfterResetTimeStillOpensTheDay(t *testing.T) {
	// GIVEN a start time past every daily event
	cfg := DefaultConfig()
	cfg.Clock.Start = At(9, 0)
	s := newTestSimulator(t, cfg)

	// WHEN a single frame runs
	s.Step(1000)

	// THEN the reset, fleet, roster and the morning truck all catch up in order
	assert.Equal(t, 1, s.Metrics.VehicleSpawns)
	assert.Equal(t, 8, s.Metrics.CouriersSpawned)
	assert.Equal(t, 1, s.Metrics.TrucksSpawned)
	assert.Zero(t, s.Metrics.CouriersUnassigned, "fleet spawned before the roster")
}
