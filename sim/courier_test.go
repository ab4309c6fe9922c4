package sim

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFloor is a scripted CourierEnv with a single one-slot row.
type fakeFloor struct {
	pileReady  bool
	claimable  bool
	boxes      int
	claims     int
	deposited  int
	vehiclePos Vec2
	slotPos    Vec2
	pollMs     float64
}

func (f *fakeFloor) PileReady() bool { return f.pileReady }

func (f *fakeFloor) ClaimSlot(c *Courier) bool {
	f.claims++
	if !f.claimable {
		return false
	}
	f.claimable = false
	c.Slot = SlotRef{Row: 0, Index: 0}
	return true
}

func (f *fakeFloor) SlotPosition(SlotRef) Vec2 { return f.slotPos }

func (f *fakeFloor) Pickup(c *Courier) int {
	if f.boxes == 0 {
		return 0
	}
	f.boxes--
	c.Slot = NoSlot
	return 1
}

func (f *fakeFloor) VehiclePosition(VehicleID) (Vec2, bool) { return f.vehiclePos, true }

func (f *fakeFloor) Deposit(_ *Courier, n int) { f.deposited += n }

func (f *fakeFloor) Epsilon() float64 { return 1 }

func (f *fakeFloor) PollInterval() float64 { return f.pollMs }

func newTestCourier() *Courier {
	c := NewCourier(0, "S_Monday_1", RoleStaff, V(0, 0), 1000)
	c.Vehicle = 0
	return c
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to CourierState
		want     bool
	}{
		{StateOffWork, StateReporting, true},
		{StateReporting, StateIdle, true},
		{StateIdle, StateMoveToQueue, true},
		{StateMoveToQueue, StateQueuing, true},
		{StateQueuing, StateSorting, true},
		{StateSorting, StateIdle, true},
		{StateOffWork, StateIdle, false},
		{StateIdle, StateSorting, false},
		{StateQueuing, StateIdle, false},
		{StateDelivering, StateIdle, false},
		{StateIdle, StateDelivering, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCourier_SetState_RejectsIllegalTransition(t *testing.T) {
	// GIVEN an off-work courier
	c := newTestCourier()

	// WHEN it is asked to jump straight to QUEUING
	err := c.SetState(StateQueuing)

	// THEN the transition is refused and the state is unchanged
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Contains(t, err.Error(), "OFF_WORK -> QUEUING")
	assert.Equal(t, StateOffWork, c.State)
}

func TestCourier_Report(t *testing.T) {
	c := newTestCourier()

	require.NoError(t, c.Report(V(30, 40), 2))

	assert.Equal(t, StateReporting, c.State)
	assert.Equal(t, V(30, 40), c.Target)
	assert.Equal(t, 2, c.IdleCell)
	assert.Error(t, c.Report(V(0, 0), 3), "already reporting")
}

func TestCourier_Update_FullCycle(t *testing.T) {
	// GIVEN a reported courier, a pile with one box and a free slot
	c := newTestCourier()
	require.NoError(t, c.Report(V(100, 0), 0))
	env := &fakeFloor{pileReady: true, claimable: true, boxes: 1, slotPos: V(100, 100), vehiclePos: V(0, 100), pollMs: 100}

	// WHEN the courier updates frame by frame
	states := []CourierState{c.State}
	for i := 0; i < 20 && env.deposited == 0; i++ {
		c.Update(100, env)
		if states[len(states)-1] != c.State {
			states = append(states, c.State)
		}
	}

	// THEN it walks the whole loop and returns to IDLE empty-handed.
	// Reaching slot 0 with boxes waiting passes QUEUING and picks up in one update.
	assert.Equal(t, []CourierState{StateReporting, StateIdle, StateMoveToQueue, StateSorting, StateIdle}, states)
	assert.Equal(t, 1, env.deposited)
	assert.Equal(t, 0, c.Carrying)
	assert.Equal(t, NoSlot, c.Slot)
	assert.Equal(t, c.IdleSpot, c.Target)
}

func TestCourier_Update_IdleWithoutPileDoesNotClaim(t *testing.T) {
	c := newTestCourier()
	require.NoError(t, c.Report(V(0, 0), 0))
	env := &fakeFloor{pileReady: false, claimable: true, pollMs: 100}

	c.Update(16, env) // arrives at once
	c.Update(16, env)

	assert.Equal(t, StateIdle, c.State)
	assert.Equal(t, 0, env.claims)
}

func TestCourier_Update_FailedClaimWaitsPollInterval(t *testing.T) {
	// GIVEN an idle courier and a floor with no free tail
	c := newTestCourier()
	require.NoError(t, c.Report(V(0, 0), 0))
	env := &fakeFloor{pileReady: true, claimable: false, pollMs: 100}
	c.Update(10, env) // REPORTING -> IDLE

	// WHEN the first claim fails
	c.Update(10, env)
	require.Equal(t, 1, env.claims)

	// THEN no retry happens before the poll interval has passed
	for i := 0; i < 9; i++ {
		c.Update(10, env)
	}
	assert.Equal(t, 1, env.claims)

	// WHEN the interval elapses and a slot frees up
	env.claimable = true
	c.Update(10, env)

	// THEN the retry succeeds
	assert.Equal(t, 2, env.claims)
	assert.Equal(t, StateMoveToQueue, c.State)
}

func TestCourier_Update_UnassignedNeverQueues(t *testing.T) {
	c := NewCourier(1, "SC_Monday_1", RoleSubcon, V(0, 0), 1000)
	require.NoError(t, c.Report(V(0, 0), 0))
	env := &fakeFloor{pileReady: true, claimable: true, pollMs: 100}

	for i := 0; i < 10; i++ {
		c.Update(100, env)
	}

	assert.Equal(t, StateIdle, c.State)
	assert.Equal(t, 0, env.claims)
	assert.False(t, c.HasVehicle())
}

func TestCourier_Update_HeadWaitsForEmptyPile(t *testing.T) {
	// GIVEN a courier standing at slot 0 and an empty pile
	c := newTestCourier()
	require.NoError(t, c.Report(V(0, 0), 0))
	env := &fakeFloor{pileReady: true, claimable: true, boxes: 0, pollMs: 100}
	for i := 0; i < 5; i++ {
		c.Update(100, env)
	}
	require.Equal(t, StateQueuing, c.State)

	// WHEN boxes arrive
	env.boxes = 1
	c.Update(100, env)

	// THEN the waiting head picks up
	assert.Equal(t, StateSorting, c.State)
	assert.Equal(t, 1, c.Carrying)
}

func TestCourier_Update_OffWorkIsInert(t *testing.T) {
	c := newTestCourier()
	env := &fakeFloor{pileReady: true, claimable: true}

	c.Update(1000, env)

	assert.Equal(t, StateOffWork, c.State)
	assert.Equal(t, V(0, 0), c.Position)
}

func TestCourier_Update_UnknownStateWarns(t *testing.T) {
	// GIVEN a courier in a state the lifecycle does not know
	hook := test.NewGlobal()
	defer hook.Reset()
	c := newTestCourier()
	c.State = "LOST"
	c.Target = V(500, 0)
	env := &fakeFloor{pileReady: true, claimable: true}

	// WHEN it updates
	c.Update(1000, env)

	// THEN nothing moves and a warning names the state
	assert.Equal(t, V(0, 0), c.Position)
	assert.Equal(t, CourierState("LOST"), c.State)
	assert.Zero(t, env.claims)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "LOST")
	assert.Equal(t, "S_Monday_1", entry.Data["courier"])
}
