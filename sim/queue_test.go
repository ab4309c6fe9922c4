package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQueueConfig(rows, slots int) QueueConfig {
	cfg := QueueConfig{Slots: slots, Spacing: 30, PickupBatch: 1, PileOffset: V(80, 0)}
	dirs := []Vec2{V(1, 0), V(0, -1), V(0, 1), V(-1, 0)}
	for i := 0; i < rows; i++ {
		cfg.Rows = append(cfg.Rows, QueueRowConfig{Direction: dirs[i%len(dirs)]})
	}
	return cfg
}

func TestBoxPile_Take_Saturates(t *testing.T) {
	tests := []struct {
		name      string
		boxes, n  int
		wantTaken int
		wantLeft  int
	}{
		{"take less than pile", 20, 1, 1, 19},
		{"take all", 3, 3, 3, 0},
		{"take more than pile", 2, 5, 2, 0},
		{"empty pile", 0, 1, 0, 0},
		{"non-positive request", 5, 0, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &BoxPile{Boxes: tt.boxes}
			assert.Equal(t, tt.wantTaken, p.Take(tt.n))
			assert.Equal(t, tt.wantLeft, p.Boxes)
		})
	}
}

func TestBoxPile_Add_IgnoresNonPositive(t *testing.T) {
	p := &BoxPile{}
	p.Add(20)
	p.Add(-3)
	p.Add(0)
	assert.Equal(t, 20, p.Boxes)
}

func TestNewSlotPool_PanicsOnEmptyConfig(t *testing.T) {
	assert.Panics(t, func() { NewSlotPool(QueueConfig{Slots: 3}) })
	assert.Panics(t, func() { NewSlotPool(testQueueConfig(2, 0)) })
}

func TestSlotPool_Position(t *testing.T) {
	// GIVEN a pool anchored at the pile
	p := NewSlotPool(testQueueConfig(2, 3))
	p.SetOrigin(V(122, 300))

	// THEN slot i of a row sits spacing*(i+1) along its direction
	assert.Equal(t, V(152, 300), p.Position(SlotRef{Row: 0, Index: 0}))
	assert.Equal(t, V(212, 300), p.Position(SlotRef{Row: 0, Index: 2}))
	assert.Equal(t, V(122, 240), p.Position(SlotRef{Row: 1, Index: 1}))
}

func TestSlotPool_Claim_TakesTailOnly(t *testing.T) {
	// GIVEN one row of three slots
	p := NewSlotPool(testQueueConfig(1, 3))
	rng := rand.New(rand.NewSource(1))

	// WHEN a courier claims
	ref, ok := p.Claim(0, RoleStaff, rng)

	// THEN it holds the highest-index slot
	require.True(t, ok)
	assert.Equal(t, SlotRef{Row: 0, Index: 2}, ref)
	assert.Equal(t, CourierID(0), p.Occupant(ref))

	// WHEN a second courier claims before compaction
	_, ok = p.Claim(1, RoleStaff, rng)

	// THEN the tail is taken and the claim fails
	assert.False(t, ok)
	assert.Equal(t, 1, p.Occupied())
}

func TestSlotPool_Claim_RespectsRowRole(t *testing.T) {
	// GIVEN a staff-only row and a subcon-only row
	cfg := testQueueConfig(2, 2)
	cfg.Rows[0].Role = RoleStaff
	cfg.Rows[1].Role = RoleSubcon
	p := NewSlotPool(cfg)
	rng := rand.New(rand.NewSource(1))

	// WHEN each role claims
	staffRef, ok1 := p.Claim(0, RoleStaff, rng)
	subconRef, ok2 := p.Claim(1, RoleSubcon, rng)
	_, ok3 := p.Claim(2, RoleSubcon, rng)

	// THEN each lands in its own row and the subcon row is then full at the tail
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, 0, staffRef.Row)
	assert.Equal(t, 1, subconRef.Row)
	assert.False(t, ok3)
	assert.Empty(t, p.EligibleRows(RoleSubcon))
}

func TestSlotPool_Claim_RandomizedSameTickClaimsNeverShareSlots(t *testing.T) {
	// GIVEN several rows and many couriers claiming in one tick
	p := NewSlotPool(testQueueConfig(3, 4))
	rng := rand.New(rand.NewSource(99))
	held := make(map[SlotRef]CourierID)

	for id := CourierID(0); id < 20; id++ {
		ref, ok := p.Claim(id, RoleStaff, rng)
		if !ok {
			continue
		}
		// THEN no slot is handed out twice
		if prev, dup := held[ref]; dup {
			t.Fatalf("slot %v given to %d and %d", ref, prev, id)
		}
		held[ref] = id
	}

	// THEN exactly one claim per row tail succeeded
	assert.Len(t, held, 3)
	assert.Equal(t, 3, p.Occupied())
}

func TestSlotPool_Release_PanicsForNonHolder(t *testing.T) {
	p := NewSlotPool(testQueueConfig(1, 2))
	ref, ok := p.Claim(4, RoleStaff, rand.New(rand.NewSource(1)))
	require.True(t, ok)

	assert.Panics(t, func() { p.Release(ref, 5) })
	assert.Panics(t, func() { p.Release(SlotRef{Row: 3, Index: 0}, 4) })

	p.Release(ref, 4)
	assert.Equal(t, NoCourier, p.Occupant(ref))
}

func TestSlotPool_Compact_AdvancesOneHopPerPass(t *testing.T) {
	// GIVEN one row of four slots with a courier at the tail
	p := NewSlotPool(testQueueConfig(1, 4))
	ref, ok := p.Claim(7, RoleStaff, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	require.Equal(t, 3, ref.Index)

	var moves []SlotRef
	onMove := func(id CourierID, from, to SlotRef) {
		assert.Equal(t, CourierID(7), id)
		assert.Equal(t, from.Index-1, to.Index)
		moves = append(moves, to)
	}

	// WHEN compaction runs pass by pass
	// THEN the courier moves exactly one slot per pass until it reaches slot 0
	for want := 2; want >= 0; want-- {
		n := p.Compact(onMove)
		assert.Equal(t, 1, n)
		assert.Equal(t, CourierID(7), p.Occupant(SlotRef{Row: 0, Index: want}))
	}
	assert.Equal(t, 0, p.Compact(onMove))
	assert.Len(t, moves, 3)
}

func TestSlotPool_Compact_NeverMovesIntoOccupiedSlot(t *testing.T) {
	// GIVEN a row [_, A, B] built by claim + compaction
	p := NewSlotPool(testQueueConfig(1, 3))
	rng := rand.New(rand.NewSource(1))
	_, ok := p.Claim(0, RoleStaff, rng)
	require.True(t, ok)
	p.Compact(nil) // A -> slot 1
	_, ok = p.Claim(1, RoleStaff, rng)
	require.True(t, ok)
	require.Equal(t, "[_ 0 1]", p.String())

	// WHEN one pass runs
	p.Compact(nil)

	// THEN A advances, and B does not jump into the slot A just left
	assert.Equal(t, "[0 _ 1]", p.String())

	// WHEN another pass runs
	p.Compact(nil)

	// THEN B closes the gap; A stays at the head
	assert.Equal(t, "[0 1 _]", p.String())
}

func TestSlotPool_Compact_ReleaseAtHeadCascades(t *testing.T) {
	// GIVEN a full row [A, B, C]
	p := NewSlotPool(testQueueConfig(1, 3))
	rng := rand.New(rand.NewSource(1))
	for id := CourierID(0); id < 3; id++ {
		_, ok := p.Claim(id, RoleStaff, rng)
		require.True(t, ok)
		for p.Compact(nil) > 0 {
		}
	}
	require.Equal(t, "[0 1 2]", p.String())

	// WHEN the head picks up and releases slot 0
	p.Release(SlotRef{Row: 0, Index: 0}, 0)

	// THEN the gap travels backward one slot per pass
	p.Compact(nil)
	assert.Equal(t, "[1 _ 2]", p.String())
	p.Compact(nil)
	assert.Equal(t, "[1 2 _]", p.String())
	assert.Equal(t, []int{0}, p.EligibleRows(RoleStaff))
}

func TestSlotPool_Occupancy_IsACopy(t *testing.T) {
	p := NewSlotPool(testQueueConfig(2, 2))
	occ := p.Occupancy()
	occ[0][0] = 42
	assert.Equal(t, NoCourier, p.Occupant(SlotRef{Row: 0, Index: 0}))
}

func TestSlotPool_Claim_UniformAcrossEligibleRows(t *testing.T) {
	// GIVEN three rows that all admit staff
	p := NewSlotPool(testQueueConfig(3, 2))
	rng := rand.New(rand.NewSource(2024))
	counts := make([]int, 3)

	// WHEN a courier claims and releases the tail 3000 times
	const n = 3000
	for i := 0; i < n; i++ {
		ref, ok := p.Claim(0, RoleStaff, rng)
		require.True(t, ok)
		counts[ref.Row]++
		p.Release(ref, 0)
	}

	// THEN each row is picked about a third of the time
	for row, got := range counts {
		assert.InDelta(t, n/3, got, 100, "row %d picked %d times", row, got)
	}
}

func TestSlotPool_Claim_NeverPicksRowWithTakenTail(t *testing.T) {
	// GIVEN three rows where one row's tail is held
	p := NewSlotPool(testQueueConfig(3, 2))
	rng := rand.New(rand.NewSource(5))
	blocker, ok := p.Claim(9, RoleStaff, rng)
	require.True(t, ok)
	blocked := blocker.Row

	// WHEN other couriers claim and release repeatedly
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		ref, ok := p.Claim(0, RoleStaff, rng)
		require.True(t, ok)
		// THEN the blocked row is never chosen
		require.NotEqual(t, blocked, ref.Row)
		seen[ref.Row] = true
		p.Release(ref, 0)
	}

	// AND both remaining rows were used
	assert.Len(t, seen, 2)
	assert.Equal(t, CourierID(9), p.Occupant(blocker))
}
