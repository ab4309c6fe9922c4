package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name        string
		pos, target Vec2
		speed, dtMs float64
		wantPos     Vec2
		wantArrived bool
	}{
		{"partial step along x", V(0, 0), V(100, 0), 100, 500, V(50, 0), false},
		{"exact reach snaps", V(0, 0), V(100, 0), 100, 1000, V(100, 0), true},
		{"overshoot snaps", V(0, 0), V(0, 10), 300, 1000, V(0, 10), true},
		{"within epsilon snaps", V(0, 0), V(1, 1), 0, 16, V(1, 1), true},
		{"zero dt stays", V(5, 5), V(50, 50), 300, 0, V(5, 5), false},
		{"diagonal", V(0, 0), V(30, 40), 10, 1000, V(6, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPos, gotArrived := MoveTowards(tt.pos, tt.target, tt.speed, tt.dtMs, 2)
			assert.InDelta(t, tt.wantPos.X, gotPos.X, 1e-9)
			assert.InDelta(t, tt.wantPos.Y, gotPos.Y, 1e-9)
			assert.Equal(t, tt.wantArrived, gotArrived)
		})
	}
}

func TestMoveTowards_NeverOvershoots(t *testing.T) {
	// GIVEN a mover approaching a target in uneven frames
	pos, target := V(-150, 300), V(42, 300)
	for i := 0; i < 100; i++ {
		var arrived bool
		pos, arrived = MoveTowards(pos, target, 120, 37, 1)

		// THEN it never passes the target
		if pos.X > target.X {
			t.Fatalf("frame %d: overshot to %v", i, pos)
		}
		if arrived {
			assert.Equal(t, target, pos)
			return
		}
	}
	t.Fatal("mover never arrived")
}

func TestVec2_Arithmetic(t *testing.T) {
	a, b := V(3, 4), V(1, 2)
	assert.Equal(t, V(4, 6), a.Add(b))
	assert.Equal(t, V(2, 2), a.Sub(b))
	assert.Equal(t, V(6, 8), a.Scale(2))
	assert.Equal(t, 5.0, a.Len())
	assert.True(t, a.Near(V(3, 5), 2))
	assert.False(t, a.Near(V(3, 6), 2))
}
