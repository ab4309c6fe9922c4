package sim

import (
	"fmt"
	"math"
)

// Vec2 is a point or displacement in scene coordinates (pixels).
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }

// Near reports whether o lies strictly within eps of v.
func (v Vec2) Near(o Vec2, eps float64) bool { return v.Dist(o) < eps }

func (v Vec2) String() string { return fmt.Sprintf("(%.1f, %.1f)", v.X, v.Y) }

// MoveTowards steps pos toward target at speed (pixels per second) for dtMs
// milliseconds. It returns the new position and whether the mover arrived.
//
// Arrival snaps exactly onto target. It happens when the remaining distance
// is below eps or when this step would reach or pass the target, so the
// mover never overshoots.
func MoveTowards(pos, target Vec2, speed, dtMs, eps float64) (Vec2, bool) {
	delta := target.Sub(pos)
	dist := delta.Len()
	if dist < eps {
		return target, true
	}
	step := speed * dtMs / 1000
	if step <= 0 {
		return pos, false
	}
	if step >= dist {
		return target, true
	}
	return pos.Add(delta.Scale(step / dist)), false
}
